package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rkdoors/storefront-backend/pkg/enums"
)

type EventType string

const (
	EventOrderPlaced        EventType = "order.placed"
	EventOrderStatusChanged EventType = "order.status_changed"
	EventOrderDeleted       EventType = "order.deleted"
)

// Event describes an acknowledged write to the order store.
type Event struct {
	Type       EventType         `json:"type"`
	OrderID    string            `json:"orderId"`
	Status     enums.OrderStatus `json:"status,omitempty"`
	OccurredAt time.Time         `json:"occurredAt"`
	Order      *Order            `json:"order,omitempty"`
}

// EventPublisher receives order events after the store acknowledged a write.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event Event) error
}

type topicPublisher interface {
	Publish(ctx context.Context, data []byte, attributes map[string]string) (string, error)
}

// PubSubPublisher sends events as JSON messages to a Pub/Sub topic.
type PubSubPublisher struct {
	topic topicPublisher
}

func NewPubSubPublisher(topic topicPublisher) (*PubSubPublisher, error) {
	if topic == nil {
		return nil, fmt.Errorf("topic publisher is required")
	}
	return &PubSubPublisher{topic: topic}, nil
}

func (p *PubSubPublisher) PublishOrderEvent(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}
	attrs := map[string]string{
		"event_type": string(event.Type),
		"order_id":   event.OrderID,
	}
	if _, err := p.topic.Publish(ctx, data, attrs); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// Close flushes pending messages when the topic supports stopping.
func (p *PubSubPublisher) Close() error {
	if stopper, ok := p.topic.(interface{ Stop() }); ok {
		stopper.Stop()
	}
	return nil
}
