package orders

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rkdoors/storefront-backend/pkg/enums"
	"github.com/stretchr/testify/require"
)

type recordingTopic struct {
	data    []byte
	attrs   map[string]string
	err     error
	stopped bool
}

func (r *recordingTopic) Publish(_ context.Context, data []byte, attrs map[string]string) (string, error) {
	r.data = data
	r.attrs = attrs
	if r.err != nil {
		return "", r.err
	}
	return "msg-1", nil
}

func (r *recordingTopic) Stop() { r.stopped = true }

func TestPubSubPublisherSendsJSONWithAttributes(t *testing.T) {
	topic := &recordingTopic{}
	pub, err := NewPubSubPublisher(topic)
	require.NoError(t, err)

	at := time.Date(2026, 4, 4, 12, 0, 0, 0, time.UTC)
	err = pub.PublishOrderEvent(context.Background(), Event{
		Type:       EventOrderStatusChanged,
		OrderID:    "o-1",
		Status:     enums.OrderStatusShipped,
		OccurredAt: at,
	})
	require.NoError(t, err)
	require.Equal(t, "order.status_changed", topic.attrs["event_type"])
	require.Equal(t, "o-1", topic.attrs["order_id"])

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(topic.data, &decoded))
	require.Equal(t, "shipped", decoded["status"])
	require.NotContains(t, decoded, "order")

	require.NoError(t, pub.Close())
	require.True(t, topic.stopped)
}

func TestPubSubPublisherWrapsError(t *testing.T) {
	boom := errors.New("unavailable")
	pub, err := NewPubSubPublisher(&recordingTopic{err: boom})
	require.NoError(t, err)

	err = pub.PublishOrderEvent(context.Background(), Event{Type: EventOrderDeleted, OrderID: "o-2"})
	require.ErrorIs(t, err, boom)
}

func TestNewPubSubPublisherRequiresTopic(t *testing.T) {
	_, err := NewPubSubPublisher(nil)
	require.Error(t, err)
}
