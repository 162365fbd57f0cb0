package pubsub

import (
	"context"
	"errors"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
)

type publishResult interface {
	Get(ctx context.Context) (string, error)
}

type publisher interface {
	Publish(context.Context, *pubsub.Message) publishResult
	Stop()
}

// TopicPublisher publishes a message and waits for the server id.
type TopicPublisher struct {
	pub publisher
}

func NewTopicPublisher(p *pubsub.Publisher) *TopicPublisher {
	return &TopicPublisher{pub: &gcpPublisher{Publisher: p}}
}

// Publish sends data with attributes and blocks until the server acknowledges
// or ctx ends.
func (t *TopicPublisher) Publish(ctx context.Context, data []byte, attributes map[string]string) (string, error) {
	if t == nil || t.pub == nil {
		return "", errors.New("pubsub publisher not configured")
	}
	result := t.pub.Publish(ctx, &pubsub.Message{Data: data, Attributes: attributes})
	if result == nil {
		return "", errors.New("pubsub publisher returned no result")
	}
	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish: %w", err)
	}
	return id, nil
}

// Stop flushes pending messages.
func (t *TopicPublisher) Stop() {
	if t == nil || t.pub == nil {
		return
	}
	t.pub.Stop()
}

type gcpPublisher struct {
	*pubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *pubsub.Message) publishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return p.Publisher.Publish(ctx, msg)
}
