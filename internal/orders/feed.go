package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"

	rkredis "github.com/rkdoors/storefront-backend/pkg/redis"
)

const changedPayload = "changed"

// ErrFeedClosed is returned by Listen when the subscription ends underneath it.
var ErrFeedClosed = errors.New("order feed closed")

// Feed carries "collection changed" notifications between instances.
//
// Listen calls onChange once as soon as the subscription is established and
// then once per notification. It blocks until ctx ends (returning nil) or the
// subscription breaks (returning the cause).
type Feed interface {
	Notify(ctx context.Context) error
	Listen(ctx context.Context, onChange func()) error
}

type redisPubSub interface {
	Publish(ctx context.Context, channel, payload string) error
	Subscribe(ctx context.Context, channel string) (rkredis.Subscription, error)
}

// RedisFeed is a Feed over a Redis pub/sub channel.
type RedisFeed struct {
	client  redisPubSub
	channel string
}

func NewRedisFeed(client redisPubSub, channel string) (*RedisFeed, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if channel == "" {
		return nil, fmt.Errorf("feed channel is required")
	}
	return &RedisFeed{client: client, channel: channel}, nil
}

func (f *RedisFeed) Notify(ctx context.Context) error {
	return f.client.Publish(ctx, f.channel, changedPayload)
}

func (f *RedisFeed) Listen(ctx context.Context, onChange func()) error {
	sub, err := f.client.Subscribe(ctx, f.channel)
	if err != nil {
		return err
	}
	defer sub.Close()

	onChange()
	messages := sub.Messages()
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-messages:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrFeedClosed
			}
			onChange()
		}
	}
}

// LocalFeed fans notifications out to listeners in the same process.
// Notifications arriving faster than a listener drains them are coalesced.
type LocalFeed struct {
	mu        sync.Mutex
	listeners map[chan struct{}]struct{}
	brokenErr error
	broken    chan struct{}
}

func NewLocalFeed() *LocalFeed {
	return &LocalFeed{
		listeners: make(map[chan struct{}]struct{}),
		broken:    make(chan struct{}),
	}
}

func (f *LocalFeed) Notify(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.listeners {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

func (f *LocalFeed) Listen(ctx context.Context, onChange func()) error {
	ch := make(chan struct{}, 1)
	f.mu.Lock()
	if f.brokenErr != nil {
		err := f.brokenErr
		f.mu.Unlock()
		return err
	}
	f.listeners[ch] = struct{}{}
	broken := f.broken
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		delete(f.listeners, ch)
		f.mu.Unlock()
	}()

	onChange()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-broken:
			f.mu.Lock()
			err := f.brokenErr
			f.mu.Unlock()
			return err
		case <-ch:
			onChange()
		}
	}
}

// Break ends every current and future Listen call with err.
func (f *LocalFeed) Break(err error) {
	if err == nil {
		err = ErrFeedClosed
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.brokenErr != nil {
		return
	}
	f.brokenErr = err
	close(f.broken)
}
