package redis

import (
	"sync"

	"github.com/redis/go-redis/v9"
)

// Subscription delivers payloads published on a channel. Messages is closed
// when the subscription ends, either through Close or a broken connection.
type Subscription interface {
	Messages() <-chan string
	Close() error
}

type pubSubSubscription struct {
	ps   *redis.PubSub
	out  chan string
	done chan struct{}
	once sync.Once
}

func newPubSubSubscription(ps *redis.PubSub) *pubSubSubscription {
	s := &pubSubSubscription{
		ps:   ps,
		out:  make(chan string, 16),
		done: make(chan struct{}),
	}
	go s.pump(ps.Channel())
	return s
}

func (s *pubSubSubscription) pump(in <-chan *redis.Message) {
	defer close(s.out)
	for {
		select {
		case <-s.done:
			return
		case msg, ok := <-in:
			if !ok {
				return
			}
			select {
			case s.out <- msg.Payload:
			case <-s.done:
				return
			}
		}
	}
}

func (s *pubSubSubscription) Messages() <-chan string {
	return s.out
}

func (s *pubSubSubscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.ps.Close()
	})
	return err
}
