package cart

import (
	"context"
	"sync"
	"time"

	"github.com/rkdoors/storefront-backend/pkg/logger"
)

const (
	DefaultIdleTTL       = 24 * time.Hour
	DefaultSweepInterval = 10 * time.Minute
)

type registryEntry struct {
	cart    *Cart
	touched time.Time
}

// Registry maps cart-session keys to carts. Carts live in process memory and
// are dropped once they have been idle for longer than the idle TTL.
type Registry struct {
	mu    sync.Mutex
	carts map[string]*registryEntry
	now   func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{carts: make(map[string]*registryEntry), now: time.Now}
}

// Get returns the cart for session, creating an empty one on first use.
func (r *Registry) Get(session string) *Cart {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.carts[session]
	if !ok {
		e = &registryEntry{cart: New()}
		r.carts[session] = e
	}
	e.touched = r.now()
	return e.cart
}

// Lookup returns the cart without creating one.
func (r *Registry) Lookup(session string) (*Cart, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.carts[session]
	if !ok {
		return nil, false
	}
	e.touched = r.now()
	return e.cart, true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.carts)
}

// Sweep drops carts untouched for longer than idle and returns how many went.
func (r *Registry) Sweep(idle time.Duration) int {
	if idle <= 0 {
		return 0
	}
	cutoff := r.now().Add(-idle)
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for session, e := range r.carts {
		if e.touched.Before(cutoff) {
			delete(r.carts, session)
			removed++
		}
	}
	return removed
}

// RunSweeper sweeps every interval until ctx ends.
func (r *Registry) RunSweeper(ctx context.Context, interval, idle time.Duration, logg *logger.Logger) {
	if interval <= 0 || idle <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := r.Sweep(idle)
			if removed > 0 && logg != nil {
				logg.Info(logg.WithFields(ctx, map[string]any{
					"evicted": removed,
					"carts":   r.Len(),
				}), "cart.sweep")
			}
		}
	}
}
