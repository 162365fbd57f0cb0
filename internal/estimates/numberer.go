package estimates

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rkdoors/storefront-backend/pkg/kv"
	"github.com/rkdoors/storefront-backend/pkg/logger"
	"github.com/rkdoors/storefront-backend/pkg/metrics"
)

const DefaultCounterKey = "lastEstimateNumber"

// Numberer hands out sequential estimate numbers from a persisted counter.
// Numbers are sequential within one process only; two instances sharing a
// store can hand out the same number.
type Numberer struct {
	mu      sync.Mutex
	store   kv.Store
	key     string
	metrics *metrics.EstimateMetrics
	logg    *logger.Logger
	now     func() time.Time
}

func NewNumberer(store kv.Store, key string, m *metrics.EstimateMetrics, logg *logger.Logger) (*Numberer, error) {
	if store == nil {
		return nil, fmt.Errorf("estimate counter store is required")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = DefaultCounterKey
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Numberer{store: store, key: key, metrics: m, logg: logg, now: time.Now}, nil
}

// Next returns EST-001, EST-002 and so on. When the counter cannot be read,
// parsed or written it falls back to a clock derived number instead of
// failing.
func (n *Numberer) Next(ctx context.Context) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	next, err := n.increment(ctx)
	if err != nil {
		n.metrics.IncFallback()
		n.logg.Warn(n.logg.WithFields(ctx, map[string]any{
			"counter_key": n.key,
			"error":       err.Error(),
		}), "estimates.counter_fallback")
		return n.fallback()
	}
	return fmt.Sprintf("EST-%03d", next)
}

func (n *Numberer) increment(ctx context.Context) (int, error) {
	raw, ok, err := n.store.Get(ctx, n.key)
	if err != nil {
		return 0, fmt.Errorf("read counter: %w", err)
	}
	next := 1
	if ok && strings.TrimSpace(raw) != "" {
		last, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return 0, fmt.Errorf("parse counter %q: %w", raw, err)
		}
		next = last + 1
	}
	if err := n.store.Set(ctx, n.key, strconv.Itoa(next)); err != nil {
		return 0, fmt.Errorf("write counter: %w", err)
	}
	return next, nil
}

func (n *Numberer) fallback() string {
	ms := strconv.FormatInt(n.now().UnixMilli(), 10)
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}
	return "EST-" + ms
}
