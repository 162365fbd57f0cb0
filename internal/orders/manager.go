package orders

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rkdoors/storefront-backend/pkg/enums"
	pkgerrors "github.com/rkdoors/storefront-backend/pkg/errors"
	"github.com/rkdoors/storefront-backend/pkg/logger"
	"github.com/rkdoors/storefront-backend/pkg/metrics"
	"go.uber.org/multierr"
)

const (
	defaultWriteTimeout = 10 * time.Second
	errorBuffer         = 16

	opPush  = "push"
	opPatch = "patch"
	opDel   = "delete"
	opList  = "list"
)

var errNotSubscribed = errors.New("order feed not subscribed")

// ManagerParams bundles the dependencies of the order manager.
type ManagerParams struct {
	Store        Store
	Feed         Feed
	Events       EventPublisher
	Metrics      *metrics.OrderStoreMetrics
	Logger       *logger.Logger
	WriteTimeout time.Duration
}

// Manager owns the order lifecycle. Writes go straight to the store; reads
// are served from a mirror that is refreshed from the store whenever the feed
// reports a change. A write is therefore not visible to reads until the
// following snapshot lands.
type Manager struct {
	store   Store
	feed    Feed
	events  EventPublisher
	metrics *metrics.OrderStoreMetrics
	logg    *logger.Logger
	timeout time.Duration

	mirror *Mirror
	errs   chan error

	mu        sync.Mutex
	loopCtx   context.Context
	listening bool
	closed    bool

	closeOnce sync.Once
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	now       func() time.Time
}

func NewManager(params ManagerParams) (*Manager, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("order store is required")
	}
	if params.Feed == nil {
		return nil, fmt.Errorf("order feed is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	timeout := params.WriteTimeout
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}
	return &Manager{
		store:   params.Store,
		feed:    params.Feed,
		events:  params.Events,
		metrics: params.Metrics,
		logg:    logg,
		timeout: timeout,
		mirror:  NewMirror(),
		errs:    make(chan error, errorBuffer),
		now:     utcNow,
	}, nil
}

// Start subscribes to the feed in the background. The first snapshot is taken
// once the subscription is up. If the subscription breaks the mirror goes
// stale and stays that way until Resync.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.loopCtx != nil || m.closed {
		m.mu.Unlock()
		return
	}
	m.loopCtx, m.cancel = context.WithCancel(ctx)
	m.mu.Unlock()
	m.listen()
}

// listen runs one feed subscription unless one is already running. It is a
// no-op before Start and after Close.
func (m *Manager) listen() {
	m.mu.Lock()
	if m.loopCtx == nil || m.closed || m.listening {
		m.mu.Unlock()
		return
	}
	loopCtx := m.loopCtx
	m.listening = true
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		err := m.feed.Listen(loopCtx, func() {
			_ = m.sync(loopCtx)
		})
		m.mu.Lock()
		m.listening = false
		m.mu.Unlock()
		if loopCtx.Err() != nil {
			return
		}
		if err == nil {
			err = ErrFeedClosed
		}
		m.fail(loopCtx, "orders.feed_broken", fmt.Errorf("order feed: %w", err))
	}()
}

func (m *Manager) subscribed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listening
}

// Close stops the feed listener and releases the event publisher.
func (m *Manager) Close() error {
	var err error
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closed = true
		cancel := m.cancel
		m.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		m.wg.Wait()
		if closer, ok := m.events.(io.Closer); ok {
			err = multierr.Append(err, closer.Close())
		}
	})
	return err
}

// Errors delivers subscription and snapshot failures. Sends never block;
// failures are dropped when nobody drains the channel.
func (m *Manager) Errors() <-chan error {
	return m.errs
}

func (m *Manager) Status() MirrorStatus {
	return m.mirror.Status()
}

// Resync resubscribes to the feed if the subscription has ended and reloads
// the full collection. The mirror only reports live while a subscription is
// running.
func (m *Manager) Resync(ctx context.Context) error {
	m.listen()
	return m.sync(ctx)
}

func (m *Manager) AddOrder(ctx context.Context, in NewOrder) (Order, error) {
	if problems := in.problems(); len(problems) > 0 {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, "order is incomplete").WithDetails(problems)
	}
	var stored Order
	err := m.call(ctx, opPush, func(ctx context.Context) error {
		var err error
		stored, err = m.store.Push(ctx, in.toOrder())
		return err
	})
	if err != nil {
		return Order{}, err
	}
	m.logg.Info(m.logg.WithOrderID(ctx, stored.ID), "orders.placed")
	m.afterWrite(ctx, Event{Type: EventOrderPlaced, OrderID: stored.ID, Status: stored.Status, Order: &stored})
	return stored, nil
}

// UpdateOrderStatus writes status without consulting AllowedTransitions.
func (m *Manager) UpdateOrderStatus(ctx context.Context, id string, status enums.OrderStatus) (Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if !status.IsValid() {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status").WithDetails(map[string]string{"status": string(status)})
	}
	var patched Order
	err := m.call(ctx, opPatch, func(ctx context.Context) error {
		var err error
		patched, err = m.store.Patch(ctx, id, status)
		return err
	})
	if err != nil {
		return Order{}, err
	}
	m.logg.Info(m.logg.WithField(m.logg.WithOrderID(ctx, id), "status", string(status)), "orders.status_changed")
	m.afterWrite(ctx, Event{Type: EventOrderStatusChanged, OrderID: id, Status: status, Order: &patched})
	return patched, nil
}

// CancelOrder deletes the order record. Cancelling an unknown id succeeds.
func (m *Manager) CancelOrder(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if err := m.call(ctx, opDel, func(ctx context.Context) error {
		return m.store.Delete(ctx, id)
	}); err != nil {
		return err
	}
	m.logg.Info(m.logg.WithOrderID(ctx, id), "orders.deleted")
	m.afterWrite(ctx, Event{Type: EventOrderDeleted, OrderID: id})
	return nil
}

// GetUserOrders filters the mirror by exact user id, newest first.
func (m *Manager) GetUserOrders(userID string) []Order {
	return m.mirror.ByUser(userID)
}

func (m *Manager) GetAllOrders() []Order {
	return m.mirror.All()
}

func (m *Manager) GetOrder(id string) (Order, bool) {
	return m.mirror.Get(id)
}

func (m *Manager) Stats() Stats {
	return computeStats(m.mirror.All())
}

func (m *Manager) sync(ctx context.Context) error {
	var snapshot []Order
	err := m.call(ctx, opList, func(ctx context.Context) error {
		var err error
		snapshot, err = m.store.List(ctx)
		return err
	})
	if err != nil {
		m.fail(ctx, "orders.snapshot_failed", err)
		return err
	}
	if !m.subscribed() {
		m.mirror.ReplaceStale(snapshot, m.now(), errNotSubscribed)
		m.metrics.SetMirror(len(snapshot), true)
		return nil
	}
	m.mirror.Replace(snapshot, m.now())
	m.metrics.SetMirror(len(snapshot), false)
	return nil
}

func (m *Manager) fail(ctx context.Context, msg string, err error) {
	m.mirror.MarkStale(err)
	m.metrics.SetMirror(m.mirror.Status().Size, true)
	m.logg.Error(ctx, msg, err)
	select {
	case m.errs <- err:
	default:
	}
}

// call bounds one store operation by the write timeout, records it and maps
// the failure onto the public error codes.
func (m *Manager) call(ctx context.Context, op string, fn func(context.Context) error) error {
	cctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := time.Now()
	err := fn(cctx)
	elapsed := time.Since(start)

	switch {
	case err == nil:
		m.metrics.ObserveOp(op, metrics.OutcomeSuccess, elapsed)
		return nil
	case errors.Is(err, ErrNotFound):
		m.metrics.ObserveOp(op, metrics.OutcomeNotFound, elapsed)
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(cctx.Err(), context.DeadlineExceeded):
		m.metrics.ObserveOp(op, metrics.OutcomeTimeout, elapsed)
		return pkgerrors.Wrap(pkgerrors.CodeTimeout, err, fmt.Sprintf("order store %s timed out", op))
	default:
		m.metrics.ObserveOp(op, metrics.OutcomeError, elapsed)
		msg := "write failed"
		if op == opList {
			msg = "snapshot failed"
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
	}
}

// afterWrite announces an acknowledged write. Neither step can fail the write.
func (m *Manager) afterWrite(ctx context.Context, event Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
	defer cancel()

	if err := m.feed.Notify(ctx); err != nil {
		m.logg.Error(m.logg.WithOrderID(ctx, event.OrderID), "orders.notify_failed", err)
		select {
		case m.errs <- fmt.Errorf("notify order change: %w", err):
		default:
		}
	}

	if m.events == nil {
		return
	}
	event.OccurredAt = m.now()
	if err := m.events.PublishOrderEvent(ctx, event); err != nil {
		m.logg.Warn(m.logg.WithFields(ctx, map[string]any{
			"order_id":   event.OrderID,
			"event_type": string(event.Type),
			"error":      err.Error(),
		}), "orders.event_publish_failed")
	}
}
