package orders

import (
	"slices"
	"strings"
	"sync"
	"time"
)

type MirrorState string

const (
	MirrorConnecting MirrorState = "connecting"
	MirrorLive       MirrorState = "live"
	MirrorStale      MirrorState = "stale"
)

// MirrorStatus reports how current the mirror is.
type MirrorStatus struct {
	State    MirrorState `json:"state"`
	Err      string      `json:"error,omitempty"`
	SyncedAt *time.Time  `json:"syncedAt,omitempty"`
	Size     int         `json:"size"`
}

// Mirror is the in-memory copy of the order collection, newest first.
// It is replaced wholesale on every snapshot.
type Mirror struct {
	mu       sync.RWMutex
	orders   []Order
	state    MirrorState
	err      string
	syncedAt *time.Time
}

func NewMirror() *Mirror {
	return &Mirror{state: MirrorConnecting}
}

// Replace installs a new snapshot and marks the mirror live.
func (m *Mirror) Replace(orders []Order, at time.Time) {
	m.install(orders, at, MirrorLive, "")
}

// ReplaceStale installs a snapshot taken while no subscription is running.
// The orders are current but later changes will not arrive.
func (m *Mirror) ReplaceStale(orders []Order, at time.Time, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	m.install(orders, at, MirrorStale, msg)
}

func (m *Mirror) install(orders []Order, at time.Time, state MirrorState, errMsg string) {
	sorted := append([]Order(nil), orders...)
	sortNewestFirst(sorted)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = sorted
	m.state = state
	m.err = errMsg
	m.syncedAt = &at
}

// MarkStale records a sync failure and keeps the last-known orders.
func (m *Mirror) MarkStale(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = MirrorStale
	if err != nil {
		m.err = err.Error()
	}
}

func (m *Mirror) Status() MirrorStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return MirrorStatus{State: m.state, Err: m.err, SyncedAt: m.syncedAt, Size: len(m.orders)}
}

func (m *Mirror) All() []Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Order{}, m.orders...)
}

// ByUser keeps the exact userID matches.
func (m *Mirror) ByUser(userID string) []Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Order{}
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out
}

func (m *Mirror) Get(id string) (Order, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.ID == id {
			return o, true
		}
	}
	return Order{}, false
}

func sortNewestFirst(orders []Order) {
	slices.SortStableFunc(orders, func(a, b Order) int {
		if c := b.OrderDate.Compare(a.OrderDate); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
