package cart

import (
	"context"
	"testing"
	"time"

	"github.com/rkdoors/storefront-backend/pkg/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ at time.Time }

func (c *fakeClock) now() time.Time { return c.at }

func (c *fakeClock) advance(d time.Duration) { c.at = c.at.Add(d) }

func TestRegistrySweepDropsIdleCarts(t *testing.T) {
	clock := &fakeClock{at: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	r := NewRegistry()
	r.now = clock.now

	r.Get("idle").AddLine(door("A", 100), "36", "84", "32")
	r.Get("busy")
	clock.advance(20 * time.Hour)
	_, ok := r.Lookup("busy")
	require.True(t, ok)
	clock.advance(5 * time.Hour)

	assert.Equal(t, 1, r.Sweep(24*time.Hour))
	assert.Equal(t, 1, r.Len())
	_, ok = r.Lookup("idle")
	assert.False(t, ok)
	_, ok = r.Lookup("busy")
	assert.True(t, ok)
}

func TestRegistrySweepIgnoresNonPositiveTTL(t *testing.T) {
	clock := &fakeClock{at: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	r := NewRegistry()
	r.now = clock.now
	r.Get("s1")
	clock.advance(48 * time.Hour)

	assert.Equal(t, 0, r.Sweep(0))
	assert.Equal(t, 1, r.Len())
}

func TestRegistrySweeperStopsWithContext(t *testing.T) {
	clock := &fakeClock{at: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	r := NewRegistry()
	r.now = clock.now
	r.Get("s1")
	clock.advance(2 * time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.RunSweeper(ctx, 5*time.Millisecond, time.Hour, nil)
		close(done)
	}()

	require.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

func TestServiceReadsDoNotCreateCarts(t *testing.T) {
	registry := NewRegistry()
	svc, err := NewService(ServiceParams{Catalog: stubCatalog{"A": door("A", 900)}, Registry: registry})
	require.NoError(t, err)
	ctx := context.Background()

	snap, err := svc.Snapshot(ctx, "ghost")
	require.NoError(t, err)
	assert.Empty(t, snap.Lines)
	_, err = svc.Remove(ctx, "ghost", "A")
	require.NoError(t, err)
	snap, err = svc.SetQuantity(ctx, "ghost", "A", 4)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.TotalItems)
	require.NoError(t, svc.Clear(ctx, "ghost"))
	c, err := svc.Cart("ghost")
	require.NoError(t, err)
	assert.Equal(t, 0, c.TotalItems())
	assert.Equal(t, 0, registry.Len())

	_, err = svc.Add(ctx, "ghost", "A", enums.DoorSize{Width: "30", Height: "78", Thickness: "32"})
	require.NoError(t, err)
	assert.Equal(t, 1, registry.Len())
	c, err = svc.Cart("ghost")
	require.NoError(t, err)
	assert.Equal(t, 1, c.TotalItems())
}
