package orders

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMirrorStartsConnecting(t *testing.T) {
	m := NewMirror()
	status := m.Status()
	require.Equal(t, MirrorConnecting, status.State)
	require.Nil(t, status.SyncedAt)
	require.Empty(t, m.All())
}

func TestMirrorReplaceSortsNewestFirst(t *testing.T) {
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	m := NewMirror()
	m.Replace([]Order{
		{ID: "old", UserID: "u1", OrderDate: base},
		{ID: "b-new", UserID: "u2", OrderDate: base.Add(time.Hour)},
		{ID: "a-new", UserID: "u1", OrderDate: base.Add(time.Hour)},
	}, base.Add(2*time.Hour))

	var ids []string
	for _, o := range m.All() {
		ids = append(ids, o.ID)
	}
	require.Equal(t, []string{"a-new", "b-new", "old"}, ids)

	mine := m.ByUser("u1")
	require.Len(t, mine, 2)
	require.Equal(t, "a-new", mine[0].ID)
	require.Equal(t, "old", mine[1].ID)
	require.Empty(t, m.ByUser(""))

	got, ok := m.Get("b-new")
	require.True(t, ok)
	require.Equal(t, "u2", got.UserID)
	_, ok = m.Get("nope")
	require.False(t, ok)

	status := m.Status()
	require.Equal(t, MirrorLive, status.State)
	require.Equal(t, 3, status.Size)
}

func TestMirrorStaleKeepsLastKnownOrders(t *testing.T) {
	m := NewMirror()
	m.Replace([]Order{{ID: "x"}}, time.Now())
	m.MarkStale(errors.New("subscription dropped"))

	status := m.Status()
	require.Equal(t, MirrorStale, status.State)
	require.Equal(t, "subscription dropped", status.Err)
	require.Len(t, m.All(), 1)

	m.Replace(nil, time.Now())
	status = m.Status()
	require.Equal(t, MirrorLive, status.State)
	require.Empty(t, status.Err)
	require.Equal(t, 0, status.Size)
}

func TestMirrorAllReturnsCopy(t *testing.T) {
	m := NewMirror()
	m.Replace([]Order{{ID: "x"}}, time.Now())
	all := m.All()
	all[0].ID = "mutated"
	got, ok := m.Get("x")
	require.True(t, ok)
	require.Equal(t, "x", got.ID)
}

func TestMirrorReplaceStaleInstallsOrdersWithoutGoingLive(t *testing.T) {
	m := NewMirror()
	m.ReplaceStale([]Order{{ID: "x"}, {ID: "y"}}, time.Now(), errors.New("order feed not subscribed"))

	status := m.Status()
	require.Equal(t, MirrorStale, status.State)
	require.Equal(t, "order feed not subscribed", status.Err)
	require.Equal(t, 2, status.Size)
	require.NotNil(t, status.SyncedAt)
}
