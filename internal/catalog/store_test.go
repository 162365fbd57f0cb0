package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rkdoors/storefront-backend/pkg/catalogapi"
	pkgerrors "github.com/rkdoors/storefront-backend/pkg/errors"
	"github.com/rkdoors/storefront-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	doors      []catalogapi.Door
	categories []catalogapi.Category
	doorsErr   error
	catErr     error
}

func (s *stubFetcher) FetchDoors(context.Context) ([]catalogapi.Door, error) {
	return s.doors, s.doorsErr
}

func (s *stubFetcher) FetchCategories(context.Context) ([]catalogapi.Category, error) {
	return s.categories, s.catErr
}

func sampleFetcher() *stubFetcher {
	return &stubFetcher{
		doors: []catalogapi.Door{
			{ID: json.Number("1"), Name: "Teak Classic", Price: "900.50", ImageURL: "https://img/1.jpg", Category: json.Number("3"), CategoryName: "Wooden Doors", Description: "Solid teak"},
			{ID: json.Number("2"), Name: "Gloria Flush", Price: "not-a-number", Category: json.Number("4")},
			{ID: json.Number("3"), Name: "Broken", Price: "-10", CategoryName: "Wooden Doors"},
		},
		categories: []catalogapi.Category{
			{ID: json.Number("3"), Name: "Wooden Doors", Slug: "wooden"},
			{ID: json.Number("4"), Name: "Gloria Laminates", Slug: "gloria"},
		},
	}
}

func TestStoreLoadMapsRESTShape(t *testing.T) {
	store, err := NewStore(sampleFetcher(), logger.Nop())
	require.NoError(t, err)
	require.True(t, store.Loading(), "store starts in loading state")

	require.NoError(t, store.Load(context.Background()))
	assert.False(t, store.Loading())
	assert.Equal(t, "", store.Err())

	door, ok := store.GetDoorByID("1")
	require.True(t, ok)
	assert.True(t, door.Price.Equal(decimal.RequireFromString("900.5")))
	assert.Equal(t, "Wooden Doors", door.Category)
	assert.Equal(t, "https://img/1.jpg", door.Image)

	fallback, ok := store.GetDoorByID("2")
	require.True(t, ok)
	assert.True(t, fallback.Price.IsZero(), "unparsable price maps to zero")
	assert.Equal(t, "4", fallback.Category, "category id is used when the name is absent")

	clamped, _ := store.GetDoorByID("3")
	assert.True(t, clamped.Price.IsZero())

	assert.Len(t, store.GetDoorsByCategoryName("Wooden Doors"), 2)
	assert.Empty(t, store.GetDoorsByCategoryName("wooden doors"), "category match is exact")

	cats := store.Categories()
	require.Len(t, cats, 2)
	assert.Equal(t, "3", cats[0].ID)
	assert.Equal(t, "🪵", cats[0].Icon)
	assert.Equal(t, "🎨", cats[1].Icon)
}

func TestStoreLoadFailureKeepsPreviousSnapshot(t *testing.T) {
	fetch := sampleFetcher()
	store, err := NewStore(fetch, nil)
	require.NoError(t, err)
	require.NoError(t, store.Load(context.Background()))

	fetch.catErr = pkgerrors.New(pkgerrors.CodeDependency, "failed to fetch categories: 502")
	require.Error(t, store.Load(context.Background()))

	assert.Equal(t, "failed to fetch categories: 502", store.Err())
	assert.False(t, store.Loading())
	assert.Len(t, store.Doors(), 3)
	assert.Len(t, store.Categories(), 2)
}

func TestStoreStartRunsOnce(t *testing.T) {
	fetch := &stubFetcher{doorsErr: errors.New("dial tcp: connection refused")}
	store, err := NewStore(fetch, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	store.Start(ctx)
	store.Start(ctx)
	require.NoError(t, store.Wait(ctx))

	assert.Equal(t, "dial tcp: connection refused", store.Err())
	assert.Empty(t, store.Doors())
	_, ok := store.GetDoorByID("1")
	assert.False(t, ok)
}

func TestCategoryIcon(t *testing.T) {
	cases := map[string]string{
		"Wooden Doors":  "🪵",
		"PLYWOOD":       "🪵",
		"Laminate":      "🎨",
		"gloria series": "🎨",
		"Primer Coated": "🧪",
		"Steel":         "🚪",
	}
	for name, want := range cases {
		assert.Equal(t, want, CategoryIcon(name), name)
	}
}
