package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/rkdoors/storefront-backend/pkg/catalogapi"
	pkgerrors "github.com/rkdoors/storefront-backend/pkg/errors"
	"github.com/rkdoors/storefront-backend/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const defaultLoadError = "Failed to load data"

type fetcher interface {
	FetchDoors(ctx context.Context) ([]catalogapi.Door, error)
	FetchCategories(ctx context.Context) ([]catalogapi.Category, error)
}

// Store holds the read-only catalog snapshot. It is filled once per process;
// a failed load keeps whatever the store held before and is not retried.
type Store struct {
	client fetcher
	logg   *logger.Logger

	mu         sync.RWMutex
	doors      []Door
	categories []Category
	loading    bool
	errMsg     string

	startOnce sync.Once
	done      chan struct{}
}

func NewStore(client fetcher, logg *logger.Logger) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("catalog client is required")
	}
	return &Store{
		client:  client,
		logg:    logg,
		loading: true,
		done:    make(chan struct{}),
	}, nil
}

// Start runs the one-shot load in the background. Calling it again is a no-op.
func (s *Store) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		go func() {
			defer close(s.done)
			_ = s.Load(ctx)
		}()
	})
}

// Wait blocks until a load started by Start has finished or ctx ends.
func (s *Store) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Load fetches doors and categories concurrently and swaps them in together.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()

	var (
		apiDoors      []catalogapi.Door
		apiCategories []catalogapi.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		apiDoors, err = s.client.FetchDoors(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		apiCategories, err = s.client.FetchCategories(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		msg := loadErrorMessage(err)
		s.mu.Lock()
		s.errMsg = msg
		s.loading = false
		s.mu.Unlock()
		if s.logg != nil {
			s.logg.Error(s.logg.WithField(ctx, "reason", msg), "catalog.load_failed", err)
		}
		return err
	}

	doors := make([]Door, 0, len(apiDoors))
	for _, d := range apiDoors {
		door, clamped := mapDoor(d)
		if clamped && s.logg != nil {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"door_id": door.ID, "price": d.Price}), "catalog.negative_price_clamped")
		}
		doors = append(doors, door)
	}
	categories := make([]Category, 0, len(apiCategories))
	for _, c := range apiCategories {
		categories = append(categories, mapCategory(c))
	}

	s.mu.Lock()
	s.doors = doors
	s.categories = categories
	s.loading = false
	s.mu.Unlock()

	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{"doors": len(doors), "categories": len(categories)}), "catalog.loaded")
	}
	return nil
}

func loadErrorMessage(err error) string {
	if typed := pkgerrors.As(err); typed != nil && typed.Message() != "" {
		return typed.Message()
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return defaultLoadError
}

// Loading reports whether the initial fetch is still in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the last load failure, or "" when the last load succeeded.
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

func (s *Store) Doors() []Door {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Door(nil), s.doors...)
}

func (s *Store) Categories() []Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Category(nil), s.categories...)
}

func (s *Store) GetDoorByID(id string) (Door, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.doors {
		if d.ID == id {
			return d, true
		}
	}
	return Door{}, false
}

// GetDoorsByCategoryName matches the category name exactly.
func (s *Store) GetDoorsByCategoryName(name string) []Door {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Door{}
	for _, d := range s.doors {
		if d.Category == name {
			out = append(out, d)
		}
	}
	return out
}
