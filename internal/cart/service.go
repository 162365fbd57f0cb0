package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/rkdoors/storefront-backend/internal/catalog"
	"github.com/rkdoors/storefront-backend/pkg/enums"
	pkgerrors "github.com/rkdoors/storefront-backend/pkg/errors"
	"github.com/rkdoors/storefront-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

type doorLookup interface {
	GetDoorByID(id string) (catalog.Door, bool)
}

// Snapshot is the read model of a cart.
type Snapshot struct {
	Session    string          `json:"session"`
	Lines      []Line          `json:"lines"`
	TotalPrice decimal.Decimal `json:"total_price"`
	TotalItems int             `json:"total_items"`
}

// Service validates cart input against the catalog before touching a cart.
type Service interface {
	Add(ctx context.Context, session, doorID string, size enums.DoorSize) (Snapshot, error)
	Remove(ctx context.Context, session, doorID string) (Snapshot, error)
	SetQuantity(ctx context.Context, session, doorID string, quantity int) (Snapshot, error)
	Clear(ctx context.Context, session string) error
	Snapshot(ctx context.Context, session string) (Snapshot, error)
	// Cart returns the session's cart for checkout and estimates. A session
	// without a cart gets an empty one that is not registered.
	Cart(session string) (*Cart, error)
}

// ServiceParams bundles the dependencies of the cart service.
type ServiceParams struct {
	Catalog  doorLookup
	Registry *Registry
	Logger   *logger.Logger
}

type service struct {
	catalog  doorLookup
	registry *Registry
	logg     *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	return &service{catalog: params.Catalog, registry: registry, logg: params.Logger}, nil
}

func sessionKey(session string) (string, error) {
	session = strings.TrimSpace(session)
	if session == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "cart session is required")
	}
	return session, nil
}

// Cart never registers a new cart. Only Add does.
func (s *service) Cart(session string) (*Cart, error) {
	key, err := sessionKey(session)
	if err != nil {
		return nil, err
	}
	if c, ok := s.registry.Lookup(key); ok {
		return c, nil
	}
	return New(), nil
}

func (s *service) Add(ctx context.Context, session, doorID string, size enums.DoorSize) (Snapshot, error) {
	key, err := sessionKey(session)
	if err != nil {
		return Snapshot{}, err
	}
	size = size.Normalize()
	if problems := size.Validate(); len(problems) > 0 {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "select a valid size").WithDetails(problems)
	}
	door, ok := s.catalog.GetDoorByID(strings.TrimSpace(doorID))
	if !ok {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeNotFound, "door not found")
	}

	c := s.registry.Get(key)
	c.AddLine(door, size.Width, size.Height, size.Thickness)
	if s.logg != nil {
		s.logg.Debug(s.logg.WithFields(ctx, map[string]any{
			"door_id":   door.ID,
			"width":     size.Width,
			"height":    size.Height,
			"thickness": size.Thickness,
		}), "cart.line_added")
	}
	return SnapshotOf(session, c), nil
}

func (s *service) Remove(_ context.Context, session, doorID string) (Snapshot, error) {
	c, err := s.Cart(session)
	if err != nil {
		return Snapshot{}, err
	}
	c.RemoveLine(strings.TrimSpace(doorID))
	return SnapshotOf(session, c), nil
}

func (s *service) SetQuantity(_ context.Context, session, doorID string, quantity int) (Snapshot, error) {
	c, err := s.Cart(session)
	if err != nil {
		return Snapshot{}, err
	}
	c.SetQuantity(strings.TrimSpace(doorID), quantity)
	return SnapshotOf(session, c), nil
}

func (s *service) Clear(_ context.Context, session string) error {
	c, err := s.Cart(session)
	if err != nil {
		return err
	}
	c.Clear()
	return nil
}

func (s *service) Snapshot(_ context.Context, session string) (Snapshot, error) {
	c, err := s.Cart(session)
	if err != nil {
		return Snapshot{}, err
	}
	return SnapshotOf(session, c), nil
}

// SnapshotOf derives lines and totals from a single read of the cart.
func SnapshotOf(session string, c *Cart) Snapshot {
	lines := c.Lines()
	total := decimal.Zero
	items := 0
	for _, l := range lines {
		total = total.Add(l.Subtotal())
		items += l.Quantity
	}
	if lines == nil {
		lines = []Line{}
	}
	return Snapshot{Session: session, Lines: lines, TotalPrice: total, TotalItems: items}
}
