package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/rkdoors/storefront-backend/internal/cart"
	"github.com/rkdoors/storefront-backend/internal/catalog"
	"github.com/rkdoors/storefront-backend/internal/orders"
	"github.com/rkdoors/storefront-backend/pkg/enums"
	pkgerrors "github.com/rkdoors/storefront-backend/pkg/errors"
	"github.com/rkdoors/storefront-backend/pkg/logger"
)

type orderPlacer interface {
	AddOrder(ctx context.Context, in orders.NewOrder) (orders.Order, error)
}

type cartSource interface {
	Cart(session string) (*cart.Cart, error)
}

type doorLookup interface {
	GetDoorByID(id string) (catalog.Door, bool)
}

// DirectOrder is a single door ordered from its detail page without going
// through the cart.
type DirectOrder struct {
	DoorID   string
	Size     enums.DoorSize
	Delivery orders.Delivery
}

// Result lists the orders created by one checkout, in cart order.
type Result struct {
	Orders []orders.Order `json:"orders"`
	Count  int            `json:"count"`
}

// Service turns a cart or a single door into orders. An empty userID places
// guest orders.
type Service interface {
	PlaceCart(ctx context.Context, session, userID string, delivery orders.Delivery) (Result, error)
	PlaceDirect(ctx context.Context, userID string, in DirectOrder) (orders.Order, error)
}

type ServiceParams struct {
	Orders  orderPlacer
	Carts   cartSource
	Catalog doorLookup
	Logger  *logger.Logger
}

type service struct {
	orders  orderPlacer
	carts   cartSource
	catalog doorLookup
	logg    *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("order placer is required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart source is required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{orders: params.Orders, carts: params.Carts, catalog: params.Catalog, logg: logg}, nil
}

// PlaceCart places one order per cart line. Quantity is not carried onto the
// order. The first failure stops the run and leaves the cart untouched; the
// orders placed before it stay placed.
func (s *service) PlaceCart(ctx context.Context, session, userID string, delivery orders.Delivery) (Result, error) {
	if missing := delivery.Missing(); len(missing) > 0 {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "please fill in all delivery details").WithDetails(missing)
	}
	c, err := s.carts.Cart(session)
	if err != nil {
		return Result{}, err
	}
	lines := c.Lines()
	if len(lines) == 0 {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"cart_session": session, "user_id": userID})
	placed := make([]orders.Order, 0, len(lines))
	for i, line := range lines {
		order, err := s.orders.AddOrder(ctx, orders.NewOrder{
			UserID:       userID,
			DoorID:       line.Door.ID,
			DoorName:     line.Door.Name,
			DoorImage:    line.Door.Image,
			DoorCategory: line.Door.Category,
			Price:        line.Door.Price,
			Width:        line.Width,
			Height:       line.Height,
			Thickness:    line.Thickness,
			Delivery:     delivery,
		})
		if err != nil {
			s.logg.Error(s.logg.WithField(ctx, "placed", len(placed)), "checkout.partial_failure", err)
			return Result{Orders: placed, Count: len(placed)}, partialFailure(err, i, len(placed))
		}
		placed = append(placed, order)
	}

	c.Clear()
	s.logg.Info(s.logg.WithField(ctx, "orders", len(placed)), "checkout.completed")
	return Result{Orders: placed, Count: len(placed)}, nil
}

func (s *service) PlaceDirect(ctx context.Context, userID string, in DirectOrder) (orders.Order, error) {
	problems := in.Delivery.Missing()
	for field, problem := range in.Size.Validate() {
		problems[field] = problem
	}
	doorID := strings.TrimSpace(in.DoorID)
	if doorID == "" {
		problems["doorId"] = "required"
	}
	if len(problems) > 0 {
		return orders.Order{}, pkgerrors.New(pkgerrors.CodeValidation, "please select a size and fill in all delivery details").WithDetails(problems)
	}

	door, ok := s.catalog.GetDoorByID(doorID)
	if !ok {
		return orders.Order{}, pkgerrors.New(pkgerrors.CodeNotFound, "door not found")
	}
	size := in.Size.Normalize()
	return s.orders.AddOrder(ctx, orders.NewOrder{
		UserID:       userID,
		DoorID:       door.ID,
		DoorName:     door.Name,
		DoorImage:    door.Image,
		DoorCategory: door.Category,
		Price:        door.Price,
		Width:        size.Width,
		Height:       size.Height,
		Thickness:    size.Thickness,
		Delivery:     in.Delivery,
	})
}

// partialFailure keeps the code of the failed write and reports progress.
func partialFailure(err error, line, placed int) error {
	code := pkgerrors.CodeInternal
	message := "checkout failed"
	if typed := pkgerrors.As(err); typed != nil {
		code = typed.Code()
		if m := typed.Message(); m != "" {
			message = m
		}
	}
	return pkgerrors.Wrap(code, err, message).WithDetails(map[string]any{
		"placed":     placed,
		"failedLine": line,
	})
}
