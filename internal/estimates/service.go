package estimates

import (
	"context"
	"fmt"
	"time"

	"github.com/rkdoors/storefront-backend/internal/cart"
	pkgerrors "github.com/rkdoors/storefront-backend/pkg/errors"
	"github.com/rkdoors/storefront-backend/pkg/logger"
	"github.com/rkdoors/storefront-backend/pkg/metrics"
)

type cartSource interface {
	Cart(session string) (*cart.Cart, error)
}

type numberSource interface {
	Next(ctx context.Context) string
}

// Generated is an estimate together with its rendered document.
type Generated struct {
	Estimate Estimate `json:"estimate"`
	HTML     string   `json:"-"`
}

type Service interface {
	Generate(ctx context.Context, session, clientName string) (Generated, error)
}

type ServiceParams struct {
	Carts    cartSource
	Numberer numberSource
	Metrics  *metrics.EstimateMetrics
	Logger   *logger.Logger
}

type service struct {
	carts    cartSource
	numberer numberSource
	metrics  *metrics.EstimateMetrics
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Carts == nil {
		return nil, fmt.Errorf("cart source is required")
	}
	if params.Numberer == nil {
		return nil, fmt.Errorf("estimate numberer is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		carts:    params.Carts,
		numberer: params.Numberer,
		metrics:  params.Metrics,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// Generate prices the session cart. The cart is read once so the estimate
// and its totals describe the same lines.
func (s *service) Generate(ctx context.Context, session, clientName string) (Generated, error) {
	c, err := s.carts.Cart(session)
	if err != nil {
		return Generated{}, err
	}
	lines := c.Lines()
	if len(lines) == 0 {
		return Generated{}, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	number := s.numberer.Next(ctx)
	estimate := Build(number, s.now(), lines, clientName)
	markup, err := Render(estimate)
	if err != nil {
		return Generated{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to render estimate")
	}

	s.metrics.IncGenerated()
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"estimate_number": number,
		"items":           len(estimate.Items),
	}), "estimates.generated")
	return Generated{Estimate: estimate, HTML: markup}, nil
}
