package estimates

import (
	"context"
	"testing"

	"github.com/rkdoors/storefront-backend/internal/cart"
	pkgerrors "github.com/rkdoors/storefront-backend/pkg/errors"
	"github.com/rkdoors/storefront-backend/pkg/kv"
	"github.com/stretchr/testify/require"
)

type registryCarts struct{ registry *cart.Registry }

func (r registryCarts) Cart(session string) (*cart.Cart, error) {
	if c, ok := r.registry.Lookup(session); ok {
		return c, nil
	}
	return cart.New(), nil
}

func newEstimateService(t *testing.T) (Service, *cart.Registry) {
	t.Helper()
	registry := cart.NewRegistry()
	numberer, err := NewNumberer(kv.NewMemoryStore(), DefaultCounterKey, nil, nil)
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{Carts: registryCarts{registry}, Numberer: numberer})
	require.NoError(t, err)
	return svc, registry
}

func TestGenerateNumbersSequentially(t *testing.T) {
	ctx := context.Background()
	svc, registry := newEstimateService(t)
	line := teakLine(1)
	c := registry.Get("s1")
	c.AddLine(line.Door, line.Width, line.Height, line.Thickness)
	c.AddLine(line.Door, line.Width, line.Height, line.Thickness)

	first, err := svc.Generate(ctx, "s1", "Priya")
	require.NoError(t, err)
	require.Equal(t, "EST-001", first.Estimate.Number)
	require.Equal(t, "1800", first.Estimate.Total.String())
	require.Contains(t, first.HTML, "Priya")

	second, err := svc.Generate(ctx, "s1", "")
	require.NoError(t, err)
	require.Equal(t, "EST-002", second.Estimate.Number)
	require.Equal(t, "Customer", second.Estimate.ClientName)

	require.Len(t, c.Lines(), 1, "generating an estimate leaves the cart intact")
}

func TestGenerateRejectsEmptyCart(t *testing.T) {
	svc, _ := newEstimateService(t)
	_, err := svc.Generate(context.Background(), "empty", "Priya")
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}
