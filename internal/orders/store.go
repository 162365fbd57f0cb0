package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rkdoors/storefront-backend/pkg/enums"
)

// ErrNotFound is returned by Store.Patch for an unknown id.
var ErrNotFound = errors.New("order not found")

// Store is the shared order collection. Push assigns the id and order date;
// Patch stamps the delivery date when the status becomes delivered. Delete
// of a missing id succeeds.
type Store interface {
	Push(ctx context.Context, order Order) (Order, error)
	Patch(ctx context.Context, id string, status enums.OrderStatus) (Order, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Order, error)
}

// newOrderID returns a time ordered key.
func newOrderID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func utcNow() time.Time {
	return time.Now().UTC()
}
