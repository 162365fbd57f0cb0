package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rkdoors/storefront-backend/api/middleware"
	"github.com/rkdoors/storefront-backend/api/responses"
	"github.com/rkdoors/storefront-backend/internal/orders"
	"github.com/rkdoors/storefront-backend/pkg/enums"
	pkgerrors "github.com/rkdoors/storefront-backend/pkg/errors"
	"github.com/rkdoors/storefront-backend/pkg/logger"
)

// OrderBook is the order surface the HTTP layer needs; *orders.Manager
// satisfies it.
type OrderBook interface {
	GetUserOrders(userID string) []orders.Order
	GetAllOrders() []orders.Order
	GetOrder(id string) (orders.Order, bool)
	Stats() orders.Stats
	Status() orders.MirrorStatus
	UpdateOrderStatus(ctx context.Context, id string, status enums.OrderStatus) (orders.Order, error)
	CancelOrder(ctx context.Context, id string) error
	Resync(ctx context.Context) error
}

type orderListResponse struct {
	Orders []orders.Order      `json:"orders"`
	Count  int                 `json:"count"`
	Mirror orders.MirrorStatus `json:"mirror"`
}

func ordersUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "orders unavailable")
}

func orderIDParam(r *http.Request) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	return id, nil
}

// ownedOrder resolves the order for the signed-in user. Orders owned by
// someone else are reported as missing.
func ownedOrder(book OrderBook, r *http.Request) (orders.Order, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		return orders.Order{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required")
	}
	id, err := orderIDParam(r)
	if err != nil {
		return orders.Order{}, err
	}
	order, ok := book.GetOrder(id)
	if !ok || order.UserID != userID {
		return orders.Order{}, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

// MyOrders lists the signed-in user's orders, newest first.
func MyOrders(book OrderBook, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if book == nil {
			responses.WriteError(r.Context(), logg, w, ordersUnavailable())
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required"))
			return
		}

		list := book.GetUserOrders(userID)
		responses.WriteSuccess(w, orderListResponse{Orders: list, Count: len(list), Mirror: book.Status()})
	}
}

func MyOrderDetail(book OrderBook, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if book == nil {
			responses.WriteError(r.Context(), logg, w, ordersUnavailable())
			return
		}

		order, err := ownedOrder(book, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// DeleteMyOrder removes the record of one of the user's own orders.
func DeleteMyOrder(book OrderBook, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if book == nil {
			responses.WriteError(r.Context(), logg, w, ordersUnavailable())
			return
		}

		order, err := ownedOrder(book, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := book.CancelOrder(r.Context(), order.ID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// CancelMyOrder marks one of the user's own orders cancelled. The record is
// kept. Only orders still waiting for confirmation can be cancelled.
func CancelMyOrder(book OrderBook, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if book == nil {
			responses.WriteError(r.Context(), logg, w, ordersUnavailable())
			return
		}

		order, err := ownedOrder(book, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !orders.CanTransition(order.Status, enums.OrderStatusCancelled) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be cancelled").
				WithDetails(map[string]string{"status": string(order.Status)}))
			return
		}
		updated, err := book.UpdateOrderStatus(r.Context(), order.ID, enums.OrderStatusCancelled)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}
