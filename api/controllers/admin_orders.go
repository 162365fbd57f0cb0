package controllers

import (
	"net/http"

	"github.com/rkdoors/storefront-backend/api/responses"
	"github.com/rkdoors/storefront-backend/api/validators"
	"github.com/rkdoors/storefront-backend/internal/orders"
	"github.com/rkdoors/storefront-backend/pkg/enums"
	pkgerrors "github.com/rkdoors/storefront-backend/pkg/errors"
	"github.com/rkdoors/storefront-backend/pkg/logger"
)

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,order_status"`
}

type transitionsResponse struct {
	OrderID string            `json:"orderId"`
	Status  enums.OrderStatus `json:"status"`
	Actions []orders.Action   `json:"actions"`
}

// AdminListOrders returns every order, optionally narrowed by ?status=,
// together with the mirror state the list was read from.
func AdminListOrders(book OrderBook, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if book == nil {
			responses.WriteError(r.Context(), logg, w, ordersUnavailable())
			return
		}

		status, err := validators.ParseQueryOrderStatus(r, "status")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list := book.GetAllOrders()
		if status != nil {
			list = orders.FilterByStatus(list, *status)
		}
		responses.WriteSuccess(w, orderListResponse{Orders: list, Count: len(list), Mirror: book.Status()})
	}
}

func AdminOrderStats(book OrderBook, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if book == nil {
			responses.WriteError(r.Context(), logg, w, ordersUnavailable())
			return
		}
		responses.WriteSuccess(w, book.Stats())
	}
}

// AdminUpdateOrderStatus writes the requested status as is. The offered
// transitions only drive what the dashboard shows.
func AdminUpdateOrderStatus(book OrderBook, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if book == nil {
			responses.WriteError(r.Context(), logg, w, ordersUnavailable())
			return
		}

		id, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseOrderStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown order status"))
			return
		}

		order, err := book.UpdateOrderStatus(r.Context(), id, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func AdminOrderTransitions(book OrderBook, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if book == nil {
			responses.WriteError(r.Context(), logg, w, ordersUnavailable())
			return
		}

		id, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, ok := book.GetOrder(id)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "order not found"))
			return
		}
		responses.WriteSuccess(w, transitionsResponse{
			OrderID: order.ID,
			Status:  order.Status,
			Actions: orders.AllowedTransitions(order.Status),
		})
	}
}

// AdminDeleteOrder hard deletes the order record.
func AdminDeleteOrder(book OrderBook, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if book == nil {
			responses.WriteError(r.Context(), logg, w, ordersUnavailable())
			return
		}

		id, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := book.CancelOrder(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// AdminResyncOrders reloads the mirror and reports its new state.
func AdminResyncOrders(book OrderBook, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if book == nil {
			responses.WriteError(r.Context(), logg, w, ordersUnavailable())
			return
		}

		if err := book.Resync(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, book.Status())
	}
}
