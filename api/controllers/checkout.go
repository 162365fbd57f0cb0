package controllers

import (
	"net/http"

	"github.com/rkdoors/storefront-backend/api/middleware"
	"github.com/rkdoors/storefront-backend/api/responses"
	"github.com/rkdoors/storefront-backend/api/validators"
	"github.com/rkdoors/storefront-backend/internal/checkout"
	"github.com/rkdoors/storefront-backend/internal/orders"
	"github.com/rkdoors/storefront-backend/pkg/enums"
	pkgerrors "github.com/rkdoors/storefront-backend/pkg/errors"
	"github.com/rkdoors/storefront-backend/pkg/logger"
)

type directOrderRequest struct {
	DoorID    string `json:"doorId"`
	Width     string `json:"width"`
	Height    string `json:"height"`
	Thickness string `json:"thickness"`
	orders.Delivery
}

func checkoutUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable")
}

// CheckoutCart places one order per cart line for the signed-in user or, when
// no bearer token was sent, as a guest.
func CheckoutCart(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, checkoutUnavailable())
			return
		}

		var body orders.Delivery
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		result, err := svc.PlaceCart(ctx, middleware.CartSessionFromContext(ctx), middleware.UserIDFromContext(ctx), body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// PlaceDirectOrder orders a single door straight from its detail page.
func PlaceDirectOrder(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, checkoutUnavailable())
			return
		}

		var body directOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		in := checkout.DirectOrder{
			DoorID:   body.DoorID,
			Size:     enums.DoorSize{Width: body.Width, Height: body.Height, Thickness: body.Thickness},
			Delivery: body.Delivery,
		}
		order, err := svc.PlaceDirect(r.Context(), middleware.UserIDFromContext(r.Context()), in)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
