package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rkdoors/storefront-backend/api/middleware"
	"github.com/rkdoors/storefront-backend/api/responses"
	"github.com/rkdoors/storefront-backend/api/validators"
	"github.com/rkdoors/storefront-backend/internal/cart"
	"github.com/rkdoors/storefront-backend/pkg/enums"
	pkgerrors "github.com/rkdoors/storefront-backend/pkg/errors"
	"github.com/rkdoors/storefront-backend/pkg/logger"
)

type addLineRequest struct {
	DoorID    string `json:"doorId" validate:"required,notblank"`
	Width     string `json:"width"`
	Height    string `json:"height"`
	Thickness string `json:"thickness"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func cartUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable")
}

// CartSnapshot returns the lines and totals of the request's cart.
func CartSnapshot(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, cartUnavailable())
			return
		}

		snapshot, err := svc.Snapshot(r.Context(), middleware.CartSessionFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

// CartAddLine adds one door in the selected size, merging into an existing
// line with the same door and size.
func CartAddLine(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, cartUnavailable())
			return
		}

		var body addLineRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		size := enums.DoorSize{Width: body.Width, Height: body.Height, Thickness: body.Thickness}
		snapshot, err := svc.Add(r.Context(), middleware.CartSessionFromContext(r.Context()), body.DoorID, size)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

// CartSetQuantity sets the quantity of the first line for the door. Values
// below one remove the line.
func CartSetQuantity(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, cartUnavailable())
			return
		}

		doorID := strings.TrimSpace(chi.URLParam(r, "doorId"))
		if doorID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "door id is required"))
			return
		}

		var body setQuantityRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.SetQuantity(r.Context(), middleware.CartSessionFromContext(r.Context()), doorID, body.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

// CartRemoveLine drops every line for the door regardless of size.
func CartRemoveLine(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, cartUnavailable())
			return
		}

		doorID := strings.TrimSpace(chi.URLParam(r, "doorId"))
		if doorID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "door id is required"))
			return
		}

		snapshot, err := svc.Remove(r.Context(), middleware.CartSessionFromContext(r.Context()), doorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

func CartClear(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, cartUnavailable())
			return
		}

		if err := svc.Clear(r.Context(), middleware.CartSessionFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
