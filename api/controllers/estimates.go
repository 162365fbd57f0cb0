package controllers

import (
	"net/http"
	"strings"

	"github.com/rkdoors/storefront-backend/api/middleware"
	"github.com/rkdoors/storefront-backend/api/responses"
	"github.com/rkdoors/storefront-backend/api/validators"
	"github.com/rkdoors/storefront-backend/internal/estimates"
	pkgerrors "github.com/rkdoors/storefront-backend/pkg/errors"
	"github.com/rkdoors/storefront-backend/pkg/logger"
)

type estimateRequest struct {
	ClientName string `json:"clientName" validate:"omitempty,max=120"`
}

// GenerateEstimate prices the request's cart under a new estimate number.
// Clients asking for text/html get the printable document, everyone else the
// JSON estimate.
func GenerateEstimate(svc estimates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "estimate service unavailable"))
			return
		}

		var body estimateRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		generated, err := svc.Generate(r.Context(), middleware.CartSessionFromContext(r.Context()), body.ClientName)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if strings.Contains(r.Header.Get("Accept"), "text/html") {
			responses.WriteHTML(w, http.StatusCreated, generated.HTML)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, generated)
	}
}
