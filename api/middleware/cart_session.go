package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rkdoors/storefront-backend/api/responses"
	"github.com/rkdoors/storefront-backend/api/validators"
	pkgerrors "github.com/rkdoors/storefront-backend/pkg/errors"
	"github.com/rkdoors/storefront-backend/pkg/logger"
)

// CartSessionHeader carries the opaque key of a guest cart.
const CartSessionHeader = "X-Cart-Session"

const (
	maxCartSessionLen = 128
	userCartPrefix    = "user:"
)

// CartSession resolves the cart a request operates on. A signed-in user always
// gets their own cart and the header is ignored. Guests use the header, or a
// fresh key is issued and echoed back so the client can reuse it. Guest keys
// may not claim the user namespace.
func CartSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var key string
			if userID := UserIDFromContext(r.Context()); userID != "" {
				key = userCartPrefix + userID
			} else {
				key = validators.SanitizeString(r.Header.Get(CartSessionHeader), maxCartSessionLen)
				if strings.HasPrefix(key, userCartPrefix) {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart session key is reserved").
						WithDetails(map[string]string{"header": CartSessionHeader}))
					return
				}
				if key == "" {
					key = uuid.NewString()
				}
			}
			w.Header().Set(CartSessionHeader, key)

			ctx := WithCartSession(r.Context(), key)
			if logg != nil {
				ctx = logg.WithCartSession(ctx, key)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
