package middleware

import (
	"net/http"

	"github.com/swifthaul/swifthaul-backend/api/responses"
	pkgerrors "github.com/swifthaul/swifthaul-backend/pkg/errors"
	"github.com/swifthaul/swifthaul-backend/pkg/logger"
)

// PartnerContext rejects requests whose token carries no partner binding.
func PartnerContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if PartnerIDFromContext(r.Context()) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "partner context missing"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
