package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/paylinkhq/paylink-backend/api/responses"
	pkgerrors "github.com/paylinkhq/paylink-backend/pkg/errors"
	"github.com/paylinkhq/paylink-backend/pkg/logger"
)

const orgIDHeader = "X-Org-ID"

// OrgContext requires a valid X-Org-ID header and threads the tenant
// identifier through the request context and log fields.
func OrgContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(orgIDHeader)
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "organization context missing"))
				return
			}
			orgID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid organization id"))
				return
			}

			ctx := WithOrgID(r.Context(), orgID.String())
			if logg != nil {
				ctx = logg.WithOrgID(ctx, orgID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
