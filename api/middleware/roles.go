package middleware

import (
	"net/http"

	"github.com/angelmondragon/catalog-backend/api/responses"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
)

// RequireWrite gates mutating catalog endpoints to staff and admin callers.
func RequireWrite(logg *logger.Logger) func(http.Handler) http.Handler {
	return requireCapability(logg, "write access required", enums.Role.CanWrite)
}

// RequireDelete gates destructive endpoints to admin callers.
func RequireDelete(logg *logger.Logger) func(http.Handler) http.Handler {
	return requireCapability(logg, "delete access required", enums.Role.CanDelete)
}

func requireCapability(logg *logger.Logger, message string, allowed func(enums.Role) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, err := enums.ParseRole(RoleFromContext(r.Context()))
			if err != nil || !allowed(role) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, message))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
