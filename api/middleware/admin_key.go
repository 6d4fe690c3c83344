package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/oneroomhq/oneroom-backend/api/responses"
	pkgerrors "github.com/oneroomhq/oneroom-backend/pkg/errors"
	"github.com/oneroomhq/oneroom-backend/pkg/logger"
)

const adminKeyHeader = "X-Admin-Key"

// AdminKey guards the admin endpoints with a static shared key. Requests
// without a matching key are rejected before any handler runs.
func AdminKey(key string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get(adminKeyHeader)
			if key == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid admin key"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
