package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/re-attendance/attendance-backend-go/internal/domain/auth"
	"github.com/re-attendance/attendance-backend-go/internal/handler/http/response"
)

// AuthRequired rejects requests whose bearer token is missing, invalid, or
// not an access token. Refresh tokens only ever enter through the auth
// routes; presenting one here is refused so a leaked refresh cookie cannot
// drive the API directly.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}
			if token == nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			if tokenType, ok := claims["type"].(string); !ok || tokenType != "access" {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
