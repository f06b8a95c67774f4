package middleware

import (
	"fmt"
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/re-attendance/attendance-backend-go/internal/domain/user"
	"github.com/re-attendance/attendance-backend-go/internal/handler/http/response"
)

// RequireRoles allows only the named roles through.
func RequireRoles(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Forbidden(w, "Insufficient permissions")
				return
			}

			roleStr, ok := claims["role"].(string)
			if !ok {
				response.Forbidden(w, "Insufficient permissions")
				return
			}

			role := user.Role(roleStr)
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Forbidden(w, fmt.Sprintf("Insufficient permissions for role '%s'", role))
		})
	}
}

// SupervisorOrAbove allows supervisor, management, and admin.
func SupervisorOrAbove(next http.Handler) http.Handler {
	return RequireRoles(user.RoleSupervisor, user.RoleManagement, user.RoleAdmin)(next)
}

// ManagementOrAdmin allows management and admin.
func ManagementOrAdmin(next http.Handler) http.Handler {
	return RequireRoles(user.RoleManagement, user.RoleAdmin)(next)
}
