package middleware

import (
	"context"
	"net/http"
	"strings"

	"model_catalog/internal/auth"
	"model_catalog/internal/utils"
)

// ContextKey is the type of request context keys set by middleware
type ContextKey string

// AdminClaimsKey holds the *auth.AdminClaims of an authenticated request
const AdminClaimsKey ContextKey = "adminClaims"

// AdminJWTMiddleware validates admin JWT tokens and enforces that at least
// one claimed role grants one of the required roles
func AdminJWTMiddleware(secret []byte, requiredRoles ...auth.Role) func(http.Handler) http.Handler {
	logger := utils.NewLogger("admin-auth")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, found := strings.CutPrefix(header, "Bearer ")
			if !found || tokenString == "" {
				utils.RespondWithError(w, http.StatusUnauthorized, "Missing authentication token")
				return
			}

			claims, err := auth.ValidateAdminJWT(tokenString, secret)
			if err != nil {
				logger.Debug("Rejected admin token", "path", r.URL.Path, "error", err)
				utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			if len(requiredRoles) > 0 {
				allowed := false
				for _, required := range requiredRoles {
					if claims.HasPermission(required) {
						allowed = true
						break
					}
				}
				if !allowed {
					utils.RespondWithError(w, http.StatusForbidden, "Insufficient permissions")
					return
				}
			}

			ctx := context.WithValue(r.Context(), AdminClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAdminClaims retrieves the admin claims from the request context
func GetAdminClaims(ctx context.Context) (*auth.AdminClaims, bool) {
	claims, ok := ctx.Value(AdminClaimsKey).(*auth.AdminClaims)
	return claims, ok
}
