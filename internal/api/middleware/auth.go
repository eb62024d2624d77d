package middleware

import (
	"context"
	"errors"
	"net/http"

	"andromeda/internal/common"
	"andromeda/internal/common/security"
	"andromeda/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const (
	UserIDCtxKey    contextKey = "userID"
	UserEmailCtxKey contextKey = "userEmail"
	UserRoleCtxKey  contextKey = "userRole"
)

// Authenticator requires a valid access token on the request. The jwtauth
// Verifier runs upstream and parks the token and claim map in the request
// context; this middleware turns them into typed identity values. Refresh
// tokens are rejected here, they are only good for the refresh endpoint.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claimMap, err := jwtauth.FromContext(r.Context())
		if err != nil {
			if errors.Is(err, jwtauth.ErrExpired) {
				common.RespondWithError(w, http.StatusUnauthorized, "Token has expired")
			} else if errors.Is(err, jwtauth.ErrNoTokenFound) || token == nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
			} else {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
			}
			return
		}
		if token == nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
			return
		}

		claims, err := security.ClaimsFromMap(claimMap)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims")
			return
		}
		if claims.Kind != security.TokenKindAccess {
			common.RespondWithError(w, http.StatusUnauthorized, "An access token is required")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDCtxKey, claims.UserID)
		ctx = context.WithValue(ctx, UserEmailCtxKey, claims.Email)
		ctx = context.WithValue(ctx, UserRoleCtxKey, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole allows only the named roles through. The superuser role passes
// every check.
func RequireRole(allowed ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := r.Context().Value(UserRoleCtxKey).(model.Role)
			if !ok {
				common.RespondWithError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}
			if role == model.RoleSuperuser {
				next.ServeHTTP(w, r)
				return
			}
			for _, a := range allowed {
				if role == a {
					next.ServeHTTP(w, r)
					return
				}
			}
			common.RespondWithError(w, http.StatusForbidden, "Insufficient permissions")
		})
	}
}

func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(string)
	return userID, ok
}

func GetUserEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(UserEmailCtxKey).(string)
	return email, ok
}

func GetUserRoleFromContext(ctx context.Context) (model.Role, bool) {
	role, ok := ctx.Value(UserRoleCtxKey).(model.Role)
	return role, ok
}
