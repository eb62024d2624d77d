package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"andromeda/internal/common/security"
	"andromeda/internal/domain/model"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(issuer *security.TokenIssuer, allowed ...model.Role) http.Handler {
	r := chi.NewRouter()
	r.Use(jwtauth.Verifier(issuer.Auth()))
	r.Use(Authenticator)
	if len(allowed) > 0 {
		r.Use(RequireRole(allowed...))
	}
	r.Get("/protected", func(w http.ResponseWriter, r *http.Request) {
		userID, _ := GetUserIDFromContext(r.Context())
		w.Write([]byte(userID))
	})
	return r
}

func doRequest(t *testing.T, handler http.Handler, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func userWithRole(role model.Role) *model.User {
	return &model.User{
		ID:       "user-1",
		Email:    "dana@example.org",
		Username: "dana",
		Role:     role,
	}
}

func TestAuthenticatorAcceptsAccessToken(t *testing.T) {
	t.Parallel()
	issuer := security.NewTokenIssuer([]byte("test-secret"), 30*time.Minute, 7*24*time.Hour)
	router := newTestRouter(issuer)

	token, err := issuer.IssueAccessToken(userWithRole(model.RoleTeacher))
	require.NoError(t, err)

	rec := doRequest(t, router, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())
}

func TestAuthenticatorRequiresToken(t *testing.T) {
	t.Parallel()
	issuer := security.NewTokenIssuer([]byte("test-secret"), 30*time.Minute, 7*24*time.Hour)
	router := newTestRouter(issuer)

	rec := doRequest(t, router, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticatorRejectsGarbageToken(t *testing.T) {
	t.Parallel()
	issuer := security.NewTokenIssuer([]byte("test-secret"), 30*time.Minute, 7*24*time.Hour)
	router := newTestRouter(issuer)

	rec := doRequest(t, router, "not.a.token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticatorRejectsExpiredToken(t *testing.T) {
	t.Parallel()
	issuer := security.NewTokenIssuer([]byte("test-secret"), -time.Minute, 7*24*time.Hour)
	router := newTestRouter(issuer)

	token, err := issuer.IssueAccessToken(userWithRole(model.RoleTeacher))
	require.NoError(t, err)

	rec := doRequest(t, router, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "expired")
}

func TestAuthenticatorRejectsRefreshToken(t *testing.T) {
	t.Parallel()
	issuer := security.NewTokenIssuer([]byte("test-secret"), 30*time.Minute, 7*24*time.Hour)
	router := newTestRouter(issuer)

	refresh, err := issuer.IssueRefreshToken(userWithRole(model.RoleTeacher))
	require.NoError(t, err)

	rec := doRequest(t, router, refresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	t.Parallel()
	issuer := security.NewTokenIssuer([]byte("test-secret"), 30*time.Minute, 7*24*time.Hour)
	router := newTestRouter(issuer, model.RoleAdmin, model.RoleSuperAdmin)

	tests := []struct {
		role model.Role
		want int
	}{
		{model.RoleAdmin, http.StatusOK},
		{model.RoleSuperAdmin, http.StatusOK},
		{model.RoleSuperuser, http.StatusOK}, // bypasses every check
		{model.RoleTeacher, http.StatusForbidden},
		{model.RoleParaeducator, http.StatusForbidden},
		{model.RolePending, http.StatusForbidden},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.role), func(t *testing.T) {
			t.Parallel()
			token, err := issuer.IssueAccessToken(userWithRole(tt.role))
			require.NoError(t, err)

			rec := doRequest(t, router, token)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
