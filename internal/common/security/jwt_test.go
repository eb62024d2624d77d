package security

import (
	"testing"
	"time"

	"andromeda/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *model.User {
	first := "Dana"
	desired := "Ms. D"
	return &model.User{
		ID:          "user-1",
		Email:       "dana@example.org",
		Username:    "dana",
		FirstName:   &first,
		DesiredName: &desired,
		Role:        model.RoleTeacher,
	}
}

func TestIssueAndVerifyAccessToken(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer([]byte("test-secret"), 30*time.Minute, 7*24*time.Hour)

	tokenString, err := issuer.IssueAccessToken(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := issuer.VerifyToken(tokenString, TokenKindAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "dana@example.org", claims.Email)
	assert.Equal(t, model.RoleTeacher, claims.Role)
	assert.Equal(t, TokenKindAccess, claims.Kind)
	require.NotNil(t, claims.DesiredName)
	assert.Equal(t, "Ms. D", *claims.DesiredName)
}

func TestRefreshTokenCarriesNoRole(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer([]byte("test-secret"), 30*time.Minute, 7*24*time.Hour)

	tokenString, err := issuer.IssueRefreshToken(testUser())
	require.NoError(t, err)

	claims, err := issuer.VerifyToken(tokenString, TokenKindRefresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, TokenKindRefresh, claims.Kind)
	assert.Empty(t, claims.Role)
}

func TestVerifyTokenKindMismatch(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer([]byte("test-secret"), 30*time.Minute, 7*24*time.Hour)

	refresh, err := issuer.IssueRefreshToken(testUser())
	require.NoError(t, err)
	access, err := issuer.IssueAccessToken(testUser())
	require.NoError(t, err)

	_, err = issuer.VerifyToken(refresh, TokenKindAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = issuer.VerifyToken(access, TokenKindRefresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyTokenExpired(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer([]byte("test-secret"), -1*time.Minute, -1*time.Minute)

	tokenString, err := issuer.IssueAccessToken(testUser())
	require.NoError(t, err)

	_, err = issuer.VerifyToken(tokenString, TokenKindAccess)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer([]byte("test-secret"), 30*time.Minute, 7*24*time.Hour)
	other := NewTokenIssuer([]byte("other-secret"), 30*time.Minute, 7*24*time.Hour)

	tokenString, err := issuer.IssueAccessToken(testUser())
	require.NoError(t, err)

	_, err = other.VerifyToken(tokenString, TokenKindAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyTokenGarbage(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer([]byte("test-secret"), 30*time.Minute, 7*24*time.Hour)
	_, err := issuer.VerifyToken("not.a.token", TokenKindAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestClaimsFromMap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		claims  map[string]interface{}
		wantErr bool
	}{
		{
			name: "complete access claims",
			claims: map[string]interface{}{
				"user_id": "u1", "email": "a@b.c", "role": "teacher", "kind": "access",
			},
		},
		{
			name: "refresh claims without role",
			claims: map[string]interface{}{
				"user_id": "u1", "email": "a@b.c", "kind": "refresh",
			},
		},
		{
			name:    "missing user_id",
			claims:  map[string]interface{}{"email": "a@b.c", "kind": "access"},
			wantErr: true,
		},
		{
			name:    "missing kind",
			claims:  map[string]interface{}{"user_id": "u1", "email": "a@b.c"},
			wantErr: true,
		},
		{
			name: "unknown role",
			claims: map[string]interface{}{
				"user_id": "u1", "email": "a@b.c", "role": "principal", "kind": "access",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			claims, err := ClaimsFromMap(tt.claims)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "u1", claims.UserID)
		})
	}
}
