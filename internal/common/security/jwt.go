package security

import (
	"errors"
	"fmt"
	"time"

	"andromeda/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims are the identity facts carried by a session token.
type Claims struct {
	UserID      string
	Email       string
	Role        model.Role
	FirstName   *string
	LastName    *string
	DesiredName *string
	Kind        string
}

// TokenIssuer signs and verifies session tokens. It is constructed once from
// configuration at startup and passed explicitly to whatever needs it; there
// is no ambient signing state. Rotating the secret invalidates every
// outstanding token, which the stateless design accepts.
type TokenIssuer struct {
	auth       *jwtauth.JWTAuth
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenIssuer(secret []byte, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		auth:       jwtauth.New("HS256", secret, nil),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Auth exposes the underlying verifier for the router's jwtauth middleware.
func (i *TokenIssuer) Auth() *jwtauth.JWTAuth {
	return i.auth
}

// IssueAccessToken creates a short-lived access token carrying the user's
// identity, role and display names.
func (i *TokenIssuer) IssueAccessToken(u *model.User) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"user_id": u.ID,
		"email":   u.Email,
		"role":    string(u.Role),
		"kind":    TokenKindAccess,
		"iat":     now.Unix(),
		"exp":     now.Add(i.accessTTL).Unix(),
	}
	if u.FirstName != nil {
		claims["first_name"] = *u.FirstName
	}
	if u.LastName != nil {
		claims["last_name"] = *u.LastName
	}
	if u.DesiredName != nil {
		claims["desired_name"] = *u.DesiredName
	}
	_, tokenString, err := i.auth.Encode(claims)
	return tokenString, err
}

// IssueRefreshToken creates a long-lived refresh token carrying only the
// subject and email. Role claims are deliberately absent; they are reloaded
// from the store when the token is redeemed.
func (i *TokenIssuer) IssueRefreshToken(u *model.User) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"user_id": u.ID,
		"email":   u.Email,
		"kind":    TokenKindRefresh,
		"iat":     now.Unix(),
		"exp":     now.Add(i.refreshTTL).Unix(),
	}
	_, tokenString, err := i.auth.Encode(claims)
	return tokenString, err
}

// VerifyToken checks signature and expiry and that the token is of the
// expected kind. An access-only caller must reject a presented refresh token
// and vice versa.
func (i *TokenIssuer) VerifyToken(tokenString, expectedKind string) (*Claims, error) {
	token, err := jwtauth.VerifyToken(i.auth, tokenString)
	if err != nil {
		if errors.Is(err, jwtauth.ErrExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, err := ClaimsFromMap(token.PrivateClaims())
	if err != nil {
		return nil, ErrTokenInvalid
	}
	if claims.Kind != expectedKind {
		return nil, fmt.Errorf("unexpected token kind %q: %w", claims.Kind, ErrTokenInvalid)
	}
	return claims, nil
}

// ClaimsFromMap rebuilds Claims from a decoded claim map, as produced by both
// VerifyToken and the jwtauth request middleware.
func ClaimsFromMap(m map[string]interface{}) (*Claims, error) {
	userID, ok := m["user_id"].(string)
	if !ok || userID == "" {
		return nil, errors.New("user_id claim is missing or not a string")
	}
	email, ok := m["email"].(string)
	if !ok {
		return nil, errors.New("email claim is missing or not a string")
	}
	kind, ok := m["kind"].(string)
	if !ok {
		return nil, errors.New("kind claim is missing or not a string")
	}

	c := &Claims{UserID: userID, Email: email, Kind: kind}

	if roleStr, ok := m["role"].(string); ok {
		role, valid := model.ParseRole(roleStr)
		if !valid {
			return nil, fmt.Errorf("unknown role claim %q", roleStr)
		}
		c.Role = role
	}
	if v, ok := m["first_name"].(string); ok {
		c.FirstName = &v
	}
	if v, ok := m["last_name"].(string); ok {
		c.LastName = &v
	}
	if v, ok := m["desired_name"].(string); ok {
		c.DesiredName = &v
	}
	return c, nil
}
