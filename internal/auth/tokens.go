package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"running-rooms-backend/config"
	"running-rooms-backend/internal/model"
)

// ErrInvalidToken is returned for tokens with a bad signature, a bad format
// or an expiry in the past.
var ErrInvalidToken = errors.New("invalid token")

const adminRole = "admin"

// UserClaims is the payload of a user session token.
type UserClaims struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// AdminClaims is the payload of an admin token.
type AdminClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 tokens. User and admin tokens use
// separate secrets.
type Tokens struct {
	userSecret  []byte
	adminSecret []byte
	userTTL     time.Duration
	adminTTL    time.Duration
	now         func() time.Time
}

// NewTokens builds a token issuer from the auth configuration.
func NewTokens(cfg config.AuthConfig) *Tokens {
	return &Tokens{
		userSecret:  []byte(cfg.JWTSecret),
		adminSecret: []byte(cfg.AdminSecret),
		userTTL:     time.Duration(cfg.UserTokenTTLMinutes) * time.Minute,
		adminTTL:    time.Duration(cfg.AdminTokenTTLMinutes) * time.Minute,
		now:         time.Now,
	}
}

// IssueUser signs a token identifying the user. With a zero TTL the token
// carries no expiry.
func (t *Tokens) IssueUser(user model.User) (string, error) {
	claims := UserClaims{
		UserID:           user.ID,
		Username:         user.Username,
		RegisteredClaims: t.registered(t.userTTL),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.userSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign user token: %w", err)
	}
	return signed, nil
}

// ParseUser verifies a user token and returns its claims.
func (t *Tokens) ParseUser(raw string) (*UserClaims, error) {
	claims := &UserClaims{}
	if err := t.parse(raw, claims, t.userSecret); err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IssueAdmin signs an admin-scoped token.
func (t *Tokens) IssueAdmin(username string) (string, error) {
	claims := AdminClaims{
		Username:         username,
		Role:             adminRole,
		RegisteredClaims: t.registered(t.adminTTL),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.adminSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign admin token: %w", err)
	}
	return signed, nil
}

// ParseAdmin verifies an admin token and returns its claims.
func (t *Tokens) ParseAdmin(raw string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	if err := t.parse(raw, claims, t.adminSecret); err != nil {
		return nil, err
	}
	if claims.Role != adminRole {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (t *Tokens) registered(ttl time.Duration) jwt.RegisteredClaims {
	now := t.now()
	rc := jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(now)}
	if ttl > 0 {
		rc.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return rc
}

func (t *Tokens) parse(raw string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
