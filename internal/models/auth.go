package models

import "github.com/golang-jwt/jwt/v5"

// TokenScope limits what a bearer token may do.
type TokenScope string

const (
	// ScopeWidget tokens are embedded in home-screen widgets and may only read.
	ScopeWidget TokenScope = "widget"
	// ScopeApp tokens belong to the host app and may write shared storage.
	ScopeApp TokenScope = "app"
)

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID string     `json:"user_id"`
	Scope  TokenScope `json:"scope"`
	jwt.RegisteredClaims
}

// CanWrite reports whether the token may mutate the user's data.
func (c *JWTClaims) CanWrite() bool {
	return c != nil && c.Scope == ScopeApp
}
