package dto

import "github.com/golang-jwt/jwt/v5"

// AccessTokenType is the token_type claim accepted on API routes.
const AccessTokenType = "access"

// AuthClaims defines the custom claims for JWT.
type AuthClaims struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"` // "access" or "refresh"
	jwt.RegisteredClaims
}
