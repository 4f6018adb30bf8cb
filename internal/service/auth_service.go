package service

import (
	"context"
	"errors"
	"fmt"

	"academy-quiz/internal/config"
	"academy-quiz/internal/dto"
	"academy-quiz/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var (
	ErrInvalidJWTToken   = errors.New("invalid jwt token")
	ErrInvalidTokenType  = errors.New("token is not an access token")
	ErrMissingTokenClaim = errors.New("token has no user_id claim")
)

// TokenValidator checks access tokens issued by the academy's auth service.
type TokenValidator interface {
	ValidateAccessToken(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
}

type jwtTokenValidator struct {
	secret []byte
	issuer string
}

// NewTokenValidator validates HS256 tokens signed with cfg.SecretKey. A non-empty
// cfg.Issuer must match the iss claim.
func NewTokenValidator(cfg config.JWTConfig) (TokenValidator, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("jwt.secret_key is required")
	}
	return &jwtTokenValidator{secret: []byte(cfg.SecretKey), issuer: cfg.Issuer}, nil
}

func (v *jwtTokenValidator) ValidateAccessToken(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &dto.AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			logger.Get().Debug("JWT token expired", zap.Error(err))
		} else {
			logger.Get().Warn("JWT validation failed", zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWTToken, err)
	}

	claims, ok := token.Claims.(*dto.AuthClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidJWTToken
	}
	if claims.TokenType != dto.AccessTokenType {
		return nil, ErrInvalidTokenType
	}
	if claims.UserID == "" {
		return nil, ErrMissingTokenClaim
	}
	return claims, nil
}
