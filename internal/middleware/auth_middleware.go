package middleware

import (
	"errors"
	"strings"

	"academy-quiz/internal/domain"
	"academy-quiz/internal/logger"
	"academy-quiz/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	AuthorizationHeader = "Authorization"
	BearerSchema        = "Bearer "
	UserIDKey           = "userID" // Key for storing UserID in fiber.Ctx locals
	RoleKey             = "role"
)

// Protected is a middleware function that protects routes by requiring a valid access token.
// It stores the caller's user id and role in the request locals.
func Protected(tokens service.TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(AuthorizationHeader)
		if authHeader == "" {
			return unauthorized(c, "MISSING_AUTH_HEADER", "Authorization header is missing")
		}
		if authHeader == strings.TrimSpace(BearerSchema) {
			return unauthorized(c, "EMPTY_TOKEN", "Token is empty")
		}
		if !strings.HasPrefix(authHeader, BearerSchema) {
			return unauthorized(c, "INVALID_AUTH_SCHEME", "Authorization scheme is not Bearer")
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerSchema))
		if tokenString == "" {
			return unauthorized(c, "EMPTY_TOKEN", "Token is empty")
		}

		claims, err := tokens.ValidateAccessToken(c.UserContext(), tokenString)
		if err != nil {
			if errors.Is(err, service.ErrInvalidTokenType) {
				return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
					Code:    "INVALID_TOKEN_TYPE",
					Message: "Invalid token type: expected access token",
					Status:  fiber.StatusForbidden,
				})
			}
			logger.Get().Debug("Rejected bearer token", zap.Error(err), zap.String("path", c.Path()))
			return unauthorized(c, "INVALID_TOKEN", "Token is invalid or expired")
		}

		c.Locals(UserIDKey, claims.UserID)
		c.Locals(RoleKey, domain.ParseRole(claims.Role))
		return c.Next()
	}
}

// RequireRole allows the request through only for callers holding one of roles.
// It must run after Protected.
func RequireRole(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		viewer, ok := ViewerFrom(c)
		if !ok {
			return unauthorized(c, string(domain.CodeUnauthorized), "Authentication required")
		}
		for _, r := range roles {
			if viewer.Role == r {
				return c.Next()
			}
		}
		return domain.NewForbiddenError("insufficient role").WithContext("role", string(viewer.Role))
	}
}

// ViewerFrom returns the authenticated caller stored by Protected.
func ViewerFrom(c *fiber.Ctx) (domain.Viewer, bool) {
	userID, ok := c.Locals(UserIDKey).(string)
	if !ok || userID == "" {
		return domain.Viewer{}, false
	}
	role, ok := c.Locals(RoleKey).(domain.Role)
	if !ok {
		role = domain.RoleLearner
	}
	return domain.Viewer{UserID: userID, Role: role}, true
}

func unauthorized(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Code:    code,
		Message: message,
		Status:  fiber.StatusUnauthorized,
	})
}
