package middleware

import (
	"errors"
	"strings"

	"roomhub/internal/config"
	"roomhub/internal/core/domain"
	"roomhub/internal/pkg/jwt"
	"roomhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PrincipalKey is the fiber locals key carrying the authenticated
// caller.
const PrincipalKey = "principal"

// Principal extracts the authenticated caller set by AuthMiddleware
func Principal(c *fiber.Ctx) (domain.Principal, bool) {
	p, ok := c.Locals(PrincipalKey).(domain.Principal)
	return p, ok
}

func extractToken(c *fiber.Ctx) string {
	if token := c.Cookies("access_token"); token != "" {
		return token
	}
	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// AuthMiddleware creates authentication middleware. It validates the
// access token and stores the caller as a domain.Principal; branch
// scoping downstream works off that, never off request parameters.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := extractToken(c)
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		c.Locals(PrincipalKey, domain.Principal{
			UserID:   claims.UserID,
			Role:     domain.Role(claims.Role),
			BranchID: claims.BranchID,
		})

		return c.Next()
	}
}

// AdminOnly middleware allows only ADMIN role
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := Principal(c)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		if p.Role != domain.RoleAdmin {
			return response.Forbidden(c, "Admin role required")
		}
		return c.Next()
	}
}
