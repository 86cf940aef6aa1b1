package middleware

import (
	"strings"

	"statement-ingest/pkg/auth"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const tenantKey = "tenantID"

// TenantMiddleware resolves the caller's tenant from the bearer token and stores
// it in Locals. With security disabled every request runs as mockTenant.
func TenantMiddleware(jwtManager *auth.JWTManager, enabled bool, mockTenant string, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !enabled {
			c.Locals(tenantKey, mockTenant)
			return c.Next()
		}

		token := c.Get(fiber.HeaderAuthorization)
		if token == "" {
			logger.Warn("Missing authorization token", zap.String("path", c.Path()))
			return Error(c, fiber.StatusUnauthorized, "authorization token required")
		}
		token = strings.TrimPrefix(token, "Bearer ")

		claims, err := jwtManager.ValidateToken(token)
		if err != nil {
			logger.Warn("Invalid token", zap.Error(err))
			return Error(c, fiber.StatusUnauthorized, "invalid or expired token")
		}

		c.Locals(tenantKey, claims.TenantID())
		return c.Next()
	}
}

// TenantID returns the tenant stored by TenantMiddleware, or "" outside it.
func TenantID(c *fiber.Ctx) string {
	tenant, _ := c.Locals(tenantKey).(string)
	return tenant
}
