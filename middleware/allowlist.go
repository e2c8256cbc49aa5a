package middleware

import (
	"github.com/gofiber/fiber/v2"

	"verifyproxy/utils"
)

// IPAllowlist admits only the listed client IPs. An empty list admits everyone.
func IPAllowlist(allowed []string) fiber.Handler {
	if len(allowed) == 0 {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	allowedIPs := make(map[string]struct{}, len(allowed))
	for _, ip := range allowed {
		allowedIPs[ip] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		ip := c.IP()
		if _, ok := allowedIPs[ip]; !ok {
			utils.LogEvent("ip_not_allowed", map[string]interface{}{
				"ip":   ip,
				"path": c.Path(),
			})
			return utils.ErrorResponse(c, fiber.StatusForbidden, "Forbidden")
		}
		return c.Next()
	}
}
