package middleware

import (
	"github.com/gofiber/fiber/v2"

	"verifyproxy/utils"
)

const (
	HeaderTimestamp = "X-Timestamp"
	HeaderSignature = "X-Signature"
)

// Authenticate checks the request signature over the raw body. Every failure is
// charged to the client IP and may trigger a ban.
func Authenticate(verifier *utils.SignatureVerifier, rl *RateLimiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ok, reason := verifier.Verify(c.Get(HeaderTimestamp), c.BodyRaw(), c.Get(HeaderSignature))
		if ok {
			return c.Next()
		}

		ip := c.IP()
		banned := rl.RecordAuthFailure(ip)
		utils.LogEvent("auth_failed", map[string]interface{}{
			"ip":     ip,
			"reason": reason,
		})
		if banned {
			utils.LogEvent("ip_banned", map[string]interface{}{
				"ip": ip,
			})
		}

		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized: "+reason)
	}
}
