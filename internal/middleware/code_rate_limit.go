package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const codeRateLimitPrefix = "rl:code:v1:"

// incrWithWindow increments the counter and starts its window on the first hit.
var incrWithWindow = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// CodeRateLimit caps code requests per mobile number (or client IP when the body
// carries none) within a one-minute window. Without Redis, or when Redis
// fails, requests pass.
func CodeRateLimit(cache *redis.Client, maxPerMin int, logger *slog.Logger) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	window := time.Minute
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}
		var req struct {
			MobileNumber string `json:"mobileNumber"`
		}
		_ = c.BodyParser(&req)
		subject := strings.TrimSpace(req.MobileNumber)
		if subject == "" {
			subject = "ip:" + c.IP()
		}

		count, err := incrWithWindow.Run(c.UserContext(), cache, []string{codeRateLimitPrefix + subject}, window.Milliseconds()).Int64()
		if err != nil {
			if logger != nil {
				logger.Warn("code rate limit unavailable", slog.Any("error", err))
			}
			return c.Next()
		}
		if count > int64(maxPerMin) {
			c.Set(fiber.HeaderRetryAfter, "60")
			return fiber.NewError(http.StatusTooManyRequests, "Too many code requests. Please try again later.")
		}
		return c.Next()
	}
}
