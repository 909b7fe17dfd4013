package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"akreditasi_backend/internals/configs"
	helper "akreditasi_backend/internals/helpers"
)

// Global limiter per IP; batas dari RATE_LIMIT_MAX (per menit).
func GlobalRateLimiter() fiber.Handler {
	return newLimiter(configs.RateLimitMax, time.Minute, "Terlalu banyak permintaan. Silakan coba lagi nanti.")
}

// Limiter lebih ketat untuk operasi tulis massal (bulk/sync).
func BulkWriteRateLimiter() fiber.Handler {
	n := configs.RateLimitMax / 5
	if n < 5 {
		n = 5
	}
	return newLimiter(n, time.Minute, "Terlalu banyak operasi tulis massal. Tunggu sebentar.")
}

func newLimiter(n int, exp time.Duration, msg string) fiber.Handler {
	if n <= 0 {
		n = 100
	}
	return limiter.New(limiter.Config{
		Max:        n,
		Expiration: exp,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return helper.JsonError(c, fiber.StatusTooManyRequests, msg)
		},
	})
}
