package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// المحدد العام: لكل النقاط العادية
func GlobalRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "❌ طلبات كثيرة جداً. حاول لاحقاً.",
			})
		},
	})
}

// محدد مسار الاستيعاب: الأجهزة ترسل كل دقيقة تقريباً فالسقف أعلى
func IngestRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        600,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "❌ معدل إرسال العينات تجاوز الحد. خفف وتيرة الإرسال.",
			})
		},
	})
}

// محدد الإجراءات الجماعية (أشد صرامة)
func BulkActionRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "❌ إجراءات جماعية كثيرة. انتظر دقيقة ثم أعد المحاولة.",
			})
		},
	})
}
