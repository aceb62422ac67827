package middlewares

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"nuzum_backend/internals/configs"
)

// APIKeyMiddleware حارس مسار المجمّع: يطابق X-API-Key مع مفتاح الخدمة.
// مفتاح غير مضبوط في البيئة يعني رفض كل الطلبات لا فتحها.
func APIKeyMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		expected := configs.GetEnv("LOCATION_API_KEY")
		provided := c.Get("X-API-Key")
		if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"code":    fiber.StatusUnauthorized,
				"status":  "error",
				"message": "مفتاح الخدمة مفقود أو غير صحيح",
			})
		}
		return c.Next()
	}
}
