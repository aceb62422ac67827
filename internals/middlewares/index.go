package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"nuzum_backend/internals/middlewares/logger"
)

// SetupMiddlewares تركيب الوسطيات الأساسية بالترتيب:
// الالتقاط أولاً ثم CORS ثم السجل ثم المحدد العام
func SetupMiddlewares(app *fiber.App) {
	app.Use(RecoveryMiddleware())
	app.Use(CorsMiddleware())
	app.Use(logger.LoggerMiddleware())
	app.Use(GlobalRateLimiter())
}
