package routes

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func BaseRoutes(app *fiber.App) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Nuzum tracking engine is up 🚀")
	})

	app.Get("/panic-test", func(c *fiber.Ctx) error {
		panic("محاكاة panic للاختبار!") // اختبار معالج الالتقاط
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		dbStatus := "Connected"
		serverStatus := "OK"
		httpStatus := fiber.StatusOK

		// الاتصال يصل من DBMiddleware
		db, ok := c.Locals("db").(*gorm.DB)
		if !ok {
			dbStatus = "Database handle missing"
			serverStatus = "DOWN"
			httpStatus = fiber.StatusServiceUnavailable
		} else if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
			dbStatus = "Database connection error"
			serverStatus = "DOWN"
			httpStatus = fiber.StatusServiceUnavailable
		}

		uptime := time.Since(startTime).Seconds()

		return c.Status(httpStatus).JSON(fiber.Map{
			"status":         serverStatus,
			"database":       dbStatus,
			"server_time":    time.Now().Format(time.RFC3339),
			"uptime_seconds": int(uptime),
			"environment":    os.Getenv("RAILWAY_ENVIRONMENT"),
		})
	})
}
