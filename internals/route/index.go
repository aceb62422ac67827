// file: internals/route/index.go
package routes

import (
	"log"
	"time"

	"nuzum_backend/internals/configs"
	trackingRoute "nuzum_backend/internals/features/tracking/route"
	"nuzum_backend/internals/middlewares"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	startTime = time.Now()
	tzOffset := configs.OperatorTzOffset()

	// اتصال القاعدة متاح لكل المسارات المسجلة من هنا فصاعداً
	app.Use(middlewares.DBMiddleware(db))

	// ===================== BASE =====================
	BaseRoutes(app)

	// ===================== GROUPS =====================

	// المجمّع: أجهزة الموظفين، محمي بمفتاح الخدمة داخل المسار نفسه
	log.Println("[INFO] Setting up COLLECTOR group...")
	collector := app.Group("/api/external")

	// الإدارة: لوحة المتابعة والإجراءات
	log.Println("[INFO] Setting up ADMIN group...")
	admin := app.Group("/api/tracking")

	// ===================== MOUNT ROUTES =====================

	log.Println("[INFO] Mounting Tracking routes...")
	trackingRoute.TrackingCollectorRoutes(collector, db, tzOffset)
	trackingRoute.TrackingAdminRoutes(admin, db, tzOffset)
}
