// file: internals/features/tracking/route/tracking_routes.go
package route

import (
	"time"

	"nuzum_backend/internals/features/tracking/controller"
	"nuzum_backend/internals/middlewares"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// TrackingCollectorRoutes مسار المجمّع: أجهزة الموظفين خلف مفتاح الخدمة.
func TrackingCollectorRoutes(api fiber.Router, db *gorm.DB, tzOffset time.Duration) {
	ctrl := controller.NewTrackingController(db, tzOffset)

	samples := api.Group("/samples",
		middlewares.APIKeyMiddleware(),
		middlewares.IngestRateLimiter(),
	)
	samples.Post("/", ctrl.IngestSample)
}

// TrackingAdminRoutes مسارات واجهة الإدارة: استعلامات، إجراءات جماعية، تصنيف.
func TrackingAdminRoutes(api fiber.Router, db *gorm.DB, tzOffset time.Duration) {
	ctrl := controller.NewTrackingController(db, tzOffset)

	geofences := api.Group("/geofences")
	geofences.Get("/:geofence_id/live", ctrl.LiveSnapshot)
	geofences.Get("/:geofence_id/attendance", ctrl.Roster)
	geofences.Get("/:geofence_id/events", ctrl.Events)
	geofences.Get("/:geofence_id/stats", ctrl.DayStats)

	employees := api.Group("/employees")
	employees.Get("/:employee_id/geofences/:geofence_id/sessions", ctrl.Sessions)
	employees.Get("/:employee_id/geofences/:geofence_id/aggregates", ctrl.Aggregates)

	attendance := api.Group("/attendance", middlewares.BulkActionRateLimiter())
	attendance.Post("/classify", ctrl.Classify)
	attendance.Post("/bulk-check-in", ctrl.BulkCheckIn)
	attendance.Post("/auto-record", ctrl.AutoRecord)
}
