// file: internals/features/tracking/controller/tracking_controller.go
package controller

import (
	"errors"
	"time"

	"nuzum_backend/internals/features/tracking/dto"
	"nuzum_backend/internals/features/tracking/repository/gormdb"
	"nuzum_backend/internals/features/tracking/service"
	helper "nuzum_backend/internals/helpers"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var validate = validator.New()

// TrackingController نقاط تتبع المواقع والحضور: الاستيعاب، الاستعلامات،
// الإجراءات الجماعية والتصنيف.
type TrackingController struct {
	TzOffset   time.Duration
	Ingest     *service.IngestService
	Query      *service.QueryService
	Bulk       *service.BulkService
	Classifier *service.Classifier
}

func NewTrackingController(db *gorm.DB, tzOffset time.Duration) *TrackingController {
	store := gormdb.New(db)
	sessions := service.NewSessionManager(store)
	evaluator := service.NewEvaluator(store, sessions)
	return &TrackingController{
		TzOffset:   tzOffset,
		Ingest:     service.NewIngestService(store, evaluator),
		Query:      service.NewQueryService(store, tzOffset),
		Bulk:       service.NewBulkService(store, tzOffset),
		Classifier: service.NewClassifier(store, tzOffset),
	}
}

// engineError تحويل أخطاء المحرك إلى رموز HTTP. أي خطأ غير معروف هنا
// يُعامل كتعذر مخزن البيانات.
func engineError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrUnknownEmployee):
		return helper.Error(c, fiber.StatusNotFound, "الموظف غير مرتبط بأي دائرة جغرافية")
	case errors.Is(err, service.ErrGeofenceNotFound):
		return helper.Error(c, fiber.StatusNotFound, "الدائرة الجغرافية غير موجودة")
	case errors.Is(err, service.ErrInvalidCoordinates):
		return helper.Error(c, fiber.StatusBadRequest, "الإحداثيات خارج المدى الصالح")
	case errors.Is(err, service.ErrStaleSample):
		return helper.Error(c, fiber.StatusConflict, "الختم الزمني للعينة خارج نافذة القبول")
	case errors.Is(err, service.ErrPolicyUnavailable):
		return helper.Error(c, fiber.StatusUnprocessableEntity, "سياسة الدائرة مفقودة أو فاسدة")
	default:
		return helper.Error(c, fiber.StatusServiceUnavailable, "مخزن البيانات غير متاح حالياً")
	}
}

/* ================== الاستيعاب ================== */

// IngestSample POST /samples: استيعاب عينة موقع واحدة، يرد 202 عند القبول.
func (ctrl *TrackingController) IngestSample(c *fiber.Ctx) error {
	var body dto.LocationSampleRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "جسم الطلب غير صالح")
	}
	if err := validate.Struct(&body); err != nil {
		return helper.ValidationError(c, err)
	}
	employeeID, err := uuid.Parse(body.EmployeeID)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "معرف الموظف غير صالح")
	}

	ack, err := ctrl.Ingest.Ingest(c.Context(), service.IngestInput{
		EmployeeID: employeeID,
		Latitude:   body.Latitude,
		Longitude:  body.Longitude,
		RecordedAt: body.RecordedAt,
		Source:     body.Source,
	})
	if err != nil {
		return engineError(c, err)
	}

	resp := dto.IngestResponse{
		Stored:     ack.Stored,
		Throttled:  ack.Throttled,
		OutOfOrder: ack.OutOfOrder,
		OutOfBand:  ack.OutOfBand,
	}
	if ack.Stored {
		resp.SampleID = ack.SampleID.String()
	}
	return helper.SuccessWithCode(c, fiber.StatusAccepted, "تم استيعاب العينة", resp)
}

/* ================== الاستعلامات ================== */

// LiveSnapshot GET /geofences/:geofence_id/live
func (ctrl *TrackingController) LiveSnapshot(c *fiber.Ctx) error {
	geofenceID, err := uuid.Parse(c.Params("geofence_id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "معرف الدائرة غير صالح")
	}
	snapshot, err := ctrl.Query.LiveSnapshot(c.Context(), geofenceID)
	if err != nil {
		return engineError(c, err)
	}
	return helper.Success(c, "اللقطة الحية", snapshot)
}

// Roster GET /geofences/:geofence_id/attendance?date=YYYY-MM-DD
func (ctrl *TrackingController) Roster(c *fiber.Ctx) error {
	geofenceID, err := uuid.Parse(c.Params("geofence_id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "معرف الدائرة غير صالح")
	}
	date, err := ctrl.dateQuery(c)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "التاريخ يجب أن يكون بصيغة YYYY-MM-DD")
	}
	roster, err := ctrl.Query.RosterForDate(c.Context(), geofenceID, date)
	if err != nil {
		return engineError(c, err)
	}
	return helper.Success(c, "كشف الحضور", roster)
}

// Sessions GET /employees/:employee_id/geofences/:geofence_id/sessions?from=&to=
func (ctrl *TrackingController) Sessions(c *fiber.Ctx) error {
	employeeID, err := uuid.Parse(c.Params("employee_id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "معرف الموظف غير صالح")
	}
	geofenceID, err := uuid.Parse(c.Params("geofence_id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "معرف الدائرة غير صالح")
	}
	from, to, err := rangeQuery(c, 7*24*time.Hour)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "المدى الزمني يجب أن يكون بصيغة RFC3339")
	}
	sessions, err := ctrl.Query.Sessions(c.Context(), employeeID, geofenceID, from, to)
	if err != nil {
		return engineError(c, err)
	}

	// الخدمة ترجع الأحدث أولاً، والترقيم على الشريحة المطلوبة
	params := helper.ParseFiber(c, "desc", helper.DefaultOpts)
	if params.SortOrder == "asc" {
		for i, j := 0, len(sessions)-1; i < j; i, j = i+1, j-1 {
			sessions[i], sessions[j] = sessions[j], sessions[i]
		}
	}
	total := int64(len(sessions))
	start := params.Offset()
	if start > len(sessions) {
		start = len(sessions)
	}
	end := start + params.Limit()
	if end > len(sessions) {
		end = len(sessions)
	}
	return helper.Success(c, "جلسات التواجد", fiber.Map{
		"items": sessions[start:end],
		"meta":  helper.BuildMeta(total, params),
	})
}

// Events GET /geofences/:geofence_id/events?from=&to=&limit=
func (ctrl *TrackingController) Events(c *fiber.Ctx) error {
	geofenceID, err := uuid.Parse(c.Params("geofence_id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "معرف الدائرة غير صالح")
	}
	from, to, err := rangeQuery(c, 24*time.Hour)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "المدى الزمني يجب أن يكون بصيغة RFC3339")
	}
	events, err := ctrl.Query.EventsTail(c.Context(), geofenceID, from, to, c.QueryInt("limit"))
	if err != nil {
		return engineError(c, err)
	}
	return helper.Success(c, "أحداث الدائرة", events)
}

// Aggregates GET /employees/:employee_id/geofences/:geofence_id/aggregates?from=&to=
func (ctrl *TrackingController) Aggregates(c *fiber.Ctx) error {
	employeeID, err := uuid.Parse(c.Params("employee_id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "معرف الموظف غير صالح")
	}
	geofenceID, err := uuid.Parse(c.Params("geofence_id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "معرف الدائرة غير صالح")
	}
	from, to, err := rangeQuery(c, 30*24*time.Hour)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "المدى الزمني يجب أن يكون بصيغة RFC3339")
	}
	agg, err := ctrl.Query.EmployeeAggregates(c.Context(), employeeID, geofenceID, from, to)
	if err != nil {
		return engineError(c, err)
	}
	return helper.Success(c, "خلاصة الزيارات", agg)
}

// DayStats GET /geofences/:geofence_id/stats?date=
func (ctrl *TrackingController) DayStats(c *fiber.Ctx) error {
	geofenceID, err := uuid.Parse(c.Params("geofence_id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "معرف الدائرة غير صالح")
	}
	date, err := ctrl.dateQuery(c)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "التاريخ يجب أن يكون بصيغة YYYY-MM-DD")
	}
	stats, err := ctrl.Query.DayStats(c.Context(), geofenceID, date)
	if err != nil {
		return engineError(c, err)
	}
	return helper.Success(c, "إحصاءات اليوم", stats)
}

/* ================== الإجراءات ================== */

// BulkCheckIn POST /attendance/bulk-check-in
func (ctrl *TrackingController) BulkCheckIn(c *fiber.Ctx) error {
	geofenceID, err := parseBulkBody(c)
	if err != nil {
		return err
	}
	result, berr := ctrl.Bulk.BulkCheckIn(c.Context(), geofenceID)
	if berr != nil {
		return engineError(c, berr)
	}
	return helper.Success(c, "تم التحضير الجماعي", result)
}

// AutoRecord POST /attendance/auto-record
func (ctrl *TrackingController) AutoRecord(c *fiber.Ctx) error {
	geofenceID, err := parseBulkBody(c)
	if err != nil {
		return err
	}
	result, berr := ctrl.Bulk.AutoRecord(c.Context(), geofenceID)
	if berr != nil {
		return engineError(c, berr)
	}
	return helper.Success(c, "تم التسجيل التلقائي", result)
}

// Classify POST /attendance/classify
func (ctrl *TrackingController) Classify(c *fiber.Ctx) error {
	var body dto.ClassifyRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "جسم الطلب غير صالح")
	}
	if err := validate.Struct(&body); err != nil {
		return helper.ValidationError(c, err)
	}
	geofenceID, err := uuid.Parse(body.GeofenceID)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "معرف الدائرة غير صالح")
	}
	date, err := time.Parse("2006-01-02", body.Date)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "التاريخ يجب أن يكون بصيغة YYYY-MM-DD")
	}

	result, cerr := ctrl.Classifier.ClassifyDate(c.Context(), geofenceID, date)
	if cerr != nil {
		return engineError(c, cerr)
	}
	return helper.Success(c, "تم تصنيف اليوم", result)
}

/* ================== مساعدات التحليل ================== */

func parseBulkBody(c *fiber.Ctx) (uuid.UUID, error) {
	var body dto.BulkActionRequest
	if err := c.BodyParser(&body); err != nil {
		return uuid.Nil, helper.Error(c, fiber.StatusBadRequest, "جسم الطلب غير صالح")
	}
	if err := validate.Struct(&body); err != nil {
		return uuid.Nil, helper.ValidationError(c, err)
	}
	geofenceID, err := uuid.Parse(body.GeofenceID)
	if err != nil {
		return uuid.Nil, helper.Error(c, fiber.StatusBadRequest, "معرف الدائرة غير صالح")
	}
	return geofenceID, nil
}

// dateQuery تاريخ محلي من الاستعلام، الافتراضي اليوم المحلي الحالي.
func (ctrl *TrackingController) dateQuery(c *fiber.Ctx) (time.Time, error) {
	raw := c.Query("date")
	if raw == "" {
		return service.LocalDate(time.Now().UTC(), ctrl.TzOffset), nil
	}
	return time.Parse("2006-01-02", raw)
}

// rangeQuery مدى زمني من الاستعلام، الافتراضي آخر fallback حتى الآن.
func rangeQuery(c *fiber.Ctx, fallback time.Duration) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from, to := now.Add(-fallback), now
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsed.UTC()
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = parsed.UTC()
	}
	return from, to, nil
}
