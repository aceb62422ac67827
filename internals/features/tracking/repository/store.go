// file: internals/features/tracking/repository/store.go
package repository

import (
	"context"
	"time"

	"nuzum_backend/internals/features/tracking/model"

	"github.com/google/uuid"
)

// Store واجهة مخزن الصفوف المعاملاتي الذي يعمل المحرك فوقه.
// التنفيذ الإنتاجي على GORM/Postgres (gormdb) وتنفيذ بالذاكرة للاختبارات (memory).
type Store interface {
	// الدوائر وقوائم الموظفين المرتبطين
	ActiveGeofences(ctx context.Context) ([]model.GeofenceModel, error)
	ActiveGeofencesForEmployee(ctx context.Context, employeeID uuid.UUID) ([]model.GeofenceModel, error)
	GeofenceByID(ctx context.Context, geofenceID uuid.UUID) (*model.GeofenceModel, error)
	RosterIDs(ctx context.Context, geofenceID uuid.UUID) ([]uuid.UUID, error)
	IsAssignedAnywhere(ctx context.Context, employeeID uuid.UUID) (bool, error)

	// العينات (إضافة فقط)
	CreateSample(ctx context.Context, sample *model.LocationSampleModel) error
	LastSample(ctx context.Context, employeeID uuid.UUID) (*model.LocationSampleModel, error)
	LatestSamples(ctx context.Context, employeeIDs []uuid.UUID) (map[uuid.UUID]model.LocationSampleModel, error)

	// الجلسات
	// InsertOpenSession إدراج مشروط: يعيد false إذا كانت هناك جلسة مفتوحة
	// بالفعل لنفس (الموظف، الدائرة).
	InsertOpenSession(ctx context.Context, sess *model.PresenceSessionModel) (bool, error)
	OpenSessionFor(ctx context.Context, employeeID, geofenceID uuid.UUID) (*model.PresenceSessionModel, error)
	CloseSession(ctx context.Context, sessionID uuid.UUID, exitAt time.Time, durationMinutes int) error
	ActiveSessions(ctx context.Context, geofenceID, employeeID *uuid.UUID) ([]model.PresenceSessionModel, error)
	SessionsInRange(ctx context.Context, employeeID, geofenceID uuid.UUID, from, to time.Time) ([]model.PresenceSessionModel, error)
	SessionsEnteredBetween(ctx context.Context, geofenceID uuid.UUID, from, to time.Time) ([]model.PresenceSessionModel, error)

	// الأحداث (إضافة فقط)
	AppendEvent(ctx context.Context, event *model.GeofenceEventModel) error
	Events(ctx context.Context, geofenceID uuid.UUID, from, to time.Time, limit int) ([]model.GeofenceEventModel, error)
	CountEventsOfKind(ctx context.Context, geofenceID uuid.UUID, kind string, from, to time.Time) (int64, error)

	// الحضور
	AttendanceFor(ctx context.Context, employeeID, geofenceID uuid.UUID, date time.Time) (*model.AttendanceRecordModel, error)
	AttendanceForDate(ctx context.Context, geofenceID uuid.UUID, date time.Time) ([]model.AttendanceRecordModel, error)
	// SaveAttendanceUnlessExcused upsert مشروط: لا يكتب فوق صف حالته leave/sick.
	// يعيد true إذا كُتب الصف، ويملأ AttendanceID في rec.
	SaveAttendanceUnlessExcused(ctx context.Context, rec *model.AttendanceRecordModel) (bool, error)

	// InTx تنفيذ fn داخل معاملة واحدة: تعديل الجلسة وإضافة الحدث يُرتكبان معاً
	InTx(ctx context.Context, fn func(tx Store) error) error
}
