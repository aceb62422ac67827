// file: internals/features/tracking/repository/gormdb/store.go
package gormdb

import (
	"context"
	"errors"
	"time"

	"nuzum_backend/internals/features/tracking/model"
	"nuzum_backend/internals/features/tracking/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// store تنفيذ repository.Store فوق GORM/Postgres.
type store struct {
	db *gorm.DB
}

func New(db *gorm.DB) repository.Store {
	return &store{db: db}
}

/* ================== الدوائر ================== */

func (s *store) ActiveGeofences(ctx context.Context) ([]model.GeofenceModel, error) {
	var fences []model.GeofenceModel
	if err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&fences).Error; err != nil {
		return nil, err
	}
	return fences, nil
}

func (s *store) ActiveGeofencesForEmployee(ctx context.Context, employeeID uuid.UUID) ([]model.GeofenceModel, error) {
	var fences []model.GeofenceModel
	if err := s.db.WithContext(ctx).
		Joins("JOIN geofence_assignments ga ON ga.geofence_id = geofences.geofence_id").
		Where("ga.employee_id = ? AND geofences.is_active = ?", employeeID, true).
		Order("geofences.created_at ASC").
		Find(&fences).Error; err != nil {
		return nil, err
	}
	return fences, nil
}

func (s *store) GeofenceByID(ctx context.Context, geofenceID uuid.UUID) (*model.GeofenceModel, error) {
	var fence model.GeofenceModel
	err := s.db.WithContext(ctx).
		Where("geofence_id = ?", geofenceID).
		Take(&fence).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fence, nil
}

func (s *store) RosterIDs(ctx context.Context, geofenceID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := s.db.WithContext(ctx).
		Model(&model.GeofenceAssignmentModel{}).
		Where("geofence_id = ?", geofenceID).
		Order("assigned_at ASC").
		Pluck("employee_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *store) IsAssignedAnywhere(ctx context.Context, employeeID uuid.UUID) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&model.GeofenceAssignmentModel{}).
		Where("employee_id = ?", employeeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

/* ================== العينات ================== */

func (s *store) CreateSample(ctx context.Context, sample *model.LocationSampleModel) error {
	return s.db.WithContext(ctx).Create(sample).Error
}

func (s *store) LastSample(ctx context.Context, employeeID uuid.UUID) (*model.LocationSampleModel, error) {
	var sample model.LocationSampleModel
	err := s.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("received_at DESC").
		First(&sample).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sample, nil
}

func (s *store) LatestSamples(ctx context.Context, employeeIDs []uuid.UUID) (map[uuid.UUID]model.LocationSampleModel, error) {
	out := make(map[uuid.UUID]model.LocationSampleModel, len(employeeIDs))
	if len(employeeIDs) == 0 {
		return out, nil
	}
	// DISTINCT ON: أحدث عينة لكل موظف في استعلام واحد
	var samples []model.LocationSampleModel
	if err := s.db.WithContext(ctx).
		Raw(`SELECT DISTINCT ON (employee_id) *
		     FROM location_samples
		     WHERE employee_id IN ?
		     ORDER BY employee_id, received_at DESC`, employeeIDs).
		Scan(&samples).Error; err != nil {
		return nil, err
	}
	for _, sm := range samples {
		out[sm.EmployeeID] = sm
	}
	return out, nil
}

/* ================== الجلسات ================== */

func (s *store) InsertOpenSession(ctx context.Context, sess *model.PresenceSessionModel) (bool, error) {
	// ON CONFLICT على الفهرس الجزئي uq_open_session_per_pair:
	// جلسة مفتوحة موجودة لنفس (الموظف، الدائرة) → لا إدراج
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "employee_id"}, {Name: "geofence_id"}},
			TargetWhere: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "exit_time IS NULL"},
			}},
			DoNothing: true,
		}).
		Create(sess)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *store) OpenSessionFor(ctx context.Context, employeeID, geofenceID uuid.UUID) (*model.PresenceSessionModel, error) {
	var sess model.PresenceSessionModel
	err := s.db.WithContext(ctx).
		Where("employee_id = ? AND geofence_id = ? AND exit_time IS NULL", employeeID, geofenceID).
		Take(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *store) CloseSession(ctx context.Context, sessionID uuid.UUID, exitAt time.Time, durationMinutes int) error {
	res := s.db.WithContext(ctx).
		Model(&model.PresenceSessionModel{}).
		Where("session_id = ? AND exit_time IS NULL", sessionID).
		Updates(map[string]interface{}{
			"exit_time":        exitAt,
			"duration_minutes": durationMinutes,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrSessionNotOpen
	}
	return nil
}

func (s *store) ActiveSessions(ctx context.Context, geofenceID, employeeID *uuid.UUID) ([]model.PresenceSessionModel, error) {
	q := s.db.WithContext(ctx).Where("exit_time IS NULL")
	if geofenceID != nil {
		q = q.Where("geofence_id = ?", *geofenceID)
	}
	if employeeID != nil {
		q = q.Where("employee_id = ?", *employeeID)
	}
	var sessions []model.PresenceSessionModel
	if err := q.Order("entry_time ASC").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *store) SessionsInRange(ctx context.Context, employeeID, geofenceID uuid.UUID, from, to time.Time) ([]model.PresenceSessionModel, error) {
	// تقاطع المدى: الجلسة المفتوحة تُعامل كأنها ممتدة حتى الآن
	var sessions []model.PresenceSessionModel
	if err := s.db.WithContext(ctx).
		Where("employee_id = ? AND geofence_id = ?", employeeID, geofenceID).
		Where("entry_time < ? AND (exit_time IS NULL OR exit_time >= ?)", to, from).
		Order("entry_time DESC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *store) SessionsEnteredBetween(ctx context.Context, geofenceID uuid.UUID, from, to time.Time) ([]model.PresenceSessionModel, error) {
	var sessions []model.PresenceSessionModel
	if err := s.db.WithContext(ctx).
		Where("geofence_id = ? AND entry_time >= ? AND entry_time < ?", geofenceID, from, to).
		Order("entry_time ASC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

/* ================== الأحداث ================== */

func (s *store) AppendEvent(ctx context.Context, event *model.GeofenceEventModel) error {
	return s.db.WithContext(ctx).Create(event).Error
}

func (s *store) Events(ctx context.Context, geofenceID uuid.UUID, from, to time.Time, limit int) ([]model.GeofenceEventModel, error) {
	q := s.db.WithContext(ctx).Where("geofence_id = ?", geofenceID)
	if !from.IsZero() {
		q = q.Where("recorded_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("recorded_at < ?", to)
	}
	var events []model.GeofenceEventModel
	if err := q.Order("recorded_at DESC").Limit(limit).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (s *store) CountEventsOfKind(ctx context.Context, geofenceID uuid.UUID, kind string, from, to time.Time) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&model.GeofenceEventModel{}).
		Where("geofence_id = ? AND event_kind = ? AND recorded_at >= ? AND recorded_at < ?",
			geofenceID, kind, from, to).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

/* ================== الحضور ================== */

func (s *store) AttendanceFor(ctx context.Context, employeeID, geofenceID uuid.UUID, date time.Time) (*model.AttendanceRecordModel, error) {
	var rec model.AttendanceRecordModel
	err := s.db.WithContext(ctx).
		Where("employee_id = ? AND geofence_id = ? AND attendance_date = ?",
			employeeID, geofenceID, date.Format("2006-01-02")).
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *store) AttendanceForDate(ctx context.Context, geofenceID uuid.UUID, date time.Time) ([]model.AttendanceRecordModel, error) {
	var recs []model.AttendanceRecordModel
	if err := s.db.WithContext(ctx).
		Where("geofence_id = ? AND attendance_date = ?", geofenceID, date.Format("2006-01-02")).
		Order("employee_id ASC").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *store) SaveAttendanceUnlessExcused(ctx context.Context, rec *model.AttendanceRecordModel) (bool, error) {
	var existing model.AttendanceRecordModel
	err := s.db.WithContext(ctx).
		Where("employee_id = ? AND geofence_id = ? AND attendance_date = ?",
			rec.EmployeeID, rec.GeofenceID, rec.AttendanceDate.Format("2006-01-02")).
		Take(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		if cerr := s.db.WithContext(ctx).Create(rec).Error; cerr != nil {
			return false, cerr
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}

	rec.AttendanceID = existing.AttendanceID
	if model.StatusExcused(existing.Status) {
		// صفوف الإجازة والمرض لا تُمس
		return false, nil
	}

	// تحديث مشروط بالحالة تحسباً لسباق مع كتابة إجازة متزامنة
	res := s.db.WithContext(ctx).
		Model(&model.AttendanceRecordModel{}).
		Where("attendance_id = ? AND status NOT IN ?",
			existing.AttendanceID, []string{model.StatusLeave, model.StatusSick}).
		Select("morning_entry", "evening_entry", "status", "source_session_ids").
		Updates(rec)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

/* ================== المعاملات ================== */

func (s *store) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&store{db: tx})
	})
}
