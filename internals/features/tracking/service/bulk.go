// file: internals/features/tracking/service/bulk.go
package service

import (
	"context"
	"math"
	"time"

	"nuzum_backend/internals/features/tracking/geo"
	"nuzum_backend/internals/features/tracking/model"
	"nuzum_backend/internals/features/tracking/repository"

	"github.com/google/uuid"
)

// BulkResult تفصيل نتيجة إجراء جماعي على دائرة واحدة، مفاتيحه معرفات الموظفين.
type BulkResult struct {
	GeofenceID     uuid.UUID   `json:"geofence_id"`
	CheckedIn      []uuid.UUID `json:"checked_in"`
	AlreadyChecked []uuid.UUID `json:"already_checked"`
	NotInRoster    []uuid.UUID `json:"not_in_roster"`
	SkippedExcused []uuid.UUID `json:"skipped_excused"`
	SkippedDwell   []uuid.UUID `json:"skipped_dwell,omitempty"`
	NoOpenSession  []uuid.UUID `json:"no_open_session,omitempty"`
	Failed         []uuid.UUID `json:"failed"`
}

// BulkService الإجراءات الجماعية: تحضير يدوي جماعي للمتواجدين الآن،
// وتسجيل تلقائي لمن بلغ مدة المكوث المطلوبة.
type BulkService struct {
	store    repository.Store
	tzOffset time.Duration
	now      func() time.Time
}

func NewBulkService(store repository.Store, tzOffset time.Duration) *BulkService {
	return &BulkService{store: store, tzOffset: tzOffset, now: time.Now}
}

func (b *BulkService) WithClock(now func() time.Time) *BulkService {
	b.now = now
	return b
}

// BulkCheckIn تحضير كل من له جلسة مفتوحة في الدائرة الآن. إعادة النداء
// لا تكرر صفوفاً ولا أحداثاً: من تحضّر يقع في already_checked.
func (b *BulkService) BulkCheckIn(ctx context.Context, geofenceID uuid.UUID) (BulkResult, error) {
	at := b.now().UTC()
	return b.run(ctx, geofenceID, at, model.EventBulkCheckIn, 0)
}

// AutoRecord تسجيل تلقائي لمن مكث داخل الدائرة المدة المطلوبة على الأقل.
func (b *BulkService) AutoRecord(ctx context.Context, geofenceID uuid.UUID) (BulkResult, error) {
	at := b.now().UTC()
	fence, err := b.store.GeofenceByID(ctx, geofenceID)
	if err != nil {
		return BulkResult{GeofenceID: geofenceID}, err
	}
	if fence == nil {
		return BulkResult{GeofenceID: geofenceID}, ErrGeofenceNotFound
	}
	policy, err := PolicyFrom(fence)
	if err != nil {
		return BulkResult{GeofenceID: geofenceID}, err
	}
	return b.run(ctx, geofenceID, at, model.EventAutoAttendance, policy.RequiredDwellMinutes)
}

func (b *BulkService) run(
	ctx context.Context,
	geofenceID uuid.UUID,
	at time.Time,
	eventKind string,
	minDwellMinutes int,
) (BulkResult, error) {
	result := BulkResult{GeofenceID: geofenceID}

	fence, err := b.store.GeofenceByID(ctx, geofenceID)
	if err != nil {
		return result, err
	}
	if fence == nil {
		return result, ErrGeofenceNotFound
	}
	policy, err := PolicyFrom(fence)
	if err != nil {
		return result, err
	}

	roster, err := b.store.RosterIDs(ctx, geofenceID)
	if err != nil {
		return result, err
	}
	rosterSet := make(map[uuid.UUID]bool, len(roster))
	for _, id := range roster {
		rosterSet[id] = true
	}

	active, err := b.store.ActiveSessions(ctx, &geofenceID, nil)
	if err != nil {
		return result, err
	}

	// من في الكشف بلا جلسة مفتوحة الآن لا يشمله الإجراء، ويُعاد معرفه صراحة
	holders := make(map[uuid.UUID]bool, len(active))
	for _, sess := range active {
		holders[sess.EmployeeID] = true
	}
	for _, id := range roster {
		if !holders[id] {
			result.NoOpenSession = append(result.NoOpenSession, id)
		}
	}

	localDate := LocalDate(at, b.tzOffset)
	for _, sess := range active {
		employeeID := sess.EmployeeID
		if !rosterSet[employeeID] {
			result.NotInRoster = append(result.NotInRoster, employeeID)
			continue
		}
		if minDwellMinutes > 0 && sess.DurationMinutesAt(at) < minDwellMinutes {
			result.SkippedDwell = append(result.SkippedDwell, employeeID)
			continue
		}

		existing, err := b.store.AttendanceFor(ctx, employeeID, geofenceID, localDate)
		if err != nil {
			result.Failed = append(result.Failed, employeeID)
			continue
		}
		if existing != nil {
			if model.StatusExcused(existing.Status) {
				result.SkippedExcused = append(result.SkippedExcused, employeeID)
				continue
			}
			if existing.Status == model.StatusPresent || existing.Status == model.StatusLate {
				result.AlreadyChecked = append(result.AlreadyChecked, employeeID)
				continue
			}
			// صف غائب من تصنيف سابق في نفس اليوم: يُرقّى هنا
		}

		// الحالة تُشتق من لحظة دخول الجلسة دائماً، أما حقل الدخول فيسجل
		// لحظة الأمر في التحضير اليدوي ولحظة الدخول في التلقائي
		fieldAt := at
		if eventKind == model.EventAutoAttendance {
			fieldAt = sess.EntryTime
		}
		rec := b.buildRecord(employeeID, geofenceID, localDate, policy, sess.EntryTime, fieldAt, sess.SessionID)

		if err := b.writeRecord(ctx, rec, fence, at, eventKind, sess.SessionID); err != nil {
			result.Failed = append(result.Failed, employeeID)
			continue
		}
		result.CheckedIn = append(result.CheckedIn, employeeID)
	}
	return result, nil
}

func (b *BulkService) buildRecord(
	employeeID, geofenceID uuid.UUID,
	localDate time.Time,
	policy Policy,
	statusAt, fieldAt time.Time,
	sessionID uuid.UUID,
) *model.AttendanceRecordModel {
	rec := &model.AttendanceRecordModel{
		EmployeeID:       employeeID,
		GeofenceID:       geofenceID,
		AttendanceDate:   localDate,
		Status:           policy.StatusOf(statusAt, localDate, b.tzOffset),
		SourceSessionIDs: []uuid.UUID{sessionID},
	}
	t := fieldAt
	switch policy.WindowOf(fieldAt, b.tzOffset) {
	case WindowEvening:
		rec.EveningEntry = &t
	default:
		rec.MorningEntry = &t
	}
	return rec
}

// writeRecord صف الحضور وحدثه يُرتكبان معاً أو لا يُرتكبان.
func (b *BulkService) writeRecord(
	ctx context.Context,
	rec *model.AttendanceRecordModel,
	fence *model.GeofenceModel,
	at time.Time,
	eventKind string,
	sessionID uuid.UUID,
) error {
	return b.store.InTx(ctx, func(tx repository.Store) error {
		saved, err := tx.SaveAttendanceUnlessExcused(ctx, rec)
		if err != nil {
			return err
		}
		if !saved {
			return nil
		}

		// موضع الحدث آخر عينة معلومة للموظف، وإلا مركز الدائرة
		lat, lon := fence.CenterLatitude, fence.CenterLongitude
		distance := 0
		if last, lerr := tx.LastSample(ctx, rec.EmployeeID); lerr == nil && last != nil {
			lat, lon = last.Latitude, last.Longitude
			distance = int(math.Round(geo.DistanceMeters(lat, lon,
				fence.CenterLatitude, fence.CenterLongitude)))
		}

		sid := sessionID
		attendanceID := rec.AttendanceID
		return tx.AppendEvent(ctx, &model.GeofenceEventModel{
			EmployeeID:         rec.EmployeeID,
			GeofenceID:         rec.GeofenceID,
			EventKind:          eventKind,
			RecordedAt:         at,
			Latitude:           lat,
			Longitude:          lon,
			DistanceFromCenter: distance,
			SessionID:          &sid,
			AttendanceID:       &attendanceID,
		})
	})
}
