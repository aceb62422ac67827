// file: internals/features/tracking/service/classifier.go
package service

import (
	"context"
	"time"

	"nuzum_backend/internals/features/tracking/model"
	"nuzum_backend/internals/features/tracking/repository"

	"github.com/google/uuid"
)

// ClassifyResult عدادات مخرجات تصنيف يوم واحد لدائرة واحدة.
type ClassifyResult struct {
	GeofenceID uuid.UUID `json:"geofence_id"`
	Date       string    `json:"date"`
	Present    int       `json:"present"`
	Late       int       `json:"late"`
	Absent     int       `json:"absent"`
	Excused    int       `json:"excused"`
}

// Classifier مصنّف الحضور اليومي: جلسات اليوم المحلي لكل موظف مرتبط
// تتحول إلى صف حضور واحد. إعادة التشغيل على نفس اليوم لا تغيّر شيئاً
// ما لم تتغير الجلسات.
type Classifier struct {
	store    repository.Store
	tzOffset time.Duration
}

func NewClassifier(store repository.Store, tzOffset time.Duration) *Classifier {
	return &Classifier{store: store, tzOffset: tzOffset}
}

// ClassifyDate تصنيف دائرة واحدة ليوم محلي واحد.
// كل صف حضور يُكتب في معاملته الخاصة فلا يُفقد اليوم كله بموظف واحد فاسد.
func (c *Classifier) ClassifyDate(ctx context.Context, geofenceID uuid.UUID, localDate time.Time) (ClassifyResult, error) {
	result := ClassifyResult{GeofenceID: geofenceID, Date: localDate.Format("2006-01-02")}

	fence, err := c.store.GeofenceByID(ctx, geofenceID)
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

	roster, err := c.store.RosterIDs(ctx, geofenceID)
	if err != nil {
		return result, err
	}

	from, to := LocalDayRangeUTC(localDate, c.tzOffset)
	sessions, err := c.store.SessionsEnteredBetween(ctx, geofenceID, from, to)
	if err != nil {
		return result, err
	}
	byEmployee := make(map[uuid.UUID][]model.PresenceSessionModel)
	for _, sess := range sessions {
		byEmployee[sess.EmployeeID] = append(byEmployee[sess.EmployeeID], sess)
	}

	for _, employeeID := range roster {
		rec := c.buildRecord(employeeID, geofenceID, localDate, policy, byEmployee[employeeID])
		saved, err := c.store.SaveAttendanceUnlessExcused(ctx, rec)
		if err != nil {
			return result, err
		}
		if !saved {
			result.Excused++
			continue
		}
		switch rec.Status {
		case model.StatusPresent:
			result.Present++
		case model.StatusLate:
			result.Late++
		default:
			result.Absent++
		}
	}
	return result, nil
}

// buildRecord أقدم دخول في كل نافذة يفوز، والحالة تُشتق من أول دخول في اليوم.
// لا جلسات في أي نافذة = غائب، ويُكتب الصف الغائب صراحة.
func (c *Classifier) buildRecord(
	employeeID, geofenceID uuid.UUID,
	localDate time.Time,
	policy Policy,
	sessions []model.PresenceSessionModel,
) *model.AttendanceRecordModel {
	rec := &model.AttendanceRecordModel{
		EmployeeID:     employeeID,
		GeofenceID:     geofenceID,
		AttendanceDate: localDate,
		Status:         model.StatusAbsent,
	}

	var earliest *time.Time
	for _, sess := range sessions {
		entry := sess.EntryTime
		switch policy.WindowOf(entry, c.tzOffset) {
		case WindowMorning:
			if rec.MorningEntry == nil || entry.Before(*rec.MorningEntry) {
				t := entry
				rec.MorningEntry = &t
			}
		case WindowEvening:
			if rec.EveningEntry == nil || entry.Before(*rec.EveningEntry) {
				t := entry
				rec.EveningEntry = &t
			}
		default:
			continue
		}
		rec.SourceSessionIDs = append(rec.SourceSessionIDs, sess.SessionID)
		if earliest == nil || entry.Before(*earliest) {
			t := entry
			earliest = &t
		}
	}

	if earliest != nil {
		rec.Status = policy.StatusOf(*earliest, localDate, c.tzOffset)
	}
	return rec
}
