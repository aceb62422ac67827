// file: internals/features/tracking/service/session_manager.go
package service

import (
	"context"
	"log"
	"time"

	"nuzum_backend/internals/features/tracking/model"
	"nuzum_backend/internals/features/tracking/repository"

	"github.com/google/uuid"
)

// SessionManager دورة حياة جلسات التواجد: فتح عند الدخول وإغلاق عند الخروج.
// كل تحويل يكتب الجلسة وحدثها في معاملة واحدة.
type SessionManager struct {
	store repository.Store
}

func NewSessionManager(store repository.Store) *SessionManager {
	return &SessionManager{store: store}
}

// Open فتح جلسة عند لحظة at مع حدث enter. إذا كانت هناك جلسة مفتوحة
// بالفعل لنفس (الموظف، الدائرة) فالنداء لا أثر له ويعيد الجلسة القائمة.
func (m *SessionManager) Open(
	ctx context.Context,
	employeeID, geofenceID uuid.UUID,
	at time.Time,
	lat, lon float64,
	distanceMeters int,
) (*model.PresenceSessionModel, bool, error) {
	var (
		result  *model.PresenceSessionModel
		created bool
	)
	err := m.store.InTx(ctx, func(tx repository.Store) error {
		sess := &model.PresenceSessionModel{
			EmployeeID: employeeID,
			GeofenceID: geofenceID,
			EntryTime:  at,
		}
		inserted, err := tx.InsertOpenSession(ctx, sess)
		if err != nil {
			return err
		}
		if !inserted {
			existing, err := tx.OpenSessionFor(ctx, employeeID, geofenceID)
			if err != nil {
				return err
			}
			result = existing
			return nil
		}
		created = true
		result = sess

		sessionID := sess.SessionID
		return tx.AppendEvent(ctx, &model.GeofenceEventModel{
			EmployeeID:         employeeID,
			GeofenceID:         geofenceID,
			EventKind:          model.EventEnter,
			RecordedAt:         at,
			Latitude:           lat,
			Longitude:          lon,
			DistanceFromCenter: distanceMeters,
			SessionID:          &sessionID,
		})
	})
	if err != nil {
		return nil, false, err
	}
	return result, created, nil
}

// Close إغلاق الجلسة المفتوحة عند لحظة at مع حدث exit. لا جلسة مفتوحة = لا أثر.
// خروج بختم زمني أقدم من الدخول (انحراف ساعة الجهاز) يُثبَّت على لحظة الدخول.
func (m *SessionManager) Close(
	ctx context.Context,
	employeeID, geofenceID uuid.UUID,
	at time.Time,
	lat, lon float64,
	distanceMeters int,
) (*model.PresenceSessionModel, bool, error) {
	var (
		result *model.PresenceSessionModel
		closed bool
	)
	err := m.store.InTx(ctx, func(tx repository.Store) error {
		open, err := tx.OpenSessionFor(ctx, employeeID, geofenceID)
		if err != nil {
			return err
		}
		if open == nil {
			return nil
		}

		exitAt := at
		if exitAt.Before(open.EntryTime) {
			exitAt = open.EntryTime
		}
		duration := open.DurationMinutesAt(exitAt)
		if err := tx.CloseSession(ctx, open.SessionID, exitAt, duration); err != nil {
			return err
		}
		open.ExitTime = &exitAt
		open.DurationMinutes = &duration
		result = open
		closed = true

		sessionID := open.SessionID
		return tx.AppendEvent(ctx, &model.GeofenceEventModel{
			EmployeeID:         employeeID,
			GeofenceID:         geofenceID,
			EventKind:          model.EventExit,
			RecordedAt:         exitAt,
			Latitude:           lat,
			Longitude:          lon,
			DistanceFromCenter: distanceMeters,
			SessionID:          &sessionID,
		})
	})
	if err != nil {
		return nil, false, err
	}
	return result, closed, nil
}

// CloseAllOpen إغلاق كل الجلسات المفتوحة عند لحظة at: تُستدعى عند حد اليوم
// المحلي حتى لا تتسرب جلسة عبر حدود التاريخ. موضع حدث الخروج مركز الدائرة
// لأن آخر موقع فعلي غير معلوم هنا.
func (m *SessionManager) CloseAllOpen(ctx context.Context, at time.Time) (int, error) {
	open, err := m.store.ActiveSessions(ctx, nil, nil)
	if err != nil {
		return 0, err
	}

	centers := make(map[uuid.UUID]*model.GeofenceModel)
	closed := 0
	for _, sess := range open {
		fence, ok := centers[sess.GeofenceID]
		if !ok {
			fence, err = m.store.GeofenceByID(ctx, sess.GeofenceID)
			if err != nil {
				return closed, err
			}
			centers[sess.GeofenceID] = fence
		}
		lat, lon := 0.0, 0.0
		if fence != nil {
			lat, lon = fence.CenterLatitude, fence.CenterLongitude
		}
		if _, ok, cerr := m.Close(ctx, sess.EmployeeID, sess.GeofenceID, at, lat, lon, 0); cerr != nil {
			// جلسة واحدة فاسدة لا توقف بقية الكنس
			log.Printf("[TRACKING] close sweep failed for session %s: %v", sess.SessionID, cerr)
		} else if ok {
			closed++
		}
	}
	return closed, nil
}
