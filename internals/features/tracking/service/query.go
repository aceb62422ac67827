// file: internals/features/tracking/service/query.go
package service

import (
	"context"
	"math"
	"sort"
	"time"

	"nuzum_backend/internals/features/tracking/dto"
	"nuzum_backend/internals/features/tracking/geo"
	"nuzum_backend/internals/features/tracking/model"
	"nuzum_backend/internals/features/tracking/repository"

	"github.com/google/uuid"
)

// تصنيف حداثة آخر عينة في اللقطة الحية
const (
	ConnectionConnected      = "connected"
	ConnectionRecentlyActive = "recently_active"
	ConnectionDisconnected   = "disconnected"
	ConnectionInactive       = "inactive"

	connectedMaxAge      = 5 * time.Minute
	recentlyActiveMaxAge = 30 * time.Minute
	disconnectedMaxAge   = 6 * time.Hour
)

// حدود ذيل الأحداث
const (
	defaultEventsLimit = 50
	maxEventsLimit     = 200
)

// QueryService استعلامات القراءة: اللقطة الحية، كشف اليوم، الجلسات،
// ذيل الأحداث، الخلاصات.
type QueryService struct {
	store    repository.Store
	tzOffset time.Duration
	now      func() time.Time
}

func NewQueryService(store repository.Store, tzOffset time.Duration) *QueryService {
	return &QueryService{store: store, tzOffset: tzOffset, now: time.Now}
}

func (q *QueryService) WithClock(now func() time.Time) *QueryService {
	q.now = now
	return q
}

func geofenceSummary(fence *model.GeofenceModel) dto.GeofenceSummary {
	return dto.GeofenceSummary{
		GeofenceID:      fence.GeofenceID.String(),
		GeofenceName:    fence.GeofenceName,
		CenterLatitude:  fence.CenterLatitude,
		CenterLongitude: fence.CenterLongitude,
		RadiusMeters:    fence.RadiusMeters,
	}
}

// LiveSnapshot آخر موضع معلوم لكل موظف مرتبط بالدائرة مع عمر العينة
// وحالة الاتصال والجلسة المفتوحة إن وجدت.
func (q *QueryService) LiveSnapshot(ctx context.Context, geofenceID uuid.UUID) (*dto.LiveSnapshotResponse, error) {
	fence, err := q.store.GeofenceByID(ctx, geofenceID)
	if err != nil {
		return nil, err
	}
	if fence == nil {
		return nil, ErrGeofenceNotFound
	}

	roster, err := q.store.RosterIDs(ctx, geofenceID)
	if err != nil {
		return nil, err
	}
	samples, err := q.store.LatestSamples(ctx, roster)
	if err != nil {
		return nil, err
	}
	active, err := q.store.ActiveSessions(ctx, &geofenceID, nil)
	if err != nil {
		return nil, err
	}
	openByEmployee := make(map[uuid.UUID]model.PresenceSessionModel, len(active))
	for _, sess := range active {
		openByEmployee[sess.EmployeeID] = sess
	}

	now := q.now().UTC()
	resp := &dto.LiveSnapshotResponse{
		Geofence:    geofenceSummary(fence),
		GeneratedAt: now,
		Employees:   make([]dto.EmployeePresence, 0, len(roster)),
	}

	for _, employeeID := range roster {
		entry := dto.EmployeePresence{
			EmployeeID:       employeeID.String(),
			ConnectionStatus: ConnectionInactive,
		}
		if sess, ok := openByEmployee[employeeID]; ok {
			id := sess.SessionID.String()
			t := sess.EntryTime
			entry.OpenSessionID = &id
			entry.SessionEntryTime = &t
			entry.Inside = true
			resp.InsideCount++
		}
		if sample, ok := samples[employeeID]; ok {
			lat, lon := sample.Latitude, sample.Longitude
			distance := int(math.Round(geo.DistanceMeters(lat, lon,
				fence.CenterLatitude, fence.CenterLongitude)))
			age := now.Sub(sample.ReceivedAt)
			ageMinutes := int(age.Minutes())
			seenAt := sample.ReceivedAt

			entry.Latitude = &lat
			entry.Longitude = &lon
			entry.DistanceFromCenter = &distance
			entry.LastSeenAt = &seenAt
			entry.AgeMinutes = &ageMinutes
			entry.ConnectionStatus = connectionStatus(age)
		}
		resp.Employees = append(resp.Employees, entry)
	}
	sort.Slice(resp.Employees, func(i, j int) bool {
		return resp.Employees[i].EmployeeID < resp.Employees[j].EmployeeID
	})
	return resp, nil
}

func connectionStatus(age time.Duration) string {
	switch {
	case age < connectedMaxAge:
		return ConnectionConnected
	case age < recentlyActiveMaxAge:
		return ConnectionRecentlyActive
	case age < disconnectedMaxAge:
		return ConnectionDisconnected
	default:
		return ConnectionInactive
	}
}

// RosterForDate كشف اليوم: الصفوف المكتوبة كما هي، ومن لا صف له من
// المرتبطين يظهر صفاً غيابياً مُصطنعاً غير مكتوب.
func (q *QueryService) RosterForDate(ctx context.Context, geofenceID uuid.UUID, localDate time.Time) (*dto.RosterResponse, error) {
	fence, err := q.store.GeofenceByID(ctx, geofenceID)
	if err != nil {
		return nil, err
	}
	if fence == nil {
		return nil, ErrGeofenceNotFound
	}

	roster, err := q.store.RosterIDs(ctx, geofenceID)
	if err != nil {
		return nil, err
	}
	recs, err := q.store.AttendanceForDate(ctx, geofenceID, localDate)
	if err != nil {
		return nil, err
	}
	byEmployee := make(map[uuid.UUID]model.AttendanceRecordModel, len(recs))
	for _, rec := range recs {
		byEmployee[rec.EmployeeID] = rec
	}

	dateStr := localDate.Format("2006-01-02")
	resp := &dto.RosterResponse{
		Geofence: geofenceSummary(fence),
		Date:     dateStr,
		Rows:     make([]dto.AttendanceRow, 0, len(roster)),
	}
	for _, employeeID := range roster {
		rec, ok := byEmployee[employeeID]
		if !ok {
			resp.Rows = append(resp.Rows, dto.AttendanceRow{
				EmployeeID: employeeID.String(),
				Date:       dateStr,
				Status:     model.StatusAbsent,
				Persisted:  false,
			})
			continue
		}
		row := dto.AttendanceRow{
			EmployeeID:   employeeID.String(),
			Date:         dateStr,
			MorningEntry: rec.MorningEntry,
			EveningEntry: rec.EveningEntry,
			Status:       rec.Status,
			Persisted:    true,
		}
		for _, id := range rec.SourceSessionIDs {
			row.SourceSessionIDs = append(row.SourceSessionIDs, id.String())
		}
		resp.Rows = append(resp.Rows, row)
	}
	sort.Slice(resp.Rows, func(i, j int) bool {
		return resp.Rows[i].EmployeeID < resp.Rows[j].EmployeeID
	})
	return resp, nil
}

// Sessions جلسات موظف في دائرة تتقاطع مع المدى [from, to)، الأحدث أولاً.
func (q *QueryService) Sessions(ctx context.Context, employeeID, geofenceID uuid.UUID, from, to time.Time) ([]dto.SessionResponse, error) {
	sessions, err := q.store.SessionsInRange(ctx, employeeID, geofenceID, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, dto.SessionResponse{
			SessionID:       sess.SessionID.String(),
			EmployeeID:      sess.EmployeeID.String(),
			GeofenceID:      sess.GeofenceID.String(),
			EntryTime:       sess.EntryTime,
			ExitTime:        sess.ExitTime,
			DurationMinutes: sess.DurationMinutes,
			Active:          sess.IsActive(),
		})
	}
	return out, nil
}

// EventsTail أحدث أحداث الدائرة، الأحدث أولاً، بحد أقصى مضبوط.
func (q *QueryService) EventsTail(ctx context.Context, geofenceID uuid.UUID, from, to time.Time, limit int) ([]dto.EventResponse, error) {
	if limit <= 0 {
		limit = defaultEventsLimit
	}
	if limit > maxEventsLimit {
		limit = maxEventsLimit
	}
	events, err := q.store.Events(ctx, geofenceID, from, to, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.EventResponse, 0, len(events))
	for _, ev := range events {
		resp := dto.EventResponse{
			EventID:            ev.EventID.String(),
			EmployeeID:         ev.EmployeeID.String(),
			GeofenceID:         ev.GeofenceID.String(),
			EventKind:          ev.EventKind,
			RecordedAt:         ev.RecordedAt,
			Latitude:           ev.Latitude,
			Longitude:          ev.Longitude,
			DistanceFromCenter: ev.DistanceFromCenter,
		}
		if ev.SessionID != nil {
			id := ev.SessionID.String()
			resp.SessionID = &id
		}
		if ev.AttendanceID != nil {
			id := ev.AttendanceID.String()
			resp.AttendanceID = &id
		}
		out = append(out, resp)
	}
	return out, nil
}

// EmployeeAggregates خلاصة زيارات موظف لدائرة في مدى زمني. الجلسة
// المفتوحة تُحسب مدتها حتى الآن.
func (q *QueryService) EmployeeAggregates(ctx context.Context, employeeID, geofenceID uuid.UUID, from, to time.Time) (*dto.EmployeeAggregates, error) {
	sessions, err := q.store.SessionsInRange(ctx, employeeID, geofenceID, from, to)
	if err != nil {
		return nil, err
	}
	now := q.now().UTC()
	agg := &dto.EmployeeAggregates{
		EmployeeID: employeeID.String(),
		GeofenceID: geofenceID.String(),
		From:       from,
		To:         to,
	}
	for _, sess := range sessions {
		agg.Visits++
		if sess.DurationMinutes != nil {
			agg.TotalMinutes += *sess.DurationMinutes
		} else {
			agg.TotalMinutes += sess.DurationMinutesAt(now)
		}
	}
	if agg.Visits > 0 {
		agg.AverageMinutes = agg.TotalMinutes / agg.Visits
	}
	return agg, nil
}

// DayStats عدادات سريعة ليوم محلي واحد.
func (q *QueryService) DayStats(ctx context.Context, geofenceID uuid.UUID, localDate time.Time) (*dto.DayStats, error) {
	fence, err := q.store.GeofenceByID(ctx, geofenceID)
	if err != nil {
		return nil, err
	}
	if fence == nil {
		return nil, ErrGeofenceNotFound
	}

	roster, err := q.store.RosterIDs(ctx, geofenceID)
	if err != nil {
		return nil, err
	}
	active, err := q.store.ActiveSessions(ctx, &geofenceID, nil)
	if err != nil {
		return nil, err
	}
	from, to := LocalDayRangeUTC(localDate, q.tzOffset)
	entered, err := q.store.CountEventsOfKind(ctx, geofenceID, model.EventEnter, from, to)
	if err != nil {
		return nil, err
	}
	exited, err := q.store.CountEventsOfKind(ctx, geofenceID, model.EventExit, from, to)
	if err != nil {
		return nil, err
	}

	return &dto.DayStats{
		GeofenceID:    geofenceID.String(),
		Date:          localDate.Format("2006-01-02"),
		AssignedCount: len(roster),
		InsideNow:     len(active),
		EnteredToday:  int(entered),
		ExitedToday:   int(exited),
	}, nil
}
