// file: internals/features/tracking/repository/memory/store.go
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"nuzum_backend/internals/features/tracking/model"
	"nuzum_backend/internals/features/tracking/repository"

	"github.com/google/uuid"
)

// Store تنفيذ بالذاكرة لواجهة repository.Store: للاختبارات فقط.
// المعاملات هنا متسلسلة خلف قفل واحد، فلا عزل حقيقي بين InTx المتداخلة.
type Store struct {
	mu sync.RWMutex

	geofences   map[uuid.UUID]model.GeofenceModel
	assignments []model.GeofenceAssignmentModel
	samples     []model.LocationSampleModel
	sessions    map[uuid.UUID]model.PresenceSessionModel
	events      []model.GeofenceEventModel
	attendance  map[uuid.UUID]model.AttendanceRecordModel
}

func New() *Store {
	return &Store{
		geofences:  make(map[uuid.UUID]model.GeofenceModel),
		sessions:   make(map[uuid.UUID]model.PresenceSessionModel),
		attendance: make(map[uuid.UUID]model.AttendanceRecordModel),
	}
}

/* ================== تهيئة بيانات الاختبار ================== */

func (s *Store) SeedGeofence(g model.GeofenceModel) model.GeofenceModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.GeofenceID == uuid.Nil {
		g.GeofenceID = uuid.New()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
	s.geofences[g.GeofenceID] = g
	return g
}

func (s *Store) SeedAssignment(geofenceID, employeeID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.assignments {
		if a.GeofenceID == geofenceID && a.EmployeeID == employeeID {
			return
		}
	}
	s.assignments = append(s.assignments, model.GeofenceAssignmentModel{
		GeofenceID: geofenceID,
		EmployeeID: employeeID,
		AssignedAt: time.Now(),
	})
}

func (s *Store) SeedAttendance(rec model.AttendanceRecordModel) model.AttendanceRecordModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.AttendanceID == uuid.Nil {
		rec.AttendanceID = uuid.New()
	}
	s.attendance[rec.AttendanceID] = rec
	return rec
}

/* ================== الدوائر ================== */

func (s *Store) ActiveGeofences(ctx context.Context) ([]model.GeofenceModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.GeofenceModel
	for _, g := range s.geofences {
		if g.IsActive {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ActiveGeofencesForEmployee(ctx context.Context, employeeID uuid.UUID) ([]model.GeofenceModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.GeofenceModel
	for _, a := range s.assignments {
		if a.EmployeeID != employeeID {
			continue
		}
		if g, ok := s.geofences[a.GeofenceID]; ok && g.IsActive {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) GeofenceByID(ctx context.Context, geofenceID uuid.UUID) (*model.GeofenceModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.geofences[geofenceID]
	if !ok {
		return nil, nil
	}
	cp := g
	return &cp, nil
}

func (s *Store) RosterIDs(ctx context.Context, geofenceID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []uuid.UUID
	for _, a := range s.assignments {
		if a.GeofenceID == geofenceID {
			ids = append(ids, a.EmployeeID)
		}
	}
	return ids, nil
}

func (s *Store) IsAssignedAnywhere(ctx context.Context, employeeID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.assignments {
		if a.EmployeeID == employeeID {
			return true, nil
		}
	}
	return false, nil
}

/* ================== العينات ================== */

func (s *Store) CreateSample(ctx context.Context, sample *model.LocationSampleModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sample.SampleID == uuid.Nil {
		sample.SampleID = uuid.New()
	}
	s.samples = append(s.samples, *sample)
	return nil
}

func (s *Store) LastSample(ctx context.Context, employeeID uuid.UUID) (*model.LocationSampleModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// آخر عينة مقبولة بترتيب الإدراج
	for i := len(s.samples) - 1; i >= 0; i-- {
		if s.samples[i].EmployeeID == employeeID {
			cp := s.samples[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) LatestSamples(ctx context.Context, employeeIDs []uuid.UUID) (map[uuid.UUID]model.LocationSampleModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	want := make(map[uuid.UUID]bool, len(employeeIDs))
	for _, id := range employeeIDs {
		want[id] = true
	}
	out := make(map[uuid.UUID]model.LocationSampleModel, len(employeeIDs))
	for i := len(s.samples) - 1; i >= 0; i-- {
		sm := s.samples[i]
		if want[sm.EmployeeID] {
			if _, seen := out[sm.EmployeeID]; !seen {
				out[sm.EmployeeID] = sm
			}
		}
	}
	return out, nil
}

/* ================== الجلسات ================== */

func (s *Store) InsertOpenSession(ctx context.Context, sess *model.PresenceSessionModel) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.sessions {
		if existing.EmployeeID == sess.EmployeeID &&
			existing.GeofenceID == sess.GeofenceID &&
			existing.ExitTime == nil {
			return false, nil
		}
	}
	if sess.SessionID == uuid.Nil {
		sess.SessionID = uuid.New()
	}
	sess.CreatedAt = time.Now()
	s.sessions[sess.SessionID] = *sess
	return true, nil
}

func (s *Store) OpenSessionFor(ctx context.Context, employeeID, geofenceID uuid.UUID) (*model.PresenceSessionModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sess := range s.sessions {
		if sess.EmployeeID == employeeID && sess.GeofenceID == geofenceID && sess.ExitTime == nil {
			cp := sess
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) CloseSession(ctx context.Context, sessionID uuid.UUID, exitAt time.Time, durationMinutes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok || sess.ExitTime != nil {
		return repository.ErrSessionNotOpen
	}
	exit := exitAt
	dur := durationMinutes
	sess.ExitTime = &exit
	sess.DurationMinutes = &dur
	s.sessions[sessionID] = sess
	return nil
}

func (s *Store) ActiveSessions(ctx context.Context, geofenceID, employeeID *uuid.UUID) ([]model.PresenceSessionModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.PresenceSessionModel
	for _, sess := range s.sessions {
		if sess.ExitTime != nil {
			continue
		}
		if geofenceID != nil && sess.GeofenceID != *geofenceID {
			continue
		}
		if employeeID != nil && sess.EmployeeID != *employeeID {
			continue
		}
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryTime.Before(out[j].EntryTime) })
	return out, nil
}

func (s *Store) SessionsInRange(ctx context.Context, employeeID, geofenceID uuid.UUID, from, to time.Time) ([]model.PresenceSessionModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.PresenceSessionModel
	for _, sess := range s.sessions {
		if sess.EmployeeID != employeeID || sess.GeofenceID != geofenceID {
			continue
		}
		if !sess.EntryTime.Before(to) {
			continue
		}
		if sess.ExitTime != nil && sess.ExitTime.Before(from) {
			continue
		}
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryTime.After(out[j].EntryTime) })
	return out, nil
}

func (s *Store) SessionsEnteredBetween(ctx context.Context, geofenceID uuid.UUID, from, to time.Time) ([]model.PresenceSessionModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.PresenceSessionModel
	for _, sess := range s.sessions {
		if sess.GeofenceID != geofenceID {
			continue
		}
		if sess.EntryTime.Before(from) || !sess.EntryTime.Before(to) {
			continue
		}
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryTime.Before(out[j].EntryTime) })
	return out, nil
}

/* ================== الأحداث ================== */

func (s *Store) AppendEvent(ctx context.Context, event *model.GeofenceEventModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.EventID == uuid.Nil {
		event.EventID = uuid.New()
	}
	s.events = append(s.events, *event)
	return nil
}

func (s *Store) Events(ctx context.Context, geofenceID uuid.UUID, from, to time.Time, limit int) ([]model.GeofenceEventModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.GeofenceEventModel
	for _, ev := range s.events {
		if ev.GeofenceID != geofenceID {
			continue
		}
		if !from.IsZero() && ev.RecordedAt.Before(from) {
			continue
		}
		if !to.IsZero() && !ev.RecordedAt.Before(to) {
			continue
		}
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordedAt.After(out[j].RecordedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) CountEventsOfKind(ctx context.Context, geofenceID uuid.UUID, kind string, from, to time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, ev := range s.events {
		if ev.GeofenceID == geofenceID && ev.EventKind == kind &&
			!ev.RecordedAt.Before(from) && ev.RecordedAt.Before(to) {
			count++
		}
	}
	return count, nil
}

// AllEvents كل الأحداث بترتيب الإدراج: لفحوص الاختبارات.
func (s *Store) AllEvents() []model.GeofenceEventModel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.GeofenceEventModel, len(s.events))
	copy(out, s.events)
	return out
}

/* ================== الحضور ================== */

func sameDate(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}

func (s *Store) AttendanceFor(ctx context.Context, employeeID, geofenceID uuid.UUID, date time.Time) (*model.AttendanceRecordModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.attendance {
		if rec.EmployeeID == employeeID && rec.GeofenceID == geofenceID && sameDate(rec.AttendanceDate, date) {
			cp := rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) AttendanceForDate(ctx context.Context, geofenceID uuid.UUID, date time.Time) ([]model.AttendanceRecordModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.AttendanceRecordModel
	for _, rec := range s.attendance {
		if rec.GeofenceID == geofenceID && sameDate(rec.AttendanceDate, date) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].EmployeeID.String() < out[j].EmployeeID.String()
	})
	return out, nil
}

func (s *Store) SaveAttendanceUnlessExcused(ctx context.Context, rec *model.AttendanceRecordModel) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.attendance {
		if existing.EmployeeID == rec.EmployeeID &&
			existing.GeofenceID == rec.GeofenceID &&
			sameDate(existing.AttendanceDate, rec.AttendanceDate) {
			rec.AttendanceID = id
			if model.StatusExcused(existing.Status) {
				return false, nil
			}
			existing.MorningEntry = rec.MorningEntry
			existing.EveningEntry = rec.EveningEntry
			existing.Status = rec.Status
			existing.SourceSessionIDs = rec.SourceSessionIDs
			s.attendance[id] = existing
			return true, nil
		}
	}
	if rec.AttendanceID == uuid.Nil {
		rec.AttendanceID = uuid.New()
	}
	s.attendance[rec.AttendanceID] = *rec
	return true, nil
}

/* ================== المعاملات ================== */

func (s *Store) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	// لا تراجع rollback هنا: يكفي الاختبارات تنفيذ متسلسل
	return fn(s)
}
