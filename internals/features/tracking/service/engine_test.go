// file: internals/features/tracking/service/engine_test.go
package service

import (
	"context"
	"testing"
	"time"

	"nuzum_backend/internals/features/tracking/model"
	"nuzum_backend/internals/features/tracking/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// نقاط مرجعية حول مقر الرياض: الداخلية على نحو 10 أمتار من المركز
// والخارجية على مئات الأمتار
const (
	centerLat = 24.7136
	centerLon = 46.6753

	insideLat  = 24.7136
	insideLon  = 46.6754
	outsideLat = 24.7200
	outsideLon = 46.6800
)

// testEngine يجمع خدمات المحرك فوق مخزن الذاكرة بساعة قابلة للتحريك.
type testEngine struct {
	store      *memory.Store
	sessions   *SessionManager
	evaluator  *Evaluator
	ingest     *IngestService
	classifier *Classifier
	bulk       *BulkService
	query      *QueryService

	now   time.Time
	fence model.GeofenceModel
	emp   uuid.UUID
}

func newTestEngine(t *testing.T) *testEngine {
	t.Helper()
	store := memory.New()
	e := &testEngine{
		store: store,
		now:   time.Date(2026, 3, 10, 4, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return e.now }

	e.sessions = NewSessionManager(store)
	e.evaluator = NewEvaluator(store, e.sessions)
	e.ingest = NewIngestService(store, e.evaluator).WithClock(clock)
	e.classifier = NewClassifier(store, testTzOffset)
	e.bulk = NewBulkService(store, testTzOffset).WithClock(clock)
	e.query = NewQueryService(store, testTzOffset).WithClock(clock)

	e.fence = store.SeedGeofence(*testFence())
	e.emp = uuid.New()
	store.SeedAssignment(e.fence.GeofenceID, e.emp)
	return e
}

// send عينة جهاز بختم زمني at مع تقديم الساعة إليه.
func (e *testEngine) send(t *testing.T, lat, lon float64, at time.Time) IngestAck {
	t.Helper()
	e.now = at
	ack, err := e.ingest.Ingest(context.Background(), IngestInput{
		EmployeeID: e.emp,
		Latitude:   lat,
		Longitude:  lon,
		RecordedAt: at,
	})
	require.NoError(t, err)
	return ack
}

func (e *testEngine) openSession(t *testing.T) *model.PresenceSessionModel {
	t.Helper()
	sess, err := e.store.OpenSessionFor(context.Background(), e.emp, e.fence.GeofenceID)
	require.NoError(t, err)
	return sess
}

func (e *testEngine) attendanceToday(t *testing.T) *model.AttendanceRecordModel {
	t.Helper()
	rec, err := e.store.AttendanceFor(context.Background(), e.emp, e.fence.GeofenceID,
		LocalDate(e.now, testTzOffset))
	require.NoError(t, err)
	return rec
}

func at(hour, minute, second int) time.Time {
	return time.Date(2026, 3, 10, hour, minute, second, 0, time.UTC)
}

/* ================== سيناريوهات من البداية للنهاية ================== */

func TestOnTimeArrival(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	e.send(t, outsideLat, outsideLon, at(4, 55, 0))
	require.Nil(t, e.openSession(t))

	e.send(t, insideLat, insideLon, at(4, 58, 0))

	sess := e.openSession(t)
	require.NotNil(t, sess)
	assert.Equal(t, at(4, 58, 0), sess.EntryTime)

	events := e.store.AllEvents()
	require.Len(t, events, 1)
	assert.Equal(t, model.EventEnter, events[0].EventKind)
	assert.Equal(t, at(4, 58, 0), events[0].RecordedAt)
	require.NotNil(t, events[0].SessionID)
	assert.Equal(t, sess.SessionID, *events[0].SessionID)

	_, err := e.classifier.ClassifyDate(ctx, e.fence.GeofenceID, LocalDate(e.now, testTzOffset))
	require.NoError(t, err)

	rec := e.attendanceToday(t)
	require.NotNil(t, rec)
	require.NotNil(t, rec.MorningEntry)
	assert.Equal(t, at(4, 58, 0), *rec.MorningEntry) // 07:58 محلياً
	assert.Equal(t, model.StatusPresent, rec.Status)
}

func TestLateArrival(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	e.send(t, insideLat, insideLon, at(5, 20, 0)) // 08:20 محلياً

	sess := e.openSession(t)
	require.NotNil(t, sess)
	assert.Equal(t, at(5, 20, 0), sess.EntryTime)

	_, err := e.classifier.ClassifyDate(ctx, e.fence.GeofenceID, LocalDate(e.now, testTzOffset))
	require.NoError(t, err)

	rec := e.attendanceToday(t)
	require.NotNil(t, rec)
	require.NotNil(t, rec.MorningEntry)
	assert.Equal(t, at(5, 20, 0), *rec.MorningEntry)
	assert.Equal(t, model.StatusLate, rec.Status) // تجاوز السماح بخمس دقائق
}

func TestExitAndReEnter(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	e.send(t, insideLat, insideLon, at(5, 0, 0))
	e.send(t, outsideLat, outsideLon, at(6, 0, 0))
	e.send(t, insideLat, insideLon, at(7, 0, 0))
	e.send(t, outsideLat, outsideLon, at(9, 0, 0))

	require.Nil(t, e.openSession(t))

	from, to := LocalDayRangeUTC(LocalDate(e.now, testTzOffset), testTzOffset)
	sessions, err := e.store.SessionsEnteredBetween(ctx, e.fence.GeofenceID, from, to)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, at(5, 0, 0), sessions[0].EntryTime)
	require.NotNil(t, sessions[0].ExitTime)
	assert.Equal(t, at(6, 0, 0), *sessions[0].ExitTime)
	assert.Equal(t, at(7, 0, 0), sessions[1].EntryTime)
	require.NotNil(t, sessions[1].ExitTime)
	assert.Equal(t, at(9, 0, 0), *sessions[1].ExitTime)

	events := e.store.AllEvents()
	require.Len(t, events, 4)
	kinds := []string{events[0].EventKind, events[1].EventKind, events[2].EventKind, events[3].EventKind}
	assert.Equal(t, []string{model.EventEnter, model.EventExit, model.EventEnter, model.EventExit}, kinds)

	_, err = e.classifier.ClassifyDate(ctx, e.fence.GeofenceID, LocalDate(e.now, testTzOffset))
	require.NoError(t, err)

	rec := e.attendanceToday(t)
	require.NotNil(t, rec)
	require.NotNil(t, rec.MorningEntry)
	assert.Equal(t, at(5, 0, 0), *rec.MorningEntry)
	assert.Equal(t, model.StatusPresent, rec.Status)
	assert.ElementsMatch(t,
		[]uuid.UUID{sessions[0].SessionID, sessions[1].SessionID},
		rec.SourceSessionIDs)
}

func TestClockSkewedSampleDoesNotClose(t *testing.T) {
	e := newTestEngine(t)

	e.send(t, insideLat, insideLon, at(6, 0, 5))
	require.NotNil(t, e.openSession(t))

	// عينة أقدم من آخر عينة مقبولة: تُخزَّن معلَّمة ولا تصل المُقيِّم
	e.now = at(6, 1, 0)
	ack, err := e.ingest.Ingest(context.Background(), IngestInput{
		EmployeeID: e.emp,
		Latitude:   outsideLat,
		Longitude:  outsideLon,
		RecordedAt: at(6, 0, 0),
	})
	require.NoError(t, err)
	assert.True(t, ack.Stored)
	assert.True(t, ack.OutOfOrder)

	// الجلسة باقية مفتوحة ولا حدث خروج زائف
	require.NotNil(t, e.openSession(t))
	events := e.store.AllEvents()
	require.Len(t, events, 1)
	assert.Equal(t, model.EventEnter, events[0].EventKind)
}

func TestSampleAtEntryTimeDoesNotClose(t *testing.T) {
	e := newTestEngine(t)

	e.send(t, insideLat, insideLon, at(6, 0, 5))
	sess := e.openSession(t)
	require.NotNil(t, sess)

	// عينة خارجية بنفس ثانية دخول الجلسة: ليست خارج الترتيب لكنها لا تُقيَّم
	ack := e.send(t, outsideLat, outsideLon, at(6, 0, 5))
	assert.True(t, ack.Stored)
	assert.False(t, ack.OutOfOrder)
	assert.False(t, ack.Throttled)

	still := e.openSession(t)
	require.NotNil(t, still)
	assert.Equal(t, sess.SessionID, still.SessionID)

	events := e.store.AllEvents()
	require.Len(t, events, 1)
	assert.Equal(t, model.EventEnter, events[0].EventKind)
}

/* ================== خصائص الجلسات ================== */

func TestAtMostOneOpenSessionPerPair(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	first, created, err := e.sessions.Open(ctx, e.emp, e.fence.GeofenceID, at(5, 0, 0), insideLat, insideLon, 10)
	require.NoError(t, err)
	require.True(t, created)

	// فتح ثانٍ لنفس الزوج: لا جلسة جديدة ولا حدث جديد
	second, created, err := e.sessions.Open(ctx, e.emp, e.fence.GeofenceID, at(5, 30, 0), insideLat, insideLon, 10)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Len(t, e.store.AllEvents(), 1)
}

func TestCloseWithoutOpenIsNoOp(t *testing.T) {
	e := newTestEngine(t)

	_, closed, err := e.sessions.Close(context.Background(), e.emp, e.fence.GeofenceID,
		at(6, 0, 0), outsideLat, outsideLon, 800)
	require.NoError(t, err)
	assert.False(t, closed)
	assert.Empty(t, e.store.AllEvents())
}

func TestCloseClampsExitToEntry(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, _, err := e.sessions.Open(ctx, e.emp, e.fence.GeofenceID, at(6, 0, 5), insideLat, insideLon, 10)
	require.NoError(t, err)

	sess, closed, err := e.sessions.Close(ctx, e.emp, e.fence.GeofenceID, at(6, 0, 0), outsideLat, outsideLon, 800)
	require.NoError(t, err)
	require.True(t, closed)
	require.NotNil(t, sess.ExitTime)
	assert.Equal(t, at(6, 0, 5), *sess.ExitTime) // لا خروج قبل الدخول
	require.NotNil(t, sess.DurationMinutes)
	assert.Equal(t, 0, *sess.DurationMinutes)
}

func TestCloseAllOpenAtDayBoundary(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	other := uuid.New()
	e.store.SeedAssignment(e.fence.GeofenceID, other)
	_, _, err := e.sessions.Open(ctx, e.emp, e.fence.GeofenceID, at(18, 0, 0), insideLat, insideLon, 10)
	require.NoError(t, err)
	_, _, err = e.sessions.Open(ctx, other, e.fence.GeofenceID, at(19, 0, 0), insideLat, insideLon, 10)
	require.NoError(t, err)

	boundary := time.Date(2026, 3, 10, 21, 0, 0, 0, time.UTC) // منتصف الليل محلياً
	closed, err := e.sessions.CloseAllOpen(ctx, boundary)
	require.NoError(t, err)
	assert.Equal(t, 2, closed)

	active, err := e.store.ActiveSessions(ctx, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, active)
}
