// file: internals/features/tracking/service/bulk_test.go
package service

import (
	"context"
	"testing"
	"time"

	"nuzum_backend/internals/features/tracking/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bulkEvents(e *testEngine, kind string) []model.GeofenceEventModel {
	var out []model.GeofenceEventModel
	for _, ev := range e.store.AllEvents() {
		if ev.EventKind == kind {
			out = append(out, ev)
		}
	}
	return out
}

func TestBulkCheckInIdempotent(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	// جلسة مفتوحة منذ 08:10 محلياً
	e.send(t, insideLat, insideLon, at(5, 10, 0))

	e.now = at(5, 30, 0)
	first, err := e.bulk.BulkCheckIn(ctx, e.fence.GeofenceID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{e.emp}, first.CheckedIn)

	rec := e.attendanceToday(t)
	require.NotNil(t, rec)
	assert.Equal(t, model.StatusPresent, rec.Status)
	require.NotNil(t, rec.MorningEntry)
	assert.Equal(t, at(5, 30, 0), *rec.MorningEntry)
	require.Len(t, bulkEvents(e, model.EventBulkCheckIn), 1)

	// النداء الثاني: لا صف جديد ولا حدث جديد
	e.now = at(5, 45, 0)
	second, err := e.bulk.BulkCheckIn(ctx, e.fence.GeofenceID)
	require.NoError(t, err)
	assert.Empty(t, second.CheckedIn)
	assert.Equal(t, []uuid.UUID{e.emp}, second.AlreadyChecked)

	again := e.attendanceToday(t)
	assert.Equal(t, rec.AttendanceID, again.AttendanceID)
	assert.Equal(t, *rec.MorningEntry, *again.MorningEntry)
	assert.Len(t, bulkEvents(e, model.EventBulkCheckIn), 1)
}

func TestBulkCheckInBuckets(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	// موظف بجلسة مفتوحة لكنه ليس على كشف الدائرة (أُزيل بعد الدخول)
	stray := uuid.New()
	_, _, err := e.sessions.Open(ctx, stray, e.fence.GeofenceID, at(5, 0, 0), insideLat, insideLon, 10)
	require.NoError(t, err)

	// موظف معذور بصف إجازة وجلسة مفتوحة
	excused := uuid.New()
	e.store.SeedAssignment(e.fence.GeofenceID, excused)
	e.store.SeedAttendance(model.AttendanceRecordModel{
		EmployeeID:     excused,
		GeofenceID:     e.fence.GeofenceID,
		AttendanceDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Status:         model.StatusSick,
	})
	_, _, err = e.sessions.Open(ctx, excused, e.fence.GeofenceID, at(5, 5, 0), insideLat, insideLon, 10)
	require.NoError(t, err)

	e.send(t, insideLat, insideLon, at(5, 10, 0))

	e.now = at(5, 30, 0)
	res, err := e.bulk.BulkCheckIn(ctx, e.fence.GeofenceID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{e.emp}, res.CheckedIn)
	assert.Equal(t, []uuid.UUID{stray}, res.NotInRoster)
	assert.Equal(t, []uuid.UUID{excused}, res.SkippedExcused)
	assert.Empty(t, res.Failed)

	// صف المرض لم يُرقَّ ولا حدث له
	rec, err := e.store.AttendanceFor(ctx, excused, e.fence.GeofenceID, LocalDate(e.now, testTzOffset))
	require.NoError(t, err)
	assert.Equal(t, model.StatusSick, rec.Status)
}

func TestBulkCheckInReportsNoOpenSession(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	// زميل على الكشف لم يدخل الدائرة اليوم
	away := uuid.New()
	e.store.SeedAssignment(e.fence.GeofenceID, away)

	e.send(t, insideLat, insideLon, at(5, 10, 0))

	e.now = at(5, 30, 0)
	res, err := e.bulk.BulkCheckIn(ctx, e.fence.GeofenceID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{e.emp}, res.CheckedIn)
	assert.Equal(t, []uuid.UUID{away}, res.NoOpenSession)

	// لا صف حضور ولا حدث لمن لم تشمله العملية
	rec, err := e.store.AttendanceFor(ctx, away, e.fence.GeofenceID, LocalDate(e.now, testTzOffset))
	require.NoError(t, err)
	assert.Nil(t, rec)
	require.Len(t, bulkEvents(e, model.EventBulkCheckIn), 1)
}

func TestBulkCheckInUpgradesAbsentRow(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	date := LocalDate(at(5, 0, 0), testTzOffset)

	// تصنيف مبكر كتب صف غياب، ثم ظهر الموظف
	_, err := e.classifier.ClassifyDate(ctx, e.fence.GeofenceID, date)
	require.NoError(t, err)
	before, err := e.store.AttendanceFor(ctx, e.emp, e.fence.GeofenceID, date)
	require.NoError(t, err)
	require.Equal(t, model.StatusAbsent, before.Status)

	e.send(t, insideLat, insideLon, at(5, 10, 0))
	e.now = at(5, 12, 0)
	res, err := e.bulk.BulkCheckIn(ctx, e.fence.GeofenceID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{e.emp}, res.CheckedIn)

	after, err := e.store.AttendanceFor(ctx, e.emp, e.fence.GeofenceID, date)
	require.NoError(t, err)
	assert.Equal(t, before.AttendanceID, after.AttendanceID) // نفس الصف رُقّي
	assert.Equal(t, model.StatusPresent, after.Status)
}

func TestAutoRecordDwell(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	// مدة المكوث المطلوبة 30 دقيقة: جلسة من 05:00 لا تتأهل عند 05:20
	e.send(t, insideLat, insideLon, at(5, 0, 0))

	e.now = at(5, 20, 0)
	res, err := e.bulk.AutoRecord(ctx, e.fence.GeofenceID)
	require.NoError(t, err)
	assert.Empty(t, res.CheckedIn)
	assert.Equal(t, []uuid.UUID{e.emp}, res.SkippedDwell)
	assert.Nil(t, e.attendanceToday(t))

	// وعند 05:35 تتأهل، والحالة من لحظة الدخول لا لحظة الأمر
	e.now = at(5, 35, 0)
	res, err = e.bulk.AutoRecord(ctx, e.fence.GeofenceID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{e.emp}, res.CheckedIn)

	rec := e.attendanceToday(t)
	require.NotNil(t, rec)
	assert.Equal(t, model.StatusPresent, rec.Status) // دخل 08:00 محلياً تماماً
	require.NotNil(t, rec.MorningEntry)
	assert.Equal(t, at(5, 0, 0), *rec.MorningEntry)
	require.Len(t, bulkEvents(e, model.EventAutoAttendance), 1)
}
