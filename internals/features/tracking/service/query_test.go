// file: internals/features/tracking/service/query_test.go
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

func TestLiveSnapshot(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	// موظف ثانٍ أرسل قبل ساعة ثم صمت، وثالث لم يرسل قط
	silent := uuid.New()
	never := uuid.New()
	e.store.SeedAssignment(e.fence.GeofenceID, silent)
	e.store.SeedAssignment(e.fence.GeofenceID, never)

	e.now = at(4, 0, 0)
	_, err := e.ingest.Ingest(ctx, IngestInput{
		EmployeeID: silent,
		Latitude:   outsideLat,
		Longitude:  outsideLon,
		RecordedAt: at(4, 0, 0),
	})
	require.NoError(t, err)

	e.send(t, insideLat, insideLon, at(5, 0, 0))

	e.now = at(5, 2, 0)
	snap, err := e.query.LiveSnapshot(ctx, e.fence.GeofenceID)
	require.NoError(t, err)

	assert.Equal(t, e.fence.GeofenceID.String(), snap.Geofence.GeofenceID)
	assert.Equal(t, 1, snap.InsideCount)
	require.Len(t, snap.Employees, 3)

	byID := make(map[string]int, 3)
	for i, emp := range snap.Employees {
		byID[emp.EmployeeID] = i
	}

	active := snap.Employees[byID[e.emp.String()]]
	assert.True(t, active.Inside)
	assert.NotNil(t, active.OpenSessionID)
	assert.Equal(t, ConnectionConnected, active.ConnectionStatus)
	require.NotNil(t, active.AgeMinutes)
	assert.Equal(t, 2, *active.AgeMinutes)
	require.NotNil(t, active.DistanceFromCenter)
	assert.Less(t, *active.DistanceFromCenter, 100)

	stale := snap.Employees[byID[silent.String()]]
	assert.False(t, stale.Inside)
	assert.Equal(t, ConnectionDisconnected, stale.ConnectionStatus) // ساعة بلا إرسال

	missing := snap.Employees[byID[never.String()]]
	assert.False(t, missing.Inside)
	assert.Equal(t, ConnectionInactive, missing.ConnectionStatus)
	assert.Nil(t, missing.LastSeenAt)
}

func TestRosterSynthesizesAbsent(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	ghost := uuid.New()
	e.store.SeedAssignment(e.fence.GeofenceID, ghost)

	e.send(t, insideLat, insideLon, at(5, 0, 0))
	date := LocalDate(e.now, testTzOffset)
	_, err := e.classifier.ClassifyDate(ctx, e.fence.GeofenceID, date)
	require.NoError(t, err)

	// موظف انضم للكشف بعد التصنيف: يظهر غائباً مُصطنعاً دون كتابة
	late := uuid.New()
	e.store.SeedAssignment(e.fence.GeofenceID, late)

	roster, err := e.query.RosterForDate(ctx, e.fence.GeofenceID, date)
	require.NoError(t, err)
	require.Len(t, roster.Rows, 3)

	byID := make(map[string]int, 3)
	for i, row := range roster.Rows {
		byID[row.EmployeeID] = i
	}
	assert.True(t, roster.Rows[byID[e.emp.String()]].Persisted)
	assert.Equal(t, model.StatusPresent, roster.Rows[byID[e.emp.String()]].Status)
	assert.True(t, roster.Rows[byID[ghost.String()]].Persisted) // التصنيف كتب غيابه
	synthesized := roster.Rows[byID[late.String()]]
	assert.False(t, synthesized.Persisted)
	assert.Equal(t, model.StatusAbsent, synthesized.Status)

	rec, err := e.store.AttendanceFor(ctx, late, e.fence.GeofenceID, date)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestSessionsAndAggregates(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	e.send(t, insideLat, insideLon, at(5, 0, 0))
	e.send(t, outsideLat, outsideLon, at(6, 0, 0)) // 60 دقيقة
	e.send(t, insideLat, insideLon, at(7, 0, 0))
	e.send(t, outsideLat, outsideLon, at(7, 30, 0)) // 30 دقيقة

	from, to := at(4, 0, 0), at(10, 0, 0)
	sessions, err := e.query.Sessions(ctx, e.emp, e.fence.GeofenceID, from, to)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	// الأحدث أولاً
	assert.Equal(t, at(7, 0, 0), sessions[0].EntryTime)
	assert.Equal(t, at(5, 0, 0), sessions[1].EntryTime)
	assert.False(t, sessions[0].Active)

	agg, err := e.query.EmployeeAggregates(ctx, e.emp, e.fence.GeofenceID, from, to)
	require.NoError(t, err)
	assert.Equal(t, 2, agg.Visits)
	assert.Equal(t, 90, agg.TotalMinutes)
	assert.Equal(t, 45, agg.AverageMinutes)
}

func TestEventsTailLimit(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		e.send(t, insideLat, insideLon, at(5, i*20, 0))
		e.send(t, outsideLat, outsideLon, at(5, i*20+10, 0))
	}

	events, err := e.query.EventsTail(ctx, e.fence.GeofenceID, time.Time{}, time.Time{}, 3)
	require.NoError(t, err)
	require.Len(t, events, 3)
	// الأحدث أولاً: آخر خروج عند 06:10
	assert.Equal(t, model.EventExit, events[0].EventKind)
	assert.Equal(t, at(6, 10, 0), events[0].RecordedAt)
}

func TestDayStats(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	other := uuid.New()
	e.store.SeedAssignment(e.fence.GeofenceID, other)

	e.send(t, insideLat, insideLon, at(5, 0, 0))
	e.send(t, outsideLat, outsideLon, at(6, 0, 0))
	e.send(t, insideLat, insideLon, at(7, 0, 0))

	stats, err := e.query.DayStats(ctx, e.fence.GeofenceID, LocalDate(e.now, testTzOffset))
	require.NoError(t, err)
	assert.Equal(t, 2, stats.AssignedCount)
	assert.Equal(t, 1, stats.InsideNow)
	assert.Equal(t, 2, stats.EnteredToday)
	assert.Equal(t, 1, stats.ExitedToday)
}
