// file: internals/features/tracking/service/policy_test.go
package service

import (
	"testing"
	"time"

	"nuzum_backend/internals/features/tracking/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTzOffset = 3 * time.Hour

func testFence() *model.GeofenceModel {
	return &model.GeofenceModel{
		GeofenceName:         "المقر الرئيسي",
		CenterLatitude:       24.7136,
		CenterLongitude:      46.6753,
		RadiusMeters:         100,
		IsActive:             true,
		ShiftStart:           "08:00",
		GraceMinutes:         15,
		RequiredDwellMinutes: 30,
	}
}

func TestPolicyFrom(t *testing.T) {
	t.Run("سياسة سليمة مع النوافذ الافتراضية", func(t *testing.T) {
		p, err := PolicyFrom(testFence())
		require.NoError(t, err)
		assert.Equal(t, 8, p.ShiftStartHour)
		assert.Equal(t, 0, p.ShiftStartMinute)
		assert.Equal(t, 15, p.GraceMinutes)
		assert.Equal(t, HourWindow{5, 13}, p.Morning)
		assert.Equal(t, HourWindow{13, 23}, p.Evening)
	})

	t.Run("نوافذ مخصصة من صف الدائرة", func(t *testing.T) {
		fence := testFence()
		ms, me := 6, 11
		fence.MorningStartHour, fence.MorningEndHour = &ms, &me
		p, err := PolicyFrom(fence)
		require.NoError(t, err)
		assert.Equal(t, HourWindow{6, 11}, p.Morning)
	})

	t.Run("سياسات فاسدة", func(t *testing.T) {
		bad := []func(*model.GeofenceModel){
			func(g *model.GeofenceModel) { g.ShiftStart = "8h30" },
			func(g *model.GeofenceModel) { g.ShiftStart = "25:00" },
			func(g *model.GeofenceModel) { g.ShiftStart = "08:61" },
			func(g *model.GeofenceModel) { g.GraceMinutes = -1 },
			func(g *model.GeofenceModel) { g.RadiusMeters = 0 },
			func(g *model.GeofenceModel) { h := 24; g.MorningEndHour = &h },
		}
		for _, mutate := range bad {
			fence := testFence()
			mutate(fence)
			_, err := PolicyFrom(fence)
			assert.ErrorIs(t, err, ErrPolicyUnavailable)
		}
	})

	t.Run("دائرة معدومة", func(t *testing.T) {
		_, err := PolicyFrom(nil)
		assert.ErrorIs(t, err, ErrPolicyUnavailable)
	})
}

func TestPolicyStatusOf(t *testing.T) {
	p, err := PolicyFrom(testFence())
	require.NoError(t, err)
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	// بداية الدوام 08:00 محلياً = 05:00Z
	t.Run("وصول مبكر حاضر", func(t *testing.T) {
		entry := time.Date(2026, 3, 10, 4, 58, 0, 0, time.UTC)
		assert.Equal(t, model.StatusPresent, p.StatusOf(entry, date, testTzOffset))
	})

	t.Run("آخر ثانية من السماح حاضر", func(t *testing.T) {
		entry := time.Date(2026, 3, 10, 5, 15, 0, 0, time.UTC)
		assert.Equal(t, model.StatusPresent, p.StatusOf(entry, date, testTzOffset))
	})

	t.Run("دقيقة بعد السماح متأخر", func(t *testing.T) {
		entry := time.Date(2026, 3, 10, 5, 16, 0, 0, time.UTC)
		assert.Equal(t, model.StatusLate, p.StatusOf(entry, date, testTzOffset))
	})
}

func TestPolicyWindowOf(t *testing.T) {
	p, err := PolicyFrom(testFence())
	require.NoError(t, err)

	cases := []struct {
		name string
		utc  time.Time
		want string
	}{
		{"07:58 محلياً صباحية", time.Date(2026, 3, 10, 4, 58, 0, 0, time.UTC), WindowMorning},
		{"13:00 محلياً تُرجح الصباحية", time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC), WindowMorning},
		{"14:00 محلياً مسائية", time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC), WindowEvening},
		{"23:30 محلياً مسائية", time.Date(2026, 3, 10, 20, 30, 0, 0, time.UTC), WindowEvening},
		{"04:00 محلياً خارج النوافذ", time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC), WindowNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, p.WindowOf(tc.utc, testTzOffset))
		})
	}
}

func TestLocalDate(t *testing.T) {
	t.Run("منتصف النهار يبقى في نفس اليوم", func(t *testing.T) {
		at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), LocalDate(at, testTzOffset))
	})

	t.Run("المساء المتأخر يعبر إلى اليوم التالي محلياً", func(t *testing.T) {
		at := time.Date(2026, 3, 10, 22, 30, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), LocalDate(at, testTzOffset))
	})
}

func TestLocalDayRangeUTC(t *testing.T) {
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	from, to := LocalDayRangeUTC(date, testTzOffset)
	assert.Equal(t, time.Date(2026, 3, 9, 21, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 3, 10, 21, 0, 0, 0, time.UTC), to)
}
