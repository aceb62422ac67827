// file: internals/features/tracking/service/policy.go
package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"nuzum_backend/internals/features/tracking/model"
)

// النوافذ الافتراضية بالساعة المحلية
const (
	defaultMorningStartHour = 5
	defaultMorningEndHour   = 13
	defaultEveningStartHour = 13
	defaultEveningEndHour   = 23
)

const (
	WindowMorning = "morning"
	WindowEvening = "evening"
	WindowNone    = "none"
)

// HourWindow مجال مغلق من الساعات المحلية [StartHour, EndHour]
type HourWindow struct {
	StartHour int
	EndHour   int
}

func (w HourWindow) Contains(hour int) bool {
	return hour >= w.StartHour && hour <= w.EndHour
}

// Policy سياسة الحضور المشتقة من صف الدائرة الجغرافية.
// كل الساعات هنا محلية بتوقيت المشغّل.
type Policy struct {
	ShiftStartHour       int
	ShiftStartMinute     int
	GraceMinutes         int
	RequiredDwellMinutes int
	Morning              HourWindow
	Evening              HourWindow
}

// PolicyFrom اشتقاق السياسة والتحقق منها. فشل التحليل = ErrPolicyUnavailable
// ولا يُسقط المحرك أي قيم افتراضية صامتة مكان سياسة فاسدة.
func PolicyFrom(g *model.GeofenceModel) (Policy, error) {
	if g == nil {
		return Policy{}, ErrPolicyUnavailable
	}
	hour, minute, err := parseShiftStart(g.ShiftStart)
	if err != nil {
		return Policy{}, fmt.Errorf("%w: %v", ErrPolicyUnavailable, err)
	}
	if g.GraceMinutes < 0 || g.RequiredDwellMinutes < 0 {
		return Policy{}, fmt.Errorf("%w: negative minutes", ErrPolicyUnavailable)
	}
	if g.RadiusMeters <= 0 {
		return Policy{}, fmt.Errorf("%w: non-positive radius", ErrPolicyUnavailable)
	}

	p := Policy{
		ShiftStartHour:       hour,
		ShiftStartMinute:     minute,
		GraceMinutes:         g.GraceMinutes,
		RequiredDwellMinutes: g.RequiredDwellMinutes,
		Morning:              HourWindow{defaultMorningStartHour, defaultMorningEndHour},
		Evening:              HourWindow{defaultEveningStartHour, defaultEveningEndHour},
	}
	if g.MorningStartHour != nil {
		p.Morning.StartHour = *g.MorningStartHour
	}
	if g.MorningEndHour != nil {
		p.Morning.EndHour = *g.MorningEndHour
	}
	if g.EveningStartHour != nil {
		p.Evening.StartHour = *g.EveningStartHour
	}
	if g.EveningEndHour != nil {
		p.Evening.EndHour = *g.EveningEndHour
	}
	for _, w := range []HourWindow{p.Morning, p.Evening} {
		if w.StartHour < 0 || w.EndHour > 23 || w.StartHour > w.EndHour {
			return Policy{}, fmt.Errorf("%w: bad window %d..%d", ErrPolicyUnavailable, w.StartHour, w.EndHour)
		}
	}
	return p, nil
}

func parseShiftStart(raw string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("shift_start %q is not HH:MM", raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("shift_start hour %q out of range", parts[0])
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("shift_start minute %q out of range", parts[1])
	}
	return hour, minute, nil
}

// WindowOf نافذة لحظة الدخول حسب الساعة المحلية.
// عند تداخل النافذتين على ساعة الحد تُرجَّح الصباحية.
func (p Policy) WindowOf(entryUTC time.Time, tzOffset time.Duration) string {
	hour := entryUTC.Add(tzOffset).UTC().Hour()
	switch {
	case p.Morning.Contains(hour):
		return WindowMorning
	case p.Evening.Contains(hour):
		return WindowEvening
	default:
		return WindowNone
	}
}

// ShiftStartUTC لحظة بداية الدوام باليوم المحلي المعطى، محوّلة إلى UTC.
func (p Policy) ShiftStartUTC(localDate time.Time, tzOffset time.Duration) time.Time {
	local := time.Date(localDate.Year(), localDate.Month(), localDate.Day(),
		p.ShiftStartHour, p.ShiftStartMinute, 0, 0, time.UTC)
	return local.Add(-tzOffset)
}

// StatusOf حاضر أو متأخر حسب أول دخول مقابل بداية الدوام وفترة السماح.
// الوصول عند آخر ثانية من فترة السماح يُحسب حاضراً.
func (p Policy) StatusOf(entryUTC, localDate time.Time, tzOffset time.Duration) string {
	deadline := p.ShiftStartUTC(localDate, tzOffset).
		Add(time.Duration(p.GraceMinutes) * time.Minute)
	if entryUTC.After(deadline) {
		return model.StatusLate
	}
	return model.StatusPresent
}

/* ================== تواريخ محلية ================== */

// LocalDate يُرجع منتصف ليل اليوم المحلي للحظة المعطاة (بحقول UTC).
func LocalDate(t time.Time, tzOffset time.Duration) time.Time {
	local := t.Add(tzOffset).UTC()
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// LocalDayRangeUTC حدود اليوم المحلي [from, to) بتوقيت UTC.
func LocalDayRangeUTC(localDate time.Time, tzOffset time.Duration) (time.Time, time.Time) {
	from := time.Date(localDate.Year(), localDate.Month(), localDate.Day(),
		0, 0, 0, 0, time.UTC).Add(-tzOffset)
	return from, from.Add(24 * time.Hour)
}
