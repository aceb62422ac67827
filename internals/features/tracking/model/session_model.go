package model

import (
	"time"

	"github.com/google/uuid"
)

// PresenceSessionModel جلسة تواجد موظف داخل دائرة (من الدخول إلى الخروج)
//
// جلسة مفتوحة واحدة كحد أقصى لكل (موظف، دائرة): تُفرض بفهرس
// فريد جزئي WHERE exit_time IS NULL (انظر databases.Migrate).
type PresenceSessionModel struct {
	SessionID  uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:session_id" json:"session_id"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index;column:employee_id" json:"employee_id"`
	GeofenceID uuid.UUID `gorm:"type:uuid;not null;index;column:geofence_id" json:"geofence_id"`

	EntryTime time.Time  `gorm:"not null;index;column:entry_time" json:"entry_time"`
	ExitTime  *time.Time `gorm:"column:exit_time" json:"exit_time,omitempty"`

	// تُحسب عند الإغلاق؛ أثناء الجلسة المفتوحة استخدم DurationMinutesAt
	DurationMinutes *int `gorm:"column:duration_minutes" json:"duration_minutes,omitempty"`

	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at,omitempty"`
}

func (PresenceSessionModel) TableName() string { return "presence_sessions" }

func (s *PresenceSessionModel) IsActive() bool { return s.ExitTime == nil }

// DurationMinutesAt مدة الجلسة بالدقائق عند اللحظة now (مقطوعة للأسفل)
func (s *PresenceSessionModel) DurationMinutesAt(now time.Time) int {
	end := now
	if s.ExitTime != nil {
		end = *s.ExitTime
	}
	d := end.Sub(s.EntryTime)
	if d < 0 {
		return 0
	}
	return int(d.Minutes())
}
