package model

import (
	"time"

	"github.com/google/uuid"
)

// حالات الحضور. المحرك يشتق present/absent/late فقط؛
// leave/sick تكتبها أنظمة أخرى ولا يجوز الكتابة فوقها.
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
	StatusLeave   = "leave"
	StatusSick    = "sick"
)

// AttendanceRecordModel صف حضور يومي لكل (موظف، دائرة، تاريخ محلي)
type AttendanceRecordModel struct {
	AttendanceID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:attendance_id" json:"attendance_id"`
	EmployeeID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_attendance_unique;column:employee_id" json:"employee_id"`
	GeofenceID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_attendance_unique;column:geofence_id" json:"geofence_id"`

	// التاريخ المحلي بتوقيت المشغّل (يُخزَّن كتاريخ فقط)
	AttendanceDate time.Time `gorm:"type:date;not null;uniqueIndex:idx_attendance_unique;column:attendance_date" json:"attendance_date"`

	MorningEntry *time.Time `gorm:"column:morning_entry" json:"morning_entry,omitempty"`
	EveningEntry *time.Time `gorm:"column:evening_entry" json:"evening_entry,omitempty"`

	Status string `gorm:"type:varchar(10);not null;default:'absent';column:status" json:"status"`

	SourceSessionIDs []uuid.UUID `gorm:"serializer:json;column:source_session_ids" json:"source_session_ids"`

	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at,omitempty"`
}

func (AttendanceRecordModel) TableName() string { return "attendance_records" }

// StatusExcused هل الحالة محجوزة لنظام آخر (إجازة/مرضي)؟
func StatusExcused(status string) bool {
	return status == StatusLeave || status == StatusSick
}
