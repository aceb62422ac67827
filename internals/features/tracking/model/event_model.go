package model

import (
	"time"

	"github.com/google/uuid"
)

// أنواع الأحداث
const (
	EventEnter          = "enter"
	EventExit           = "exit"
	EventBulkCheckIn    = "bulk_check_in"
	EventAutoAttendance = "auto_attendance"
)

// GeofenceEventModel سجل تدقيق غير قابل للتعديل: إضافة فقط، لا تحديث ولا حذف
type GeofenceEventModel struct {
	EventID    uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:event_id" json:"event_id"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index;column:employee_id" json:"employee_id"`
	GeofenceID uuid.UUID `gorm:"type:uuid;not null;index:idx_events_geofence_at;column:geofence_id" json:"geofence_id"`

	EventKind string `gorm:"type:varchar(20);not null;column:event_kind" json:"event_kind"`

	RecordedAt time.Time `gorm:"not null;index:idx_events_geofence_at,sort:desc;column:recorded_at" json:"recorded_at"`

	Latitude           float64 `gorm:"type:numeric(9,6);column:latitude" json:"latitude"`
	Longitude          float64 `gorm:"type:numeric(9,6);column:longitude" json:"longitude"`
	DistanceFromCenter int     `gorm:"column:distance_from_center" json:"distance_from_center"`

	SessionID    *uuid.UUID `gorm:"type:uuid;column:session_id" json:"session_id,omitempty"`
	AttendanceID *uuid.UUID `gorm:"type:uuid;column:attendance_id" json:"attendance_id,omitempty"`
}

func (GeofenceEventModel) TableName() string { return "geofence_events" }
