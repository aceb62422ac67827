package model

import (
	"time"

	"github.com/google/uuid"
)

// GeofenceModel دائرة جغرافية مع سياسة الحضور الخاصة بها
type GeofenceModel struct {
	GeofenceID   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:geofence_id" json:"geofence_id"`
	GeofenceName string    `gorm:"type:varchar(200);not null;column:geofence_name" json:"geofence_name"`

	CenterLatitude  float64 `gorm:"type:numeric(9,6);not null;column:center_latitude" json:"center_latitude"`
	CenterLongitude float64 `gorm:"type:numeric(9,6);not null;column:center_longitude" json:"center_longitude"`
	RadiusMeters    int     `gorm:"not null;column:radius_meters" json:"radius_meters"`

	IsActive bool `gorm:"not null;default:true;column:is_active" json:"is_active"`

	// سياسة الحضور (يفسّرها policy.go: القيم الفارغة/الخاطئة = PolicyUnavailable)
	ShiftStart           string `gorm:"type:varchar(5);default:'08:00';column:shift_start" json:"shift_start"` // HH:MM بالتوقيت المحلي
	GraceMinutes         int    `gorm:"not null;default:15;column:grace_minutes" json:"grace_minutes"`
	RequiredDwellMinutes int    `gorm:"not null;default:30;column:required_dwell_minutes" json:"required_dwell_minutes"`

	// نوافذ الفترتين بالساعة المحلية، مغلقة من الطرفين. nil = الافتراضي (صباح 5–13، مساء 13–23)
	MorningStartHour *int `gorm:"column:morning_start_hour" json:"morning_start_hour,omitempty"`
	MorningEndHour   *int `gorm:"column:morning_end_hour" json:"morning_end_hour,omitempty"`
	EveningStartHour *int `gorm:"column:evening_start_hour" json:"evening_start_hour,omitempty"`
	EveningEndHour   *int `gorm:"column:evening_end_hour" json:"evening_end_hour,omitempty"`

	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at,omitempty"`
}

func (GeofenceModel) TableName() string { return "geofences" }

// GeofenceAssignmentModel ربط موظف بدائرة (many-to-many عبر صف وصل)
type GeofenceAssignmentModel struct {
	GeofenceID uuid.UUID `gorm:"type:uuid;primaryKey;column:geofence_id" json:"geofence_id"`
	EmployeeID uuid.UUID `gorm:"type:uuid;primaryKey;index;column:employee_id" json:"employee_id"`

	AssignedAt time.Time `gorm:"column:assigned_at;autoCreateTime" json:"assigned_at"`
}

func (GeofenceAssignmentModel) TableName() string { return "geofence_assignments" }
