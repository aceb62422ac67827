// file: internals/features/tracking/dto/tracking_dto.go
package dto

import "time"

/* ================== الطلبات ================== */

// LocationSampleRequest جسم استيعاب عينة موقع واحدة من المجمّع.
type LocationSampleRequest struct {
	EmployeeID string    `json:"employee_id" validate:"required,uuid"`
	Latitude   float64   `json:"latitude" validate:"min=-90,max=90"`
	Longitude  float64   `json:"longitude" validate:"min=-180,max=180"`
	RecordedAt time.Time `json:"recorded_at" validate:"required"`
	Source     string    `json:"source" validate:"omitempty,oneof=device manual"`
}

// BulkActionRequest جسم إجراء جماعي على دائرة واحدة.
type BulkActionRequest struct {
	GeofenceID string `json:"geofence_id" validate:"required,uuid"`
}

// ClassifyRequest طلب تصنيف يوم محلي واحد لدائرة واحدة.
type ClassifyRequest struct {
	GeofenceID string `json:"geofence_id" validate:"required,uuid"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
}

/* ================== الاستجابات ================== */

// IngestResponse إقرار الاستيعاب للمجمّع.
type IngestResponse struct {
	SampleID   string `json:"sample_id,omitempty"`
	Stored     bool   `json:"stored"`
	Throttled  bool   `json:"throttled"`
	OutOfOrder bool   `json:"out_of_order"`
	OutOfBand  bool   `json:"out_of_band"`
}

// GeofenceSummary رأس الدائرة المتكرر في استجابات الاستعلام.
type GeofenceSummary struct {
	GeofenceID      string  `json:"geofence_id"`
	GeofenceName    string  `json:"geofence_name"`
	CenterLatitude  float64 `json:"center_latitude"`
	CenterLongitude float64 `json:"center_longitude"`
	RadiusMeters    int     `json:"radius_meters"`
}

// EmployeePresence حالة موظف واحد في اللقطة الحية.
type EmployeePresence struct {
	EmployeeID         string     `json:"employee_id"`
	Latitude           *float64   `json:"latitude,omitempty"`
	Longitude          *float64   `json:"longitude,omitempty"`
	DistanceFromCenter *int       `json:"distance_from_center,omitempty"`
	Inside             bool       `json:"inside"`
	LastSeenAt         *time.Time `json:"last_seen_at,omitempty"`
	AgeMinutes         *int       `json:"age_minutes,omitempty"`
	ConnectionStatus   string     `json:"connection_status"`
	OpenSessionID      *string    `json:"open_session_id,omitempty"`
	SessionEntryTime   *time.Time `json:"session_entry_time,omitempty"`
}

// LiveSnapshotResponse اللقطة الحية لدائرة واحدة.
type LiveSnapshotResponse struct {
	Geofence    GeofenceSummary    `json:"geofence"`
	GeneratedAt time.Time          `json:"generated_at"`
	InsideCount int                `json:"inside_count"`
	Employees   []EmployeePresence `json:"employees"`
}

// AttendanceRow صف حضور في استجابة كشف اليوم.
// Persisted=false يعني صفاً غيابياً مُصطنعاً للعرض لم يُكتب بعد.
type AttendanceRow struct {
	EmployeeID       string     `json:"employee_id"`
	Date             string     `json:"date"`
	MorningEntry     *time.Time `json:"morning_entry,omitempty"`
	EveningEntry     *time.Time `json:"evening_entry,omitempty"`
	Status           string     `json:"status"`
	SourceSessionIDs []string   `json:"source_session_ids,omitempty"`
	Persisted        bool       `json:"persisted"`
}

// RosterResponse كشف حضور يوم محلي كامل لدائرة واحدة.
type RosterResponse struct {
	Geofence GeofenceSummary `json:"geofence"`
	Date     string          `json:"date"`
	Rows     []AttendanceRow `json:"rows"`
}

// SessionResponse جلسة تواجد واحدة.
type SessionResponse struct {
	SessionID       string     `json:"session_id"`
	EmployeeID      string     `json:"employee_id"`
	GeofenceID      string     `json:"geofence_id"`
	EntryTime       time.Time  `json:"entry_time"`
	ExitTime        *time.Time `json:"exit_time,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	Active          bool       `json:"active"`
}

// EventResponse حدث دائرة واحد في ذيل الأحداث.
type EventResponse struct {
	EventID            string    `json:"event_id"`
	EmployeeID         string    `json:"employee_id"`
	GeofenceID         string    `json:"geofence_id"`
	EventKind          string    `json:"event_kind"`
	RecordedAt         time.Time `json:"recorded_at"`
	Latitude           float64   `json:"latitude"`
	Longitude          float64   `json:"longitude"`
	DistanceFromCenter int       `json:"distance_from_center"`
	SessionID          *string   `json:"session_id,omitempty"`
	AttendanceID       *string   `json:"attendance_id,omitempty"`
}

// EmployeeAggregates خلاصة زيارات موظف واحد لدائرة في مدى زمني.
type EmployeeAggregates struct {
	EmployeeID     string    `json:"employee_id"`
	GeofenceID     string    `json:"geofence_id"`
	From           time.Time `json:"from"`
	To             time.Time `json:"to"`
	Visits         int       `json:"visits"`
	TotalMinutes   int       `json:"total_minutes"`
	AverageMinutes int       `json:"average_minutes"`
}

// DayStats عدادات يوم محلي واحد لدائرة واحدة.
type DayStats struct {
	GeofenceID    string `json:"geofence_id"`
	Date          string `json:"date"`
	AssignedCount int    `json:"assigned_count"`
	InsideNow     int    `json:"inside_now"`
	EnteredToday  int    `json:"entered_today"`
	ExitedToday   int    `json:"exited_today"`
}
