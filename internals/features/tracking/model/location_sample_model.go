package model

import (
	"time"

	"github.com/google/uuid"
)

// مصدر العينة
const (
	SampleSourceDevice = "device"
	SampleSourceManual = "manual"
)

// LocationSampleModel عينة موقع واردة من جهاز الموظف (لا تُعدَّل بعد الإدراج)
type LocationSampleModel struct {
	SampleID   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:sample_id" json:"sample_id"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_samples_employee_recorded;column:employee_id" json:"employee_id"`

	Latitude  float64 `gorm:"type:numeric(9,6);not null;column:latitude" json:"latitude"`
	Longitude float64 `gorm:"type:numeric(9,6);not null;column:longitude" json:"longitude"`

	RecordedAt time.Time `gorm:"not null;index:idx_samples_employee_recorded;column:recorded_at" json:"recorded_at"`
	ReceivedAt time.Time `gorm:"not null;column:received_at" json:"received_at"`

	Source string `gorm:"type:varchar(10);not null;default:'device';column:source" json:"source"`

	// أعلام الإدراج: عينة متأخرة (لا تدخل المُقيِّم) أو خارج النافذة الزمنية لمصدر يدوي
	OutOfOrder bool `gorm:"not null;default:false;column:out_of_order" json:"out_of_order"`
	OutOfBand  bool `gorm:"not null;default:false;column:out_of_band" json:"out_of_band"`
}

func (LocationSampleModel) TableName() string { return "location_samples" }
