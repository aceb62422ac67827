package geofences

import (
	"encoding/json"
	"log"
	"os"

	"nuzum_backend/internals/features/tracking/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// بنية ملف البذور: دائرة مع معرفات موظفيها
type GeofenceSeed struct {
	GeofenceName         string   `json:"geofence_name"`
	CenterLatitude       float64  `json:"center_latitude"`
	CenterLongitude      float64  `json:"center_longitude"`
	RadiusMeters         int      `json:"radius_meters"`
	ShiftStart           string   `json:"shift_start"`
	GraceMinutes         int      `json:"grace_minutes"`
	RequiredDwellMinutes int      `json:"required_dwell_minutes"`
	EmployeeIDs          []string `json:"employee_ids"`
}

func SeedGeofencesFromJSON(db *gorm.DB, filePath string) {
	log.Println("📥 قراءة ملف البذور:", filePath)

	file, err := os.ReadFile(filePath)
	if err != nil {
		log.Fatalf("❌ فشل قراءة ملف JSON: %v", err)
	}

	var fences []GeofenceSeed
	if err := json.Unmarshal(file, &fences); err != nil {
		log.Fatalf("❌ فشل تحليل JSON: %v", err)
	}

	for _, f := range fences {
		var existing model.GeofenceModel
		if err := db.Where("geofence_name = ?", f.GeofenceName).First(&existing).Error; err == nil {
			log.Printf("ℹ️ الدائرة %s موجودة، تخطٍ...", f.GeofenceName)
			continue
		}

		fence := model.GeofenceModel{
			GeofenceID:           uuid.New(),
			GeofenceName:         f.GeofenceName,
			CenterLatitude:       f.CenterLatitude,
			CenterLongitude:      f.CenterLongitude,
			RadiusMeters:         f.RadiusMeters,
			IsActive:             true,
			ShiftStart:           f.ShiftStart,
			GraceMinutes:         f.GraceMinutes,
			RequiredDwellMinutes: f.RequiredDwellMinutes,
		}
		if err := db.Create(&fence).Error; err != nil {
			log.Fatalf("❌ فشل إدراج الدائرة %s: %v", f.GeofenceName, err)
		}

		for _, raw := range f.EmployeeIDs {
			employeeID, err := uuid.Parse(raw)
			if err != nil {
				log.Printf("⚠️ معرف موظف فاسد %q في %s، تخطٍ", raw, f.GeofenceName)
				continue
			}
			assignment := model.GeofenceAssignmentModel{
				GeofenceID: fence.GeofenceID,
				EmployeeID: employeeID,
			}
			if err := db.Create(&assignment).Error; err != nil {
				log.Printf("⚠️ فشل ربط الموظف %s بالدائرة %s: %v", employeeID, f.GeofenceName, err)
			}
		}
		log.Printf("✅ أُدرجت الدائرة %s مع %d موظفاً", f.GeofenceName, len(f.EmployeeIDs))
	}
}
