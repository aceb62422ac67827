package seeds

import (
	geofences "nuzum_backend/internals/seeds/tracking/geofences"

	"gorm.io/gorm"
)

func RunAllSeeds(db *gorm.DB) {

	//* Tracking
	geofences.SeedGeofencesFromJSON(db, "internals/seeds/tracking/geofences/data_geofences.json")
}
