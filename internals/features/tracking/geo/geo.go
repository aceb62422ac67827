// file: internals/features/tracking/geo/geo.go
package geo

import "math"

// نصف قطر الأرض بالمتر (حسب صيغة Haversine)
const earthRadiusMeters = 6371000.0

// DistanceMeters حساب المسافة بين نقطتين بصيغة Haversine (بالمتر)
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := radians(lat1)
	rlat2 := radians(lat2)
	dlat := radians(lat2 - lat1)
	dlon := radians(lon2 - lon1)

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// Inside: هل النقطة داخل الدائرة؟ الحد = داخل (قرص مغلق)
func Inside(lat, lon, centerLat, centerLon float64, radiusMeters float64) bool {
	return DistanceMeters(lat, lon, centerLat, centerLon) <= radiusMeters
}

// ValidCoordinates يتحقق من نطاق WGS-84
func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
