// file: internals/features/tracking/geo/geo_test.go
package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceMeters(t *testing.T) {
	t.Run("نفس النقطة مسافتها صفر", func(t *testing.T) {
		assert.Zero(t, DistanceMeters(24.7136, 46.6753, 24.7136, 46.6753))
	})

	t.Run("درجة طول واحدة على خط الاستواء", func(t *testing.T) {
		d := DistanceMeters(0, 0, 0, 1)
		assert.InDelta(t, 111195, d, 250)
	})

	t.Run("نقطة قريبة من مركز الرياض", func(t *testing.T) {
		// فرق 0.0001 درجة طول عند دائرة عرض 24.7 يعادل نحو 10 أمتار
		d := DistanceMeters(24.7136, 46.6753, 24.7136, 46.6754)
		assert.InDelta(t, 10.2, d, 1.5)
	})

	t.Run("المسافة متناظرة", func(t *testing.T) {
		a := DistanceMeters(24.7136, 46.6753, 24.7200, 46.6800)
		b := DistanceMeters(24.7200, 46.6800, 24.7136, 46.6753)
		assert.InDelta(t, a, b, 0.0001)
	})
}

func TestInside(t *testing.T) {
	centerLat, centerLon := 24.7136, 46.6753

	t.Run("المركز داخل", func(t *testing.T) {
		assert.True(t, Inside(centerLat, centerLon, centerLat, centerLon, 100))
	})

	t.Run("نقطة على الحد تماماً داخل", func(t *testing.T) {
		lat, lon := 24.7136, 46.6763
		d := DistanceMeters(lat, lon, centerLat, centerLon)
		require.Greater(t, d, 0.0)
		// القرص مغلق: المسافة المساوية للنصف القطر محسوبة داخلاً
		assert.True(t, Inside(lat, lon, centerLat, centerLon, d))
		assert.False(t, Inside(lat, lon, centerLat, centerLon, d-0.01))
	})

	t.Run("نقطة بعيدة خارج", func(t *testing.T) {
		assert.False(t, Inside(24.7200, 46.6800, centerLat, centerLon, 100))
	})
}

func TestValidCoordinates(t *testing.T) {
	cases := []struct {
		name     string
		lat, lon float64
		want     bool
	}{
		{"الرياض", 24.7136, 46.6753, true},
		{"حدود العرض العليا", 90, 0, true},
		{"حدود العرض الدنيا", -90, 0, true},
		{"حدود الطول", 0, 180, true},
		{"عرض خارج المدى", 90.01, 0, false},
		{"عرض سالب خارج المدى", -91, 0, false},
		{"طول خارج المدى", 0, 180.5, false},
		{"طول سالب خارج المدى", 0, -181, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ValidCoordinates(tc.lat, tc.lon))
		})
	}
}
