// file: internals/features/tracking/service/evaluator.go
package service

import (
	"context"
	"log"
	"math"

	"nuzum_backend/internals/features/tracking/geo"
	"nuzum_backend/internals/features/tracking/model"
	"nuzum_backend/internals/features/tracking/repository"
)

// Evaluator مُقيِّم العينات: يقارن موضع العينة بكل دائرة نشطة مرتبطة
// بالموظف ويحوّل الجلسات عند عبور الحد.
type Evaluator struct {
	store    repository.Store
	sessions *SessionManager
}

func NewEvaluator(store repository.Store, sessions *SessionManager) *Evaluator {
	return &Evaluator{store: store, sessions: sessions}
}

// ProcessSample تقييم عينة مقبولة ضد دوائر الموظف.
// العينات خارج الترتيب الزمني لا تمر من هنا أصلاً (تُخزَّن فقط).
func (e *Evaluator) ProcessSample(ctx context.Context, sample *model.LocationSampleModel) error {
	fences, err := e.store.ActiveGeofencesForEmployee(ctx, sample.EmployeeID)
	if err != nil {
		return err
	}
	for i := range fences {
		fence := &fences[i]
		if _, perr := PolicyFrom(fence); perr != nil {
			// سياسة فاسدة: نتجاوز هذه الدائرة ولا نسقط العينة كلها
			log.Printf("[TRACKING] skipping geofence %s: %v", fence.GeofenceID, perr)
			continue
		}

		distance := geo.DistanceMeters(sample.Latitude, sample.Longitude,
			fence.CenterLatitude, fence.CenterLongitude)
		insideNow := distance <= float64(fence.RadiusMeters)
		roundedDistance := int(math.Round(distance))

		open, err := e.store.OpenSessionFor(ctx, sample.EmployeeID, fence.GeofenceID)
		if err != nil {
			return err
		}
		// عينة بنفس ثانية دخول الجلسة المفتوحة لا تُقيَّم: لا إغلاق بمدة صفرية
		if open != nil && sample.RecordedAt.Equal(open.EntryTime) {
			continue
		}
		wasInside := open != nil

		switch {
		case !wasInside && insideNow:
			if _, _, err := e.sessions.Open(ctx, sample.EmployeeID, fence.GeofenceID,
				sample.RecordedAt, sample.Latitude, sample.Longitude, roundedDistance); err != nil {
				return err
			}
		case wasInside && !insideNow:
			if _, _, err := e.sessions.Close(ctx, sample.EmployeeID, fence.GeofenceID,
				sample.RecordedAt, sample.Latitude, sample.Longitude, roundedDistance); err != nil {
				return err
			}
		}
	}
	return nil
}

// WouldTransition هل ستفتح العينة جلسة أو تغلقها في أي دائرة؟
// تُستخدم قبل الخنق حتى لا يُسقط الخنق عبور حد أبداً.
func (e *Evaluator) WouldTransition(ctx context.Context, sample *model.LocationSampleModel) (bool, error) {
	fences, err := e.store.ActiveGeofencesForEmployee(ctx, sample.EmployeeID)
	if err != nil {
		return false, err
	}
	for i := range fences {
		fence := &fences[i]
		if _, perr := PolicyFrom(fence); perr != nil {
			continue
		}
		insideNow := geo.Inside(sample.Latitude, sample.Longitude,
			fence.CenterLatitude, fence.CenterLongitude, float64(fence.RadiusMeters))
		open, err := e.store.OpenSessionFor(ctx, sample.EmployeeID, fence.GeofenceID)
		if err != nil {
			return false, err
		}
		if open != nil && sample.RecordedAt.Equal(open.EntryTime) {
			continue
		}
		if insideNow != (open != nil) {
			return true, nil
		}
	}
	return false, nil
}
