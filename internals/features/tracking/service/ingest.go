// file: internals/features/tracking/service/ingest.go
package service

import (
	"context"
	"strings"
	"time"

	"nuzum_backend/internals/features/tracking/geo"
	"nuzum_backend/internals/features/tracking/model"
	"nuzum_backend/internals/features/tracking/repository"

	"github.com/google/uuid"
)

// نافذة قبول الأختام الزمنية ومعايير خنق العينات شبه الثابتة
const (
	staleWindowPast   = 24 * time.Hour
	staleWindowFuture = 5 * time.Minute

	throttleMinDistanceMeters = 100.0
	throttleMinInterval       = 5 * time.Minute
)

// IngestInput عينة موقع واردة من جهاز الموظف أو من إدخال يدوي.
type IngestInput struct {
	EmployeeID uuid.UUID
	Latitude   float64
	Longitude  float64
	RecordedAt time.Time
	Source     string
}

// IngestAck نتيجة الاستيعاب التي تعود للمجمّع.
type IngestAck struct {
	SampleID   uuid.UUID
	Stored     bool
	Throttled  bool
	OutOfOrder bool
	OutOfBand  bool
}

// IngestService استيعاب العينات: تحقق، خنق، تخزين ثم تقييم.
type IngestService struct {
	store     repository.Store
	evaluator *Evaluator
	now       func() time.Time
}

func NewIngestService(store repository.Store, evaluator *Evaluator) *IngestService {
	return &IngestService{store: store, evaluator: evaluator, now: time.Now}
}

// WithClock تبديل مصدر الوقت: للاختبارات.
func (s *IngestService) WithClock(now func() time.Time) *IngestService {
	s.now = now
	return s
}

// Ingest المسار الكامل لعينة واحدة. ترتيب الرفض ثابت:
// موظف مجهول، إحداثيات فاسدة، ختم زمني خارج النافذة.
func (s *IngestService) Ingest(ctx context.Context, in IngestInput) (IngestAck, error) {
	ack := IngestAck{}

	assigned, err := s.store.IsAssignedAnywhere(ctx, in.EmployeeID)
	if err != nil {
		return ack, err
	}
	if !assigned {
		return ack, ErrUnknownEmployee
	}

	if !geo.ValidCoordinates(in.Latitude, in.Longitude) {
		return ack, ErrInvalidCoordinates
	}

	now := s.now().UTC()
	recordedAt := in.RecordedAt.UTC()
	source := strings.TrimSpace(in.Source)
	if source == "" {
		source = model.SampleSourceDevice
	}

	if recordedAt.Before(now.Add(-staleWindowPast)) || recordedAt.After(now.Add(staleWindowFuture)) {
		if source != model.SampleSourceManual {
			return ack, ErrStaleSample
		}
		// الإدخال اليدوي ينجو من الرفض لكنه يُعلَّم ولا يقود الجلسات
		ack.OutOfBand = true
	}

	last, err := s.store.LastSample(ctx, in.EmployeeID)
	if err != nil {
		return ack, err
	}
	if last != nil && recordedAt.Before(last.RecordedAt) {
		ack.OutOfOrder = true
	}

	sample := &model.LocationSampleModel{
		EmployeeID: in.EmployeeID,
		Latitude:   in.Latitude,
		Longitude:  in.Longitude,
		RecordedAt: recordedAt,
		ReceivedAt: now,
		Source:     source,
		OutOfOrder: ack.OutOfOrder,
		OutOfBand:  ack.OutOfBand,
	}

	// خنق الضجيج الثابت: تحرك قليل ووصول قريب زمنياً، ما لم تكن العينة
	// ستعبر حداً: العبور لا يُخنق أبداً
	if !ack.OutOfOrder && !ack.OutOfBand && last != nil {
		moved := geo.DistanceMeters(last.Latitude, last.Longitude, in.Latitude, in.Longitude)
		if moved < throttleMinDistanceMeters && now.Sub(last.ReceivedAt) < throttleMinInterval {
			transition, err := s.evaluator.WouldTransition(ctx, sample)
			if err != nil {
				return ack, err
			}
			if !transition {
				ack.Throttled = true
				return ack, nil
			}
		}
	}

	if err := s.store.CreateSample(ctx, sample); err != nil {
		return ack, err
	}
	ack.SampleID = sample.SampleID
	ack.Stored = true

	// العينات المعلَّمة out_of_order أو out_of_band تُخزَّن للسجل فقط
	if !ack.OutOfOrder && !ack.OutOfBand {
		if err := s.evaluator.ProcessSample(ctx, sample); err != nil {
			return ack, err
		}
	}
	return ack, nil
}
