// file: internals/features/tracking/service/sweeper.go
package service

import (
	"context"
	"log"
	"time"

	"nuzum_backend/internals/features/tracking/repository"
)

// StartEndOfDaySweeper كنّاس منتصف الليل المحلي: يغلق كل الجلسات المفتوحة
// عند حد اليوم ثم يصنّف اليوم المنتهي لكل دائرة نشطة، حتى لا تتسرب جلسة
// عبر حدود التاريخ ولا يبقى يوم بلا صفوف حضور.
func StartEndOfDaySweeper(store repository.Store, tzOffset time.Duration) {
	go func() {
		classifier := NewClassifier(store, tzOffset)
		sessions := NewSessionManager(store)

		for {
			now := time.Now().UTC()
			boundary := nextLocalMidnightUTC(now, tzOffset)
			time.Sleep(boundary.Sub(now))

			ctx := context.Background()
			closed, err := sessions.CloseAllOpen(ctx, boundary)
			if err != nil {
				log.Printf("[SWEEPER] إغلاق جلسات نهاية اليوم فشل: %v", err)
			} else {
				log.Printf("[SWEEPER] أُغلقت %d جلسة عند حد اليوم", closed)
			}

			// اليوم المنتهي هو اليوم المحلي الذي قبل الحد مباشرة
			endedDate := LocalDate(boundary.Add(-time.Minute), tzOffset)
			fences, err := store.ActiveGeofences(ctx)
			if err != nil {
				log.Printf("[SWEEPER] جلب الدوائر النشطة فشل: %v", err)
				continue
			}
			for _, fence := range fences {
				res, err := classifier.ClassifyDate(ctx, fence.GeofenceID, endedDate)
				if err != nil {
					log.Printf("[SWEEPER] تصنيف %s ليوم %s فشل: %v",
						fence.GeofenceID, endedDate.Format("2006-01-02"), err)
					continue
				}
				log.Printf("[SWEEPER] %s يوم %s: حاضر %d متأخر %d غائب %d معذور %d",
					fence.GeofenceName, res.Date, res.Present, res.Late, res.Absent, res.Excused)
			}
		}
	}()
}

// nextLocalMidnightUTC لحظة منتصف الليل المحلي القادم بتوقيت UTC.
func nextLocalMidnightUTC(now time.Time, tzOffset time.Duration) time.Time {
	today := LocalDate(now, tzOffset)
	_, boundary := LocalDayRangeUTC(today, tzOffset)
	return boundary
}
