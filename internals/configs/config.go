package configs

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

var (
	LocationAPIKey string
	TzOffset       time.Duration
)

// إزاحة توقيت المشغّل الافتراضية UTC+3 (الرياض)
const defaultTzOffsetHours = 3

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ لا يوجد ملف .env، سيُستخدم ENV من النظام")
		} else {
			log.Println("✅ تم تحميل ملف .env بنجاح!")
		}
	} else {
		log.Println("🚀 يعمل على Railway، سيُستخدم ENV من النظام")
	}

	LocationAPIKey = GetEnv("LOCATION_API_KEY")
	TzOffset = OperatorTzOffset()

	if LocationAPIKey == "" {
		log.Println("❌ LOCATION_API_KEY غير مضبوط! مسار المجمّع سيرفض كل الطلبات")
	} else {
		log.Println("✅ تم تحميل LOCATION_API_KEY.")
	}
	log.Printf("✅ إزاحة التوقيت المحلي: UTC%+d", int(TzOffset/time.Hour))
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

// OperatorTzOffset إزاحة التوقيت المحلي للمشغّل من البيئة.
// قيمة فاسدة تسقط على الافتراضي لا على الصفر.
func OperatorTzOffset() time.Duration {
	raw := GetEnv("OPERATOR_TZ_OFFSET_HOURS")
	if raw == "" {
		return defaultTzOffsetHours * time.Hour
	}
	hours, err := strconv.Atoi(raw)
	if err != nil || hours < -12 || hours > 14 {
		log.Printf("⚠️ OPERATOR_TZ_OFFSET_HOURS=%q غير صالح، سيُستخدم %+d", raw, defaultTzOffsetHours)
		return defaultTzOffsetHours * time.Hour
	}
	return time.Duration(hours) * time.Hour
}

// =======================
// GORM LOGGER CUSTOM
// =======================
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
}

func NewGormLogger() gormLogger.Interface {
	return &GormLogger{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      gormLogger.Info,
	}
}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	l.LogLevel = level
	return l
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	log.Printf("[INFO] "+msg, data...)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	log.Printf("[WARN] "+msg, data...)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	log.Printf("[ERROR] "+msg, data...)
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()
	file := utils.FileWithLineNum()

	if err != nil {
		log.Printf("[ERROR] %s | %v | %s | %d rows | %s", file, err, elapsed, rows, sql)
	} else if elapsed > l.SlowThreshold {
		log.Printf("[SLOW SQL] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	} else {
		log.Printf("[QUERY] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	}
}
