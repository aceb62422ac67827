package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"nuzum_backend/internals/configs"
	"nuzum_backend/internals/features/tracking/model"
)

var DB *gorm.DB

func ConnectDB() {
	log.Println("🔌 الاتصال بقاعدة PostgreSQL...")

	// ✅ DSN كامل مع statement_timeout
	// ملاحظة: مع PgBouncer بدّل المنفذ إلى منفذ الـ PgBouncer (مثلاً 6543) وأبقِ PreferSimpleProtocol=true
	sslmode := getenv("DB_SSLMODE", "require")
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=nuzum&options=-c statement_timeout=3000",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_NAME"),
		sslmode,
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // 👍 مناسب لتجميع المعاملات في PgBouncer
	}), &gorm.Config{
		Logger: configs.NewGormLogger(),
	})
	if err != nil {
		log.Fatalf("❌ فشل الاتصال بقاعدة البيانات: %v", err)
	}
	DB = db
	log.Println("✅ تم الاتصال بقاعدة البيانات.")
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("pool tune err: %v", err)
		return
	}
	// ⚖️ موافق لحدود Supabase/PgBouncer
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

// Migrate جداول التتبع مع الفهرس الجزئي الفريد للجلسات المفتوحة.
// AutoMigrate لا يعرف الفهارس الجزئية فيُنشأ الفهرس بـ SQL خام.
func Migrate() {
	if err := DB.AutoMigrate(
		&model.GeofenceModel{},
		&model.GeofenceAssignmentModel{},
		&model.LocationSampleModel{},
		&model.PresenceSessionModel{},
		&model.GeofenceEventModel{},
		&model.AttendanceRecordModel{},
	); err != nil {
		log.Fatalf("❌ فشل ترحيل الجداول: %v", err)
	}

	// جلسة مفتوحة واحدة كحد أقصى لكل (موظف، دائرة)
	if err := DB.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS uq_open_session_per_pair
		ON presence_sessions (employee_id, geofence_id)
		WHERE exit_time IS NULL
	`).Error; err != nil {
		log.Fatalf("❌ فشل إنشاء فهرس الجلسات المفتوحة: %v", err)
	}
	log.Println("✅ تم ترحيل جداول التتبع.")
}

func WarmUpQueries() {
	// استعلام خفيف حتى يمتلئ التجمع ويجهز
	go func() {
		time.Sleep(500 * time.Millisecond) // مهلة لصعود الخادم
		if err := ping(); err != nil {
			log.Printf("warm-up ping err: %v", err)
		}
	}()
}

func ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
