package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/medifit/medifit-api/internal/config"
	"github.com/medifit/medifit-api/internal/domain"
	"github.com/medifit/medifit-api/internal/domain/appointment"
	mr "github.com/medifit/medifit-api/internal/domain/medical_record"
	"github.com/medifit/medifit-api/internal/domain/medication"
	"github.com/medifit/medifit-api/internal/domain/patient"
	"github.com/medifit/medifit-api/internal/domain/prescription"
)

func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:      gormlogger.Default.LogMode(gormlogger.Silent),
		PrepareStmt: true,
		// Maps driver unique-violation errors onto gorm.ErrDuplicatedKey so
		// repositories can translate them into domain sentinels.
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: cfg.DSN(),
	}), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	start := time.Now()

	models := []any{
		&domain.User{},
		&patient.Patient{},
		&appointment.Appointment{},
		&mr.MedicalRecord{},
		&prescription.Prescription{},
		&medication.Medication{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	if err := createIndexes(db, log); err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

func createIndexes(db *gorm.DB, log *zap.Logger) error {
	indexes := []struct {
		name  string
		query string
	}{
		{
			name:  "idx_appointments_hospital_schedule",
			query: `CREATE INDEX IF NOT EXISTS idx_appointments_hospital_schedule ON appointments (hospital_id, scheduled_at) WHERE status NOT IN ('cancelled', 'no_show')`,
		},
		{
			name:  "idx_appointments_reminder_due",
			query: `CREATE INDEX IF NOT EXISTS idx_appointments_reminder_due ON appointments (scheduled_at) WHERE reminder_sent = false AND status IN ('scheduled', 'confirmed')`,
		},
		{
			name:  "idx_medications_reminder_due",
			query: `CREATE INDEX IF NOT EXISTS idx_medications_reminder_due ON medications (time_of_day, end_date) WHERE status = 'active' AND reminder_enabled = true`,
		},
	}

	for _, idx := range indexes {
		if err := db.Exec(idx.query).Error; err != nil {
			log.Warn("failed to create index", zap.String("index", idx.name), zap.Error(err))
		}
	}

	return nil
}
