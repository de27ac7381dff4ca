package database

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/clinio/clinio_backend/config"
)

// NewGormClient opens a GORM connection from central config and applies the
// configured pool settings to the underlying *sql.DB.
func NewGormClient(cfg config.DatabaseConfig) (*gorm.DB, error) {
	return NewGormClientFromConfig(FromCentralConfig(cfg))
}

// NewGormClientFromConfig opens a GORM connection from package Config.
func NewGormClientFromConfig(cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         gormLogger(cfg),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetimeMin > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime())
	}

	return db, nil
}

func gormLogger(cfg Config) gormlogger.Interface {
	if !cfg.EnableLogging {
		return gormlogger.Default.LogMode(gormlogger.Silent)
	}

	threshold := time.Duration(cfg.SlowQueryThresholdMs) * time.Millisecond
	if threshold <= 0 {
		threshold = 200 * time.Millisecond
	}

	return gormlogger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             threshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
}
