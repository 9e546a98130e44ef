package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/LavaJover/kol-payout-service/internal/config"
	runlog "github.com/LavaJover/kol-payout-service/internal/infrastructure/logger"
	"github.com/LavaJover/kol-payout-service/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.PayoutConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.PayoutDB.Dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.PayoutDB.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.PayoutDB.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if cfg.PayoutDB.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("failed to auto-migrate: %w", err)
		}
	}
	return db, nil
}

// Ping is the readiness probe of the payout database.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(append(models.All(), &runlog.PayoutRunLog{})...)
}
