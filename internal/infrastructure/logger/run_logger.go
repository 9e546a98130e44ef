package logger

import (
	"context"
	"time"

	"github.com/LavaJover/kol-payout-service/internal/domain"
	"gorm.io/gorm"
)

// PayoutRunLog - запись о запуске генерации выплат
type PayoutRunLog struct {
	ID          uint   `gorm:"primaryKey"`
	RunID       string `gorm:"type:varchar(64);uniqueIndex"`
	Requested   int
	Created     int
	Skipped     int
	TotalAmount string `gorm:"type:varchar(32)"`
	DurationMs  int64
	Error       string
	StartedAt   time.Time
}

func (PayoutRunLog) TableName() string { return "payout_run_logs" }

type PGPayoutRunLogger struct {
	db *gorm.DB
}

func NewPGPayoutRunLogger(db *gorm.DB) *PGPayoutRunLogger {
	return &PGPayoutRunLogger{db: db}
}

func (l *PGPayoutRunLogger) LogRun(ctx context.Context, run domain.PayoutRun) error {
	entry := PayoutRunLog{
		RunID:       run.RunID,
		Requested:   run.Requested,
		Created:     run.Created,
		Skipped:     run.Skipped,
		TotalAmount: run.TotalAmount,
		DurationMs:  run.Duration.Milliseconds(),
		Error:       run.Error,
		StartedAt:   run.StartedAt,
	}
	return l.db.WithContext(ctx).Create(&entry).Error
}
