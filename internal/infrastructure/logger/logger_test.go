package logger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/LavaJover/kol-payout-service/internal/config"
	"github.com/LavaJover/kol-payout-service/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestSetup_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")
	l, closer, err := Setup(config.LogConfig{LogLevel: "warn", LogFormat: "json", LogOutput: path})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}

	l.Info("hidden")
	l.Warn("payout skipped", "influencer_id", "kol-1")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(raw)
	if strings.Contains(out, "hidden") {
		t.Error("info record must be filtered at warn level")
	}
	if !strings.Contains(out, `"influencer_id":"kol-1"`) {
		t.Errorf("missing structured attribute in %q", out)
	}
}

func TestSetup_RejectsBadInput(t *testing.T) {
	if _, _, err := Setup(config.LogConfig{LogLevel: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, _, err := Setup(config.LogConfig{LogLevel: "info", LogFormat: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestPGPayoutRunLogger_LogRun(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := db.AutoMigrate(&PayoutRunLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	runLogger := NewPGPayoutRunLogger(db)
	run := domain.PayoutRun{
		RunID:       "run-1",
		Requested:   3,
		Created:     2,
		Skipped:     1,
		TotalAmount: "42.50",
		Duration:    1500 * time.Millisecond,
		StartedAt:   time.Now(),
	}
	if err := runLogger.LogRun(context.Background(), run); err != nil {
		t.Fatalf("LogRun: %v", err)
	}

	var got PayoutRunLog
	if err := db.First(&got, "run_id = ?", "run-1").Error; err != nil {
		t.Fatalf("load run log: %v", err)
	}
	if got.Created != 2 || got.Skipped != 1 || got.DurationMs != 1500 || got.TotalAmount != "42.50" {
		t.Fatalf("unexpected row: %+v", got)
	}
}
