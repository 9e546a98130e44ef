package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

type PayoutConfig struct {
	Env          string `yaml:"env" env:"PAYOUT_ENV" env-default:"local"`
	GRPCServer   `yaml:"grpc_server"`
	HTTPServer   `yaml:"http_server"`
	PayoutDB     `yaml:"payout_db"`
	Migrations   `yaml:"migrations"`
	LogConfig    `yaml:"log_config"`
	KafkaService `yaml:"kafka-service"`
	RedisService `yaml:"redis-service"`
	Notifier     `yaml:"notifier"`
	Commission   `yaml:"commission"`
}

type GRPCServer struct {
	Host string `yaml:"host" env:"GRPC_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"GRPC_PORT" env-default:"50061"`
}

type HTTPServer struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8081"`
}

type PayoutDB struct {
	Dsn            string `yaml:"dsn" env:"PAYOUT_DB_DSN"`
	MaxOpenConns   int    `yaml:"max_open_conns" env:"PAYOUT_DB_MAX_OPEN_CONNS" env-default:"20"`
	MaxIdleConns   int    `yaml:"max_idle_conns" env:"PAYOUT_DB_MAX_IDLE_CONNS" env-default:"5"`
	IsolationLevel string `yaml:"isolation_level" env:"PAYOUT_DB_ISOLATION_LEVEL" env-default:"read_committed"`
	AutoMigrate    bool   `yaml:"auto_migrate" env:"PAYOUT_DB_AUTO_MIGRATE" env-default:"false"`
}

type Migrations struct {
	Path string `yaml:"path" env:"MIGRATIONS_PATH" env-default:"migrations"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"text"`
	LogOutput string `yaml:"log_output" env:"LOG_OUTPUT" env-default:"stdout"`
}

type KafkaService struct {
	Enabled     bool   `yaml:"enabled" env:"KAFKA_ENABLED" env-default:"false"`
	Host        string `yaml:"host" env:"KAFKA_HOST" env-default:"localhost"`
	Port        string `yaml:"port" env:"KAFKA_PORT" env-default:"9092"`
	PayoutTopic string `yaml:"payout_topic" env:"KAFKA_PAYOUT_TOPIC" env-default:"kol-payout-events"`
	StatusTopic string `yaml:"status_topic" env:"KAFKA_STATUS_TOPIC"`
	GroupID     string `yaml:"group_id" env:"KAFKA_GROUP_ID" env-default:"kol-payout-service"`
}

func (k KafkaService) Brokers() []string {
	return []string{fmt.Sprintf("%s:%s", k.Host, k.Port)}
}

type RedisService struct {
	Enabled bool   `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	URL     string `yaml:"url" env:"REDIS_URL" env-default:"redis://localhost:6379/0"`
}

type Notifier struct {
	CallbackURL string `yaml:"callback_url" env:"PAYOUT_CALLBACK_URL"`
}

type Commission struct {
	ProrationMode     string   `yaml:"proration_mode" env:"COMMISSION_PRORATION_MODE" env-default:"exact"`
	TierRateSource    string   `yaml:"tier_rate_source" env:"COMMISSION_TIER_RATE_SOURCE" env-default:"live"`
	StatsRateMode     string   `yaml:"stats_rate_mode" env:"COMMISSION_STATS_RATE_MODE" env-default:"additive"`
	FulfilledStatuses []string `yaml:"fulfilled_statuses" env:"COMMISSION_FULFILLED_STATUSES" env-separator:"," env-default:"delivered,completed"`
}

func MustLoad() *PayoutConfig {
	// Processing env config variable and file
	configPath := os.Getenv("PAYOUT_CONFIG_PATH")
	if configPath == "" {
		log.Fatalf("PAYOUT_CONFIG_PATH was not found\n")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v\n", err)
	}
	return cfg
}

// Load reads the YAML file at path, applies env overrides and validates the result.
func Load(configPath string) (*PayoutConfig, error) {
	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	var cfg PayoutConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *PayoutConfig) Validate() error {
	if strings.TrimSpace(c.PayoutDB.Dsn) == "" {
		return fmt.Errorf("payout_db.dsn is required")
	}
	if err := oneOf("payout_db.isolation_level", c.PayoutDB.IsolationLevel, "", "read_committed", "repeatable_read", "serializable"); err != nil {
		return err
	}
	if err := oneOf("commission.proration_mode", c.Commission.ProrationMode, "exact", "prorate"); err != nil {
		return err
	}
	if err := oneOf("commission.tier_rate_source", c.Commission.TierRateSource, "live", "order_snapshot"); err != nil {
		return err
	}
	if err := oneOf("commission.stats_rate_mode", c.Commission.StatsRateMode, "additive", "product_first", "max"); err != nil {
		return err
	}
	if len(c.Commission.FulfilledStatuses) == 0 {
		return fmt.Errorf("commission.fulfilled_statuses must not be empty")
	}
	if c.KafkaService.Enabled && c.KafkaService.PayoutTopic == "" {
		return fmt.Errorf("kafka-service.payout_topic is required when kafka is enabled")
	}
	return nil
}

func oneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s: unsupported value %q (allowed: %s)", field, value, strings.Join(allowed, ", "))
}
