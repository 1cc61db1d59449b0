package config

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	HTTPAddr    string `envconfig:"REPORT_HTTP_ADDR" default:":8085"`
	GRPCAddr    string `envconfig:"REPORT_GRPC_ADDR" default:":50056"`
	DatabaseDSN string `envconfig:"DATABASE_DSN"`
	StoreDriver string `envconfig:"STORE_DRIVER" default:"postgres"`
	Timezone    string `envconfig:"REPORT_TIMEZONE" default:"Asia/Ho_Chi_Minh"`

	KafkaBroker string `envconfig:"KAFKA_BROKER"`
	ReportTopic string `envconfig:"REPORT_TOPIC" default:"report_topic"`
	// DigestCron is a five-field cron spec; empty disables the digest.
	DigestCron string `envconfig:"DIGEST_CRON" default:"0 6 * * *"`

	HealthInterval time.Duration `envconfig:"HEALTH_INTERVAL" default:"30s"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load decodes the configuration from the environment.
func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseDSN == "" {
			return errors.New("DATABASE_DSN is required for the postgres store")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid REPORT_TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DigestEnabled reports whether the digest job has a schedule and a broker
// to publish to.
func (c Config) DigestEnabled() bool {
	return c.DigestCron != "" && c.KafkaBroker != ""
}
