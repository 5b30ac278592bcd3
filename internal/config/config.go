package config

import (
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/cshealth/reminder-gateway/pkg/logger"
)

var config *Config

// Config holds every env-sourced value the services read. Only this struct
// may be used to reach configuration; no direct os.Getenv elsewhere.
type Config struct {
	AppEnv  string `env:"APP_ENV" default:"dev"`
	AppName string `env:"APP_NAME" default:"reminder_gateway"`

	// Primary gateway: send + inbox feeds.
	PrimaryGatewayAPIKey  string `env:"PRIMARY_GATEWAY_API_KEY" validate:"required"`
	PrimaryGatewayInboxID string `env:"PRIMARY_GATEWAY_INBOX_ID"`
	PrimaryGatewaySender  string `env:"PRIMARY_GATEWAY_SENDER" validate:"required"`
	PrimaryGatewayBaseURL string `env:"PRIMARY_GATEWAY_BASE_URL" default:"https://api.textlocal.in"`

	// Transactional gateway: send only.
	TransactionalAPIKey   string `env:"TRANSACTIONAL_API_KEY"`
	TransactionalUsername string `env:"TRANSACTIONAL_USERNAME"`
	TransactionalSender   string `env:"TRANSACTIONAL_SENDER"`
	TransactionalBaseURL  string `env:"TRANSACTIONAL_BASE_URL" default:"http://sms.hspsms.com"`

	DatabaseURL string `env:"DATABASE_URL" validate:"required"`

	Timezone string `env:"TIMEZONE" default:"Asia/Kolkata"`

	// TestPhoneNumber is only used by live gateway tests.
	TestPhoneNumber string `env:"TEST_PHONE_NUMBER"`

	RedisAddr               string `env:"REDIS_ADDR"`
	RedisUsername           string `env:"REDIS_USER"`
	RedisPassword           string `env:"REDIS_PASS"`
	RedisDatabase           int    `env:"REDIS_DATABASE"`
	RedisUniversalKeyPrefix string `env:"REDIS_UNIVERSAL_KEY_PREFIX"`

	// GatewayRatePerSecond caps outbound sends per second across the process
	// group; 0 disables the limiter.
	GatewayRatePerSecond int `env:"GATEWAY_RATE_PER_SECOND" default:"10"`

	// RemindWorkers is the remind-all fan-out width. 1 keeps the run strictly
	// sequential.
	RemindWorkers int `env:"REMIND_WORKERS" default:"1"`

	GatewayTimeout time.Duration `env:"GATEWAY_TIMEOUT" default:"30s"`

	PromNamespace    string `env:"PROM_NAMESPACE" default:"reminder_gateway"`
	HealthListenAddr string `env:"HEALTH_LISTEN_ADDR" default:":9100"`
}

// Location resolves the configured timezone, falling back to UTC so a bad
// TIMEZONE value degrades instead of crashing a job mid-run.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		logger.Warn("invalid TIMEZONE, using UTC", "timezone", c.Timezone, "error", err)
		return time.UTC
	}
	return loc
}

func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	c := &Config{}
	var err error
	if path != "" {
		logger.Info("trying to publish env from file", "path", path)
		err = godotenv.Load(path)
		if err != nil {
			return errors.New("failed to load configuration file " + path + " error: " + err.Error())
		}
	}

	_, err = env.UnmarshalFromEnviron(c)
	if err != nil {
		return errors.New("failed to map env variables to Configuration object " + " error: " + err.Error())
	}

	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "configuration is incomplete")
	}

	config = c
	return nil
}

func Get() *Config {
	if config == nil {
		logger.Panic("Config is not initialized")
	}
	return config
}

// Set replaces the loaded config; tests use it to avoid touching the process
// environment.
func Set(c *Config) {
	config = c
}
