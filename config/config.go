package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime settings read from the environment (and .env when present).
type Config struct {
	Port    string
	GinMode string

	DBDriver string
	DBDSN    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RabbitMQURL string

	RateLimitPerMinute int
	RateLimitBurst     int
	SlotLockTTL        time.Duration

	CORSAllowOrigin string

	LogLevel  string
	LogFormat string
}

// Load reads .env (if any) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		Port:            getenv("PORT", "8080"),
		GinMode:         strings.ToLower(strings.TrimSpace(os.Getenv("GIN_MODE"))),
		DBDriver:        strings.ToLower(getenv("DB_DRIVER", DriverSQLite)),
		DBDSN:           getenv("DB_DSN", "rezerwacje.db"),
		RedisAddr:       strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RabbitMQURL:     strings.TrimSpace(os.Getenv("RABBITMQ_URL")),
		CORSAllowOrigin: getenv("CORS_ALLOW_ORIGIN", "*"),
		LogLevel:        os.Getenv("LOG_LEVEL"),
		LogFormat:       os.Getenv("LOG_FORMAT"),
	}

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", 0, 0); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitPerMinute, err = getInt("RATE_LIMIT_PER_MINUTE", 30, 1); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitBurst, err = getInt("RATE_LIMIT_BURST", 10, 1); err != nil {
		return Config{}, err
	}
	lockSec, err := getInt("SLOT_LOCK_TTL_SECONDS", 10, 1)
	if err != nil {
		return Config{}, err
	}
	cfg.SlotLockTTL = time.Duration(lockSec) * time.Second

	switch cfg.GinMode {
	case "", "debug", "release", "test":
	default:
		return Config{}, fmt.Errorf("unsupported GIN_MODE %q", cfg.GinMode)
	}

	switch cfg.DBDriver {
	case DriverSQLite, DriverMySQL, DriverPostgres:
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	return cfg, nil
}

func getenv(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}

func getInt(k string, def, min int) (int, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < min {
		return 0, fmt.Errorf("invalid %s: %q", k, v)
	}
	return n, nil
}
