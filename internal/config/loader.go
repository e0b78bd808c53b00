// Package config loads service configuration from an optional YAML file and
// the process environment, with environment values taking precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// RedisConfig carries connection settings for the optional Redis audit trail.
// The trail is disabled when Addr is empty.
type RedisConfig struct {
	Addr       string `yaml:"addr"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	KeyPrefix  string `yaml:"key_prefix"`
	MaxEntries int64  `yaml:"max_entries"`
}

// Config captures every tunable of the booking service.
type Config struct {
	HTTPPort          int           `yaml:"http_port"`
	StorageBackend    string        `yaml:"storage_backend"`
	SQLiteDSN         string        `yaml:"sqlite_dsn"`
	SessionTTL        time.Duration `yaml:"session_ttl"`
	SaturationCeiling int           `yaml:"saturation_ceiling"`
	NotifyWorkers     int           `yaml:"notify_workers"`
	NotifyQueueSize   int           `yaml:"notify_queue_size"`
	RateLimitPerSec   float64       `yaml:"rate_limit_per_sec"`
	RateLimitBurst    int           `yaml:"rate_limit_burst"`
	CacheTTL          time.Duration `yaml:"cache_ttl"`
	Redis             RedisConfig   `yaml:"redis"`
}

func defaults() Config {
	return Config{
		HTTPPort:        8080,
		StorageBackend:  "sqlite",
		SQLiteDSN:       "file:bookings.db",
		SessionTTL:      24 * time.Hour,
		NotifyWorkers:   2,
		NotifyQueueSize: 256,
		RateLimitPerSec: 10,
		RateLimitBurst:  20,
		CacheTTL:        5 * time.Second,
	}
}

// Load builds the configuration. When BOOKING_CONFIG_FILE names a YAML file
// its values are applied over the defaults before the environment is read.
func Load() (Config, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("BOOKING_CONFIG_FILE")); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnvironment(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func applyEnvironment(cfg *Config) error {
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("BOOKING_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "BOOKING_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if backend := strings.TrimSpace(os.Getenv("BOOKING_STORAGE_BACKEND")); backend != "" {
		cfg.StorageBackend = backend
	}

	if dsn := strings.TrimSpace(os.Getenv("BOOKING_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if ttlValue := strings.TrimSpace(os.Getenv("BOOKING_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "BOOKING_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if ceilingValue := strings.TrimSpace(os.Getenv("BOOKING_SATURATION_CEILING")); ceilingValue != "" {
		ceiling, err := strconv.Atoi(ceilingValue)
		if err != nil || ceiling < 0 {
			invalid = append(invalid, "BOOKING_SATURATION_CEILING")
		} else {
			cfg.SaturationCeiling = ceiling
		}
	}

	if workersValue := trimEnv("BOOKING_NOTIFY_WORKERS"); workersValue != "" {
		workers, err := strconv.Atoi(workersValue)
		if err != nil || workers <= 0 {
			invalid = append(invalid, "BOOKING_NOTIFY_WORKERS")
		} else {
			cfg.NotifyWorkers = workers
		}
	}

	if queueValue := trimEnv("BOOKING_NOTIFY_QUEUE_SIZE"); queueValue != "" {
		size, err := strconv.Atoi(queueValue)
		if err != nil || size <= 0 {
			invalid = append(invalid, "BOOKING_NOTIFY_QUEUE_SIZE")
		} else {
			cfg.NotifyQueueSize = size
		}
	}

	if rateValue := trimEnv("BOOKING_RATE_LIMIT_PER_SEC"); rateValue != "" {
		perSec, err := strconv.ParseFloat(rateValue, 64)
		if err != nil || perSec <= 0 {
			invalid = append(invalid, "BOOKING_RATE_LIMIT_PER_SEC")
		} else {
			cfg.RateLimitPerSec = perSec
		}
	}

	if burstValue := trimEnv("BOOKING_RATE_LIMIT_BURST"); burstValue != "" {
		burst, err := strconv.Atoi(burstValue)
		if err != nil || burst <= 0 {
			invalid = append(invalid, "BOOKING_RATE_LIMIT_BURST")
		} else {
			cfg.RateLimitBurst = burst
		}
	}

	if cacheValue := trimEnv("BOOKING_CACHE_TTL"); cacheValue != "" {
		ttl, err := time.ParseDuration(cacheValue)
		if err != nil || ttl < 0 {
			invalid = append(invalid, "BOOKING_CACHE_TTL")
		} else {
			cfg.CacheTTL = ttl
		}
	}

	if addr := trimEnv("BOOKING_REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if username := trimEnv("BOOKING_REDIS_USERNAME"); username != "" {
		cfg.Redis.Username = username
	}
	if password := trimEnv("BOOKING_REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if dbValue := trimEnv("BOOKING_REDIS_DB"); dbValue != "" {
		db, err := strconv.Atoi(dbValue)
		if err != nil || db < 0 {
			invalid = append(invalid, "BOOKING_REDIS_DB")
		} else {
			cfg.Redis.DB = db
		}
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}
	return nil
}

func trimEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
