package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"hotel-reservation-backend/internal/catalog"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig       `yaml:"server"`
	Database   DatabaseConfig     `yaml:"database"`
	RoomTypes  []catalog.RoomType `yaml:"room_types"`
	Booking    BookingConfig      `yaml:"booking"`
	Push       PushConfig         `yaml:"push"`
	Events     EventsConfig       `yaml:"events"`
	WorkerPool WorkerPoolConfig   `yaml:"worker_pool"`
	Sweeper    SweeperConfig      `yaml:"sweeper"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port                  int           `yaml:"port"`
	RateLimitPerSec       float64       `yaml:"rate_limit_per_sec"`
	RateLimitBurst        int           `yaml:"rate_limit_burst"`
	IdempotencyTTLSeconds int           `yaml:"idempotency_ttl_seconds"`
	IdempotencyTTL        time.Duration `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // postgres, mysql or sqlite
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogLevel               string `yaml:"log_level"`
}

// BookingConfig controls how concurrent allocations are serialized.
type BookingConfig struct {
	LockBackend        string        `yaml:"lock_backend"` // memory or redis
	LockTTLSeconds     int           `yaml:"lock_ttl_seconds"`
	LockTimeoutSeconds int           `yaml:"lock_timeout_seconds"`
	LockTTL            time.Duration `yaml:"-"`
	LockTimeout        time.Duration `yaml:"-"`
	Redis              RedisConfig   `yaml:"redis"`
}

// RedisConfig holds the connection settings of the distributed lock.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// Enabled reports whether both VAPID keys are configured.
func (p PushConfig) Enabled() bool {
	return p.PublicKey != "" && p.PrivateKey != ""
}

// EventsConfig selects the brokers reservation events are published to.
// A broker with no address is disabled.
type EventsConfig struct {
	AMQP                  AMQPConfig    `yaml:"amqp"`
	Kafka                 KafkaConfig   `yaml:"kafka"`
	PublishTimeoutSeconds int           `yaml:"publish_timeout_seconds"`
	PublishTimeout        time.Duration `yaml:"-"`
}

type AMQPConfig struct {
	URL   string `yaml:"url"`
	Queue string `yaml:"queue"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// WorkerPoolConfig holds the configuration for the event worker pool.
type WorkerPoolConfig struct {
	Size      int `yaml:"size"`
	QueueSize int `yaml:"queue_size"`
}

// SweeperConfig controls the periodic no-show sweep. Reservations still
// Pending or Confirmed GraceDays after their check-in date become No-Show.
type SweeperConfig struct {
	Enabled         bool `yaml:"enabled"`
	IntervalSeconds int  `yaml:"interval_seconds"`
	GraceDays       int  `yaml:"grace_days"`
}

// Interval returns the sweep period.
func (s SweeperConfig) Interval() time.Duration {
	return time.Duration(s.IntervalSeconds) * time.Second
}

// Grace returns how long after check-in a booking is left alone.
func (s SweeperConfig) Grace() time.Duration {
	return time.Duration(s.GraceDays) * 24 * time.Hour
}

// Load reads the configuration from the given path, applies environment
// overrides and fills defaults. A missing file is not an error; the
// configuration then comes from the environment and defaults alone.
func Load(path string) (*Config, error) {
	var cfg Config

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	case os.IsNotExist(err):
		log.Printf("config file %s not found; using environment and defaults", path)
	default:
		return nil, err
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	if _, err := cfg.Catalog(); err != nil {
		return nil, err
	}
	switch cfg.Booking.LockBackend {
	case "memory", "redis":
	default:
		return nil, fmt.Errorf("unknown booking.lock_backend %q", cfg.Booking.LockBackend)
	}
	switch cfg.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return nil, fmt.Errorf("unknown database.driver %q", cfg.Database.Driver)
	}

	return &cfg, nil
}

// Catalog builds the room catalog, falling back to the standard hotel layout.
func (c *Config) Catalog() (*catalog.Catalog, error) {
	if len(c.RoomTypes) == 0 {
		return catalog.Default(), nil
	}
	return catalog.New(c.RoomTypes)
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.IdempotencyTTLSeconds <= 0 {
		cfg.Server.IdempotencyTTLSeconds = 24 * 3600
	}
	cfg.Server.IdempotencyTTL = time.Duration(cfg.Server.IdempotencyTTLSeconds) * time.Second

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == "sqlite" {
		cfg.Database.DSN = "hotel.db"
	}
	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetimeMinutes <= 0 {
		cfg.Database.ConnMaxLifetimeMinutes = 30
	}
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}

	if cfg.Booking.LockBackend == "" {
		cfg.Booking.LockBackend = "memory"
	}
	if cfg.Booking.LockTTLSeconds <= 0 {
		cfg.Booking.LockTTLSeconds = 10
	}
	if cfg.Booking.LockTimeoutSeconds <= 0 {
		cfg.Booking.LockTimeoutSeconds = 5
	}
	cfg.Booking.LockTTL = time.Duration(cfg.Booking.LockTTLSeconds) * time.Second
	cfg.Booking.LockTimeout = time.Duration(cfg.Booking.LockTimeoutSeconds) * time.Second
	if cfg.Booking.Redis.Addr == "" {
		cfg.Booking.Redis.Addr = "localhost:6379"
	}
	if cfg.Booking.Redis.KeyPrefix == "" {
		cfg.Booking.Redis.KeyPrefix = "hotel:lock:"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.Events.AMQP.Queue == "" {
		cfg.Events.AMQP.Queue = "reservations.events"
	}
	if cfg.Events.Kafka.Topic == "" {
		cfg.Events.Kafka.Topic = "reservation-events"
	}
	if cfg.Events.PublishTimeoutSeconds <= 0 {
		cfg.Events.PublishTimeoutSeconds = 5
	}
	cfg.Events.PublishTimeout = time.Duration(cfg.Events.PublishTimeoutSeconds) * time.Second

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}
	if cfg.WorkerPool.QueueSize <= 0 {
		cfg.WorkerPool.QueueSize = 100
	}
	if cfg.Sweeper.IntervalSeconds <= 0 {
		cfg.Sweeper.IntervalSeconds = 3600
	}
	if cfg.Sweeper.GraceDays < 0 {
		cfg.Sweeper.GraceDays = 0
	}
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("HOTEL_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid HOTEL_PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	setString(&cfg.Database.Driver, "HOTEL_DB_DRIVER")
	setString(&cfg.Database.DSN, "HOTEL_DB_DSN")
	setString(&cfg.Booking.LockBackend, "HOTEL_LOCK_BACKEND")
	setString(&cfg.Booking.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Booking.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Events.AMQP.URL, "RABBITMQ_URL")
	setString(&cfg.Push.PublicKey, "VAPID_PUBLIC_KEY")
	setString(&cfg.Push.PrivateKey, "VAPID_PRIVATE_KEY")
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		var brokers []string
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
		cfg.Events.Kafka.Brokers = brokers
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
