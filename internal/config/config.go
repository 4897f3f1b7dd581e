package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/m04kA/septic-booking-service/internal/domain"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config конфигурация сервиса
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Database    DatabaseConfig    `toml:"database"`
	Storage     StorageConfig     `toml:"storage"`
	Redis       RedisConfig       `toml:"redis"`
	Booking     BookingConfig     `toml:"booking"`
	Logs        LogsConfig        `toml:"logs"`
	Metrics     MetricsConfig     `toml:"metrics"`
	UserService UserServiceConfig `toml:"user_service"`
	RateLimit   RateLimitConfig   `toml:"rate_limit"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port" env:"HTTP_PORT"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

type DatabaseConfig struct {
	Host            string `toml:"host" env:"DB_HOST"`
	Port            int    `toml:"port" env:"DB_PORT"`
	User            string `toml:"user" env:"DB_USER"`
	Password        string `toml:"password" env:"DB_PASSWORD"`
	DBName          string `toml:"dbname" env:"DB_NAME"`
	SSLMode         string `toml:"sslmode" env:"DB_SSLMODE"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
	AutoMigrate     bool   `toml:"auto_migrate" env:"DB_AUTO_MIGRATE"`
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type StorageConfig struct {
	Driver string `toml:"driver" env:"STORAGE_DRIVER"` // postgres | memory
}

type RedisConfig struct {
	Enabled      bool   `toml:"enabled" env:"REDIS_ENABLED"`
	Address      string `toml:"address" env:"REDIS_ADDRESS"`
	Password     string `toml:"password" env:"REDIS_PASSWORD"`
	DB           int    `toml:"db"`
	LockTTL      int    `toml:"lock_ttl_ms"`
	LockWait     int    `toml:"lock_wait_ms"`
	LockInterval int    `toml:"lock_retry_ms"`
}

type BookingConfig struct {
	SlotLabels              []string `toml:"slot_labels"`
	SlotCapacity            int      `toml:"slot_capacity" env:"BOOKING_SLOT_CAPACITY"`
	AdvanceBookingDays      int      `toml:"advance_booking_days"`
	MinBookingNoticeMinutes int      `toml:"min_booking_notice_minutes"`
	Timezone                string   `toml:"timezone" env:"BOOKING_TIMEZONE"`
}

type LogsConfig struct {
	Level string `toml:"level" env:"LOG_LEVEL"`
	File  string `toml:"file" env:"LOG_FILE"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled" env:"METRICS_ENABLED"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type UserServiceConfig struct {
	URL     string `toml:"url" env:"USER_SERVICE_URL"`
	Timeout int    `toml:"timeout"` // секунды
}

type RateLimitConfig struct {
	Enabled bool    `toml:"enabled"`
	RPS     float64 `toml:"rps"`
	Burst   int     `toml:"burst"`
	IdleTTL int     `toml:"idle_ttl"` // секунды, после которых лимитер участника удаляется
}

// IdleTTLDuration время жизни неактивного лимитера
func (r RateLimitConfig) IdleTTLDuration() time.Duration {
	return time.Duration(r.IdleTTL) * time.Second
}

// Load читает TOML файл и накладывает переменные окружения (.env и окружение процесса)
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Default значения по умолчанию, поверх которых декодируется файл
func Default() *Config {
	labels := make([]string, 0, len(domain.DefaultSlotLabels))
	for _, l := range domain.DefaultSlotLabels {
		labels = append(labels, l.String())
	}

	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Storage: StorageConfig{Driver: DriverPostgres},
		Redis: RedisConfig{
			LockTTL:      10000,
			LockWait:     5000,
			LockInterval: 20,
		},
		Booking: BookingConfig{
			SlotLabels:              labels,
			SlotCapacity:            domain.DefaultSlotCapacity,
			AdvanceBookingDays:      domain.DefaultAdvanceBookingDays,
			MinBookingNoticeMinutes: domain.DefaultMinBookingNoticeMinutes,
			Timezone:                domain.DefaultTimezone,
		},
		Logs:        LogsConfig{Level: "info"},
		Metrics:     MetricsConfig{Path: "/metrics", ServiceName: "septic-booking-service"},
		UserService: UserServiceConfig{Timeout: 5},
		RateLimit:   RateLimitConfig{RPS: 5, Burst: 10, IdleTTL: 600},
	}
}

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port must be between 1 and 65535")
	}

	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.DBName == "" {
			return errors.New("database.host and database.dbname are required for postgres storage")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}

	if c.Redis.Enabled && c.Redis.Address == "" {
		return errors.New("redis.address is required when redis is enabled")
	}

	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 || c.RateLimit.IdleTTL <= 0) {
		return errors.New("rate_limit.rps, rate_limit.burst and rate_limit.idle_ttl must be positive")
	}

	if _, err := c.Booking.Location(); err != nil {
		return err
	}

	cal, err := c.Booking.Calendar()
	if err != nil {
		return err
	}
	return cal.Validate()
}

// Calendar строит календарь слотов из конфигурации
func (b BookingConfig) Calendar() (domain.Calendar, error) {
	labels := make([]domain.SlotLabel, 0, len(b.SlotLabels))
	for _, raw := range b.SlotLabels {
		label, err := domain.ParseSlotLabel(raw)
		if err != nil {
			return domain.Calendar{}, fmt.Errorf("booking.slot_labels: %w", err)
		}
		labels = append(labels, label)
	}

	return domain.Calendar{
		Labels:                  labels,
		Capacity:                b.SlotCapacity,
		AdvanceBookingDays:      b.AdvanceBookingDays,
		MinBookingNoticeMinutes: b.MinBookingNoticeMinutes,
	}, nil
}

// Location часовой пояс, в котором считаются календарные даты
func (b BookingConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return nil, fmt.Errorf("booking.timezone: %w", err)
	}
	return loc, nil
}

// LockTTLDuration время жизни Redis блокировки слота
func (r RedisConfig) LockTTLDuration() time.Duration {
	return time.Duration(r.LockTTL) * time.Millisecond
}

// LockWaitDuration сколько ждать освобождения слота
func (r RedisConfig) LockWaitDuration() time.Duration {
	return time.Duration(r.LockWait) * time.Millisecond
}

// LockRetryDuration интервал повторных попыток захвата
func (r RedisConfig) LockRetryDuration() time.Duration {
	return time.Duration(r.LockInterval) * time.Millisecond
}
