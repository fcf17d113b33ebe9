package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
)

// ErrInvalidConfig возвращается при некорректных значениях конфигурации
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config конфигурация сервиса
type Config struct {
	Server              ServerConfig              `toml:"server"`
	Database            DatabaseConfig            `toml:"database"`
	Logs                LogsConfig                `toml:"logs"`
	Metrics             MetricsConfig             `toml:"metrics"`
	Scheduling          SchedulingConfig          `toml:"scheduling"`
	Redis               RedisConfig               `toml:"redis"`
	Kafka               KafkaConfig               `toml:"kafka"`
	NotificationService NotificationServiceConfig `toml:"notification_service"`
	RateLimit           RateLimitConfig           `toml:"rate_limit"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// SchedulingConfig параметры движка доступности
type SchedulingConfig struct {
	UTCOffsetMinutes     int `toml:"utc_offset_minutes"`
	SlotStepMinutes      int `toml:"slot_step_minutes"`
	DepositWindowMinutes int `toml:"deposit_window_minutes"`
	SweepIntervalSeconds int `toml:"sweep_interval_seconds"` // 0 - только при чтении списка
}

type RedisConfig struct {
	Enabled                bool   `toml:"enabled"`
	Addr                   string `toml:"addr"`
	Password               string `toml:"password"`
	DB                     int    `toml:"db"`
	AvailabilityTTLSeconds int    `toml:"availability_ttl_seconds"`
}

type KafkaConfig struct {
	Enabled bool     `toml:"enabled"`
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
}

type NotificationServiceConfig struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

type RateLimitConfig struct {
	Enabled bool    `toml:"enabled"`
	RPS     float64 `toml:"rps"`
	Burst   int     `toml:"burst"`
}

// Load читает конфигурацию из TOML файла, применяет значения по умолчанию и переменные окружения
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse разбирает конфигурацию из строки (используется в тестах)
func Parse(data string) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default значения по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{Level: "info"},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "shop_booking_service",
		},
		Scheduling: SchedulingConfig{
			UTCOffsetMinutes:     domain.DefaultUTCOffsetMinutes,
			SlotStepMinutes:      domain.DefaultSlotStepMinutes,
			DepositWindowMinutes: domain.DefaultDepositWindowMinutes,
		},
		Redis: RedisConfig{
			Addr:                   "localhost:6379",
			AvailabilityTTLSeconds: 60,
		},
		Kafka: KafkaConfig{Topic: "shop-booking.events"},
		NotificationService: NotificationServiceConfig{
			Timeout: 5,
		},
		RateLimit: RateLimitConfig{
			RPS:   5,
			Burst: 20,
		},
	}
}

// Validate проверяет значения, от которых зависит корректность расчета слотов
func (c *Config) Validate() error {
	var problems []string

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		problems = append(problems, "server.http_port must be in 1..65535")
	}
	if c.Scheduling.UTCOffsetMinutes < -12*60 || c.Scheduling.UTCOffsetMinutes > 14*60 {
		problems = append(problems, "scheduling.utc_offset_minutes must be within -720..840")
	}
	if c.Scheduling.SlotStepMinutes <= 0 || 24*60%c.Scheduling.SlotStepMinutes != 0 {
		problems = append(problems, "scheduling.slot_step_minutes must divide a day")
	}
	if c.Scheduling.DepositWindowMinutes <= 0 {
		problems = append(problems, "scheduling.deposit_window_minutes must be positive")
	}
	if c.Scheduling.SweepIntervalSeconds < 0 {
		problems = append(problems, "scheduling.sweep_interval_seconds must not be negative")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		problems = append(problems, "kafka.brokers required when kafka is enabled")
	}
	if c.NotificationService.Enabled && c.NotificationService.URL == "" {
		problems = append(problems, "notification_service.url required when enabled")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		problems = append(problems, "rate_limit.rps and rate_limit.burst must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// applyEnv секреты можно переопределить через окружение
func applyEnv(cfg *Config) {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
}
