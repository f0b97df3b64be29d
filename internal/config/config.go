package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// Переменные окружения, переопределяющие секреты из config.toml
const (
	EnvDBPassword    = "BOOKING_DB_PASSWORD"
	EnvDBHost        = "BOOKING_DB_HOST"
	EnvRedisAddr     = "BOOKING_REDIS_ADDR"
	EnvRedisPassword = "BOOKING_REDIS_PASSWORD"
	EnvKafkaBrokers  = "BOOKING_KAFKA_BROKERS"
	EnvLogLevel      = "BOOKING_LOG_LEVEL"
)

// ErrInvalidConfig возвращается при некорректной конфигурации
var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Logs      LogsConfig      `toml:"logs"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Redis     RedisConfig     `toml:"redis"`
	Session   SessionConfig   `toml:"session"`
	Booking   BookingConfig   `toml:"booking"`
	Kafka     KafkaConfig     `toml:"kafka"`
	Reminders RemindersConfig `toml:"reminders"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

type DatabaseConfig struct {
	Host                 string `toml:"host"`
	Port                 int    `toml:"port"`
	User                 string `toml:"user"`
	Password             string `toml:"password"`
	DBName               string `toml:"dbname"`
	SSLMode              string `toml:"sslmode"`
	MaxOpenConns         int    `toml:"max_open_conns"`
	MaxIdleConns         int    `toml:"max_idle_conns"`
	ConnMaxLifetime      int    `toml:"conn_max_lifetime"` // секунды
	SerializationRetries int    `toml:"serialization_retries"`
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// URL строка подключения для golang-migrate
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// SessionConfig хранение черновиков записи
type SessionConfig struct {
	DraftTTLMinutes int    `toml:"draft_ttl_minutes"`
	KeyPrefix       string `toml:"key_prefix"`
}

// BookingConfig параметры подбора слотов
type BookingConfig struct {
	HorizonDays             int    `toml:"horizon_days"`
	MinBookingNoticeMinutes int    `toml:"min_booking_notice_minutes"`
	Timezone                string `toml:"timezone"`
}

type KafkaConfig struct {
	Enabled        bool     `toml:"enabled"`
	Brokers        []string `toml:"brokers"`
	Topic          string   `toml:"topic"`
	PollIntervalMs int      `toml:"poll_interval_ms"`
	BatchSize      int      `toml:"batch_size"`
}

type RemindersConfig struct {
	Enabled         bool `toml:"enabled"`
	LeadHours       int  `toml:"lead_hours"`
	IntervalSeconds int  `toml:"interval_seconds"`
}

// Load читает .env (если есть), TOML-файл и применяет переопределения из окружения
func Load(path string) (*Config, error) {
	// .env необязателен
	_ = godotenv.Load()

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDBPassword); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv(EnvDBHost); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv(EnvRedisPassword); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv(EnvKafkaBrokers); v != "" {
		c.Kafka.Brokers = SplitBrokers(v)
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logs.Level = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 300
	}
	if c.Database.SerializationRetries == 0 {
		c.Database.SerializationRetries = 3
	}
	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "booking-engine"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Session.DraftTTLMinutes == 0 {
		c.Session.DraftTTLMinutes = domain.DefaultDraftTTLMinutes
	}
	if c.Session.KeyPrefix == "" {
		c.Session.KeyPrefix = "booking:session:"
	}
	if c.Booking.HorizonDays == 0 {
		c.Booking.HorizonDays = domain.DefaultHorizonDays
	}
	if c.Booking.Timezone == "" {
		c.Booking.Timezone = "UTC"
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "booking.notifications"
	}
	if c.Kafka.PollIntervalMs == 0 {
		c.Kafka.PollIntervalMs = 1000
	}
	if c.Kafka.BatchSize == 0 {
		c.Kafka.BatchSize = 100
	}
	if c.Reminders.LeadHours == 0 {
		c.Reminders.LeadHours = domain.DefaultReminderLeadHours
	}
	if c.Reminders.IntervalSeconds == 0 {
		c.Reminders.IntervalSeconds = 300
	}
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	var problems []string

	if c.Database.Host == "" {
		problems = append(problems, "database.host is required")
	}
	if c.Database.DBName == "" {
		problems = append(problems, "database.dbname is required")
	}
	if c.Session.DraftTTLMinutes < 0 {
		problems = append(problems, "session.draft_ttl_minutes must be positive")
	}
	if c.Booking.HorizonDays < 0 {
		problems = append(problems, "booking.horizon_days must be positive")
	}
	if c.Booking.MinBookingNoticeMinutes < 0 {
		problems = append(problems, "booking.min_booking_notice_minutes must not be negative")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		problems = append(problems, "kafka.brokers is required when kafka is enabled")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// SplitBrokers разбирает список брокеров через запятую
func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
