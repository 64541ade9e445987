package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

var (
	// ErrLoad возвращается, если не удалось прочитать или разобрать файл конфигурации
	ErrLoad = errors.New("config: failed to load")

	// ErrInvalid возвращается при некорректных значениях конфигурации
	ErrInvalid = errors.New("config: invalid configuration")
)

// Config конфигурация приложения
type Config struct {
	Server         ServerConfig         `toml:"server"`
	Database       DatabaseConfig       `toml:"database"`
	Logs           LogsConfig           `toml:"logs"`
	Metrics        MetricsConfig        `toml:"metrics"`
	Engine         EngineConfig         `toml:"engine"`
	Locking        LockingConfig        `toml:"locking"`
	SlotValidation SlotValidationConfig `toml:"slot_validation"`
	Events         EventsConfig         `toml:"events"`
}

// ServerConfig настройки HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки PostgreSQL
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

// LogsConfig настройки логирования
type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// MetricsConfig настройки Prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// EngineConfig политики движка бронирований
type EngineConfig struct {
	// MaxPartySize верхняя граница размера группы, 0 - без ограничения
	MaxPartySize int `toml:"max_party_size"`
}

// LockingConfig настройки блокировки исполнителя
type LockingConfig struct {
	TimeoutMs int `toml:"timeout_ms"`
}

// LockTimeout возвращает таймаут ожидания блокировки
func (l LockingConfig) LockTimeout() time.Duration {
	return time.Duration(l.TimeoutMs) * time.Millisecond
}

// SlotValidationConfig настройки проверки слотов
type SlotValidationConfig struct {
	Mode      string          `toml:"mode"`      // NONE | ENGINE
	Authority string          `toml:"authority"` // http | redis
	TimeoutMs int             `toml:"timeout_ms"`
	HTTP      SlotHTTPConfig  `toml:"http"`
	Redis     SlotRedisConfig `toml:"redis"`
}

// Timeout возвращает таймаут обращения к источнику слотов
func (s SlotValidationConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutMs) * time.Millisecond
}

// SlotHTTPConfig удалённый сервис слотов
type SlotHTTPConfig struct {
	URL   string  `toml:"url"`
	RPS   float64 `toml:"rps"`
	Burst int     `toml:"burst"`
}

// SlotRedisConfig Redis с предлагаемыми слотами
type SlotRedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// EventsConfig публикация событий в RabbitMQ
type EventsConfig struct {
	Enabled  bool   `toml:"enabled"`
	URL      string `toml:"url"`
	Exchange string `toml:"exchange"`
}

// Load читает конфигурацию из TOML файла, применяет значения по умолчанию,
// переопределения из окружения и валидирует результат
func Load(path string) (*Config, error) {
	cfg := defaults()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoad, path, err)
	}

	applyEnv(cfg, os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
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
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "booking_engine",
		},
		Locking: LockingConfig{
			TimeoutMs: 3000,
		},
		SlotValidation: SlotValidationConfig{
			Mode:      "NONE",
			Authority: "http",
			TimeoutMs: 2000,
		},
		Events: EventsConfig{
			Exchange: "bookings",
		},
	}
}

// applyEnv переопределяет секреты и адреса из переменных окружения
func applyEnv(cfg *Config, getenv func(string) string) {
	if v := getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := getenv("DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := getenv("DB_NAME"); v != "" {
		cfg.Database.DBName = v
	}
	if v := getenv("SLOT_VALIDATION_MODE"); v != "" {
		cfg.SlotValidation.Mode = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		cfg.SlotValidation.Redis.Addr = v
	}
	if v := getenv("REDIS_PASSWORD"); v != "" {
		cfg.SlotValidation.Redis.Password = v
	}
	if v := getenv("RABBITMQ_URL"); v != "" {
		cfg.Events.URL = v
	}
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	var problems []string

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		problems = append(problems, "server.http_port must be in 1..65535")
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		problems = append(problems, "database.host and database.dbname are required")
	}
	if c.Engine.MaxPartySize < 0 {
		problems = append(problems, "engine.max_party_size must not be negative")
	}
	if c.Locking.TimeoutMs <= 0 {
		problems = append(problems, "locking.timeout_ms must be positive")
	}

	switch strings.ToUpper(c.SlotValidation.Mode) {
	case "NONE":
	case "ENGINE":
		if c.SlotValidation.TimeoutMs <= 0 {
			problems = append(problems, "slot_validation.timeout_ms must be positive")
		}
		switch c.SlotValidation.Authority {
		case "http":
			if c.SlotValidation.HTTP.URL == "" {
				problems = append(problems, "slot_validation.http.url is required for http authority")
			}
		case "redis":
			if c.SlotValidation.Redis.Addr == "" {
				problems = append(problems, "slot_validation.redis.addr is required for redis authority")
			}
		default:
			problems = append(problems, fmt.Sprintf("slot_validation.authority %q is not supported", c.SlotValidation.Authority))
		}
	default:
		problems = append(problems, fmt.Sprintf("slot_validation.mode %q must be NONE or ENGINE", c.SlotValidation.Mode))
	}

	if c.Events.Enabled && (c.Events.URL == "" || c.Events.Exchange == "") {
		problems = append(problems, "events.url and events.exchange are required when events are enabled")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}
