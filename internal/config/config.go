package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EventsDriverNone  = "none"
	EventsDriverAMQP  = "amqp"
	EventsDriverKafka = "kafka"
)

type HTTPConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type AuthConfig struct {
	AccessSecret string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type EventsConfig struct {
	Driver       string
	AMQPURL      string
	AMQPExchange string
	KafkaBrokers []string
	KafkaTopic   string
}

type DisposalsConfig struct {
	OperationTimeout time.Duration
}

type Config struct {
	Environment string
	LogLevel    string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Redis       RedisConfig
	Events      EventsConfig
	Disposals   DisposalsConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		HTTP: HTTPConfig{
			Host:            v.GetString("HTTP_HOST"),
			Port:            v.GetInt("HTTP_PORT"),
			ShutdownTimeout: v.GetDuration("HTTP_SHUTDOWN_TIMEOUT"),
			AllowedOrigins:  parseList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			CacheTTL: v.GetDuration("CATALOG_CACHE_TTL"),
		},
		Events: EventsConfig{
			Driver:       strings.ToLower(strings.TrimSpace(v.GetString("EVENTS_DRIVER"))),
			AMQPURL:      v.GetString("AMQP_URL"),
			AMQPExchange: v.GetString("AMQP_EXCHANGE"),
			KafkaBrokers: parseList(v.GetString("KAFKA_BROKERS")),
			KafkaTopic:   v.GetString("KAFKA_TOPIC"),
		},
		Disposals: DisposalsConfig{
			OperationTimeout: v.GetDuration("DISPOSAL_OPERATION_TIMEOUT"),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if len(cfg.HTTP.AllowedOrigins) == 0 {
		cfg.HTTP.AllowedOrigins = []string{"*"}
	}
	if cfg.Redis.CacheTTL == 0 {
		cfg.Redis.CacheTTL = 5 * time.Minute
	}
	if cfg.Events.Driver == "" {
		cfg.Events.Driver = EventsDriverNone
	}
	if cfg.Events.AMQPExchange == "" {
		cfg.Events.AMQPExchange = "disposals_topic"
	}
	if cfg.Events.KafkaTopic == "" {
		cfg.Events.KafkaTopic = "disposal-events"
	}
	if cfg.Disposals.OperationTimeout == 0 {
		cfg.Disposals.OperationTimeout = 5 * time.Second
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	switch cfg.Events.Driver {
	case EventsDriverNone:
	case EventsDriverAMQP:
		if cfg.Events.AMQPURL == "" {
			return fmt.Errorf("AMQP_URL is required when EVENTS_DRIVER=amqp")
		}
	case EventsDriverKafka:
		if len(cfg.Events.KafkaBrokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS is required when EVENTS_DRIVER=kafka")
		}
	default:
		return fmt.Errorf("unknown EVENTS_DRIVER %q", cfg.Events.Driver)
	}
	return nil
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
