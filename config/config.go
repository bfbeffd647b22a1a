package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
)

type (
	APP struct {
		Name      string
		Host      string
		Port      string
		Env       string
		JWTSecret string
	}
	Store struct {
		DataDir      string
		QuotaBytes   int64
		MaxFileBytes int64
	}
	AI struct {
		Endpoint   string
		APIKey     string
		Model      string
		TimeoutSec int
	}
	MQ struct {
		User         string
		Password     string
		Vhost        string
		Host         string
		AmqpPort     string
		Exchange     string
		ExchangeType string
		QueueName    string
	}

	Config struct {
		App   APP
		Store Store
		AI    AI
		MQ    MQ
	}
)

const (
	defaultQuotaBytes   = 2 << 30   // 2 GiB
	defaultMaxFileBytes = 300 << 20 // 300 MiB
)

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func Load() Config {
	app := APP{
		Name:      getEnv("SERVICE_NAME", "filevault"),
		Host:      getEnv("SERVICE_HOST", ""),
		Port:      getEnv("SERVICE_PORT", "8080"),
		Env:       getEnv("SERVICE_ENV", ""),
		JWTSecret: getEnv("SERVICE_JWT_SECRET", ""),
	}
	store := Store{
		DataDir:      getEnv("VAULT_DATA_DIR", "data"),
		QuotaBytes:   getEnvInt64("VAULT_QUOTA_BYTES", defaultQuotaBytes),
		MaxFileBytes: getEnvInt64("VAULT_MAX_FILE_BYTES", defaultMaxFileBytes),
	}
	ai := AI{
		Endpoint:   getEnv("AI_ENDPOINT", ""),
		APIKey:     getEnv("AI_API_KEY", ""),
		Model:      getEnv("AI_MODEL", ""),
		TimeoutSec: int(getEnvInt64("AI_TIMEOUT_SECONDS", 10)),
	}
	mq := MQ{
		User:         getEnv("RABBITMQ_USER", ""),
		Password:     getEnv("RABBITMQ_PASSWORD", ""),
		Vhost:        getEnv("RABBITMQ_VHOST", ""),
		Host:         getEnv("RABBITMQ_HOST", ""),
		AmqpPort:     getEnv("RABBITMQ_AMQP_PORT", ""),
		Exchange:     getEnv("RABBITMQ_EXCHANGE", ""),
		ExchangeType: getEnv("RABBITMQ_EXCHANGE_TYPE", ""),
		QueueName:    getEnv("RABBITMQ_QUEUE_NAME", ""),
	}

	return Config{
		App:   app,
		Store: store,
		AI:    ai,
		MQ:    mq,
	}
}

// MQEnabled reports whether a broker is configured; without one the vault
// publishes catalog events to the log-only publisher instead.
func (c Config) MQEnabled() bool {
	return c.MQ.Host != ""
}

func (c Config) AMQPDSN() (string, error) {
	if c.MQ.User == "" || c.MQ.Host == "" || c.MQ.AmqpPort == "" {
		return "", fmt.Errorf("invalid MQ config: user, host and amqp port are required")
	}

	return fmt.Sprintf(
		"%s://%s@%s:%s/%s",
		"amqp",
		url.UserPassword(c.MQ.User, c.MQ.Password).String(),
		c.MQ.Host,
		c.MQ.AmqpPort,
		url.PathEscape(c.MQ.Vhost),
	), nil
}
