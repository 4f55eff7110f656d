// Package config загружает конфигурацию daxgen.
//
// Источники в порядке приоритета (последний побеждает):
//   - значения по умолчанию
//   - переменные окружения (DAXGEN_*, DB_URL, RABBITMQ_URL, S3_*, ...)
//   - HCL файл (--config daxgen.hcl)
//   - флаги командной строки (применяются в пакете cli)
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/shaiso/daxgen/internal/domain"
	"github.com/shaiso/daxgen/internal/storage"
	"github.com/shaiso/daxgen/internal/telemetry"
)

// Значения по умолчанию.
const (
	DefaultWorkflowName = "workflow"
	DefaultAPIPort      = "8080"
	DefaultExchange     = "daxgen.events"
)

// Config — конфигурация CLI и HTTP-сервера.
type Config struct {
	// Генерация
	WorkflowName  string
	DefaultSite   string
	StrictAcyclic bool
	Vars          map[string]string

	// Хранилище графов
	DatabaseURL string

	// Уведомления
	RabbitMQURL string
	Exchange    string

	// Объектное хранилище
	S3 storage.S3Config

	// Наблюдаемость
	LogLevel       string
	LogFormat      string
	PushgatewayURL string
	Tracing        telemetry.TracingConfig

	// HTTP API
	APIPort string
}

// FromEnv читает конфигурацию из переменных окружения.
func FromEnv() *Config {
	return &Config{
		WorkflowName:  getEnv("DAXGEN_WORKFLOW_NAME", DefaultWorkflowName),
		DefaultSite:   getEnv("DAXGEN_DEFAULT_SITE", domain.DefaultSite),
		StrictAcyclic: getBool("DAXGEN_STRICT_ACYCLIC", false),
		Vars:          getVars("DAXGEN_VARS"),

		DatabaseURL: getEnv("DB_URL", ""),

		RabbitMQURL: getEnv("RABBITMQ_URL", ""),
		Exchange:    getEnv("DAXGEN_EXCHANGE", DefaultExchange),

		S3: storage.S3Config{
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			Region:          getEnv("S3_REGION", ""),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			UseSSL:          getBool("S3_USE_SSL", false),
		},

		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		PushgatewayURL: getEnv("PUSHGATEWAY_URL", ""),
		Tracing: telemetry.TracingConfig{
			Enabled:        getBool("DAXGEN_TRACING", false),
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "daxgen"),
			ServiceVersion: getEnv("DAXGEN_VERSION", "dev"),
			SampleRate:     getFloat("OTEL_SAMPLE_RATE", 1.0),
		},

		APIPort: getEnv("API_PORT", DefaultAPIPort),
	}
}

// Load читает окружение и, если path не пуст, HCL файл поверх него.
func Load(path string) (*Config, error) {
	cfg := FromEnv()
	if path == "" {
		return cfg, nil
	}
	if err := cfg.LoadFile(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetVar устанавливает переменную шаблонов.
func (c *Config) SetVar(key, value string) {
	if c.Vars == nil {
		c.Vars = make(map[string]string)
	}
	c.Vars[key] = value
}

// S3Enabled возвращает true, если заданы параметры S3.
func (c *Config) S3Enabled() bool {
	return c.S3.Endpoint != "" || c.S3.AccessKeyID != "" || c.S3.Region != ""
}

// Helper functions for environment variable parsing

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// getVars читает переменные шаблонов вида "k1=v1,k2=v2".
func getVars(key string) map[string]string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}

	vars := make(map[string]string)
	for _, pair := range strings.Split(val, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(k) == "" {
			continue
		}
		vars[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return vars
}
