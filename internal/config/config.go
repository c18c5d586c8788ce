package config

import (
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultRunAddress      = "localhost:8080"
	defaultJWTSecret       = "default-secret-change-in-production"
	defaultTokenExpiration = 24 * time.Hour
	defaultLogLevel        = "info"
	defaultKafkaTopic      = "order-events"
	defaultNotifyInterval  = 5 * time.Second
)

// Config содержит конфигурацию приложения.
type Config struct {
	RunAddress      string
	DatabaseURI     string
	JWTSecret       string
	TokenExpiration time.Duration
	LogLevel        string
	KafkaBrokers    string
	KafkaTopic      string
	NotifyInterval  time.Duration
}

// Load загружает конфигурацию из флагов командной строки и переменных окружения.
// Приоритет: переменные окружения > флаги > значения по умолчанию.
// Файл .env, если он есть, дополняет окружение, но не перекрывает уже заданные переменные.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{}

	flag.StringVar(&cfg.RunAddress, "a", defaultRunAddress, "адрес и порт запуска сервиса")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "строка подключения к PostgreSQL")
	flag.DurationVar(&cfg.TokenExpiration, "t", defaultTokenExpiration, "время жизни токена администратора")
	flag.StringVar(&cfg.LogLevel, "l", defaultLogLevel, "уровень логирования")
	flag.StringVar(&cfg.KafkaBrokers, "k", "", "адреса брокеров Kafka через запятую")
	flag.Parse()

	if envRunAddr := os.Getenv("RUN_ADDRESS"); envRunAddr != "" {
		cfg.RunAddress = envRunAddr
	}
	if envDBURI := os.Getenv("DATABASE_URI"); envDBURI != "" {
		cfg.DatabaseURI = envDBURI
	}
	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		cfg.LogLevel = envLevel
	}
	if envBrokers := os.Getenv("KAFKA_BROKERS"); envBrokers != "" {
		cfg.KafkaBrokers = envBrokers
	}

	cfg.TokenExpiration = durationFromEnv("TOKEN_EXPIRATION", cfg.TokenExpiration)
	cfg.NotifyInterval = durationFromEnv("NOTIFY_INTERVAL", defaultNotifyInterval)

	// JWT секрет
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = defaultJWTSecret
	}

	cfg.KafkaTopic = os.Getenv("KAFKA_TOPIC")
	if cfg.KafkaTopic == "" {
		cfg.KafkaTopic = defaultKafkaTopic
	}

	return cfg
}

// durationFromEnv возвращает fallback, если переменная не задана или не разбирается.
func durationFromEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
