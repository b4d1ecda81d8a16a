// Package config loads service configuration from the environment.
package config

import (
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/neomorfeo/nexcart/internal/adapter/otel"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Jobs     JobsConfig
	Otel     otel.Config
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Path string
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	DedupeTTL time.Duration
	Enabled   bool
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	Enabled bool
}

type JobsConfig struct {
	CartSweepInterval time.Duration
	Workers           int
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over .env entries.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Server: ServerConfig{
			Port: envOrDefault("PORT", "8080"),
			Env:  envOrDefault("ENV", "development"),
		},
		Database: DatabaseConfig{
			Path: envOrDefault("DATABASE_PATH", "nexcart.db"),
		},
		Redis: RedisConfig{
			Addr:      envOrDefault("REDIS_ADDR", "localhost:6379"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        intOrDefault("REDIS_DB", 0),
			DedupeTTL: durationOrDefault("REDIS_DEDUPE_TTL", 24*time.Hour),
			Enabled:   boolOrDefault("REDIS_ENABLED", false),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
			Topic:   envOrDefault("KAFKA_TOPIC", "nexcart.domain-events"),
			Enabled: boolOrDefault("KAFKA_ENABLED", false),
		},
		Jobs: JobsConfig{
			CartSweepInterval: durationOrDefault("CART_SWEEP_INTERVAL", time.Hour),
			Workers:           intOrDefault("JOB_WORKERS", 10),
		},
		Otel: loadOtel(),
	}
}

func loadOtel() otel.Config {
	env := envOrDefault("OTEL_ENVIRONMENT", "development")
	return otel.Config{
		ServiceName:    envOrDefault("OTEL_SERVICE_NAME", "nexcart"),
		ServiceVersion: envOrDefault("OTEL_SERVICE_VERSION", "0.1.0"),
		Environment:    env,
		Exporter:       envOrDefault("OTEL_EXPORTER", otel.ExporterStdout),
		Endpoint:       os.Getenv("OTEL_ENDPOINT"),
		Insecure:       env == "development",
		SampleRatio:    floatOrDefault("OTEL_SAMPLE_RATIO", 1),
		RecordQueries:  boolOrDefault("OTEL_RECORD_QUERIES", env == "development"),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intOrDefault(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}

func floatOrDefault(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || math.IsNaN(f) {
		return fallback
	}
	return f
}

func boolOrDefault(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
