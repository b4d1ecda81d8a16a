package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/neomorfeo/nexcart/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "DATABASE_PATH", "REDIS_DB", "REDIS_DEDUPE_TTL", "KAFKA_BROKERS", "KAFKA_ENABLED", "REDIS_ENABLED", "CART_SWEEP_INTERVAL", "JOB_WORKERS", "OTEL_SERVICE_NAME", "OTEL_SERVICE_VERSION", "OTEL_ENVIRONMENT", "OTEL_EXPORTER", "OTEL_SAMPLE_RATIO", "OTEL_RECORD_QUERIES"} {
		t.Setenv(key, "")
	}

	cfg := config.Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, "nexcart.db", cfg.Database.Path)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 24*time.Hour, cfg.Redis.DedupeTTL)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.Kafka.Enabled)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, time.Hour, cfg.Jobs.CartSweepInterval)
	assert.Equal(t, 10, cfg.Jobs.Workers)
	assert.Equal(t, "nexcart", cfg.Otel.ServiceName)
	assert.Equal(t, "0.1.0", cfg.Otel.ServiceVersion)
	assert.Equal(t, "development", cfg.Otel.Environment)
	assert.Equal(t, "stdout", cfg.Otel.Exporter)
	assert.True(t, cfg.Otel.Insecure)
	assert.InDelta(t, 1.0, cfg.Otel.SampleRatio, 0)
	assert.True(t, cfg.Otel.RecordQueries)
}

func TestLoad_OtelValues(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "custom-service")
	t.Setenv("OTEL_SERVICE_VERSION", "1.0.0")
	t.Setenv("OTEL_ENVIRONMENT", "production")
	t.Setenv("OTEL_EXPORTER", "otlp")
	t.Setenv("OTEL_ENDPOINT", "collector:4318")
	t.Setenv("OTEL_SAMPLE_RATIO", "0.25")
	t.Setenv("OTEL_RECORD_QUERIES", "")

	cfg := config.Load()

	assert.Equal(t, "custom-service", cfg.Otel.ServiceName)
	assert.Equal(t, "1.0.0", cfg.Otel.ServiceVersion)
	assert.Equal(t, "production", cfg.Otel.Environment)
	assert.Equal(t, "otlp", cfg.Otel.Exporter)
	assert.Equal(t, "collector:4318", cfg.Otel.Endpoint)
	assert.False(t, cfg.Otel.Insecure)
	assert.InDelta(t, 0.25, cfg.Otel.SampleRatio, 1e-9)
	assert.False(t, cfg.Otel.RecordQueries, "queries stay off spans outside development")
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("CART_SWEEP_INTERVAL", "15m")

	cfg := config.Load()

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, 15*time.Minute, cfg.Jobs.CartSweepInterval)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "three")
	t.Setenv("REDIS_DEDUPE_TTL", "-5s")
	t.Setenv("JOB_WORKERS", "many")
	t.Setenv("OTEL_SAMPLE_RATIO", "NaN")

	cfg := config.Load()

	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 24*time.Hour, cfg.Redis.DedupeTTL)
	assert.Equal(t, 10, cfg.Jobs.Workers)
	assert.InDelta(t, 1.0, cfg.Otel.SampleRatio, 0)
}
