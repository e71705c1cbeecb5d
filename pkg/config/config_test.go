package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATABASE_URL", "DB_HOST", "JWT_TTL", "KAFKA_BROKERS", "RATE_LIMIT_MAX", "ADMIN_NAME"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	require.Equal(t, "3000", cfg.Port)
	require.Contains(t, cfg.DatabaseURL, "host=localhost")
	require.Equal(t, 24*time.Hour, cfg.JWTTTL)
	require.Equal(t, "admin", cfg.AdminName)
	require.Equal(t, 50, cfg.RateLimitMax)
	require.Empty(t, cfg.KafkaBrokers)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/orders")
	t.Setenv("JWT_TTL", "90m")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("RATE_LIMIT_MAX", "not-a-number")

	cfg := Load()

	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "postgres://u:p@db:5432/orders", cfg.DatabaseURL)
	require.Equal(t, 90*time.Minute, cfg.JWTTTL)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	require.Equal(t, 50, cfg.RateLimitMax)
}
