package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the API process.
type Config struct {
	Port        string
	DatabaseURL string
	LogLevel    string

	JWTSecret string
	JWTTTL    time.Duration

	AdminName     string
	AdminPassword string

	RateLimitMax    int
	RateLimitWindow time.Duration

	KafkaBrokers  []string
	KafkaTopic    string
	KafkaUsername string
	KafkaPassword string
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	v, err := strconv.Atoi(getenv(k, ""))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func getenvDuration(k string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(getenv(k, ""))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// Load reads .env (when present) and the process environment.
func Load() Config {
	_ = godotenv.Load() // load .env if it exists

	dsn := getenv("DATABASE_URL", "")
	if dsn == "" {
		dsn = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			getenv("DB_HOST", "localhost"),
			getenv("DB_USER", "postgres"),
			getenv("DB_PASSWORD", "postgres"),
			getenv("DB_NAME", "inventory"),
			getenv("DB_PORT", "5432"),
		)
	}

	var brokers []string
	for _, b := range strings.Split(getenv("KAFKA_BROKERS", ""), ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	return Config{
		Port:            getenv("PORT", "3000"),
		DatabaseURL:     dsn,
		LogLevel:        getenv("LOG_LEVEL", "info"),
		JWTSecret:       getenv("JWT_SECRET", "your-super-secret-key-change-in-production"),
		JWTTTL:          getenvDuration("JWT_TTL", 24*time.Hour),
		AdminName:       getenv("ADMIN_NAME", "admin"),
		AdminPassword:   getenv("ADMIN_PASSWORD", "Admin@123"),
		RateLimitMax:    getenvInt("RATE_LIMIT_MAX", 50),
		RateLimitWindow: getenvDuration("RATE_LIMIT_WINDOW", time.Hour),
		KafkaBrokers:    brokers,
		KafkaTopic:      getenv("KAFKA_TOPIC", "orders"),
		KafkaUsername:   getenv("KAFKA_USERNAME", ""),
		KafkaPassword:   getenv("KAFKA_PASSWORD", ""),
	}
}
