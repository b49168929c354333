package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration. FromEnv builds it from
// environment variables so main stays lean.
type Server struct {
	Addr string

	// PostgresURL selects the durable stores; when empty the service
	// runs on in-memory stores (dev and tests).
	PostgresURL string

	Redis RedisConfig
	Kafka KafkaConfig

	JWTSigningKey       string
	AccessTokenTTL      time.Duration
	VerificationTTL     time.Duration
	VerificationBaseURL string

	// RequireVerifiedLogin gates login on a confirmed email address.
	RequireVerifiedLogin bool
}

// RedisConfig configures the reference-data cache client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CatalogTTL   time.Duration
}

// KafkaConfig configures the audit sink. Empty brokers disable Kafka.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:        envOr("SISVITA_ADDR", ":8080"),
		PostgresURL: os.Getenv("SISVITA_POSTGRES_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("SISVITA_REDIS_URL"),
			PoolSize:     envInt("SISVITA_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("SISVITA_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDuration("SISVITA_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("SISVITA_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("SISVITA_REDIS_WRITE_TIMEOUT", 3*time.Second),
			CatalogTTL:   envDuration("SISVITA_CATALOG_CACHE_TTL", 5*time.Minute),
		},
		Kafka: KafkaConfig{
			AuditTopic: envOr("SISVITA_KAFKA_AUDIT_TOPIC", "sisvita.audit"),
		},
		JWTSigningKey:        os.Getenv("SISVITA_JWT_SIGNING_KEY"),
		AccessTokenTTL:       envDuration("SISVITA_ACCESS_TOKEN_TTL", time.Hour),
		VerificationTTL:      envDuration("SISVITA_VERIFICATION_TTL", 24*time.Hour),
		VerificationBaseURL:  envOr("SISVITA_VERIFICATION_BASE_URL", "https://sisvita.example.com/verify"),
		RequireVerifiedLogin: os.Getenv("SISVITA_REQUIRE_VERIFIED_LOGIN") == "true",
	}

	if brokers := os.Getenv("SISVITA_KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Kafka.Brokers = append(cfg.Kafka.Brokers, b)
			}
		}
	}

	if cfg.JWTSigningKey == "" {
		// Use a default for development - must be overridden in production
		cfg.JWTSigningKey = "dev-secret-key-change-in-production"
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
