package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration so main stays lean.
type Server struct {
	Addr string

	// DatabaseURL enables the Postgres stores; empty falls back to in-memory.
	DatabaseURL string
	// RedisURL enables the Redis rate limit store; empty falls back to in-memory.
	RedisURL string

	// CredentialKey is the server-side secret keying the credential hash.
	// Losing it orphans every stored credential hash, so it is required
	// outside development.
	CredentialKey string

	// StaffJWTKey signs and verifies staff-tooling tokens.
	StaffJWTKey string

	// IntakeMinElapsed is the minimum form-fill duration the intake gate
	// accepts before treating a submission as automated.
	IntakeMinElapsed time.Duration

	// KafkaBrokers and KafkaTopic configure the notification event sink;
	// empty brokers fall back to the in-memory sink.
	KafkaBrokers []string
	KafkaTopic   string

	// OTLPEndpoint is the trace collector; empty disables span export.
	OTLPEndpoint string

	// PublicRateLimit / PublicRateWindow bound unauthenticated traffic on the
	// submission and tracking endpoints, per client IP.
	PublicRateLimit  int
	PublicRateWindow time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:             envOr("SIGNALBOX_ADDR", ":8080"),
		DatabaseURL:      os.Getenv("SIGNALBOX_DATABASE_URL"),
		RedisURL:         os.Getenv("SIGNALBOX_REDIS_URL"),
		CredentialKey:    os.Getenv("SIGNALBOX_CREDENTIAL_KEY"),
		StaffJWTKey:      os.Getenv("SIGNALBOX_STAFF_JWT_KEY"),
		IntakeMinElapsed: envDurationOr("SIGNALBOX_INTAKE_MIN_ELAPSED", 5*time.Second),
		KafkaTopic:       envOr("SIGNALBOX_KAFKA_TOPIC", "signalbox.notifications"),
		OTLPEndpoint:     os.Getenv("SIGNALBOX_OTLP_ENDPOINT"),
		PublicRateLimit:  envIntOr("SIGNALBOX_PUBLIC_RATE_LIMIT", 30),
		PublicRateWindow: envDurationOr("SIGNALBOX_PUBLIC_RATE_WINDOW", time.Minute),
	}

	if brokers := os.Getenv("SIGNALBOX_KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	// Development defaults - must be overridden in production.
	if cfg.CredentialKey == "" {
		cfg.CredentialKey = "dev-credential-key-change-in-production"
	}
	if cfg.StaffJWTKey == "" {
		cfg.StaffJWTKey = "dev-staff-jwt-key-change-in-production"
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
