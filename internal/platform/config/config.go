// Package config builds runtime configuration from environment variables so
// main stays lean.
package config

import (
	"os"
	"strings"
	"time"
)

// Server captures everything the binary needs to start.
type Server struct {
	Addr            string
	DatabaseURL     string
	RedisURL        string
	KafkaBrokers    []string
	KafkaAuditTopic string
	RegistryBaseURL string
	RegistryAPIKey  string
	JWTSigningKey   string
	// CallerAPIKeys maps caller ids to bcrypt hashes of their API keys,
	// for callers that authenticate with a key instead of a JWT.
	CallerAPIKeys map[string]string
	CandidateTTL  time.Duration
}

// FromEnv reads the server configuration from the environment. Optional
// backends (Redis, Kafka) are left empty when unset; main degrades to the
// in-process implementations.
func FromEnv() Server {
	cfg := Server{
		Addr:            getenv("REGISTRAR_ADDR", ":8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		KafkaAuditTopic: getenv("KAFKA_AUDIT_TOPIC", "registrar.allocations"),
		RegistryBaseURL: os.Getenv("REGISTRY_BASE_URL"),
		RegistryAPIKey:  os.Getenv("REGISTRY_API_KEY"),
		JWTSigningKey:   getenv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		CandidateTTL:    5 * time.Minute,
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	// CALLER_API_KEYS is caller:bcrypt-hash pairs, comma separated. Bcrypt
	// hashes contain neither commas nor colons.
	if keys := os.Getenv("CALLER_API_KEYS"); keys != "" {
		cfg.CallerAPIKeys = make(map[string]string)
		for _, pair := range strings.Split(keys, ",") {
			if caller, hash, ok := strings.Cut(strings.TrimSpace(pair), ":"); ok && caller != "" && hash != "" {
				cfg.CallerAPIKeys[caller] = hash
			}
		}
	}
	if ttl := os.Getenv("CANDIDATE_CACHE_TTL"); ttl != "" {
		if parsed, err := time.ParseDuration(ttl); err == nil && parsed > 0 {
			cfg.CandidateTTL = parsed
		}
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
