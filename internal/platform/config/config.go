package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
	DatabaseURL   string
	Redis         RedisConfig
	KafkaBrokers  []string
	KafkaTopic    string
	CatalogFile   string
	SeedUser      string
}

// RedisConfig holds go-redis connection settings. An empty URL disables the
// read cache entirely.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// ProfileCacheTTL bounds staleness of cached profiles between the write-path
// invalidation and Redis expiry.
var ProfileCacheTTL = 5 * time.Minute

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("ONESTACK_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("ONESTACK_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	var brokers []string
	if raw := os.Getenv("ONESTACK_KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	kafkaTopic := os.Getenv("ONESTACK_KAFKA_TOPIC")
	if kafkaTopic == "" {
		kafkaTopic = "onestack.progress"
	}

	return Server{
		Addr:          addr,
		JWTSigningKey: jwtSigningKey,
		JWTIssuer:     "onestack",
		JWTAudience:   "onestack-api",
		DatabaseURL:   os.Getenv("ONESTACK_DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("ONESTACK_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		KafkaBrokers: brokers,
		KafkaTopic:   kafkaTopic,
		CatalogFile:  os.Getenv("ONESTACK_CATALOG_FILE"),
		SeedUser:     os.Getenv("ONESTACK_SEED_USER"),
	}
}
