package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is the full process configuration, populated from DUESGATE_*
// environment variables so main stays lean.
type Config struct {
	Addr     string `envconfig:"ADDR" default:":8080"`
	LogDebug bool   `envconfig:"LOG_DEBUG"`

	// JWTSigningKey signs and validates principal bearer tokens.
	JWTSigningKey string `envconfig:"JWT_SIGNING_KEY" default:"dev-secret-key-change-in-production"`

	// OwnerPrincipal bootstraps the owner role; must be a non-nil uuid.
	OwnerPrincipal string `envconfig:"OWNER_PRINCIPAL" required:"true"`

	// GraceDays is the initial public grace window; mutable at runtime by the
	// owner through the API.
	GraceDays uint32 `envconfig:"GRACE_DAYS" default:"7"`

	// OpBudget is the homomorphic cost budget per entry-point operation.
	OpBudget uint64 `envconfig:"OP_BUDGET" default:"64"`

	// OracleEnabled mounts the reference decryption oracle. Dev only; the
	// real decryption service runs out of band.
	OracleEnabled bool `envconfig:"ORACLE_ENABLED"`

	Redis    RedisConfig
	Postgres PostgresConfig
	Kafka    KafkaConfig
}

// RedisConfig configures the grant store backend. An empty URL selects the
// in-memory store.
type RedisConfig struct {
	URL          string        `envconfig:"REDIS_URL"`
	PoolSize     int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
}

// PostgresConfig configures the audit outbox store. An empty DSN selects the
// in-memory audit store.
type PostgresConfig struct {
	DSN string `envconfig:"POSTGRES_DSN"`
}

// KafkaConfig configures the audit event publisher. No brokers disables
// publishing; events still land in the audit store.
type KafkaConfig struct {
	Brokers []string `envconfig:"KAFKA_BROKERS"`
	Topic   string   `envconfig:"KAFKA_AUDIT_TOPIC" default:"duesgate.audit"`
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("duesgate", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
