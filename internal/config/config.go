// Package config loads application configuration from environment
// variables. Required values are enforced at startup; a missing one is
// a deployment error and halts the process rather than limping along.
package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration. Strings for identifiers and
// secrets, ints where the value is used arithmetically.
type Config struct {
	Env           string // application environment (e.g. "dev", "prod")
	Port          string // HTTP port to listen on
	DBUser        string // database username
	DBPass        string // database password (optional)
	DBHost        string // database host address
	DBPort        string // database port number
	DBName        string // database name
	JWTSecret     string // secret the external auth layer signs tokens with
	WebhookSecret string // HMAC key for payment webhook signatures
}

// Load reads configuration from the environment. Required variables are
// enforced by must(); missing values exit with a fatal log message.
func Load() Config {
	return Config{
		Env:           must("APP_ENV"),
		Port:          must("APP_PORT"),
		DBUser:        must("DB_USER"),
		DBPass:        os.Getenv("DB_PASS"), // empty allowed
		DBHost:        must("DB_HOST"),
		DBPort:        must("DB_PORT"),
		DBName:        must("DB_NAME"),
		JWTSecret:     must("JWT_SECRET"),
		WebhookSecret: must("PAYMENT_WEBHOOK_SECRET"),
	}
}

// ReconcileConfig configures the stuck-order reconciliation job.
type ReconcileConfig struct {
	MaxAgeMin  int // cancel awaiting_payment orders older than this many minutes
	BatchLimit int // orders handled per run
}

// LoadReconcile reads the reconciliation job's configuration.
func LoadReconcile() ReconcileConfig {
	return ReconcileConfig{
		MaxAgeMin:  mustInt("RECONCILE_MAX_AGE_MIN"),
		BatchLimit: mustInt("RECONCILE_BATCH_LIMIT"),
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the value to an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
