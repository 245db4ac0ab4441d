package config // package config loads application configuration from environment variables

import (
	"log"     // report configuration errors and halt startup
	"os"      // environment variable access
	"strconv" // string to int conversion
)

// Config holds all runtime configuration values.  Each field maps to one
// environment variable.  Strings carry identifiers, secrets and URLs; ints
// carry durations and costs.
type Config struct {
	Env                string // application environment (e.g. "dev", "prod")
	Port               string // HTTP port to listen on
	DBUser             string // database username
	DBPass             string // database password (optional)
	DBHost             string // database host address
	DBPort             string // database port number
	DBName             string // database name
	JWTSecret          string // secret used to sign JWTs
	AccessTTLMin       int    // access token time-to-live in minutes
	RefreshTTLDays     int    // refresh token time-to-live in days
	BcryptCost         int    // bcrypt cost for password hashing
	AMQPURL            string // RabbitMQ connection string (optional)
	ContractWebhookURL string // endpoint notified when a budget is accepted (optional)
}

// Load reads configuration from the environment and returns a Config.
// Required variables are enforced by must(); a missing value exits the
// program with a fatal log message.  AMQP_URL and CONTRACT_WEBHOOK_URL
// are optional so the server can run without the contract pipeline.
func Load() Config {
	return Config{
		Env:                must("APP_ENV"),
		Port:               must("APP_PORT"),
		DBUser:             must("DB_USER"),
		DBPass:             os.Getenv("DB_PASS"), // empty allowed
		DBHost:             must("DB_HOST"),
		DBPort:             must("DB_PORT"),
		DBName:             must("DB_NAME"),
		JWTSecret:          must("JWT_SECRET"),
		AccessTTLMin:       mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays:     mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:         mustInt("BCRYPT_COST"),
		AMQPURL:            os.Getenv("AMQP_URL"),
		ContractWebhookURL: os.Getenv("CONTRACT_WEBHOOK_URL"),
	}
}

// must retrieves a required environment variable.  Unset or empty values
// abort startup with a fatal log message.
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
