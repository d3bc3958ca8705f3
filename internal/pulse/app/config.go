package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer         string        // Optional: issuer claim for tokens (default: pulse)
	TokenTTL       time.Duration // Optional: lifetime of access tokens (default: 24h)
	DatabaseFile   string        // Optional: path to SQLite database file (default: ./pulse.db)
	PepperFile     string        // Optional: path to file containing pepper for password hashing (default: ./pepper)
	SigningKeyFile string        // Optional: path to the Ed25519 signing key, generated when missing (default: ./signing.key)

	InviteTTL         time.Duration // Optional: how long invite tokens stay redeemable (default: 7 days)
	InviteConcurrency int           // Optional: recipients processed at once per invite request (default: 4)
	InviteAcceptURL   string        // Optional: link put in invite emails, the token is appended as ?invite=

	MailProvider         string // Optional: log or postmark (default: log)
	PostmarkServerToken  string // Required with postmark
	PostmarkAccountToken string // Required with postmark
	MailSender           string // Required with postmark: From address
	MailSupport          string // Required with postmark: Reply-To address

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		Issuer:         getEnvOrDefault("PULSE_ISSUER", "pulse"),
		TokenTTL:       getEnvDurationOrDefault("PULSE_TOKEN_TTL", 24*time.Hour),
		DatabaseFile:   getEnvOrDefault("PULSE_DATABASE_FILE", "pulse.db"),
		PepperFile:     getEnvOrDefault("PULSE_PEPPER_FILE", "pepper"),
		SigningKeyFile: getEnvOrDefault("PULSE_SIGNING_KEY_FILE", "signing.key"),

		InviteTTL:         getEnvDurationOrDefault("INVITE_TTL", 7*24*time.Hour),
		InviteConcurrency: getEnvIntOrDefault("INVITE_CONCURRENCY", 4),
		InviteAcceptURL:   os.Getenv("INVITE_ACCEPT_URL"),

		MailProvider:         getEnvOrDefault("MAIL_PROVIDER", "log"),
		PostmarkServerToken:  os.Getenv("POSTMARK_SERVER_TOKEN"),
		PostmarkAccountToken: os.Getenv("POSTMARK_ACCOUNT_TOKEN"),
		MailSender:           os.Getenv("MAIL_SENDER"),
		MailSupport:          os.Getenv("MAIL_SUPPORT"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

// DSN is the sqlite connection string for DatabaseFile. Foreign keys are
// switched on for every connection so cascades fire.
func (c Config) DSN() string {
	return "file:" + c.DatabaseFile +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
