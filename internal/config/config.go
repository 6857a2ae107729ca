// Package config handles configuration for the ledger server: defaults,
// an optional .env file, environment variables and command-line flags,
// applied in that order.
package config

import (
	"time"
)

// Config holds runtime settings for the ledger server.
//
// Fields:
//   - Addr: bind address for the HTTP API.
//   - DatabaseDSN: Postgres DSN (pgx). Empty selects the in-memory store.
//   - JWTSecret / TokenTTL: HS256 signing key and lifetime of session tokens.
//   - BcryptCost: work factor for password hashes.
//   - AdminEmail / AdminPassword: administrator seeded at startup. No
//     password disables seeding.
//   - RequireAdminToken: guard admin routes with an admin bearer token.
//   - KafkaBrokers / KafkaTopic: ledger event sink. No brokers disables it.
//   - RedisAddr: asynq broker for notifications. Empty disables alerts.
//   - AuthRateLimit: requests per second per IP on register/login. Zero
//     or less disables the limiter.
//   - Addresses: payment address overrides keyed by method code.
//   - Mail: outgoing mail transport for alerts.
type Config struct {
	Addr              string
	DatabaseDSN       string
	JWTSecret         string
	TokenTTL          time.Duration
	BcryptCost        int
	AdminEmail        string
	AdminPassword     string
	RequireAdminToken bool
	KafkaBrokers      []string
	KafkaTopic        string
	RedisAddr         string
	LogLevel          string
	AuthRateLimit     float64
	Addresses         map[string]string
	Mail              MailConfig
}

// MailConfig selects and configures the alerts mail transport. Provider is
// "smtp", "plunk" or "log"; empty picks plunk when an API key is set,
// then SMTP when a host is set, and otherwise logs messages.
type MailConfig struct {
	Provider     string
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	ReplyTo      string
	PlunkAPIKey  string
	PlunkFrom    string
	PlunkAPIURL  string
}

const DefaultPlunkAPIURL = "https://api.useplunk.com/v1/send"

// LoadDefaults populates Config with development defaults.
// NOTE: the JWT secret default is insecure and must be overridden in prod.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.DatabaseDSN = ""
	c.JWTSecret = "supersecret"
	c.TokenTTL = 72 * time.Hour
	c.BcryptCost = 10
	c.AdminEmail = "admin@platform.com"
	c.AdminPassword = ""
	c.RequireAdminToken = false
	c.KafkaBrokers = nil
	c.KafkaTopic = "ledger_events"
	c.RedisAddr = ""
	c.LogLevel = "info"
	c.AuthRateLimit = 20
	c.Addresses = map[string]string{}
	c.Mail = MailConfig{SMTPPort: "465", PlunkAPIURL: DefaultPlunkAPIURL}
}

// LoadConfig builds a Config from defaults, then .env, then the process
// environment and finally command-line flags.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, commandLineArgs()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnv is LoadConfig without command-line flags, for tools that define
// their own.
func LoadEnv() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
