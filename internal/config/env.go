package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// loadDotEnv reads KEY=VALUE pairs from path into the process environment.
// Variables already set win over the file; a missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

var addressKeys = map[string]string{
	"BTC_ADDRESS":  "BTC",
	"ETH_ADDRESS":  "ETH",
	"USDT_ADDRESS": "USDT",
}

// parseEnv overlays environment variables onto config.
func parseEnv(config *Config) error {
	if v, ok := os.LookupEnv("PORT"); ok && v != "" {
		config.Addr = ":" + strings.TrimPrefix(v, ":")
	}
	if v, ok := os.LookupEnv("DATABASE_URL"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("JWT_SECRET"); ok && v != "" {
		config.JWTSecret = v
	}
	if v, ok := os.LookupEnv("TOKEN_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TOKEN_TTL: %w", err)
		}
		config.TokenTTL = d
	}
	if v, ok := os.LookupEnv("BCRYPT_COST"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BCRYPT_COST: %w", err)
		}
		config.BcryptCost = n
	}
	if v, ok := os.LookupEnv("ADMIN_EMAIL"); ok && v != "" {
		config.AdminEmail = v
	}
	if v, ok := os.LookupEnv("ADMIN_PASSWORD"); ok {
		config.AdminPassword = v
	}
	if v, ok := os.LookupEnv("REQUIRE_ADMIN_TOKEN"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("REQUIRE_ADMIN_TOKEN: %w", err)
		}
		config.RequireAdminToken = b
	}
	if v, ok := os.LookupEnv("KAFKA_BROKERS"); ok {
		config.KafkaBrokers = splitList(v)
	}
	if v, ok := os.LookupEnv("KAFKA_TOPIC"); ok && v != "" {
		config.KafkaTopic = v
	}
	if v, ok := os.LookupEnv("REDIS_ADDR"); ok {
		config.RedisAddr = v
	}
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok && v != "" {
		config.LogLevel = v
	}
	if v, ok := os.LookupEnv("AUTH_RATE_LIMIT"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("AUTH_RATE_LIMIT: %w", err)
		}
		config.AuthRateLimit = f
	}
	parseMailEnv(&config.Mail)
	for key, method := range addressKeys {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			if config.Addresses == nil {
				config.Addresses = map[string]string{}
			}
			config.Addresses[method] = v
		}
	}
	return nil
}

func parseMailEnv(m *MailConfig) {
	for key, dst := range map[string]*string{
		"MAIL_PROVIDER": &m.Provider,
		"SMTP_HOST":     &m.SMTPHost,
		"SMTP_PORT":     &m.SMTPPort,
		"SMTP_USERNAME": &m.SMTPUsername,
		"SMTP_PASSWORD": &m.SMTPPassword,
		"SMTP_FROM":     &m.SMTPFrom,
		"MAIL_REPLY_TO": &m.ReplyTo,
		"PLUNK_API_KEY": &m.PlunkAPIKey,
		"PLUNK_FROM":    &m.PlunkFrom,
		"PLUNK_API_URL": &m.PlunkAPIURL,
	} {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	m.Provider = strings.ToLower(strings.TrimSpace(m.Provider))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
