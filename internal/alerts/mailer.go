package alerts

import (
	"context"
	"errors"
	"fmt"

	"github.com/sudo-init-do/ledgerhub/internal/config"
	"github.com/sudo-init-do/ledgerhub/internal/logging"
)

// Sender delivers a rendered email.
type Sender interface {
	Send(ctx context.Context, env EmailEnvelope) error
}

// LogSender writes emails to the log instead of delivering them.
type LogSender struct {
	Log logging.Logger
}

func (s LogSender) Send(ctx context.Context, env EmailEnvelope) error {
	s.Log.Info(ctx, "email", "to", env.To, "subject", env.Subject, "body", env.Body)
	return nil
}

var ErrMailNotConfigured = errors.New("mail not configured")

// NewSender picks the transport described by cfg. See config.MailConfig
// for how an empty provider is resolved.
func NewSender(cfg config.MailConfig, log logging.Logger) (Sender, error) {
	provider := cfg.Provider
	if provider == "" {
		switch {
		case cfg.PlunkAPIKey != "":
			provider = "plunk"
		case cfg.SMTPHost != "":
			provider = "smtp"
		default:
			provider = "log"
		}
	}

	switch provider {
	case "plunk":
		if cfg.PlunkAPIKey == "" {
			return nil, fmt.Errorf("%w: set PLUNK_API_KEY", ErrMailNotConfigured)
		}
		url := cfg.PlunkAPIURL
		if url == "" {
			url = config.DefaultPlunkAPIURL
		}
		return &PlunkSender{APIKey: cfg.PlunkAPIKey, From: cfg.PlunkFrom, APIURL: url, ReplyTo: cfg.ReplyTo}, nil
	case "smtp":
		if cfg.SMTPHost == "" || cfg.SMTPPort == "" || cfg.SMTPUsername == "" || cfg.SMTPPassword == "" || cfg.SMTPFrom == "" {
			return nil, fmt.Errorf("%w: set SMTP_HOST, SMTP_PORT, SMTP_USERNAME, SMTP_PASSWORD, SMTP_FROM", ErrMailNotConfigured)
		}
		return &SMTPSender{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			ReplyTo:  cfg.ReplyTo,
		}, nil
	case "log":
		return LogSender{Log: log}, nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", provider)
	}
}
