package alerts

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

// SMTPSender delivers mail over implicit-TLS SMTP with PLAIN auth.
type SMTPSender struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	ReplyTo  string

	// Dial opens the connection to addr. Nil dials TLS to Host.
	Dial func(ctx context.Context, addr string) (net.Conn, error)
}

func (s *SMTPSender) dial(ctx context.Context, addr string) (net.Conn, error) {
	if s.Dial != nil {
		return s.Dial(ctx, addr)
	}
	d := &tls.Dialer{Config: &tls.Config{ServerName: s.Host}}
	return d.DialContext(ctx, "tcp", addr)
}

func (s *SMTPSender) Send(ctx context.Context, env EmailEnvelope) error {
	conn, err := s.dial(ctx, net.JoinHostPort(s.Host, s.Port))
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	defer c.Close()

	if s.Username != "" {
		if err := c.Auth(smtp.PlainAuth("", s.Username, s.Password, s.Host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := c.Mail(s.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := c.Rcpt(env.To); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}
	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := wc.Write(s.message(env)); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}
	return c.Quit()
}

func (s *SMTPSender) message(env EmailEnvelope) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", headerValue(s.From))
	fmt.Fprintf(&b, "To: %s\r\n", headerValue(env.To))
	fmt.Fprintf(&b, "Subject: %s\r\n", headerValue(env.Subject))
	if s.ReplyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", headerValue(s.ReplyTo))
	}
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: %s; charset=\"utf-8\"\r\n", contentType(env.Body))
	b.WriteString("\r\n")
	b.WriteString(env.Body)
	b.WriteString("\r\n")
	return []byte(b.String())
}

func contentType(body string) string {
	lb := strings.ToLower(body)
	if strings.Contains(lb, "<html") || strings.Contains(lb, "<body") || strings.Contains(lb, "<!doctype html") {
		return "text/html"
	}
	return "text/plain"
}

// headerValue strips line breaks so values cannot add headers.
func headerValue(v string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(v)
}
