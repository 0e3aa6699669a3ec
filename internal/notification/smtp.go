package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/atelierhq/curator-api/internal/config"
)

// SMTPNotifier sends onboarding invites through an SMTP server.
type SMTPNotifier struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewSMTPNotifier constructs an SMTPNotifier from config.
func NewSMTPNotifier(cfg config.EmailConfig) (*SMTPNotifier, error) {
	if strings.TrimSpace(cfg.SMTPHost) == "" {
		return nil, fmt.Errorf("smtp_host is required")
	}
	if cfg.SMTPPort == 0 {
		cfg.SMTPPort = 587
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, fmt.Errorf("email from address is required")
	}

	return &SMTPNotifier{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
	}, nil
}

// SendInvite dispatches the onboarding email to a prospective artist.
func (n *SMTPNotifier) SendInvite(_ context.Context, email, inviteURL, name, message string) error {
	greeting := "Hello,"
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		greeting = fmt.Sprintf("Hello %s,", trimmed)
	}

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n",
		n.from, email, "You're invited to join as a professional artist")

	body := strings.Builder{}
	body.WriteString(greeting + "\n\n")
	body.WriteString("You've been invited to set up a professional artist account on our platform.\n")
	if trimmed := strings.TrimSpace(message); trimmed != "" {
		body.WriteString("\n" + trimmed + "\n")
	}
	body.WriteString("\nClick the link below to start onboarding:\n\n")
	body.WriteString(inviteURL + "\n\n")
	body.WriteString("If you did not expect this email, you can ignore it.\n")

	msg := []byte(headers + body.String())
	addr := fmt.Sprintf("%s:%d", n.host, n.port)

	var auth smtp.Auth
	if strings.TrimSpace(n.username) != "" {
		auth = smtp.PlainAuth("", n.username, n.password, n.host)
	}

	return smtp.SendMail(addr, auth, n.from, []string{email}, msg)
}
