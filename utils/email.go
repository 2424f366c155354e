package utils

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
	"sync"

	"github.com/sharath018/idea-factory-backend/config"
)

// Mailer sends plain-text mail over SMTP with STARTTLS. When SMTP is not
// configured messages are logged and dropped.
type Mailer struct {
	host        string
	port        string
	username    string
	password    string
	fromName    string
	fromEmail   string
	frontendURL string
	log         *Logger
}

func NewMailer(cfg *config.Config, log *Logger) *Mailer {
	from := cfg.SMTPFromEmail
	if from == "" {
		from = cfg.SMTPUsername
	}
	return &Mailer{
		host:        cfg.SMTPHost,
		port:        cfg.SMTPPort,
		username:    cfg.SMTPUsername,
		password:    cfg.SMTPPassword,
		fromName:    cfg.SMTPFromName,
		fromEmail:   from,
		frontendURL: strings.TrimRight(cfg.FrontendURL, "/"),
		log:         log,
	}
}

func (m *Mailer) Enabled() bool {
	return m.host != "" && m.username != "" && m.password != ""
}

// ======================
// Low-level send
// ======================

func (m *Mailer) Send(to, subject, body string) error {
	if !m.Enabled() {
		m.log.Info("smtp not configured, email not sent", "to", to, "subject", subject)
		return nil
	}

	client, err := smtp.Dial(fmt.Sprintf("%s:%s", m.host, m.port))
	if err != nil {
		return fmt.Errorf("failed to dial SMTP server: %w", err)
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}
	if err := client.Auth(smtp.PlainAuth("", m.username, m.password, m.host)); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	if err := client.Mail(m.fromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}

	from := m.fromEmail
	if m.fromName != "" {
		from = fmt.Sprintf("%s <%s>", m.fromName, m.fromEmail)
	}
	msg := fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/plain; charset=UTF-8\r\n"+
		"\r\n%s", from, to, subject, body)

	if _, err := w.Write([]byte(msg)); err != nil {
		w.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}
	if err := client.Quit(); err != nil {
		m.log.Warn("smtp quit failed", "error", err)
	}

	m.log.Info("email sent", "to", to, "subject", subject)
	return nil
}

// SendBulk mails every recipient concurrently and waits for all sends.
func (m *Mailer) SendBulk(recipients []string, subject, body string) {
	var wg sync.WaitGroup
	for _, to := range recipients {
		wg.Add(1)
		go func(to string) {
			defer wg.Done()
			if err := m.Send(to, subject, body); err != nil {
				m.log.Error("email send failed", "to", to, "error", err)
			}
		}(to)
	}
	wg.Wait()
}

// ======================
// Account emails
// ======================

func (m *Mailer) SendVerificationLink(toEmail, fullName, token string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", m.frontendURL, token)
	body := fmt.Sprintf("Hello %s,\n\nPlease confirm your email address: %s\n\nThe link expires in 24 hours.", fullName, link)
	return m.Send(toEmail, "Verify your email", body)
}

func (m *Mailer) SendResetLink(toEmail, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", m.frontendURL, token)
	body := fmt.Sprintf("Click here to reset your password: %s\n\nThe link expires in 1 hour. If you did not request a password reset, please ignore this email.", link)
	return m.Send(toEmail, "Reset your password", body)
}
