// Package mail renders and delivers transactional email.
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/smtp"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names known to the sender.
const (
	TemplateVerifyEmail   = "verify_email"
	TemplateResetPassword = "reset_password"
)

// Message is a single email to deliver. Data feeds the named template.
type Message struct {
	Template string
	To       string
	Subject  string
	Data     map[string]any
}

// Sender delivers a rendered message. Implementations are used behind the
// Dispatcher, so delivery failures never reach request handlers.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig holds connection settings for the SMTP sender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpSender struct {
	cfg       SMTPConfig
	templates *template.Template
}

// NewSMTPSender creates a Sender that delivers over SMTP with STARTTLS
// negotiation handled by net/smtp.
func NewSMTPSender(cfg SMTPConfig) (Sender, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}
	return &smtpSender{cfg: cfg, templates: tmpl}, nil
}

func (s *smtpSender) Send(_ context.Context, msg Message) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, msg.Template+".html", msg.Data); err != nil {
		return fmt.Errorf("render template %q: %w", msg.Template, err)
	}

	var raw bytes.Buffer
	fmt.Fprintf(&raw, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&raw, "To: %s\r\n", msg.To)
	fmt.Fprintf(&raw, "Subject: %s\r\n", msg.Subject)
	raw.WriteString("MIME-Version: 1.0\r\n")
	raw.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	raw.WriteString("\r\n")
	raw.Write(body.Bytes())

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	return smtp.SendMail(addr, auth, s.cfg.From, []string{msg.To}, raw.Bytes())
}
