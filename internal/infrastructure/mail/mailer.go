// Package mail envía los correos transaccionales (verificación de email).
package mail

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/jdmorgan/trading-portal/internal/domain/repository"
)

var (
	_ repository.Mailer = (*SMTPMailer)(nil)
	_ repository.Mailer = (*LogMailer)(nil)
)

// SMTPConfig datos del servidor SMTP.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// SMTPMailer envía correos HTML vía gomail.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	log    zerolog.Logger
}

// NewSMTPMailer construye el mailer SMTP.
func NewSMTPMailer(cfg SMTPConfig, log zerolog.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
		log:    log,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	m.log.Debug().Str("to", to).Str("subject", subject).Msg("correo enviado")
	return nil
}

// Message correo registrado por LogMailer.
type Message struct {
	To      string
	Subject string
	Body    string
}

// LogMailer no envía nada: registra el correo en el log y lo conserva en memoria.
// Se usa cuando no hay SMTP configurado y en tests.
type LogMailer struct {
	log zerolog.Logger

	mu   sync.Mutex
	sent []Message
}

// NewLogMailer construye el mailer de log.
func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	m.mu.Lock()
	m.sent = append(m.sent, Message{To: to, Subject: subject, Body: htmlBody})
	m.mu.Unlock()
	m.log.Info().Str("to", to).Str("subject", subject).Str("body", htmlBody).Msg("correo (sin SMTP)")
	return nil
}

// Sent devuelve una copia de los correos registrados.
func (m *LogMailer) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}
