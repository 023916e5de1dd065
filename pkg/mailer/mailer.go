// Package mailer sends plain-text notification emails over SMTP.
// Sends are best-effort: callers log failures and carry on, a lost email
// never rolls back the state change it announces.
package mailer

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"github.com/sirupsen/logrus"
)

// Sender delivers a notification to a single recipient
type Sender interface {
	Send(to, subject, body string) error
}

// Config holds SMTP settings. TLSConfig overrides the STARTTLS client
// config; leave nil to verify the server certificate against Host.
type Config struct {
	Host        string
	Port        string
	Username    string
	Password    string
	FromAddress string
	DialTimeout time.Duration
	TLSConfig   *tls.Config
}

// SMTPMailer implements Sender over a real SMTP transport
type SMTPMailer struct {
	config Config
	logger *logrus.Logger
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(config Config, logger *logrus.Logger) *SMTPMailer {
	if config.DialTimeout == 0 {
		config.DialTimeout = 10 * time.Second
	}
	return &SMTPMailer{config: config, logger: logger}
}

// Send delivers one message. The dial uses an explicit timeout so a slow
// transport cannot hang a request handler.
func (m *SMTPMailer) Send(to, subject, body string) error {
	addr := net.JoinHostPort(m.config.Host, m.config.Port)

	conn, err := net.DialTimeout("tcp", addr, m.config.DialTimeout)
	if err != nil {
		return fmt.Errorf("failed to dial SMTP server: %w", err)
	}

	client, err := smtp.NewClient(conn, m.config.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		tlsConfig := m.config.TLSConfig
		if tlsConfig == nil {
			tlsConfig = &tls.Config{ServerName: m.config.Host}
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if m.config.Username != "" {
		auth := smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := client.Mail(m.config.FromAddress); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open message body: %w", err)
	}

	message := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.config.FromAddress, to, subject, body)
	if _, err := writer.Write([]byte(message)); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close message: %w", err)
	}

	if err := client.Quit(); err != nil {
		m.logger.WithError(err).Debug("SMTP quit returned an error")
	}

	m.logger.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
	}).Info("Email sent")

	return nil
}

// LogMailer implements Sender by logging instead of sending. Used in
// development mode so the flows can run without an SMTP server.
type LogMailer struct {
	logger *logrus.Logger
}

// NewLogMailer creates a mailer that only logs
func NewLogMailer(logger *logrus.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the message and reports success
func (m *LogMailer) Send(to, subject, body string) error {
	m.logger.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
		"body":    body,
	}).Info("Email (dev mode, not sent)")
	return nil
}
