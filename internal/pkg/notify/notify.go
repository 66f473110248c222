// Package notify sends operator notifications about sync outcomes.
package notify

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/canvasmirror/internal/app/models"
)

// Notifier defines the interface for sync outcome notifications
type Notifier interface {
	NotifyFailure(report *models.SyncReport, runErr error) error
}

// SMTPConfig holds configuration for the SMTP server
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
	UseTLS   bool
}

// SMTPNotifier implements Notifier over SMTP
type SMTPNotifier struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewSMTPNotifier creates a new SMTP-backed Notifier
func NewSMTPNotifier(config SMTPConfig, logger zerolog.Logger) Notifier {
	return &SMTPNotifier{
		config: config,
		logger: logger,
	}
}

// NotifyFailure emails a plain-text summary of a failed or partial sync pass.
// When no SMTP server is configured the summary is logged instead so local
// runs do not need a mail setup.
func (n *SMTPNotifier) NotifyFailure(report *models.SyncReport, runErr error) error {
	subject := "Canvas sync completed with errors"
	if runErr != nil {
		subject = "Canvas sync failed"
	}

	if n.config.Host == "" || n.config.To == "" {
		n.logger.Warn().
			Str("subject", subject).
			Int("errors", len(report.Errors)).
			Msg("SMTP not configured - failure notification not sent")
		return nil
	}

	return n.sendPlainText(subject, failureBody(report, runErr))
}

// failureBody renders the report as a plain-text email body.
func failureBody(report *models.SyncReport, runErr error) string {
	var b strings.Builder
	if runErr != nil {
		fmt.Fprintf(&b, "The sync pass aborted: %v\r\n\r\n", runErr)
	} else {
		fmt.Fprintf(&b, "The sync pass finished, but %d record(s) could not be stored.\r\n\r\n", len(report.Errors))
	}

	fmt.Fprintf(&b, "Records stored:\r\n")
	fmt.Fprintf(&b, "  courses:       %d\r\n", report.Courses)
	fmt.Fprintf(&b, "  assignments:   %d\r\n", report.Assignments)
	fmt.Fprintf(&b, "  announcements: %d\r\n", report.Announcements)
	fmt.Fprintf(&b, "  front pages:   %d\r\n", report.FrontPages)
	fmt.Fprintf(&b, "  quizzes:       %d\r\n", report.Quizzes)
	fmt.Fprintf(&b, "  modules:       %d\r\n", report.Modules)

	if len(report.Errors) > 0 {
		fmt.Fprintf(&b, "\r\nErrors:\r\n")
		for _, msg := range report.Errors {
			fmt.Fprintf(&b, "  - %s\r\n", msg)
		}
	}
	return b.String()
}

// sendPlainText sends a plain-text email
func (n *SMTPNotifier) sendPlainText(subject, body string) error {
	var auth smtp.Auth
	if n.config.Username != "" {
		auth = smtp.PlainAuth("", n.config.Username, n.config.Password, n.config.Host)
	}

	headers := make(map[string]string)
	headers["From"] = n.config.From
	headers["To"] = n.config.To
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/plain; charset=UTF-8"

	message := ""
	for key, value := range headers {
		message += fmt.Sprintf("%s: %s\r\n", key, value)
	}
	message += "\r\n" + body

	serverAddress := n.config.Host + ":" + strconv.Itoa(n.config.Port)

	if n.config.UseTLS {
		tlsConfig := &tls.Config{
			ServerName: n.config.Host,
		}

		conn, err := tls.Dial("tcp", serverAddress, tlsConfig)
		if err != nil {
			n.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to connect to SMTP server")
			return fmt.Errorf("failed to connect to SMTP server: %w", err)
		}
		defer conn.Close()

		client, err := smtp.NewClient(conn, n.config.Host)
		if err != nil {
			n.logger.Error().Err(err).Msg("Failed to create SMTP client")
			return fmt.Errorf("failed to create SMTP client: %w", err)
		}
		defer client.Quit()

		if auth != nil {
			if err = client.Auth(auth); err != nil {
				n.logger.Error().Err(err).Msg("SMTP authentication failed")
				return fmt.Errorf("SMTP authentication failed: %w", err)
			}
		}

		if err = client.Mail(n.config.From); err != nil {
			return fmt.Errorf("failed to set sender: %w", err)
		}
		if err = client.Rcpt(n.config.To); err != nil {
			return fmt.Errorf("failed to set recipient: %w", err)
		}

		w, err := client.Data()
		if err != nil {
			return fmt.Errorf("failed to get data writer: %w", err)
		}
		if _, err = w.Write([]byte(message)); err != nil {
			return fmt.Errorf("failed to write email message: %w", err)
		}
		if err = w.Close(); err != nil {
			return fmt.Errorf("failed to close data writer: %w", err)
		}

		return nil
	}

	err := smtp.SendMail(
		serverAddress,
		auth,
		n.config.From,
		[]string{n.config.To},
		[]byte(message),
	)
	if err != nil {
		n.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
