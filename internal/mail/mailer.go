// Package mail provides the outbound SMTP transport and the HTML
// rendering for the two emails produced per submission.
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/derivativegenius/backend/internal/config"
)

// ErrNotConfigured is returned when the transport is missing required settings.
var ErrNotConfigured = errors.New("mail: not configured")

// Message is one rendered outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender is the mail transport abstraction used by the notifiers and the
// worker.
type Sender interface {
	// Verify performs a connection pre-check against the transport
	// without sending anything. Its failure is distinct from a
	// per-message send failure.
	Verify(ctx context.Context) error
	Send(ctx context.Context, msg Message) error
}

// Dialer abstracts net.Dialer to simplify testing.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// SMTPMailer delivers messages over SMTP with STARTTLS when offered.
// One mailer is constructed at process start and shared across requests;
// each send opens its own connection, so no locking is needed here.
type SMTPMailer struct {
	host      string
	port      int
	from      string
	auth      smtp.Auth
	tlsConfig *tls.Config
	dialer    Dialer
	helloName string
	now       func() time.Time
}

// NewSMTPMailer constructs a mailer from SMTP configuration.
func NewSMTPMailer(cfg config.SMTP) (*SMTPMailer, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, ErrNotConfigured
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("mail: invalid port %d", cfg.Port)
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, fmt.Errorf("mail: from address is required")
	}

	m := &SMTPMailer{
		host:      cfg.Host,
		port:      cfg.Port,
		from:      strings.TrimSpace(cfg.From),
		dialer:    &net.Dialer{Timeout: 30 * time.Second},
		helloName: "localhost",
		now:       time.Now,
		tlsConfig: &tls.Config{
			ServerName: cfg.Host,
			MinVersion: tls.VersionTLS12,
		},
	}
	if strings.TrimSpace(cfg.User) != "" {
		m.auth = smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)
	}
	return m, nil
}

var _ Sender = (*SMTPMailer)(nil)

// Verify dials the server and exchanges EHLO/QUIT without sending mail.
func (m *SMTPMailer) Verify(ctx context.Context) error {
	client, cleanup, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer cleanup()
	if err := client.Quit(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("mail: quit: %w", err)
	}
	return nil
}

// Send delivers a single message.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return errors.New("mail: recipient is required")
	}

	client, cleanup, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if m.auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(m.auth); err != nil {
				return fmt.Errorf("mail: auth: %w", err)
			}
		}
	}

	if err := client.Mail(m.from); err != nil {
		return fmt.Errorf("mail: mail from: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("mail: rcpt to %s: %w", msg.To, err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("mail: data: %w", err)
	}
	if _, err := writer.Write(m.buildMessage(msg)); err != nil {
		_ = writer.Close()
		return fmt.Errorf("mail: data write: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("mail: data close: %w", err)
	}

	if err := client.Quit(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("mail: quit: %w", err)
	}
	return ctx.Err()
}

// connect dials, greets, and negotiates STARTTLS. The returned cleanup
// closes the connection and releases the context watcher.
func (m *SMTPMailer) connect(ctx context.Context) (*smtp.Client, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	addr := net.JoinHostPort(m.host, strconv.Itoa(m.port))
	conn, err := m.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("mail: dial: %w", err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()
	cleanup := func() {
		close(done)
		_ = conn.Close()
	}

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("mail: new client: %w", err)
	}

	if err := client.Hello(m.helloName); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("mail: hello: %w", err)
	}

	if m.tlsConfig != nil {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(m.tlsConfig.Clone()); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("mail: starttls: %w", err)
			}
		}
	}

	return client, cleanup, nil
}

func (m *SMTPMailer) buildMessage(msg Message) []byte {
	var buf bytes.Buffer
	write := func(key, value string) {
		buf.WriteString(key)
		buf.WriteString(": ")
		buf.WriteString(sanitizeHeaderValue(value))
		buf.WriteString("\r\n")
	}
	write("From", m.from)
	write("To", msg.To)
	write("Subject", msg.Subject)
	write("Date", m.now().UTC().Format(time.RFC1123Z))
	write("MIME-Version", "1.0")
	write("Content-Type", "text/html; charset=UTF-8")
	buf.WriteString("\r\n")
	buf.WriteString(normalizeBody(msg.HTML))
	return buf.Bytes()
}

// normalizeBody converts any line ending style to CRLF as SMTP requires.
func normalizeBody(body string) string {
	if body == "" {
		return ""
	}
	normalized := strings.ReplaceAll(body, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	return strings.ReplaceAll(normalized, "\n", "\r\n")
}

// sanitizeHeaderValue strips CR/LF so user input cannot inject headers.
func sanitizeHeaderValue(value string) string {
	clean := strings.ReplaceAll(value, "\r", " ")
	clean = strings.ReplaceAll(clean, "\n", " ")
	return strings.TrimSpace(clean)
}
