package backend

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// Mailer delivers account emails.
type Mailer interface {
	SendConfirmation(ctx context.Context, email, link string) error
}

// LogMailer writes confirmation links to the log instead of sending mail.
// It is the fallback when no SMTP server is configured, which is only
// workable in development or with auto-confirm turned on.
type LogMailer struct {
	Logger *slog.Logger
}

func (m LogMailer) SendConfirmation(_ context.Context, email, link string) error {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("confirmation email", "to", email, "link", link)
	return nil
}

const (
	defaultSMTPPort     = 587
	smtpDialTimeout     = 10 * time.Second
	confirmationSubject = "이메일 인증을 완료해주세요"
)

// SMTPConfig locates the outgoing mail server.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string

	// ImplicitTLS dials TLS straight away (usually port 465). Otherwise the
	// connection starts in plain text and net/smtp upgrades it with STARTTLS
	// when the server offers it.
	ImplicitTLS bool
}

// sendFunc has the signature of smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends confirmation emails through an SMTP server.
type SMTPMailer struct {
	cfg  SMTPConfig
	send sendFunc
}

// NewSMTPMailer checks cfg and returns a mailer for it. Port defaults to 587.
func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, errors.New("backend: smtp host is required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, errors.New("backend: smtp from address is required")
	}
	if cfg.Port == 0 {
		cfg.Port = defaultSMTPPort
	}

	m := &SMTPMailer{cfg: cfg, send: smtp.SendMail}
	if cfg.ImplicitTLS {
		m.send = m.sendTLS
	}
	return m, nil
}

func (m *SMTPMailer) SendConfirmation(ctx context.Context, email, link string) error {
	if strings.TrimSpace(email) == "" {
		return errors.New("backend: recipient email is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body := "아래 링크를 눌러 이메일 인증을 완료해주세요.\r\n" +
		"링크는 10분 동안 유효합니다.\r\n\r\n" +
		link + "\r\n"
	msg := m.message(email, confirmationSubject, body)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := m.send(m.addr(), auth, m.cfg.From, []string{email}, msg); err != nil {
		return fmt.Errorf("backend: sending confirmation to %s: %w", email, err)
	}
	return nil
}

func (m *SMTPMailer) addr() string {
	return net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
}

// message builds a plain text UTF-8 message. The subject and display name are
// MIME encoded so Korean text survives 7-bit transports.
func (m *SMTPMailer) message(to, subject, body string) []byte {
	from := m.cfg.From
	if name := strings.TrimSpace(m.cfg.FromName); name != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", name), m.cfg.From)
	}

	headers := []string{
		"From: " + from,
		"To: " + to,
		"Subject: " + mime.QEncoding.Encode("utf-8", subject),
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="UTF-8"`,
		"Content-Transfer-Encoding: 8bit",
	}
	return []byte(strings.Join(headers, "\r\n") + "\r\n\r\n" + body)
}

// sendTLS is smtp.SendMail over a connection that is TLS from the first byte.
func (m *SMTPMailer) sendTLS(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: smtpDialTimeout},
		Config:    &tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12},
	}
	conn, err := dialer.Dial("tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if a != nil {
		if err := client.Auth(a); err != nil {
			return err
		}
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
