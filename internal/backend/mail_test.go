package backend

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	addr string
	auth smtp.Auth
	from string
	to   []string
	msg  string
}

func captureSend(m *SMTPMailer, err error) *[]sentMail {
	var sent []sentMail
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		sent = append(sent, sentMail{addr: addr, auth: a, from: from, to: to, msg: string(msg)})
		return err
	}
	return &sent
}

func TestNewSMTPMailer(t *testing.T) {
	_, err := NewSMTPMailer(SMTPConfig{From: "no-reply@example.com"})
	assert.Error(t, err, "host is required")

	_, err = NewSMTPMailer(SMTPConfig{Host: "smtp.example.com"})
	assert.Error(t, err, "from is required")

	m, err := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", From: "no-reply@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:587", m.addr())
}

func TestSMTPMailer_SendConfirmation(t *testing.T) {
	m, err := NewSMTPMailer(SMTPConfig{
		Host:     "smtp.example.com",
		Port:     2525,
		Username: "mailer",
		Password: "secret",
		From:     "no-reply@example.com",
		FromName: "포트폴리오",
	})
	require.NoError(t, err)
	sent := captureSend(m, nil)

	link := "https://portfolio.example.com/auth/confirm?token=abc"
	require.NoError(t, m.SendConfirmation(context.Background(), "kim@example.com", link))

	require.Len(t, *sent, 1)
	got := (*sent)[0]
	assert.Equal(t, "smtp.example.com:2525", got.addr)
	assert.NotNil(t, got.auth)
	assert.Equal(t, "no-reply@example.com", got.from)
	assert.Equal(t, []string{"kim@example.com"}, got.to)

	head, body, ok := strings.Cut(got.msg, "\r\n\r\n")
	require.True(t, ok, "headers and body are separated by a blank line")
	assert.Contains(t, head, "To: kim@example.com")
	assert.Contains(t, head, "<no-reply@example.com>")
	assert.Contains(t, head, "Subject: =?utf-8?q?")
	assert.Contains(t, head, `Content-Type: text/plain; charset="UTF-8"`)
	assert.NotContains(t, head, "포트폴리오", "display name is MIME encoded")
	assert.Contains(t, body, link)
}

func TestSMTPMailer_NoAuthWithoutUsername(t *testing.T) {
	m, err := NewSMTPMailer(SMTPConfig{Host: "localhost", Port: 1025, From: "dev@localhost"})
	require.NoError(t, err)
	sent := captureSend(m, nil)

	require.NoError(t, m.SendConfirmation(context.Background(), "kim@example.com", "http://localhost/confirm"))
	require.Len(t, *sent, 1)
	assert.Nil(t, (*sent)[0].auth)
	assert.Contains(t, (*sent)[0].msg, "From: dev@localhost\r\n")
}

func TestSMTPMailer_Errors(t *testing.T) {
	m, err := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", From: "no-reply@example.com"})
	require.NoError(t, err)

	boom := errors.New("connection refused")
	sent := captureSend(m, boom)

	err = m.SendConfirmation(context.Background(), "kim@example.com", "http://x")
	assert.ErrorIs(t, err, boom)

	err = m.SendConfirmation(context.Background(), " ", "http://x")
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = m.SendConfirmation(ctx, "kim@example.com", "http://x")
	assert.ErrorIs(t, err, context.Canceled)

	assert.Len(t, *sent, 1, "only the first call reached the server")
}
