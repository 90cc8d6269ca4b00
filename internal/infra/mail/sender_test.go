package mail

import (
	"bytes"
	"context"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/xavierca1/stockwatch/internal/entity"
)

type fakeDialer struct {
	sent  []*gomail.Message
	err   error
	block chan struct{}
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if f.block != nil {
		<-f.block
	}
	f.sent = append(f.sent, m...)
	return f.err
}

func testConfig() SMTPConfig {
	return SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		User:     "bot@example.com",
		Password: "secret",
		From:     "bot@example.com",
		To:       []string{"a@example.com", "b@example.com"},
	}
}

func TestSendBuildsSingleMessageForAllRecipients(t *testing.T) {
	d := &fakeDialer{}
	s := NewEmailSender(testConfig(), "run-123")
	s.dialer = d

	err := s.Send(context.Background(), entity.EmailMessage{
		Kind:    entity.EmailKindRestock,
		Subject: "✅ Back in stock: Stop madspild (MÆT)",
		Body:    "It looks AVAILABLE right now.",
	})

	require.NoError(t, err)
	require.Len(t, d.sent, 1)
	m := d.sent[0]
	assert.Equal(t, []string{"bot@example.com"}, m.GetHeader("From"))
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"run-123"}, m.GetHeader(runHeader))

	var raw bytes.Buffer
	_, err = m.WriteTo(&raw)
	require.NoError(t, err)
	assert.Contains(t, raw.String(), "Content-Type: text/plain; charset=UTF-8")
	assert.Contains(t, raw.String(), "To: a@example.com, b@example.com")
}

func TestSendExplicitRecipientsOverrideConfig(t *testing.T) {
	d := &fakeDialer{}
	s := NewEmailSender(testConfig(), "")
	s.dialer = d

	err := s.Send(context.Background(), entity.EmailMessage{
		Subject: "status",
		Body:    "body",
		From:    "other@example.com",
		To:      []string{"c@example.com"},
	})

	require.NoError(t, err)
	require.Len(t, d.sent, 1)
	assert.Equal(t, []string{"other@example.com"}, d.sent[0].GetHeader("From"))
	assert.Equal(t, []string{"c@example.com"}, d.sent[0].GetHeader("To"))
	assert.Empty(t, d.sent[0].GetHeader(runHeader))
}

func TestSendWrapsSMTPFailureInDeliveryError(t *testing.T) {
	s := NewEmailSender(testConfig(), "")
	s.dialer = &fakeDialer{err: errors.New("535 5.7.8 authentication failed")}

	err := s.Send(context.Background(), entity.EmailMessage{Kind: entity.EmailKindStatus, Subject: "status"})

	require.Error(t, err)
	assert.True(t, entity.IsDeliveryError(err))
	assert.Contains(t, err.Error(), "smtp.example.com:587")
	assert.Contains(t, err.Error(), "authentication failed")
}

// TestSendTimesOut - Send returns at the deadline while the session is still stuck
func TestSendTimesOut(t *testing.T) {
	d := &fakeDialer{block: make(chan struct{})}
	defer close(d.block)
	s := NewEmailSender(testConfig(), "")
	s.dialer = d
	s.timeout = 20 * time.Millisecond

	start := time.Now()
	err := s.Send(context.Background(), entity.EmailMessage{Subject: "status"})

	assert.True(t, entity.IsDeliveryError(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
	assert.Empty(t, d.sent)
}

func TestSendWithoutRecipients(t *testing.T) {
	cfg := testConfig()
	cfg.To = nil
	s := NewEmailSender(cfg, "")
	s.dialer = &fakeDialer{}

	err := s.Send(context.Background(), entity.EmailMessage{Subject: "status"})

	assert.ErrorIs(t, err, ErrNoRecipients)
}

func newStartTLSAuth() *startTLSAuth {
	return &startTLSAuth{user: "u", password: "p", host: "smtp.example.com"}
}

func TestStartTLSAuthRefusesPlaintext(t *testing.T) {
	_, _, err := newStartTLSAuth().Start(&smtp.ServerInfo{Name: "smtp.example.com", TLS: false, Auth: []string{"PLAIN"}})
	assert.Error(t, err)
}

func TestStartTLSAuthPrefersPlain(t *testing.T) {
	proto, resp, err := newStartTLSAuth().Start(&smtp.ServerInfo{Name: "smtp.example.com", TLS: true, Auth: []string{"LOGIN", "PLAIN"}})

	require.NoError(t, err)
	assert.Equal(t, "PLAIN", proto)
	assert.Equal(t, "\x00u\x00p", string(resp))
}

func TestStartTLSAuthUsesLoginWhenOnlyLoginAdvertised(t *testing.T) {
	auth := newStartTLSAuth()

	proto, resp, err := auth.Start(&smtp.ServerInfo{Name: "smtp.example.com", TLS: true, Auth: []string{"LOGIN", "XOAUTH2"}})
	require.NoError(t, err)
	assert.Equal(t, "LOGIN", proto)
	assert.Nil(t, resp)

	user, err := auth.Next([]byte("Username:"), true)
	require.NoError(t, err)
	assert.Equal(t, "u", string(user))

	pass, err := auth.Next([]byte("Password:"), true)
	require.NoError(t, err)
	assert.Equal(t, "p", string(pass))

	done, err := auth.Next(nil, false)
	require.NoError(t, err)
	assert.Nil(t, done)

	_, err = auth.Next([]byte("Token:"), true)
	assert.Error(t, err)
}

func TestStartTLSAuthUsesCRAMMD5(t *testing.T) {
	proto, _, err := newStartTLSAuth().Start(&smtp.ServerInfo{Name: "smtp.example.com", TLS: true, Auth: []string{"cram-md5"}})

	require.NoError(t, err)
	assert.Equal(t, "CRAM-MD5", proto)
}
