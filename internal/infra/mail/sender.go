package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/stockwatch/internal/entity"
)

const (
	sendTimeout = 30 * time.Second
	runHeader   = "X-Stockwatch-Run"
)

var ErrNoRecipients = errors.New("no recipients configured")

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailSender struct {
	cfg     SMTPConfig
	runID   string
	timeout time.Duration
	dialer  dialer
}

// NewEmailSender opens a fresh SMTP session for every Send. The session must
// negotiate STARTTLS before credentials are sent.
func NewEmailSender(cfg SMTPConfig, runID string) *EmailSender {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	d.TLSConfig = &tls.Config{
		ServerName: cfg.Host,
		MinVersion: tls.VersionTLS12,
	}
	d.Auth = &startTLSAuth{user: cfg.User, password: cfg.Password, host: cfg.Host}

	return &EmailSender{
		cfg:     cfg,
		runID:   runID,
		timeout: sendTimeout,
		dialer:  d,
	}
}

func (s *EmailSender) Send(ctx context.Context, msg entity.EmailMessage) error {
	if msg.From == "" {
		msg.From = s.cfg.From
	}
	if len(msg.To) == 0 {
		msg.To = s.cfg.To
	}
	if len(msg.To) == 0 {
		return &entity.DeliveryError{Kind: msg.Kind, Subject: msg.Subject, Err: ErrNoRecipients}
	}

	m := s.buildMessage(msg)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// gomail gives no handle on the connection, so a timed-out session is
	// abandoned rather than closed. It dies with the process at the end of the
	// run; a message it still manages to deliver is reported as failed.
	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return &entity.DeliveryError{Kind: msg.Kind, Subject: msg.Subject, Err: fmt.Errorf("smtp %s:%d: %w", s.cfg.Host, s.cfg.Port, err)}
		}
		return nil
	case <-ctx.Done():
		return &entity.DeliveryError{Kind: msg.Kind, Subject: msg.Subject, Err: ctx.Err()}
	}
}

func (s *EmailSender) buildMessage(msg entity.EmailMessage) *gomail.Message {
	m := gomail.NewMessage(gomail.SetCharset("UTF-8"))
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	if s.runID != "" {
		m.SetHeader(runHeader, s.runID)
	}
	m.SetBody("text/plain", msg.Body)
	return m
}

// startTLSAuth refuses to hand credentials to a server over plaintext and
// picks the mechanism from the server's AUTH list: PLAIN, then LOGIN, then
// CRAM-MD5. PLAIN is tried when the server advertises none of them.
type startTLSAuth struct {
	user     string
	password string
	host     string
	next     smtp.Auth
}

func (a *startTLSAuth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	if !server.TLS {
		return "", nil, errors.New("refusing to authenticate without STARTTLS")
	}
	switch {
	case advertises(server, "PLAIN"):
		a.next = smtp.PlainAuth("", a.user, a.password, a.host)
	case advertises(server, "LOGIN"):
		a.next = &loginAuth{user: a.user, password: a.password}
	case advertises(server, "CRAM-MD5"):
		a.next = smtp.CRAMMD5Auth(a.user, a.password)
	default:
		a.next = smtp.PlainAuth("", a.user, a.password, a.host)
	}
	return a.next.Start(server)
}

func (a *startTLSAuth) Next(fromServer []byte, more bool) ([]byte, error) {
	return a.next.Next(fromServer, more)
}

func advertises(server *smtp.ServerInfo, mechanism string) bool {
	for _, m := range server.Auth {
		if strings.EqualFold(m, mechanism) {
			return true
		}
	}
	return false
}

// loginAuth implements AUTH LOGIN, which net/smtp does not ship.
type loginAuth struct {
	user     string
	password string
}

func (a *loginAuth) Start(_ *smtp.ServerInfo) (string, []byte, error) {
	return "LOGIN", nil, nil
}

func (a *loginAuth) Next(fromServer []byte, more bool) ([]byte, error) {
	if !more {
		return nil, nil
	}
	switch prompt := strings.ToLower(strings.TrimSpace(string(fromServer))); prompt {
	case "username:":
		return []byte(a.user), nil
	case "password:":
		return []byte(a.password), nil
	default:
		return nil, fmt.Errorf("unexpected AUTH LOGIN challenge %q", fromServer)
	}
}
