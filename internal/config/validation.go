package config

import (
	"fmt"
	"net/mail"
	"strings"

	smtpmail "github.com/xavierca1/stockwatch/internal/infra/mail"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return "invalid configuration: " + strings.Join(msgs, "; ")
}

func validateSMTP(cfg smtpmail.SMTPConfig) []ValidationError {
	var errors []ValidationError

	if cfg.Host == "" {
		errors = append(errors, ValidationError{"SMTP_HOST", "is required"})
	}
	if cfg.User == "" {
		errors = append(errors, ValidationError{"SMTP_USERNAME", "is required"})
	}
	if cfg.Password == "" {
		errors = append(errors, ValidationError{"SMTP_PASSWORD", "is required"})
	}

	if cfg.From == "" {
		errors = append(errors, ValidationError{"MAIL_FROM", "is required"})
	} else if _, err := mail.ParseAddress(cfg.From); err != nil {
		errors = append(errors, ValidationError{"MAIL_FROM", "is invalid"})
	}

	if len(cfg.To) == 0 {
		errors = append(errors, ValidationError{"MAIL_TO", "needs at least one recipient"})
	}
	for _, addr := range cfg.To {
		if _, err := mail.ParseAddress(addr); err != nil {
			errors = append(errors, ValidationError{"MAIL_TO", fmt.Sprintf("%q is invalid", addr)})
		}
	}

	return errors
}
