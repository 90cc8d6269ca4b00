package entity

import (
	"errors"
	"fmt"
)

// NetworkError means the product page could not be fetched.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func IsNetworkError(err error) bool {
	var target *NetworkError
	return errors.As(err, &target)
}

// DeliveryError means an email could not be handed to the SMTP server.
type DeliveryError struct {
	Kind    EmailKind
	Subject string
	Err     error
}

func (e *DeliveryError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("send %s email %q: %v", e.Kind, e.Subject, e.Err)
	}
	return fmt.Sprintf("send email %q: %v", e.Subject, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

func IsDeliveryError(err error) bool {
	var target *DeliveryError
	return errors.As(err, &target)
}
