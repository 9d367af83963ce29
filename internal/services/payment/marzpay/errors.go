package marzpay

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAmount is returned when a collection amount is zero or negative.
	ErrInvalidAmount = errors.New("amount must be greater than zero")

	// ErrInvalidPhoneFormat is returned when a phone number cannot be
	// normalized to a valid Ugandan MSISDN.
	ErrInvalidPhoneFormat = errors.New("invalid phone number format")

	// ErrMalformedResponse is returned when the gateway replies with a body
	// that does not match the documented response envelope.
	ErrMalformedResponse = errors.New("malformed gateway response")

	// ErrGatewayTimeout is returned when the gateway does not answer within
	// the configured deadline.
	ErrGatewayTimeout = errors.New("gateway request timed out")

	// ErrUnknownTransaction is returned when a webhook references a
	// transaction this system has no record of.
	ErrUnknownTransaction = errors.New("unknown transaction")

	// ErrUnknownEventStatus is returned when a webhook carries a status
	// outside the recognized terminal set.
	ErrUnknownEventStatus = errors.New("unknown event status")
)

// GatewayError is a non-2xx response from the gateway with whatever
// message it supplied.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error (status %d): %s", e.StatusCode, e.Message)
}
