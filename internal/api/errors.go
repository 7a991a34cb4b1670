package api

import (
	"errors"
	"fmt"
	"strings"
)

// PaymentRequiredMarker is the text the backend embeds in an agent error
// when the paid tier is needed.
const PaymentRequiredMarker = "PAYMENT_REQUIRED"

// ErrTransport matches every failure where the request never reached the
// server or the response could not be read or decoded.
var ErrTransport = errors.New("api: transport failure")

// TransportError wraps the underlying network or decoding failure.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrTransport) match.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// ServerError is a failure reported by the backend, either as a non-2xx
// status or as an explicit error field in the body.
type ServerError struct {
	Op         string
	Status     int
	StatusText string
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "Server Error: " + e.StatusText
}

// IsPaymentRequired reports whether err is a server error carrying the
// payment-required marker.
func IsPaymentRequired(err error) bool {
	var se *ServerError
	if !errors.As(err, &se) {
		return false
	}
	return strings.Contains(se.Message, PaymentRequiredMarker)
}

// Message extracts the text to show a user for err.
func Message(err error) string {
	var se *ServerError
	if errors.As(err, &se) {
		return se.Error()
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te.Err.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
