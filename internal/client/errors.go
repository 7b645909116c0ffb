package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoCredits is a refusal: the authenticated caller has no credits.
	ErrNoCredits = errors.New("no credits left")
	// ErrQuotaReached is a refusal: the anonymous daily quota is used up.
	ErrQuotaReached = errors.New("daily free quota reached")
	// ErrSuperseded means the operation was cancelled, either by a newer
	// invocation or by the caller. It is not a user-visible failure and no
	// state was changed.
	ErrSuperseded = errors.New("operation superseded")
	// ErrTimeout means an attempt exceeded its deadline. It is not retried.
	ErrTimeout = errors.New("request timed out")
	// ErrEmptyTopic is returned before any network call for a blank topic.
	ErrEmptyTopic = errors.New("topic is required")
)

// StatusError is a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
	// Retryable is set for gateway errors (502).
	Retryable bool
	// Attempt and MaxAttempts are filled in by the Generator.
	Attempt     int
	MaxAttempts int
}

func newStatusError(code int, body string) *StatusError {
	return &StatusError{
		StatusCode: code,
		Body:       body,
		Retryable:  code == http.StatusBadGateway,
	}
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// TransportError is a network-level failure. It is retried.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("transport: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// ValidationError is a 2xx response whose payload is malformed.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid response: %s: %v", e.Reason, e.Err)
	}
	return "invalid response: " + e.Reason
}

func (e *ValidationError) Unwrap() error { return e.Err }

// AccountingError means the response was valid but the credit or quota unit
// could not be deducted. The results are discarded.
type AccountingError struct {
	Err error
}

func (e *AccountingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("accounting failed: %v", e.Err)
	}
	return "accounting failed"
}

func (e *AccountingError) Unwrap() error { return e.Err }

func isRetryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable
	}
	var te *TransportError
	return errors.As(err, &te)
}

// IsSilent reports whether err should not be shown to the user.
func IsSilent(err error) bool {
	return errors.Is(err, ErrSuperseded)
}

// Message turns any error from this package into the single human-readable
// message shown to the user. It returns "" for nil and silent errors.
func Message(err error) string {
	if err == nil || IsSilent(err) {
		return ""
	}

	var (
		se *StatusError
		te *TransportError
		ve *ValidationError
		ae *AccountingError
	)
	switch {
	case errors.Is(err, ErrNoCredits):
		return "You have no credits left. Buy more credits to keep generating."
	case errors.Is(err, ErrQuotaReached):
		return "You have used all free generations for today. Sign in or come back tomorrow."
	case errors.Is(err, ErrEmptyTopic):
		return "Please enter a topic."
	case errors.Is(err, ErrTimeout):
		return "The request took too long. Please try again."
	case errors.As(err, &se):
		msg := statusMessage(se.StatusCode, se.Body)
		if se.Retryable && se.Attempt > 0 && se.MaxAttempts > 1 {
			msg = fmt.Sprintf("%s (attempt %d of %d)", msg, se.Attempt, se.MaxAttempts)
		}
		return msg
	case errors.As(err, &te):
		return "Network error. Please check your connection and try again."
	case errors.As(err, &ve):
		return "The service returned an unexpected response. Please try again."
	case errors.As(err, &ae):
		return "Your usage could not be recorded, so the results were discarded. Please try again."
	}
	return err.Error()
}

func statusMessage(code int, body string) string {
	switch code {
	case http.StatusUnauthorized:
		return "Invalid API key. Please check your settings."
	case http.StatusForbidden:
		return "Permission denied. Please check your permissions."
	case http.StatusTooManyRequests:
		return "Too many requests. Please wait a moment."
	case http.StatusBadGateway:
		return "The API is temporarily unreachable. Please try again in a few minutes."
	case http.StatusInternalServerError, http.StatusServiceUnavailable:
		return "The server is currently overloaded. Please try again later."
	}
	if body == "" {
		body = "Unknown error"
	}
	return fmt.Sprintf("Error %d: %s", code, body)
}
