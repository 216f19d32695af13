package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrQuotaExhausted marks failures caused by account or billing state.
// Retrying such a call cannot succeed.
var ErrQuotaExhausted = errors.New("quota exhausted")

// APIError is a non-success response from a text-generation service
type APIError struct {
	Provider   string
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%s API error (%d): %s - %s", e.Provider, e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, e.Message)
}

// Is lets errors.Is(err, ErrQuotaExhausted) match quota-class API errors
func (e *APIError) Is(target error) bool {
	return target == ErrQuotaExhausted && e.quotaExhausted()
}

func (e *APIError) quotaExhausted() bool {
	if e.StatusCode == http.StatusPaymentRequired {
		return true
	}
	switch strings.ToLower(e.Type) {
	case "insufficient_quota", "billing_error", "billing_hard_limit_reached":
		return true
	}
	return strings.Contains(strings.ToLower(e.Message), "credit balance")
}

// IsQuotaExhausted reports whether err means no further calls can succeed
func IsQuotaExhausted(err error) bool {
	return errors.Is(err, ErrQuotaExhausted)
}
