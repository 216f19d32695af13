package llm

import (
	"errors"
	"fmt"
	"testing"
)

func TestAPIError_QuotaClassification(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want bool
	}{
		{"payment required", &APIError{StatusCode: 402}, true},
		{"insufficient quota type", &APIError{StatusCode: 429, Type: "insufficient_quota"}, true},
		{"billing error type", &APIError{StatusCode: 400, Type: "billing_error"}, true},
		{"hard limit", &APIError{StatusCode: 400, Type: "billing_hard_limit_reached"}, true},
		{"credit balance message", &APIError{StatusCode: 400, Message: "Your Credit Balance is too low"}, true},
		{"rate limited", &APIError{StatusCode: 429, Type: "rate_limit_error"}, false},
		{"overloaded", &APIError{StatusCode: 529, Type: "overloaded_error"}, false},
		{"server error", &APIError{StatusCode: 500}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsQuotaExhausted(tt.err); got != tt.want {
				t.Errorf("IsQuotaExhausted() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsQuotaExhausted_Wrapped(t *testing.T) {
	err := fmt.Errorf("generate post: %w", &APIError{Provider: "anthropic", StatusCode: 402})
	if !IsQuotaExhausted(err) {
		t.Error("Expected wrapped quota error to match")
	}
	if IsQuotaExhausted(errors.New("timeout")) {
		t.Error("plain error must not match")
	}
	if IsQuotaExhausted(nil) {
		t.Error("nil must not match")
	}
}

func TestAPIError_Message(t *testing.T) {
	err := &APIError{Provider: "anthropic", StatusCode: 400, Type: "invalid_request_error", Message: "bad"}
	want := "anthropic API error (400): invalid_request_error - bad"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
