package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 1 {
		t.Errorf("expected default burst 1 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 100; i++ {
		if !limiter.Allow("anthropic") {
			t.Fatalf("expected unlimited limiter to allow call %d", i)
		}
	}
}

func TestLimiter_KeysByHost(t *testing.T) {
	limiter := NewLimiter(1, 1)

	if !limiter.Allow("https://example.com/feed.xml") {
		t.Fatalf("first call should pass")
	}
	// Same host, different path shares the bucket
	if limiter.Allow("https://example.com/other.xml") {
		t.Errorf("expected same host to be limited")
	}
	if !limiter.Allow("https://other.example/feed.xml") {
		t.Errorf("expected other host to pass")
	}
}

func TestLimiter_PlainKeys(t *testing.T) {
	limiter := NewLimiter(1, 1)

	if !limiter.Allow("anthropic") {
		t.Fatalf("first call should pass")
	}
	if limiter.Allow("anthropic") {
		t.Errorf("second call should be limited")
	}
	if !limiter.Allow("openai") {
		t.Errorf("other key should pass")
	}
}

func TestIntervalLimiter_SpacesCalls(t *testing.T) {
	limiter := NewIntervalLimiter(50 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := limiter.Wait(ctx, "llm"); err != nil {
			t.Fatalf("wait failed: %v", err)
		}
	}

	// First call is immediate, the next two wait one interval each
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("expected calls to be spaced, took %v", elapsed)
	}
}

func TestLimiter_WaitCancelled(t *testing.T) {
	limiter := NewIntervalLimiter(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	if err := limiter.Wait(ctx, "llm"); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}

	cancel()
	if err := limiter.Wait(ctx, "llm"); err == nil {
		t.Errorf("expected error from cancelled context")
	}
}

func TestLimiter_WaitWithDelay(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	start := time.Now()
	err := limiter.WaitWithDelay(ctx, "http://example.com", 50*time.Millisecond)
	if err != nil {
		t.Fatalf("WaitWithDelay failed: %v", err)
	}

	if duration := time.Since(start); duration < 50*time.Millisecond {
		t.Errorf("expected delay >= 50ms, got %v", duration)
	}
}

func TestLimiter_SetRate(t *testing.T) {
	limiter := NewLimiter(10, 10)
	limiter.SetRate("https://slow.example/feed", 0.1, 1)

	if !limiter.Allow("http://slow.example") {
		t.Errorf("first request should pass")
	}
	if limiter.Allow("http://slow.example/x") {
		t.Errorf("second request should fail")
	}
	if !limiter.Allow("http://fast.example") {
		t.Errorf("other host should pass")
	}
}

func TestKeyFor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://example.com/foo", "example.com"},
		{"https://api.anthropic.com/v1/messages", "api.anthropic.com"},
		{"anthropic", "anthropic"},
		{"::invalid", "::invalid"},
	}

	for _, tt := range tests {
		if got := keyFor(tt.in); got != tt.want {
			t.Errorf("keyFor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
