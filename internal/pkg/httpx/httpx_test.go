package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

type codeErr int

func (e codeErr) Error() string       { return fmt.Sprintf("status %d", int(e)) }
func (e codeErr) HTTPStatusCode() int { return int(e) }

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), true},
		{"503", codeErr(503), true},
		{"429", codeErr(429), true},
		{"404", codeErr(404), false},
		{"plain", errors.New("boom"), false},
	}
	for _, tc := range tests {
		if got := IsRetryableError(tc.err); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestRetryDelay(t *testing.T) {
	resp := &http.Response{Header: http.Header{"Retry-After": []string{"3"}}}
	if got := RetryDelay(resp, 1, time.Second, 0); got != 3*time.Second {
		t.Fatalf("retry-after: got %v", got)
	}
	if got := RetryDelay(resp, 1, time.Second, 2*time.Second); got != 2*time.Second {
		t.Fatalf("capped: got %v", got)
	}
	got := RetryDelay(nil, 2, time.Second, 0)
	if got < 1600*time.Millisecond || got > 2400*time.Millisecond {
		t.Fatalf("jittered backoff out of range: %v", got)
	}
	if RetryDelay(nil, 1, 0, 0) != 0 {
		t.Fatalf("zero base should not wait")
	}
}
