package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/fsdcheck/pkg/errors"
)

func fastRetries(t *testing.T) {
	t.Helper()
	old := DefaultDelay
	DefaultDelay = time.Millisecond
	t.Cleanup(func() { DefaultDelay = old })
}

func TestIsURL(t *testing.T) {
	tests := map[string]bool{
		"https://ci.example.com/deps.json": true,
		"http://localhost:8080/deps.json":  true,
		"deps.json":                        false,
		"-":                                false,
		"ftp://example.com/deps.json":      false,
	}
	for in, want := range tests {
		if got := IsURL(in); got != want {
			t.Errorf("IsURL(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua == "" {
			t.Error("missing User-Agent")
		}
		w.Write([]byte(`{"modules":[]}`))
	}))
	defer srv.Close()

	data, err := Fetch(context.Background(), srv.Client(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != `{"modules":[]}` {
		t.Errorf("body = %q", data)
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	fastRetries(t)
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	if _, err := Fetch(context.Background(), srv.Client(), srv.URL); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestFetchErrors(t *testing.T) {
	fastRetries(t)
	tests := []struct {
		name      string
		status    int
		code      errors.Code
		wantCalls int32
	}{
		{"not found", http.StatusNotFound, errors.ErrCodeNotFound, 1},
		{"forbidden", http.StatusForbidden, errors.ErrCodeInvalidInput, 1},
		{"unavailable", http.StatusServiceUnavailable, errors.ErrCodeInvalidInput, int32(DefaultAttempts)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := Fetch(context.Background(), srv.Client(), srv.URL)
			if !errors.Is(err, tt.code) {
				t.Fatalf("Fetch error = %v, want code %s", err, tt.code)
			}
			if got := calls.Load(); got != tt.wantCalls {
				t.Errorf("calls = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestRetryStopsOnPlainError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 5, time.Millisecond, func() error {
		calls++
		return errors.New(errors.ErrCodeInvalidInput, "bad")
	})
	if err == nil || calls != 1 {
		t.Errorf("Retry returned %v after %d calls, want error after 1", err, calls)
	}
}

func TestRetryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, 3, time.Hour, func() error {
		return &RetryableError{Err: context.DeadlineExceeded}
	})
	if err != context.Canceled {
		t.Errorf("Retry = %v, want context.Canceled", err)
	}
}
