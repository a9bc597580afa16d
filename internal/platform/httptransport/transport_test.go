package httptransport

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/onboarding-client/internal/platform/id"
	"github.com/riskibarqy/onboarding-client/internal/platform/resilience"
)

type roundTripper interface {
	Get(ctx context.Context, path string) (Response, error)
	Post(ctx context.Context, path string, body []byte) (Response, error)
}

type transportFactory struct {
	name string
	new  func(t *testing.T, cfg Config) roundTripper
}

func factories() []transportFactory {
	return []transportFactory{
		{
			name: "nethttp",
			new: func(t *testing.T, cfg Config) roundTripper {
				tr, err := NewNetHTTP(cfg, nil)
				if err != nil {
					t.Fatalf("new nethttp transport: %v", err)
				}
				return tr
			},
		},
		{
			name: "fasthttp",
			new: func(t *testing.T, cfg Config) roundTripper {
				tr, err := NewFastHTTP(cfg, nil)
				if err != nil {
					t.Fatalf("new fasthttp transport: %v", err)
				}
				return tr
			},
		},
	}
}

func TestTransport_PostSendsHeadersAndBody(t *testing.T) {
	t.Parallel()

	for _, f := range factories() {
		f := f
		t.Run(f.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("unexpected method: %s", r.Method)
				}
				if r.URL.Path != "/api/onboarding/complete" {
					t.Errorf("unexpected path: %s", r.URL.Path)
				}
				if got := r.Header.Get("Authorization"); got != "Bearer secret-token" {
					t.Errorf("unexpected authorization header: %q", got)
				}
				if got := r.Header.Get("Content-Type"); got != "application/json" {
					t.Errorf("unexpected content type: %q", got)
				}
				if got := r.Header.Get(headerRequestID); got != "req-123" {
					t.Errorf("unexpected request id header: %q", got)
				}
				body, _ := io.ReadAll(r.Body)
				if string(body) != `{"a":1}` {
					t.Errorf("unexpected body: %s", body)
				}
				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(`{"ok":true}`))
			}))
			defer srv.Close()

			tr := f.new(t, Config{
				BaseURL:    srv.URL + "/api/",
				AuthToken:  "secret-token",
				RequestIDs: id.Static("req-123"),
			})
			resp, err := tr.Post(context.Background(), "onboarding/complete", []byte(`{"a":1}`))
			if err != nil {
				t.Fatalf("post failed: %v", err)
			}
			if resp.StatusCode != http.StatusCreated || !resp.Success() {
				t.Fatalf("unexpected status: %d", resp.StatusCode)
			}
			if string(resp.Body) != `{"ok":true}` {
				t.Fatalf("unexpected body: %s", resp.Body)
			}
			if resp.RequestID != "req-123" {
				t.Fatalf("unexpected request id on response: %q", resp.RequestID)
			}
		})
	}
}

func TestTransport_NonSuccessStatusIsAResponse(t *testing.T) {
	t.Parallel()

	for _, f := range factories() {
		f := f
		t.Run(f.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Content-Type") != "" {
					t.Errorf("GET must not send a content type")
				}
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
			}))
			defer srv.Close()

			tr := f.new(t, Config{BaseURL: srv.URL})
			resp, err := tr.Get(context.Background(), "/onboarding/status")
			if err != nil {
				t.Fatalf("expected response, got error %v", err)
			}
			if resp.StatusCode != http.StatusUnauthorized || resp.Success() {
				t.Fatalf("unexpected status: %d", resp.StatusCode)
			}
		})
	}
}

func TestTransport_UnreachableBackend(t *testing.T) {
	t.Parallel()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := listener.Addr().String()
	_ = listener.Close()

	for _, f := range factories() {
		f := f
		t.Run(f.name, func(t *testing.T) {
			t.Parallel()

			tr := f.new(t, Config{BaseURL: "http://" + addr, AuthToken: "secret-token", Timeout: 2 * time.Second})
			_, err := tr.Get(context.Background(), "/onboarding/status")
			if !errors.Is(err, ErrExchangeFailed) {
				t.Fatalf("expected ErrExchangeFailed, got %v", err)
			}
			if strings.Contains(err.Error(), "secret-token") {
				t.Fatalf("token leaked into error: %v", err)
			}
		})
	}
}

func TestTransport_BodyLimit(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	tr, err := NewNetHTTP(Config{BaseURL: srv.URL, MaxBodyBytes: 16}, srv.Client())
	if err != nil {
		t.Fatalf("new transport: %v", err)
	}
	if _, err := tr.Get(context.Background(), "/big"); !errors.Is(err, ErrExchangeFailed) {
		t.Fatalf("expected ErrExchangeFailed for oversized body, got %v", err)
	}
}

func TestTransport_CanceledContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	for _, f := range factories() {
		f := f
		t.Run(f.name, func(t *testing.T) {
			t.Parallel()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			tr := f.new(t, Config{BaseURL: srv.URL})
			_, err := tr.Get(ctx, "/onboarding/status")
			if !errors.Is(err, ErrExchangeFailed) || !errors.Is(err, context.Canceled) {
				t.Fatalf("expected canceled exchange error, got %v", err)
			}
		})
	}
}

func TestTransport_CancelInFlight(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-time.After(2 * time.Second):
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	defer close(release)

	for _, f := range factories() {
		f := f
		t.Run(f.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			time.AfterFunc(100*time.Millisecond, cancel)
			defer cancel()

			tr := f.new(t, Config{BaseURL: srv.URL, Timeout: 3 * time.Second})
			started := time.Now()
			resp, err := tr.Get(ctx, "/onboarding/status")
			if !errors.Is(err, ErrExchangeFailed) || !errors.Is(err, context.Canceled) {
				t.Fatalf("expected canceled exchange error, got resp=%+v err=%v", resp, err)
			}
			if elapsed := time.Since(started); elapsed > time.Second {
				t.Fatalf("cancel took effect after %s", elapsed)
			}
		})
	}
}

func TestTransport_CancellationDoesNotTripBreaker(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	for _, f := range factories() {
		f := f
		t.Run(f.name, func(t *testing.T) {
			t.Parallel()

			tr := f.new(t, Config{
				BaseURL: srv.URL,
				CircuitBreaker: resilience.CircuitBreakerConfig{
					Enabled:          true,
					FailureThreshold: 1,
					OpenTimeout:      time.Minute,
				},
			})

			canceled, cancel := context.WithCancel(context.Background())
			cancel()
			if _, err := tr.Get(canceled, "/onboarding/status"); !errors.Is(err, context.Canceled) {
				t.Fatalf("expected canceled error, got %v", err)
			}

			resp, err := tr.Get(context.Background(), "/onboarding/status")
			if err != nil {
				t.Fatalf("expected breaker to stay closed, got %v", err)
			}
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("unexpected status: %d", resp.StatusCode)
			}
		})
	}
}

func TestTransport_CircuitBreakerOpensOnServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	tr, err := NewNetHTTP(Config{
		BaseURL: srv.URL,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
		},
	}, srv.Client())
	if err != nil {
		t.Fatalf("new transport: %v", err)
	}

	for i := 0; i < 2; i++ {
		resp, err := tr.Get(context.Background(), "/onboarding/status")
		if err != nil {
			t.Fatalf("attempt %d: expected 503 response, got error %v", i, err)
		}
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Fatalf("attempt %d: unexpected status %d", i, resp.StatusCode)
		}
	}

	_, err = tr.Get(context.Background(), "/onboarding/status")
	if !errors.Is(err, resilience.ErrCircuitOpen) || !errors.Is(err, ErrExchangeFailed) {
		t.Fatalf("expected open circuit error, got %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 backend calls, got %d", got)
	}
}

func TestNewTransport_RejectsInvalidBaseURL(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "ftp://example.com", "http://"} {
		if _, err := NewNetHTTP(Config{BaseURL: raw}, nil); err == nil {
			t.Fatalf("expected error for base url %q", raw)
		}
		if _, err := NewFastHTTP(Config{BaseURL: raw}, nil); err == nil {
			t.Fatalf("expected error for base url %q", raw)
		}
	}
}

func TestBuildURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		base string
		path string
		want string
	}{
		{"http://api.local", "/onboarding/status", "http://api.local/onboarding/status"},
		{"http://api.local/v1", "onboarding/status", "http://api.local/v1/onboarding/status"},
		{"http://api.local", "", "http://api.local"},
		{"http://api.local", "https://other.local/x", "https://other.local/x"},
	}
	for _, tc := range cases {
		if got := buildURL(tc.base, tc.path); got != tc.want {
			t.Fatalf("buildURL(%q, %q)=%q want %q", tc.base, tc.path, got, tc.want)
		}
	}
}
