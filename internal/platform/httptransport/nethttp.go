package httptransport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NetHTTP talks to the backend through net/http.
type NetHTTP struct {
	base
	client *http.Client
}

// NewNetHTTP builds a transport; a nil client gets an otelhttp-instrumented
// client with cfg.Timeout.
func NewNetHTTP(cfg Config, client *http.Client) (*NetHTTP, error) {
	b, err := newBase(cfg)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{
			Timeout:   b.timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	return &NetHTTP{base: b, client: client}, nil
}

func (t *NetHTTP) Get(ctx context.Context, path string) (Response, error) {
	return t.do(ctx, t.newExchange(http.MethodGet, path, nil))
}

func (t *NetHTTP) Post(ctx context.Context, path string, body []byte) (Response, error) {
	if body == nil {
		body = []byte{}
	}
	return t.do(ctx, t.newExchange(http.MethodPost, path, body))
}

func (t *NetHTTP) do(ctx context.Context, ex exchange) (Response, error) {
	return t.run(ctx, ex, func() (Response, error) {
		var reader io.Reader
		if ex.body != nil {
			reader = bytes.NewReader(ex.body)
		}

		req, err := http.NewRequestWithContext(ctx, ex.method, ex.url, reader)
		if err != nil {
			return Response{}, fmt.Errorf("build request: %w", err)
		}
		for key, value := range t.headers(ex) {
			req.Header.Set(key, value)
		}

		resp, err := t.client.Do(req)
		if err != nil {
			return Response{}, t.exchangeError(ctx, ex, "send request", err)
		}
		defer func() {
			_ = resp.Body.Close()
		}()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBodyBytes+1))
		if err != nil {
			return Response{}, t.exchangeError(ctx, ex, "read response body", err)
		}
		if int64(len(raw)) > t.maxBodyBytes {
			return Response{}, fmt.Errorf("%w: %s %s: response body exceeds %d bytes", ErrExchangeFailed, ex.method, ex.path, t.maxBodyBytes)
		}

		return Response{StatusCode: resp.StatusCode, Body: raw}, nil
	})
}
