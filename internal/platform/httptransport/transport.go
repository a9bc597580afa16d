package httptransport

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/onboarding-client/internal/platform/id"
	"github.com/riskibarqy/onboarding-client/internal/platform/logging"
	"github.com/riskibarqy/onboarding-client/internal/platform/resilience"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultMaxBodyBytes = 1 << 20
	headerRequestID     = "X-Request-ID"
)

// ErrExchangeFailed marks requests that never produced an HTTP response.
var ErrExchangeFailed = crerr.New("http exchange failed")

var errUpstreamUnhealthy = crerr.New("upstream returned retryable status")

// Response is a completed exchange. Non-2xx statuses are responses, not errors.
type Response struct {
	StatusCode int
	Body       []byte
	RequestID  string
}

func (r Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

type Config struct {
	BaseURL string
	// AuthToken is sent as a bearer token when set.
	AuthToken      string
	Timeout        time.Duration
	MaxBodyBytes   int64
	CircuitBreaker resilience.CircuitBreakerConfig
	// RequestIDs defaults to random UUIDs.
	RequestIDs id.Generator
	Logger     *logging.Logger
}

type exchange struct {
	method    string
	path      string
	url       string
	body      []byte
	requestID string
}

type base struct {
	baseURL      string
	token        string
	timeout      time.Duration
	maxBodyBytes int64
	breaker      *resilience.CircuitBreaker
	requestIDs   id.Generator
	logger       *logging.Logger
}

func newBase(cfg Config) (base, error) {
	baseURL, err := validateHTTPBaseURL(cfg.BaseURL)
	if err != nil {
		return base{}, crerr.Wrap(err, "invalid base url")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	requestIDs := cfg.RequestIDs
	if requestIDs == nil {
		requestIDs = id.NewUUIDGenerator()
	}

	return base{
		baseURL:      baseURL,
		token:        strings.TrimSpace(cfg.AuthToken),
		timeout:      timeout,
		maxBodyBytes: maxBody,
		breaker:      resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		requestIDs:   requestIDs,
		logger:       logger,
	}, nil
}

func (b base) newExchange(method, path string, body []byte) exchange {
	return exchange{
		method:    method,
		path:      path,
		url:       buildURL(b.baseURL, path),
		body:      body,
		requestID: b.requestIDs.NewID(),
	}
}

func (b base) headers(ex exchange) map[string]string {
	out := map[string]string{
		"Accept":        "application/json",
		headerRequestID: ex.requestID,
	}
	if ex.body != nil {
		out["Content-Type"] = "application/json"
	}
	if b.token != "" {
		out["Authorization"] = "Bearer " + b.token
	}
	return out
}

// run sends ex through the breaker and logs the outcome.
func (b base) run(ctx context.Context, ex exchange, send func() (Response, error)) (Response, error) {
	started := time.Now()

	var resp Response
	err := b.breaker.Execute(func() error {
		var sendErr error
		resp, sendErr = send()
		if sendErr != nil {
			return sendErr
		}
		if isRetryableStatus(resp.StatusCode) {
			return errUpstreamUnhealthy
		}
		return nil
	}, countsAgainstUpstream)
	if stderrors.Is(err, errUpstreamUnhealthy) {
		err = nil
	}

	if err != nil {
		if stderrors.Is(err, resilience.ErrCircuitOpen) {
			b.logger.WarnContext(ctx, "circuit breaker rejected request", "method", ex.method, "path", ex.path, "state", b.breaker.State())
			return Response{RequestID: ex.requestID}, fmt.Errorf("%w: %s %s: %w", ErrExchangeFailed, ex.method, ex.path, err)
		}
		b.logger.WarnContext(ctx, "http exchange failed",
			"method", ex.method,
			"path", ex.path,
			"request_id", ex.requestID,
			"duration", time.Since(started),
			"error", err,
		)
		return Response{RequestID: ex.requestID}, err
	}

	resp.RequestID = ex.requestID
	b.logger.DebugContext(ctx, "http exchange completed",
		"method", ex.method,
		"path", ex.path,
		"status_code", resp.StatusCode,
		"request_id", ex.requestID,
		"duration", time.Since(started),
	)
	return resp, nil
}

func (b base) exchangeError(ctx context.Context, ex exchange, action string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %s %s: %s: %w", ErrExchangeFailed, ex.method, ex.path, action, ctxErr)
	}
	return fmt.Errorf("%w: %s %s: %s: %s", ErrExchangeFailed, ex.method, ex.path, action, sanitizeSensitiveText(err.Error(), b.token))
}

// countsAgainstUpstream keeps the caller's own cancellation out of the
// breaker's failure count.
func countsAgainstUpstream(err error) bool {
	return !stderrors.Is(err, context.Canceled) && !stderrors.Is(err, context.DeadlineExceeded)
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" || token == "" {
		return value
	}
	return strings.ReplaceAll(value, token, "REDACTED")
}

func isRetryableStatus(code int) bool {
	return code == http.StatusRequestTimeout ||
		code == http.StatusTooManyRequests ||
		code >= http.StatusInternalServerError
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}

func buildURL(baseURL, path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return baseURL
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return baseURL + path
}
