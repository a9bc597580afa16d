package onboardingapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/onboarding-client/internal/domain/onboarding"
	"github.com/riskibarqy/onboarding-client/internal/platform/httptransport"
	"github.com/riskibarqy/onboarding-client/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultCompletePath = "/onboarding/complete"
	DefaultStatusPath   = "/onboarding/status"
)

// Transport performs one request against the backend. Base URL and
// authentication belong to the implementation.
type Transport interface {
	Get(ctx context.Context, path string) (httptransport.Response, error)
	Post(ctx context.Context, path string, body []byte) (httptransport.Response, error)
}

type ClientConfig struct {
	Transport    Transport
	CompletePath string
	StatusPath   string
	Logger       *logging.Logger
}

// Client submits onboarding answers and reads onboarding status. It holds no
// per-call state and is safe for concurrent use.
type Client struct {
	transport    Transport
	completePath string
	statusPath   string
	logger       *logging.Logger
}

// Acknowledgement is the backend's submit response body, unchanged. It is
// empty when the backend sent no body.
type Acknowledgement []byte

func (a Acknowledgement) Decode(target any) error {
	if len(a) == 0 {
		return fmt.Errorf("acknowledgement is empty")
	}
	return sonic.Unmarshal(a, target)
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Transport == nil {
		return nil, fmt.Errorf("onboarding client: transport is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	completePath := strings.TrimSpace(cfg.CompletePath)
	if completePath == "" {
		completePath = DefaultCompletePath
	}
	statusPath := strings.TrimSpace(cfg.StatusPath)
	if statusPath == "" {
		statusPath = DefaultStatusPath
	}

	return &Client{
		transport:    cfg.Transport,
		completePath: completePath,
		statusPath:   statusPath,
		logger:       logger,
	}, nil
}

// Submit sends data to the completion endpoint once and returns the
// backend's body as is. Fields are not validated here.
func (c *Client) Submit(ctx context.Context, data onboarding.Data) (Acknowledgement, error) {
	ctx, span := startSpan(ctx, "onboardingapi.Client.Submit")
	defer span.End()

	body, err := data.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal onboarding data: %w", err)
	}

	resp, err := c.transport.Post(ctx, c.completePath, body)
	if err != nil {
		return nil, c.fail(ctx, span, &TransportError{Op: OpSubmit, Err: err})
	}
	if !resp.Success() {
		return nil, c.fail(ctx, span, &TransportError{
			Op:         OpSubmit,
			StatusCode: resp.StatusCode,
			Body:       abbreviateBody(resp.Body),
		})
	}

	if len(strings.TrimSpace(string(resp.Body))) == 0 {
		c.logger.DebugContext(ctx, "onboarding submitted", "status_code", resp.StatusCode, "request_id", resp.RequestID)
		return Acknowledgement{}, nil
	}
	if !sonic.Valid(resp.Body) {
		return nil, c.fail(ctx, span, &MalformedResponseError{
			Op:     OpSubmit,
			Reason: "acknowledgement is not valid JSON",
			Body:   abbreviateBody(resp.Body),
		})
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	c.logger.DebugContext(ctx, "onboarding submitted", "status_code", resp.StatusCode, "request_id", resp.RequestID)
	return Acknowledgement(resp.Body), nil
}

// FetchStatus reads the current onboarding status once. A failed lookup is
// always an error and never an incomplete status.
func (c *Client) FetchStatus(ctx context.Context) (onboarding.Status, error) {
	ctx, span := startSpan(ctx, "onboardingapi.Client.FetchStatus")
	defer span.End()

	resp, err := c.transport.Get(ctx, c.statusPath)
	if err != nil {
		return onboarding.Status{}, c.fail(ctx, span, &TransportError{Op: OpFetchStatus, Err: err})
	}
	if !resp.Success() {
		return onboarding.Status{}, c.fail(ctx, span, &TransportError{
			Op:         OpFetchStatus,
			StatusCode: resp.StatusCode,
			Body:       abbreviateBody(resp.Body),
		})
	}

	status, err := decodeStatus(resp.Body)
	if err != nil {
		return onboarding.Status{}, c.fail(ctx, span, err)
	}

	span.SetAttributes(attribute.Bool("onboarding.completed", status.OnboardingCompleted))
	c.logger.DebugContext(ctx, "onboarding status fetched",
		"completed", status.OnboardingCompleted,
		"has_data", status.OnboardingData != nil,
		"request_id", resp.RequestID,
	)
	return status, nil
}

func (c *Client) fail(ctx context.Context, span spanRecorder, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	c.logger.WarnContext(ctx, "onboarding request failed", "error", err)
	return err
}

func decodeStatus(body []byte) (onboarding.Status, error) {
	malformed := func(reason string, cause error) error {
		return &MalformedResponseError{
			Op:     OpFetchStatus,
			Reason: reason,
			Body:   abbreviateBody(body),
			Err:    cause,
		}
	}

	var fields map[string]json.RawMessage
	if err := sonic.Unmarshal(body, &fields); err != nil {
		return onboarding.Status{}, malformed("body is not a JSON object", err)
	}
	if fields == nil {
		return onboarding.Status{}, malformed("body is not a JSON object", nil)
	}

	rawCompleted, ok := fields[onboarding.FieldOnboardingCompleted]
	if !ok || isNull(rawCompleted) {
		return onboarding.Status{}, malformed(onboarding.FieldOnboardingCompleted+" is missing", nil)
	}
	var completed bool
	if err := sonic.Unmarshal(rawCompleted, &completed); err != nil {
		return onboarding.Status{}, malformed(onboarding.FieldOnboardingCompleted+" is not a boolean", err)
	}

	status := onboarding.Status{OnboardingCompleted: completed}

	rawData, ok := fields[onboarding.FieldOnboardingData]
	if !ok || isNull(rawData) {
		return status, nil
	}
	if !completed {
		return onboarding.Status{}, malformed(onboarding.FieldOnboardingData+" is present while onboarding is not completed", nil)
	}

	var data onboarding.Data
	if err := data.UnmarshalJSON(rawData); err != nil {
		return onboarding.Status{}, malformed(onboarding.FieldOnboardingData+" has an invalid shape", err)
	}
	status.OnboardingData = &data
	return status, nil
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
