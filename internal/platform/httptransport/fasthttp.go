package httptransport

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var fastTracer = otel.Tracer("onboarding-client/internal/platform/httptransport")
var fastNoopSpan = trace.SpanFromContext(context.Background())

// FastHTTP talks to the backend through a fasthttp client.
type FastHTTP struct {
	base
	client *fasthttp.Client
}

func NewFastHTTP(cfg Config, client *fasthttp.Client) (*FastHTTP, error) {
	b, err := newBase(cfg)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = &fasthttp.Client{
			Name:                "onboarding-client",
			ReadTimeout:         b.timeout,
			WriteTimeout:        b.timeout,
			MaxResponseBodySize: int(b.maxBodyBytes),
		}
	}

	return &FastHTTP{base: b, client: client}, nil
}

func (t *FastHTTP) Get(ctx context.Context, path string) (Response, error) {
	return t.do(ctx, t.newExchange(http.MethodGet, path, nil))
}

func (t *FastHTTP) Post(ctx context.Context, path string, body []byte) (Response, error) {
	if body == nil {
		body = []byte{}
	}
	return t.do(ctx, t.newExchange(http.MethodPost, path, body))
}

func (t *FastHTTP) do(ctx context.Context, ex exchange) (Response, error) {
	ctx, span := startClientSpan(ctx, ex)
	defer span.End()

	resp, err := t.run(ctx, ex, func() (Response, error) {
		if err := ctx.Err(); err != nil {
			return Response{}, t.exchangeError(ctx, ex, "send request", err)
		}

		req := fasthttp.AcquireRequest()
		res := fasthttp.AcquireResponse()

		req.SetRequestURI(ex.url)
		req.Header.SetMethod(ex.method)
		for key, value := range t.headers(ex) {
			req.Header.Set(key, value)
		}
		if ex.body != nil {
			req.SetBodyRaw(ex.body)
		}

		// DoDeadline ignores ctx, so the exchange runs aside and req/res are
		// released only once it has returned.
		done := make(chan fastResult, 1)
		go func() {
			defer fasthttp.ReleaseRequest(req)
			defer fasthttp.ReleaseResponse(res)
			done <- t.send(ex, req, res, t.deadline(ctx))
		}()

		select {
		case <-ctx.Done():
			return Response{}, t.exchangeError(ctx, ex, "send request", ctx.Err())
		case result := <-done:
			if result.err != nil {
				return Response{}, t.exchangeError(ctx, ex, "send request", result.err)
			}
			return result.resp, result.limitErr
		}
	})

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	}
	return resp, err
}

type fastResult struct {
	resp     Response
	err      error
	limitErr error
}

// send performs the exchange and copies the body out before res is released.
func (t *FastHTTP) send(ex exchange, req *fasthttp.Request, res *fasthttp.Response, deadline time.Time) fastResult {
	if err := t.client.DoDeadline(req, res, deadline); err != nil {
		return fastResult{err: err}
	}

	body := res.Body()
	if int64(len(body)) > t.maxBodyBytes {
		return fastResult{limitErr: fmt.Errorf("%w: %s %s: response body exceeds %d bytes", ErrExchangeFailed, ex.method, ex.path, t.maxBodyBytes)}
	}

	return fastResult{resp: Response{
		StatusCode: res.StatusCode(),
		Body:       append([]byte(nil), body...),
	}}
}

func (t *FastHTTP) deadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(t.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		return ctxDeadline
	}
	return deadline
}

func startClientSpan(ctx context.Context, ex exchange) (context.Context, trace.Span) {
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		return ctx, fastNoopSpan
	}
	return fastTracer.Start(ctx, "HTTP "+ex.method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", ex.method),
			attribute.String("url.path", ex.path),
			attribute.String("http.request.id", ex.requestID),
		),
	)
}
