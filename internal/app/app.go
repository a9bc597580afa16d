package app

import (
	"context"
	"fmt"
	"io"

	"github.com/riskibarqy/onboarding-client/external/onboardingapi"
	"github.com/riskibarqy/onboarding-client/internal/config"
	"github.com/riskibarqy/onboarding-client/internal/observability"
	"github.com/riskibarqy/onboarding-client/internal/platform/httptransport"
	"github.com/riskibarqy/onboarding-client/internal/platform/logging"
	"github.com/riskibarqy/onboarding-client/internal/platform/resilience"
)

// App holds the wired onboarding client and what it needs at shutdown.
type App struct {
	Client *onboardingapi.Client
	Logger *logging.Logger

	shutdownTelemetry func(context.Context) error
}

// New builds the logger, telemetry, transport and client from cfg. Logs go
// to logOut, which defaults to stderr.
func New(cfg config.Config, logOut io.Writer) (*App, error) {
	logger := logging.NewJSON(cfg.LogLevel, logOut).With(
		"service", cfg.ServiceName,
		"env", cfg.AppEnv,
	)
	logging.SetDefault(logger)

	shutdownTelemetry, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init uptrace: %w", err)
	}

	transport, err := NewTransport(cfg, logger)
	if err != nil {
		_ = shutdownTelemetry(context.Background())
		return nil, err
	}

	client, err := onboardingapi.NewClient(onboardingapi.ClientConfig{
		Transport:    transport,
		CompletePath: cfg.OnboardingCompletePath,
		StatusPath:   cfg.OnboardingStatusPath,
		Logger:       logger.Named("onboardingapi"),
	})
	if err != nil {
		_ = shutdownTelemetry(context.Background())
		return nil, fmt.Errorf("build onboarding client: %w", err)
	}

	return &App{
		Client:            client,
		Logger:            logger,
		shutdownTelemetry: shutdownTelemetry,
	}, nil
}

// NewTransport picks the HTTP adapter named by cfg.OnboardingTransport.
func NewTransport(cfg config.Config, logger *logging.Logger) (onboardingapi.Transport, error) {
	transportCfg := httptransport.Config{
		BaseURL:      cfg.OnboardingBaseURL,
		AuthToken:    cfg.OnboardingAuthToken,
		Timeout:      cfg.OnboardingTimeout,
		MaxBodyBytes: cfg.OnboardingMaxBodyBytes,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.OnboardingCircuitEnabled,
			FailureThreshold: cfg.OnboardingCircuitFailureCount,
			OpenTimeout:      cfg.OnboardingCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.OnboardingCircuitHalfOpenMaxReq,
		},
		Logger: logger.Named("httptransport"),
	}

	switch cfg.OnboardingTransport {
	case config.TransportFastHTTP:
		transport, err := httptransport.NewFastHTTP(transportCfg, nil)
		if err != nil {
			return nil, fmt.Errorf("build fasthttp transport: %w", err)
		}
		return transport, nil
	case config.TransportNetHTTP, "":
		transport, err := httptransport.NewNetHTTP(transportCfg, nil)
		if err != nil {
			return nil, fmt.Errorf("build nethttp transport: %w", err)
		}
		return transport, nil
	default:
		return nil, fmt.Errorf("unsupported onboarding transport %q", cfg.OnboardingTransport)
	}
}

// Close flushes telemetry and logs.
func (a *App) Close(ctx context.Context) error {
	var firstErr error
	if a.shutdownTelemetry != nil {
		if err := a.shutdownTelemetry(ctx); err != nil {
			firstErr = fmt.Errorf("shutdown uptrace: %w", err)
		}
	}
	_ = a.Logger.Sync()
	return firstErr
}
