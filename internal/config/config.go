package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/onboarding-client/internal/platform/logging"
)

const (
	TransportNetHTTP  = "nethttp"
	TransportFastHTTP = "fasthttp"
)

// Config stores runtime configuration for the onboarding client.
type Config struct {
	AppEnv                          string
	ServiceName                     string
	ServiceVersion                  string
	LogLevel                        logging.Level
	OnboardingBaseURL               string
	OnboardingAuthToken             string
	OnboardingTransport             string
	OnboardingTimeout               time.Duration
	OnboardingMaxBodyBytes          int64
	OnboardingCompletePath          string
	OnboardingStatusPath            string
	OnboardingCircuitEnabled        bool
	OnboardingCircuitFailureCount   int
	OnboardingCircuitOpenTimeout    time.Duration
	OnboardingCircuitHalfOpenMaxReq int
	UptraceEnabled                  bool
	UptraceDSN                      string
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	baseURL := strings.TrimSpace(getEnv("ONBOARDING_BASE_URL", ""))
	if baseURL == "" {
		return Config{}, fmt.Errorf("ONBOARDING_BASE_URL is required")
	}

	transport, err := parseTransport(getEnv("ONBOARDING_TRANSPORT", TransportNetHTTP))
	if err != nil {
		return Config{}, err
	}

	timeout, err := time.ParseDuration(getEnv("ONBOARDING_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ONBOARDING_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return Config{}, fmt.Errorf("ONBOARDING_TIMEOUT must be > 0")
	}

	maxBodyBytes, err := getEnvAsInt("ONBOARDING_MAX_BODY_BYTES", 1<<20)
	if err != nil {
		return Config{}, fmt.Errorf("parse ONBOARDING_MAX_BODY_BYTES: %w", err)
	}
	if maxBodyBytes <= 0 {
		return Config{}, fmt.Errorf("ONBOARDING_MAX_BODY_BYTES must be > 0")
	}

	circuitEnabled, err := strconv.ParseBool(getEnv("ONBOARDING_CIRCUIT_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ONBOARDING_CIRCUIT_ENABLED: %w", err)
	}
	circuitFailureCount, err := getEnvAsInt("ONBOARDING_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse ONBOARDING_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if circuitFailureCount < 1 {
		return Config{}, fmt.Errorf("ONBOARDING_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	circuitOpenTimeout, err := time.ParseDuration(getEnv("ONBOARDING_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ONBOARDING_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if circuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("ONBOARDING_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	circuitHalfOpenMaxReq, err := getEnvAsInt("ONBOARDING_CIRCUIT_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse ONBOARDING_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if circuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("ONBOARDING_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	return Config{
		AppEnv:                          appEnv,
		ServiceName:                     getEnv("APP_SERVICE_NAME", "onboarding-client"),
		ServiceVersion:                  getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:                        logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		OnboardingBaseURL:               baseURL,
		OnboardingAuthToken:             strings.TrimSpace(getEnv("ONBOARDING_AUTH_TOKEN", "")),
		OnboardingTransport:             transport,
		OnboardingTimeout:               timeout,
		OnboardingMaxBodyBytes:          int64(maxBodyBytes),
		OnboardingCompletePath:          strings.TrimSpace(getEnv("ONBOARDING_COMPLETE_PATH", "/onboarding/complete")),
		OnboardingStatusPath:            strings.TrimSpace(getEnv("ONBOARDING_STATUS_PATH", "/onboarding/status")),
		OnboardingCircuitEnabled:        circuitEnabled,
		OnboardingCircuitFailureCount:   circuitFailureCount,
		OnboardingCircuitOpenTimeout:    circuitOpenTimeout,
		OnboardingCircuitHalfOpenMaxReq: circuitHalfOpenMaxReq,
		UptraceEnabled:                  uptraceEnabled,
		UptraceDSN:                      uptraceDSN,
	}, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func parseTransport(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case TransportNetHTTP, TransportFastHTTP:
		return value, nil
	default:
		return "", fmt.Errorf("invalid ONBOARDING_TRANSPORT %q: valid values are %s, %s", v, TransportNetHTTP, TransportFastHTTP)
	}
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
