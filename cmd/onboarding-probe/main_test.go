package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/riskibarqy/onboarding-client/external/onboardingapi"
	"github.com/riskibarqy/onboarding-client/internal/domain/onboarding"
	"github.com/stretchr/testify/require"
)

func TestParseAnswers_YAMLKeepsNullAndOmitted(t *testing.T) {
	raw := []byte(`
primaryGoal: ship
biggestChallenge: time
workStyle: solo
focusArea: backend
wantsBuddy: null
`)

	data, err := parseAnswers(raw, ".yaml")
	require.NoError(t, err)

	if data.PrimaryGoal != "ship" || data.FocusArea != "backend" {
		t.Fatalf("unexpected answers: %+v", data)
	}
	if !data.WantsBuddy.IsNull() {
		t.Fatalf("expected wantsBuddy null, got %s", data.WantsBuddy)
	}
	if !data.FirstGoal.IsOmitted() || !data.BuddyEmail.IsOmitted() {
		t.Fatalf("expected firstGoal and buddyEmail omitted")
	}
}

func TestParseAnswers_JSON(t *testing.T) {
	raw := []byte(`{"primaryGoal":"a","biggestChallenge":"b","workStyle":"c","focusArea":"d","wantsBuddy":true,"buddyEmail":"x@example.com"}`)

	data, err := parseAnswers(raw, ".json")
	require.NoError(t, err)

	email, ok := data.BuddyEmail.Get()
	if !ok || email != "x@example.com" {
		t.Fatalf("unexpected buddyEmail: %s", data.BuddyEmail)
	}
}

func TestParseAnswers_RejectsEmptyYAML(t *testing.T) {
	if _, err := parseAnswers([]byte(""), ".yml"); err == nil {
		t.Fatalf("expected error for empty yaml document")
	}
}

func TestRun_UsageError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"unknown"}, &stdout, &stderr); code != exitUsage {
		t.Fatalf("unexpected exit code: %d", code)
	}
}

func TestRun_StatusPrintsFlowState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != onboardingapi.DefaultStatusPath {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"onboardingCompleted":false,"onboardingData":null}`))
	}))
	defer srv.Close()

	t.Setenv("APP_ENV", "dev")
	t.Setenv("ONBOARDING_BASE_URL", srv.URL)
	t.Setenv("UPTRACE_ENABLED", "false")

	var stdout, stderr bytes.Buffer
	code := run([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env"), "status"}, &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("unexpected exit code %d, stderr=%s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), `"flowState":"incomplete"`) {
		t.Fatalf("unexpected output: %s", stdout.String())
	}
}

func TestRun_SubmitInvalidAnswersNeverReachBackend(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	t.Setenv("APP_ENV", "dev")
	t.Setenv("ONBOARDING_BASE_URL", srv.URL)
	t.Setenv("UPTRACE_ENABLED", "false")

	dir := t.TempDir()
	answers := filepath.Join(dir, "answers.json")
	require.NoError(t, os.WriteFile(answers, []byte(`{"primaryGoal":"","biggestChallenge":"b","workStyle":"c","focusArea":"d"}`), 0o600))

	var stdout, stderr bytes.Buffer
	code := run([]string{"--env-file", filepath.Join(dir, "missing.env"), "submit", "--file", answers}, &stdout, &stderr)
	if code != exitInvalidInput {
		t.Fatalf("unexpected exit code %d, stderr=%s", code, stderr.String())
	}
	if hits != 0 {
		t.Fatalf("expected no backend call, got %d", hits)
	}
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&onboardingapi.TransportError{Op: onboardingapi.OpSubmit, StatusCode: 500}, exitTransport},
		{&onboardingapi.MalformedResponseError{Op: onboardingapi.OpFetchStatus, Reason: "x"}, exitMalformed},
		{onboarding.ErrInvalidInput, exitInvalidInput},
		{os.ErrPermission, exitInternal},
	}
	for _, tc := range cases {
		if got := exitCode(tc.err); got != tc.want {
			t.Fatalf("exitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
