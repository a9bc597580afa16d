package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	flags "github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/riskibarqy/onboarding-client/external/onboardingapi"
	"github.com/riskibarqy/onboarding-client/internal/app"
	"github.com/riskibarqy/onboarding-client/internal/config"
	"github.com/riskibarqy/onboarding-client/internal/domain/onboarding"
)

const (
	exitOK = iota
	exitUsage
	exitTransport
	exitMalformed
	exitInvalidInput
	exitInternal
)

type globalOptions struct {
	EnvFile string `long:"env-file" description:"dotenv file loaded before reading the environment" default:".env"`
}

type statusCommand struct {
	probe *probe
}

type submitCommand struct {
	File           string `long:"file" short:"f" description:"answers file, JSON or YAML" required:"true"`
	SkipValidation bool   `long:"skip-validation" description:"send the answers without local validation"`

	probe *probe
}

type probe struct {
	opts   globalOptions
	stdout io.Writer
	stderr io.Writer
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(argv []string, stdout, stderr io.Writer) int {
	p := &probe{stdout: stdout, stderr: stderr}
	parser := flags.NewParser(&p.opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "onboarding-probe"

	if _, err := parser.AddCommand("status", "Fetch onboarding status",
		"Fetch the current onboarding status once and print it as JSON.", &statusCommand{probe: p}); err != nil {
		fmt.Fprintf(stderr, "register status command: %v\n", err)
		return exitInternal
	}
	if _, err := parser.AddCommand("submit", "Submit onboarding answers",
		"Submit onboarding answers from a file once and print the acknowledgement.", &submitCommand{probe: p}); err != nil {
		fmt.Fprintf(stderr, "register submit command: %v\n", err)
		return exitInternal
	}

	_, err := parser.ParseArgs(argv)
	if err == nil {
		return exitOK
	}

	var flagsErr *flags.Error
	if errors.As(err, &flagsErr) {
		if flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(stdout, flagsErr.Message)
			return exitOK
		}
		fmt.Fprintln(stderr, flagsErr.Message)
		return exitUsage
	}

	fmt.Fprintf(stderr, "onboarding-probe: %v\n", err)
	return exitCode(err)
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, onboardingapi.ErrTransport):
		return exitTransport
	case errors.Is(err, onboardingapi.ErrMalformedResponse):
		return exitMalformed
	case errors.Is(err, onboarding.ErrInvalidInput):
		return exitInvalidInput
	default:
		return exitInternal
	}
}

func (c *statusCommand) Execute(_ []string) error {
	return c.probe.withClient(func(ctx context.Context, client *onboardingapi.Client) error {
		status, err := client.FetchStatus(ctx)
		if err != nil {
			return err
		}
		state := onboarding.ResolveFlowState(status, nil)

		encoded, err := status.MarshalJSON()
		if err != nil {
			return fmt.Errorf("encode status: %w", err)
		}
		fmt.Fprintf(c.probe.stdout, "{\"flowState\":%q,\"status\":%s}\n", state, encoded)
		return nil
	})
}

func (c *submitCommand) Execute(_ []string) error {
	data, err := readAnswers(c.File)
	if err != nil {
		return err
	}

	return c.probe.withClient(func(ctx context.Context, client *onboardingapi.Client) error {
		if !c.SkipValidation {
			if err := data.Validate(ctx); err != nil {
				return err
			}
		}

		ack, err := client.Submit(ctx, data)
		if err != nil {
			return err
		}

		if len(ack) == 0 {
			fmt.Fprintln(c.probe.stdout, "{\"acknowledgement\":null}")
			return nil
		}
		fmt.Fprintf(c.probe.stdout, "{\"acknowledgement\":%s}\n", ack)
		return nil
	})
}

func (p *probe) withClient(fn func(context.Context, *onboardingapi.Client) error) error {
	if err := godotenv.Load(p.opts.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load env file %s: %w", p.opts.EnvFile, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a, err := app.New(cfg, p.stderr)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Close(shutdownCtx); err != nil {
			a.Logger.Warn("close app", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return fn(ctx, a.Client)
}
