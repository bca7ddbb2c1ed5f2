package health

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultCommandTimeout bounds a single command probe.
const DefaultCommandTimeout = 5 * time.Second

// maxDetail caps how much command output lands in a result detail.
const maxDetail = 256

// DefaultExecPrefix runs a command inside the target container.
var DefaultExecPrefix = []string{"docker", "exec"}

// CommandRunner runs a program and reports its output.
// A non-nil error with exit details must satisfy errors.As(*exec.ExitError)
// for the prober to classify it as Unhealthy.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run starts name with args and waits for it to exit or ctx to end.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// CommandConfig configures a CommandProber.
type CommandConfig struct {
	// Container is the container the command runs in.
	Container string

	// Command is the readiness command, for example pg_isready -U postgres.
	Command []string

	// Prefix is prepended before Container. An empty slice runs Command on
	// the host directly.
	// Default: docker exec
	Prefix []string

	// Timeout bounds the command.
	// Default: 5 seconds
	Timeout time.Duration

	// Runner executes the command.
	// Default: ExecRunner
	Runner CommandRunner
}

// CommandProber checks a service by running a readiness command against its
// container. Exit status zero is Healthy, any other exit is Unhealthy.
type CommandProber struct {
	config CommandConfig
	argv   []string
}

// NewCommandProber creates a command prober.
func NewCommandProber(config CommandConfig) *CommandProber {
	if config.Prefix == nil {
		config.Prefix = DefaultExecPrefix
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultCommandTimeout
	}
	if config.Runner == nil {
		config.Runner = ExecRunner{}
	}

	argv := make([]string, 0, len(config.Prefix)+1+len(config.Command))
	argv = append(argv, config.Prefix...)
	if len(config.Prefix) > 0 {
		argv = append(argv, config.Container)
	}
	argv = append(argv, config.Command...)

	return &CommandProber{config: config, argv: argv}
}

// Argv returns the full command line the prober runs.
func (p *CommandProber) Argv() []string {
	return append([]string(nil), p.argv...)
}

// Probe runs the command.
func (p *CommandProber) Probe(ctx context.Context) Result {
	start := time.Now()

	if len(p.argv) == 0 {
		return finish(Result{Outcome: OutcomeError, Detail: "empty command", Err: ErrProbeConfig}, start)
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	stdout, stderr, err := p.config.Runner.Run(ctx, p.argv[0], p.argv[1:]...)
	if err == nil {
		return finish(Result{Outcome: OutcomeHealthy, Detail: trimDetail(stdout, "ready")}, start)
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return finish(Result{
			Outcome: OutcomeTimeout,
			Detail:  fmt.Sprintf("command timed out after %s", p.config.Timeout),
			Err:     fmt.Errorf("%w: %v", ErrTimeout, err),
		}, start)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		detail := trimDetail(stderr, "")
		if detail == "" {
			detail = trimDetail(stdout, exitErr.Error())
		}
		return finish(Result{
			Outcome: OutcomeUnhealthy,
			Detail:  detail,
			Err:     fmt.Errorf("%w: %v", ErrCommandFailed, err),
		}, start)
	}

	return finish(Result{
		Outcome: OutcomeError,
		Detail:  fmt.Sprintf("command failed to start: %v", err),
		Err:     err,
	}, start)
}

func trimDetail(b []byte, fallback string) string {
	s := strings.TrimSpace(string(b))
	if s == "" {
		return fallback
	}
	if len(s) > maxDetail {
		s = s[:maxDetail]
	}
	return s
}
