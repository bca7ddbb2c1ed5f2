package health

import (
	"context"
	"errors"
	"os/exec"
	"reflect"
	"strings"
	"testing"
	"time"
)

type fakeRunner struct {
	stdout, stderr string
	err            error
	block          bool

	gotName string
	gotArgs []string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.gotName = name
	f.gotArgs = args
	if f.block {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}
	return []byte(f.stdout), []byte(f.stderr), f.err
}

func TestCommandProber_Argv(t *testing.T) {
	runner := &fakeRunner{stdout: "accepting connections"}
	p := NewCommandProber(CommandConfig{
		Container: "hub-db-1",
		Command:   []string{"pg_isready", "-U", "postgres"},
		Runner:    runner,
	})

	want := []string{"docker", "exec", "hub-db-1", "pg_isready", "-U", "postgres"}
	if got := p.Argv(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Argv() = %v, want %v", got, want)
	}

	r := p.Probe(context.Background())
	if r.Outcome != OutcomeHealthy {
		t.Fatalf("Outcome = %v, want healthy", r.Outcome)
	}
	if r.Detail != "accepting connections" {
		t.Errorf("Detail = %q", r.Detail)
	}
	if runner.gotName != "docker" || !reflect.DeepEqual(runner.gotArgs, want[1:]) {
		t.Errorf("runner got %s %v", runner.gotName, runner.gotArgs)
	}
}

func TestCommandProber_EmptyPrefixRunsOnHost(t *testing.T) {
	p := NewCommandProber(CommandConfig{
		Container: "ignored",
		Command:   []string{"true"},
		Prefix:    []string{},
		Runner:    &fakeRunner{},
	})
	if got := p.Argv(); !reflect.DeepEqual(got, []string{"true"}) {
		t.Fatalf("Argv() = %v, want [true]", got)
	}
}

func TestCommandProber_Outcomes(t *testing.T) {
	tests := []struct {
		name       string
		runner     *fakeRunner
		want       Outcome
		wantErr    error
		wantDetail string
	}{
		{
			name:       "exit zero",
			runner:     &fakeRunner{},
			want:       OutcomeHealthy,
			wantDetail: "ready",
		},
		{
			name:       "non-zero exit uses stderr",
			runner:     &fakeRunner{stderr: "  no response\n", err: &exec.ExitError{}},
			want:       OutcomeUnhealthy,
			wantErr:    ErrCommandFailed,
			wantDetail: "no response",
		},
		{
			name:       "non-zero exit falls back to stdout",
			runner:     &fakeRunner{stdout: "rejecting connections", err: &exec.ExitError{}},
			want:       OutcomeUnhealthy,
			wantErr:    ErrCommandFailed,
			wantDetail: "rejecting connections",
		},
		{
			name:    "failed to start",
			runner:  &fakeRunner{err: exec.ErrNotFound},
			want:    OutcomeError,
			wantErr: exec.ErrNotFound,
		},
		{
			name:    "deadline",
			runner:  &fakeRunner{block: true},
			want:    OutcomeTimeout,
			wantErr: ErrTimeout,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewCommandProber(CommandConfig{
				Container: "hub-db-1",
				Command:   []string{"pg_isready"},
				Timeout:   30 * time.Millisecond,
				Runner:    tt.runner,
			})
			r := p.Probe(context.Background())
			if r.Outcome != tt.want {
				t.Fatalf("Outcome = %v, want %v (detail %q)", r.Outcome, tt.want, r.Detail)
			}
			if tt.wantErr != nil && !errors.Is(r.Err, tt.wantErr) {
				t.Errorf("Err = %v, want %v", r.Err, tt.wantErr)
			}
			if tt.wantDetail != "" && r.Detail != tt.wantDetail {
				t.Errorf("Detail = %q, want %q", r.Detail, tt.wantDetail)
			}
		})
	}
}

func TestCommandProber_TruncatesDetail(t *testing.T) {
	p := NewCommandProber(CommandConfig{
		Container: "c",
		Command:   []string{"x"},
		Runner:    &fakeRunner{stderr: strings.Repeat("e", 1000), err: &exec.ExitError{}},
	})
	if r := p.Probe(context.Background()); len(r.Detail) != maxDetail {
		t.Fatalf("len(Detail) = %d, want %d", len(r.Detail), maxDetail)
	}
}

func TestExecRunner_ExitStatus(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	p := NewCommandProber(CommandConfig{
		Command: []string{"sh", "-c", "echo down >&2; exit 2"},
		Prefix:  []string{},
	})
	r := p.Probe(context.Background())
	if r.Outcome != OutcomeUnhealthy {
		t.Fatalf("Outcome = %v, want unhealthy (detail %q)", r.Outcome, r.Detail)
	}
	if r.Detail != "down" {
		t.Errorf("Detail = %q, want %q", r.Detail, "down")
	}
}
