package cache

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonwraymond/fleetwatch/observe"
)

func TestJanitor_DefaultInterval(t *testing.T) {
	j := NewJanitor(NewMemoryStore(DefaultPolicy()), JanitorConfig{})
	if j.Interval() != 300*time.Second {
		t.Errorf("Interval() = %v, want 300s", j.Interval())
	}
}

func TestJanitor_SweepNow(t *testing.T) {
	var logs bytes.Buffer
	s, clock := newTestStore()
	j := NewJanitor(s, JanitorConfig{Telemetry: observe.Telemetry{
		Logger: observe.NewLoggerWithWriter("info", &logs),
	}})

	_ = s.Set("health_a", 1, 5*time.Second)
	_ = s.Set("health_b", 2, time.Hour)
	clock.Advance(time.Minute)

	if n := j.SweepNow(context.Background()); n != 1 {
		t.Errorf("SweepNow() = %d, want 1", n)
	}
	if !strings.Contains(logs.String(), `"removed":1`) {
		t.Errorf("sweep count not logged: %s", logs.String())
	}
	if _, ok := s.Peek("health_b"); !ok {
		t.Error("unexpired entry removed")
	}
}

func TestJanitor_SweepsOnTicker(t *testing.T) {
	s, clock := newTestStore()
	_ = s.Set("health_gone", 1, time.Second)
	clock.Advance(time.Minute)

	j := NewJanitor(s, JanitorConfig{Interval: 5 * time.Millisecond})
	if err := j.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer j.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := s.Peek("health_gone"); !ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("janitor never swept the expired entry")
}

func TestJanitor_StartTwice(t *testing.T) {
	j := NewJanitor(NewMemoryStore(DefaultPolicy()), JanitorConfig{Interval: time.Hour})
	if err := j.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer j.Stop()

	if err := j.Start(context.Background()); !errors.Is(err, ErrJanitorRunning) {
		t.Errorf("second Start() = %v, want %v", err, ErrJanitorRunning)
	}
}

func TestJanitor_StopWaitsAndIsIdempotent(t *testing.T) {
	j := NewJanitor(NewMemoryStore(DefaultPolicy()), JanitorConfig{Interval: time.Millisecond})

	j.Stop() // never started

	if err := j.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	done := j.done

	j.Stop()
	select {
	case <-done:
	default:
		t.Fatal("Stop returned before the sweep goroutine exited")
	}
	j.Stop()

	// A stopped janitor can be started again.
	if err := j.Start(context.Background()); err != nil {
		t.Errorf("restart error = %v", err)
	}
	j.Stop()
}

func TestJanitor_ContextCancelStopsLoop(t *testing.T) {
	j := NewJanitor(NewMemoryStore(DefaultPolicy()), JanitorConfig{Interval: time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	if err := j.Start(ctx); err != nil {
		t.Fatal(err)
	}
	done := j.done
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("goroutine did not exit on context cancel")
	}
	j.Stop()
}
