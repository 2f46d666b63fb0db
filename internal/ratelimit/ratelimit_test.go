package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestPause_WaitsForDelay(t *testing.T) {
	p := NewPacer(100 * time.Millisecond)

	start := time.Now()
	if err := p.Pause(context.Background()); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	elapsed := time.Since(start)

	// Allow 80ms for timer jitter.
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait, got %v", elapsed)
	}
}

func TestPause_ZeroDelay(t *testing.T) {
	p := NewPacer(0)

	start := time.Now()
	if err := p.Pause(context.Background()); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("expected near-instant return, got %v", elapsed)
	}
}

func TestPause_ContextCancellation(t *testing.T) {
	p := NewPacer(5 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if err := p.Pause(ctx); err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("cancelled pause took %v", elapsed)
	}
}

func TestPause_UsesInjectedSleep(t *testing.T) {
	p := NewPacer(time.Hour)
	var got time.Duration
	p.sleep = func(_ context.Context, d time.Duration) error {
		got = d
		return nil
	}

	if err := p.Pause(context.Background()); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if got != time.Hour {
		t.Errorf("slept %v, want 1h", got)
	}
	if p.Delay() != time.Hour {
		t.Errorf("Delay() = %v", p.Delay())
	}
}
