// Package ratelimit paces calls to the text-generation service.
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Pacer sleeps a fixed interval between consecutive rows. The delay is a
// courtesy throttle; it does not react to the service's responses.
type Pacer struct {
	delay time.Duration
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPacer returns a Pacer with the given delay. A zero delay never sleeps.
func NewPacer(delay time.Duration) *Pacer {
	return &Pacer{delay: delay, sleep: sleepContext}
}

// Delay returns the configured interval.
func (p *Pacer) Delay() time.Duration {
	return p.delay
}

// Pause blocks for the configured delay. Returns an error if ctx is
// cancelled while waiting.
func (p *Pacer) Pause(ctx context.Context) error {
	if p.delay <= 0 {
		return nil
	}
	return p.sleep(ctx, p.delay)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("pacer wait: %w", ctx.Err())
	case <-t.C:
		return nil
	}
}
