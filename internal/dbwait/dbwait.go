// Package dbwait blocks until the database answers a ping.
package dbwait

import (
	"context"
	"fmt"
	"io"
	"time"
)

// DefaultInterval is the pause between attempts.
const DefaultInterval = time.Second

// Pinger reports whether the database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function such as (*sql.DB).PingContext to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// Wait pings until p succeeds, writing progress to out. It returns the
// number of failed attempts, or ctx's error if ctx ends first.
func Wait(ctx context.Context, p Pinger, interval time.Duration, out io.Writer) (int, error) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if out == nil {
		out = io.Discard
	}

	fmt.Fprintln(out, "Waiting for database...")

	failures := 0
	for {
		if err := p.Ping(ctx); err == nil {
			fmt.Fprintln(out, "Database available!")
			return failures, nil
		}
		failures++
		fmt.Fprintf(out, "Database unavailable, waiting %s...\n", interval)

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return failures, ctx.Err()
		case <-timer.C:
		}
	}
}
