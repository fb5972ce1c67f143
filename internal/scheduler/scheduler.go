// Package scheduler runs the periodic backup loop.
package scheduler

import (
	"context"
	"fmt"
	"time"

	sgErrors "github.com/javanhut/simplegit/internal/errors"
	"github.com/javanhut/simplegit/internal/eventlog"
)

// Trigger performs one backup attempt.
type Trigger interface {
	Trigger(ctx context.Context) error
}

// TriggerFunc adapts a function to Trigger.
type TriggerFunc func(ctx context.Context) error

func (f TriggerFunc) Trigger(ctx context.Context) error { return f(ctx) }

// Loop waits Interval between backup attempts until its context is cancelled.
type Loop struct {
	Interval time.Duration
	Trigger  Trigger
	Log      eventlog.Logger
	// OnError is called with every failed attempt, after it is logged.
	OnError func(error)
	// MaxFailures stops the loop after that many consecutive failures.
	// Zero keeps retrying forever.
	MaxFailures int
}

// Fatal reports whether a tick error must stop the loop.
func Fatal(err error) bool {
	return sgErrors.Is(err, sgErrors.ErrNotInitialized)
}

// Run blocks until ctx is cancelled or an attempt fails fatally. The first
// attempt happens one interval after Run is called. Cancellation returns
// ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	if l.Interval <= 0 {
		return fmt.Errorf("backup interval must be positive, got %s", l.Interval)
	}
	log := l.Log
	if log == nil {
		log = eventlog.Nop
	}

	ticker := time.NewTicker(l.Interval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			log.Log("Backup loop stopped")
			return ctx.Err()

		case <-ticker.C:
			err := l.Trigger.Trigger(ctx)
			if err == nil {
				failures = 0
				continue
			}
			if Fatal(err) {
				eventlog.Logf(log, "Backup loop aborted: %v", err)
				return err
			}
			failures++
			eventlog.Logf(log, "Error in backup cycle: %v", err)
			if l.OnError != nil {
				l.OnError(err)
			}
			if l.MaxFailures > 0 && failures >= l.MaxFailures {
				return fmt.Errorf("backup loop gave up after %d consecutive failures: %w", failures, err)
			}
		}
	}
}

// Run is shorthand for a Loop without a failure limit.
func Run(ctx context.Context, interval time.Duration, trigger Trigger, log eventlog.Logger) error {
	l := &Loop{Interval: interval, Trigger: trigger, Log: log}
	return l.Run(ctx)
}
