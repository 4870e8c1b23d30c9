package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

// Config holds retry configuration.
type Config struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	// OnRetry is called before sleeping after a failed attempt.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// Option is a functional option for retry configuration.
type Option func(*Config)

func newConfig(opts []Option) Config {
	cfg := Config{
		MaxRetries:   3,
		InitialDelay: 2 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// backoff returns the delay sequence of cfg. Once the cap is reached every
// further step returns the cap.
func (c Config) backoff() wait.Backoff {
	return wait.Backoff{
		Duration: c.InitialDelay,
		Factor:   c.Multiplier,
		Steps:    c.MaxRetries,
		Cap:      c.MaxDelay,
	}
}

// WithExponentialBackoff runs operation until it succeeds, returns an error
// marked with Fatal, or has failed MaxRetries+1 times. The delay between
// attempts grows by Multiplier up to MaxDelay. Canceling ctx interrupts the
// wait.
func WithExponentialBackoff(ctx context.Context, operation func(context.Context) error, opts ...Option) error {
	cfg := newConfig(opts)
	backoff := cfg.backoff()

	for attempt := 1; ; attempt++ {
		err := operation(ctx)
		switch {
		case err == nil:
			return nil
		case IsFatal(err):
			return err
		case attempt > cfg.MaxRetries:
			return fmt.Errorf("operation failed after %d attempts: %w", attempt, err)
		}

		delay := backoff.Step()
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, delay, err)
		}
		if err := sleep(ctx, delay); err != nil {
			return fmt.Errorf("context cancelled after %d attempts: %w", attempt, err)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// WithMaxRetries sets how often a failed operation is retried.
func WithMaxRetries(n int) Option {
	return func(c *Config) { c.MaxRetries = n }
}

// WithInitialDelay sets the delay before the first retry.
func WithInitialDelay(d time.Duration) Option {
	return func(c *Config) { c.InitialDelay = d }
}

// WithMaxDelay caps the delay between retries.
func WithMaxDelay(d time.Duration) Option {
	return func(c *Config) { c.MaxDelay = d }
}

// WithOnRetry registers a callback invoked before every retry sleep.
func WithOnRetry(fn func(attempt int, delay time.Duration, err error)) Option {
	return func(c *Config) { c.OnRetry = fn }
}

type fatalError struct {
	err error
}

func (e *fatalError) Error() string { return e.err.Error() }

func (e *fatalError) Unwrap() error { return e.err }

// Fatal marks err as not worth retrying. A nil err stays nil.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &fatalError{err: err}
}

// IsFatal reports whether err, or an error it wraps, was marked with Fatal.
func IsFatal(err error) bool {
	var fatal *fatalError
	return errors.As(err, &fatal)
}
