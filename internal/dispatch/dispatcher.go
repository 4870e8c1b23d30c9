package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/redhatqe/ocp-addons-operators-cli/internal/logging"
	"github.com/redhatqe/ocp-addons-operators-cli/internal/product"
)

// ActionFunc installs or uninstalls one product. It is expected to honor
// the request's timeout; the dispatcher imposes none. ctx carries a logger
// tagged with the request (logr.FromContextOrDiscard).
type ActionFunc func(ctx context.Context, req *product.Request, action product.Action) error

// Strategy runs requests concurrently and joins all of them. The logger of
// the batch is carried by ctx (logr.FromContextOrDiscard).
type Strategy interface {
	Name() string
	Run(ctx context.Context, reqs []*product.Request, action product.Action, fn ActionFunc) ([]Outcome, error)
}

// Observer is notified of every outcome once the batch has been joined.
type Observer interface {
	Observe(Outcome)
}

// Dispatcher fans out product actions and captures one Outcome per request.
type Dispatcher struct {
	strategy Strategy
	log      logr.Logger
	observer Observer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithStrategy sets the parallel execution strategy (PoolStrategy by default).
func WithStrategy(s Strategy) Option {
	return func(d *Dispatcher) {
		d.strategy = s
	}
}

// WithLogger sets the dispatcher logger.
func WithLogger(log logr.Logger) Option {
	return func(d *Dispatcher) {
		d.log = log
	}
}

// WithObserver registers an outcome observer.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) {
		d.observer = o
	}
}

// New returns a Dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		strategy: &PoolStrategy{},
		log:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// EffectiveParallel reports whether a batch of count requests runs in
// parallel. A single request always runs sequentially.
func EffectiveParallel(parallel bool, count int) bool {
	return parallel && count > 1
}

// Dispatch runs fn for every request.
//
// Sequential dispatch keeps input order and runs every request even when an
// earlier one fails. Parallel dispatch delegates to the strategy and returns
// outcomes in completion order. Per-request failures are only reported in
// the outcomes; the returned error is reserved for a *SchedulingFault, in
// which case the outcomes of the requests that did run are returned as well.
func (d *Dispatcher) Dispatch(ctx context.Context, reqs []*product.Request, action product.Action, fn ActionFunc, parallel bool) ([]Outcome, error) {
	if fn == nil {
		return nil, &SchedulingFault{Err: errors.New("no action function")}
	}
	for i, req := range reqs {
		if req == nil {
			return nil, &SchedulingFault{Err: fmt.Errorf("request %d is nil", i)}
		}
	}

	parallel = EffectiveParallel(parallel, len(reqs))
	log := logging.Section(d.log, action.Title())
	for _, req := range reqs {
		logging.ForRequest(log, req).Info("Queued", "parallel", parallel)
	}

	var (
		outcomes []Outcome
		err      error
	)
	if parallel {
		log.V(1).Info("Running in parallel", "strategy", d.strategy.Name(), "requests", len(reqs))
		outcomes, err = d.strategy.Run(logr.NewContext(ctx, log), reqs, action, fn)
	} else {
		outcomes = make([]Outcome, 0, len(reqs))
		for _, req := range reqs {
			outcomes = append(outcomes, execute(ctx, log, req, action, fn))
		}
	}

	if d.observer != nil {
		for _, o := range outcomes {
			d.observer.Observe(o)
		}
	}
	return outcomes, err
}

// execute runs fn for req, converting a returned error or a panic into a
// failed Outcome.
func execute(ctx context.Context, log logr.Logger, req *product.Request, action product.Action, fn ActionFunc) (out Outcome) {
	log = logging.ForRequest(log, req)
	ctx = logr.NewContext(ctx, log)
	out = Outcome{Name: req.Name, Kind: req.Kind, Action: action, StartedAt: time.Now()}

	defer func() {
		if r := recover(); r != nil {
			out.Success = false
			out.Err = &ActionError{Name: req.Name, Kind: req.Kind, Action: action, Err: fmt.Errorf("panic: %v", r)}
		}
		out.FinishedAt = time.Now()
		logOutcome(log, out)
	}()

	log.Info("Started")
	if err := fn(ctx, req, action); err != nil {
		out.Err = &ActionError{Name: req.Name, Kind: req.Kind, Action: action, Err: err}
		return out
	}
	out.Success = true
	return out
}

func logOutcome(log logr.Logger, o Outcome) {
	if o.Success {
		log.Info("Succeeded", "duration", o.Duration().Round(time.Second).String())
		return
	}
	log.Error(o.Err, "Failed", "duration", o.Duration().Round(time.Second).String())
}
