package dispatch

import (
	"context"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/redhatqe/ocp-addons-operators-cli/internal/product"
)

// PoolStrategy runs every request in its own goroutine inside this process.
// A panicking action is recovered into a failed Outcome; it never takes the
// pool down.
type PoolStrategy struct {
	// Limit bounds the number of concurrently running requests. Zero or
	// less means no bound.
	Limit int
}

func (p *PoolStrategy) Name() string {
	return "pool"
}

// Run starts all requests and waits for every one of them to finish. A
// failing request does not cancel its siblings.
func (p *PoolStrategy) Run(ctx context.Context, reqs []*product.Request, action product.Action, fn ActionFunc) ([]Outcome, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	log := logr.FromContextOrDiscard(ctx)
	results := make(chan Outcome, len(reqs))

	var g errgroup.Group
	if p.Limit > 0 {
		g.SetLimit(p.Limit)
	}

	for _, req := range reqs {
		g.Go(func() error {
			results <- execute(ctx, log, req, action, fn)
			return nil
		})
	}

	_ = g.Wait()
	close(results)

	outcomes := make([]Outcome, 0, len(reqs))
	for o := range results {
		outcomes = append(outcomes, o)
	}
	return outcomes, nil
}
