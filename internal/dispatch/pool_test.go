package dispatch

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redhatqe/ocp-addons-operators-cli/internal/product"
)

func TestPoolStrategy_RunsConcurrently(t *testing.T) {
	t.Parallel()

	probe := &concurrencyProbe{}
	fn := func(context.Context, *product.Request, product.Action) error {
		probe.enter()
		defer probe.leave()
		time.Sleep(50 * time.Millisecond)
		return nil
	}

	outcomes, err := (&PoolStrategy{}).Run(context.Background(), requests(product.KindOperator, "a", "b", "c", "d", "e"), product.ActionInstall, fn)
	require.NoError(t, err)

	assert.Len(t, outcomes, 5)
	assert.Equal(t, int32(5), probe.max.Load())
}

func TestPoolStrategy_LimitBoundsConcurrency(t *testing.T) {
	t.Parallel()

	probe := &concurrencyProbe{}
	var ran atomic.Int32
	fn := func(context.Context, *product.Request, product.Action) error {
		probe.enter()
		defer probe.leave()
		ran.Add(1)
		time.Sleep(20 * time.Millisecond)
		return nil
	}

	outcomes, err := (&PoolStrategy{Limit: 2}).Run(context.Background(), requests(product.KindAddon, "a", "b", "c", "d", "e", "f"), product.ActionInstall, fn)
	require.NoError(t, err)

	assert.Len(t, outcomes, 6)
	assert.Equal(t, int32(6), ran.Load())
	assert.LessOrEqual(t, probe.max.Load(), int32(2))
}

func TestPoolStrategy_FailureDoesNotCancelSiblings(t *testing.T) {
	t.Parallel()

	var completed atomic.Int32
	fn := func(ctx context.Context, req *product.Request, _ product.Action) error {
		if req.Name == "fast-fail" {
			return errors.New("fast fail")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
		completed.Add(1)
		return nil
	}

	outcomes, err := (&PoolStrategy{}).Run(context.Background(), requests(product.KindOperator, "fast-fail", "slow-1", "slow-2"), product.ActionInstall, fn)
	require.NoError(t, err)

	assert.Equal(t, int32(2), completed.Load())

	var failed []string
	for _, o := range outcomes {
		if !o.Success {
			failed = append(failed, o.Name)
		}
	}
	sort.Strings(failed)
	assert.Equal(t, []string{"fast-fail"}, failed)
}

func TestPoolStrategy_Empty(t *testing.T) {
	t.Parallel()

	outcomes, err := (&PoolStrategy{}).Run(context.Background(), nil, product.ActionInstall, noop)
	require.NoError(t, err)
	assert.Empty(t, outcomes)
}
