package ocm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

// Add-on installation states.
const (
	StateReady    = "ready"
	StateFailed   = "failed"
	StateDeleting = "deleting"
)

// WaitForAddonState polls until the add-on reaches state or the timeout
// expires. The failed state ends the wait early with ErrAddonFailed.
func (c *Client) WaitForAddonState(ctx context.Context, clusterID, addonID, state string, timeout time.Duration) error {
	var last string
	err := wait.PollUntilContextTimeout(ctx, c.poll, timeout, true, func(ctx context.Context) (bool, error) {
		current, err := c.AddonState(ctx, clusterID, addonID)
		if err != nil {
			if errors.Is(err, ErrAddonNotFound) {
				return false, nil
			}
			return false, err
		}
		if current != last {
			c.log.V(1).Info("Addon state changed", "addon", addonID, "state", current)
			last = current
		}
		if current == StateFailed && state != StateFailed {
			return false, fmt.Errorf("%w: %s", ErrAddonFailed, addonID)
		}
		return current == state, nil
	})
	if err != nil {
		if wait.Interrupted(err) {
			return fmt.Errorf("timed out after %s waiting for addon %s to be %s (last state %q)", timeout, addonID, state, last)
		}
		return err
	}
	return nil
}

// WaitForAddonRemoved polls until the add-on is no longer installed or the
// timeout expires.
func (c *Client) WaitForAddonRemoved(ctx context.Context, clusterID, addonID string, timeout time.Duration) error {
	err := wait.PollUntilContextTimeout(ctx, c.poll, timeout, true, func(ctx context.Context) (bool, error) {
		_, err := c.AddonState(ctx, clusterID, addonID)
		if errors.Is(err, ErrAddonNotFound) {
			return true, nil
		}
		return false, err
	})
	if err != nil {
		if wait.Interrupted(err) {
			return fmt.Errorf("timed out after %s waiting for addon %s to be removed", timeout, addonID)
		}
		return err
	}
	return nil
}
