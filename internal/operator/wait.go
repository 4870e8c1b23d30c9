package operator

import (
	"context"
	"fmt"
	"time"

	operatorsv1alpha1 "github.com/operator-framework/api/pkg/operators/v1alpha1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/util/wait"
	ctrlclient "sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/redhatqe/ocp-addons-operators-cli/internal/k8s"
)

// catalogReady is the gRPC connection state of a serving catalog source.
const catalogReady = "READY"

func (o *operation) interval() time.Duration {
	if o.client.PollInterval > 0 {
		return o.client.PollInterval
	}
	return k8s.DefaultPollInterval
}

func (o *operation) poll(ctx context.Context, what string, cond wait.ConditionWithContextFunc) error {
	err := wait.PollUntilContextTimeout(ctx, o.interval(), o.req.Timeout, true, cond)
	if err != nil && wait.Interrupted(err) {
		return fmt.Errorf("timed out after %s waiting for %s", o.req.Timeout, what)
	}
	return err
}

func (o *operation) waitForCatalogSource(ctx context.Context, name string) error {
	o.log.Info("Waiting for catalog source to be ready", "catalogSource", name)
	key := ctrlclient.ObjectKey{Namespace: MarketplaceNamespace, Name: name}
	return o.poll(ctx, "catalog source "+name, func(ctx context.Context) (bool, error) {
		cs := &operatorsv1alpha1.CatalogSource{}
		if err := o.client.Ctrl.Get(ctx, key, cs); err != nil {
			return false, nil
		}
		state := cs.Status.GRPCConnectionState
		return state != nil && state.LastObservedState == catalogReady, nil
	})
}

func (o *operation) waitForInstall(ctx context.Context) error {
	ns := o.namespace()
	o.log.Info("Waiting for operator to be installed", "timeout", o.req.Timeout.String())

	var csvName string
	err := o.poll(ctx, "operator "+o.req.Name+" to be installed", func(ctx context.Context) (bool, error) {
		sub := &operatorsv1alpha1.Subscription{}
		if err := o.client.Ctrl.Get(ctx, ctrlclient.ObjectKey{Namespace: ns, Name: o.req.Name}, sub); err != nil {
			return false, nil
		}
		csvName = sub.Status.InstalledCSV
		if csvName == "" {
			return false, nil
		}

		csv := &operatorsv1alpha1.ClusterServiceVersion{}
		if err := o.client.Ctrl.Get(ctx, ctrlclient.ObjectKey{Namespace: ns, Name: csvName}, csv); err != nil {
			return false, nil
		}
		switch csv.Status.Phase {
		case operatorsv1alpha1.CSVPhaseSucceeded:
			return true, nil
		case operatorsv1alpha1.CSVPhaseFailed:
			return false, fmt.Errorf("%w: %s: %s", ErrCSVFailed, csvName, csv.Status.Message)
		}
		o.log.V(1).Info("Cluster service version not ready", "csv", csvName, "phase", csv.Status.Phase)
		return false, nil
	})
	if err != nil {
		return err
	}
	o.log.Info("Operator installed", "csv", csvName)
	return nil
}

func (o *operation) waitForUninstall(ctx context.Context, csvName string) error {
	ns := o.namespace()
	o.log.Info("Waiting for operator to be removed", "csv", csvName, "timeout", o.req.Timeout.String())

	err := o.poll(ctx, "cluster service version "+csvName+" to be deleted", func(ctx context.Context) (bool, error) {
		csv := &operatorsv1alpha1.ClusterServiceVersion{}
		err := o.client.Ctrl.Get(ctx, ctrlclient.ObjectKey{Namespace: ns, Name: csvName}, csv)
		return apierrors.IsNotFound(err), nil
	})
	if err != nil {
		return err
	}

	if o.ownsNamespace() {
		return o.client.WaitForNamespaceDeleted(ctx, ns, o.req.Timeout)
	}
	return nil
}
