package operator

import (
	"context"
	"fmt"

	operatorsv1 "github.com/operator-framework/api/pkg/operators/v1"
	operatorsv1alpha1 "github.com/operator-framework/api/pkg/operators/v1alpha1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	ctrlclient "sigs.k8s.io/controller-runtime/pkg/client"
)

func (o *operation) uninstall(ctx context.Context) error {
	ns := o.namespace()

	sub := &operatorsv1alpha1.Subscription{}
	err := o.client.Ctrl.Get(ctx, ctrlclient.ObjectKey{Namespace: ns, Name: o.req.Name}, sub)
	if apierrors.IsNotFound(err) {
		return fmt.Errorf("%w: %s/%s", ErrSubscriptionNotFound, ns, o.req.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to get subscription %s/%s: %w", ns, o.req.Name, err)
	}

	csvName := sub.Status.InstalledCSV
	if csvName == "" {
		csvName = sub.Status.CurrentCSV
	}

	if err := o.delete(ctx, sub); err != nil {
		return err
	}
	o.log.Info("Deleted subscription", "namespace", ns)

	if csvName != "" {
		csv := &operatorsv1alpha1.ClusterServiceVersion{
			ObjectMeta: metav1.ObjectMeta{Name: csvName, Namespace: ns},
		}
		if err := o.delete(ctx, csv); err != nil {
			return err
		}
		o.log.Info("Deleted cluster service version", "csv", csvName)
	}

	cs := &operatorsv1alpha1.CatalogSource{
		ObjectMeta: metav1.ObjectMeta{Name: CatalogSourceName(o.req.Name), Namespace: MarketplaceNamespace},
	}
	if err := o.delete(ctx, cs); err != nil {
		return err
	}

	if o.ownsNamespace() {
		group := &operatorsv1.OperatorGroup{ObjectMeta: metav1.ObjectMeta{Name: ns, Namespace: ns}}
		if err := o.delete(ctx, group); err != nil {
			return err
		}
		if err := o.client.DeleteNamespace(ctx, ns); err != nil {
			return err
		}
		o.log.Info("Deleted namespace", "namespace", ns)
	}

	if o.req.Timeout == 0 || csvName == "" {
		return nil
	}
	return o.waitForUninstall(ctx, csvName)
}

func (o *operation) delete(ctx context.Context, obj ctrlclient.Object) error {
	err := o.client.Ctrl.Delete(ctx, obj)
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete %T %s/%s: %w", obj, obj.GetNamespace(), obj.GetName(), err)
	}
	return nil
}
