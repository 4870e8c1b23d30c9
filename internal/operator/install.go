package operator

import (
	"context"
	"fmt"

	operatorsv1 "github.com/operator-framework/api/pkg/operators/v1"
	operatorsv1alpha1 "github.com/operator-framework/api/pkg/operators/v1alpha1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	ctrlclient "sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/redhatqe/ocp-addons-operators-cli/internal/k8s"
)

func (o *operation) install(ctx context.Context) error {
	ns := o.namespace()

	if o.req.BrewToken != "" {
		changed, err := o.client.MergePullSecret(ctx, k8s.BrewRegistry, o.req.BrewToken)
		if err != nil {
			return err
		}
		if changed {
			o.log.Info("Added brew registry credentials to the cluster pull secret")
		}
	}

	created, err := o.client.EnsureNamespace(ctx, ns)
	if err != nil {
		return err
	}
	if created {
		o.log.Info("Created namespace", "namespace", ns)
	}

	if o.ownsNamespace() {
		if err := o.ensureOperatorGroup(ctx); err != nil {
			return err
		}
	}

	source, sourceNamespace := o.req.Source, MarketplaceNamespace
	if o.req.OverrideImage != "" {
		source, err = o.ensureCatalogSource(ctx)
		if err != nil {
			return err
		}
	}

	if err := o.ensureSubscription(ctx, source, sourceNamespace); err != nil {
		return err
	}

	if o.req.Timeout == 0 {
		return nil
	}
	return o.waitForInstall(ctx)
}

func (o *operation) ensureOperatorGroup(ctx context.Context) error {
	ns := o.namespace()

	groups := &operatorsv1.OperatorGroupList{}
	if err := o.client.Ctrl.List(ctx, groups, ctrlclient.InNamespace(ns)); err != nil {
		return fmt.Errorf("failed to list operator groups in %s: %w", ns, err)
	}
	if len(groups.Items) > 0 {
		o.log.V(1).Info("Operator group already present", "operatorGroup", groups.Items[0].Name)
		return nil
	}

	group := &operatorsv1.OperatorGroup{
		ObjectMeta: metav1.ObjectMeta{Name: ns, Namespace: ns},
		Spec:       operatorsv1.OperatorGroupSpec{TargetNamespaces: o.req.TargetNamespaces},
	}
	if err := o.client.Ctrl.Create(ctx, group); err != nil && !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("failed to create operator group %s/%s: %w", ns, group.Name, err)
	}
	o.log.Info("Created operator group", "operatorGroup", group.Name, "targetNamespaces", o.req.TargetNamespaces)
	return nil
}

func (o *operation) ensureCatalogSource(ctx context.Context) (string, error) {
	name := CatalogSourceName(o.req.Name)
	cs := &operatorsv1alpha1.CatalogSource{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: MarketplaceNamespace},
	}

	err := o.client.Ctrl.Get(ctx, ctrlclient.ObjectKeyFromObject(cs), cs)
	switch {
	case apierrors.IsNotFound(err):
		cs.Spec = catalogSourceSpec(o.req.Name, o.req.OverrideImage)
		if err := o.client.Ctrl.Create(ctx, cs); err != nil {
			return "", fmt.Errorf("failed to create catalog source %s: %w", name, err)
		}
		o.log.Info("Created catalog source", "catalogSource", name, "image", o.req.OverrideImage)
	case err != nil:
		return "", fmt.Errorf("failed to get catalog source %s: %w", name, err)
	case cs.Spec.Image != o.req.OverrideImage:
		cs.Spec = catalogSourceSpec(o.req.Name, o.req.OverrideImage)
		if err := o.client.Ctrl.Update(ctx, cs); err != nil {
			return "", fmt.Errorf("failed to update catalog source %s: %w", name, err)
		}
		o.log.Info("Updated catalog source", "catalogSource", name, "image", o.req.OverrideImage)
	}

	if o.req.Timeout > 0 {
		if err := o.waitForCatalogSource(ctx, name); err != nil {
			return "", err
		}
	}
	return name, nil
}

func catalogSourceSpec(operator, image string) operatorsv1alpha1.CatalogSourceSpec {
	return operatorsv1alpha1.CatalogSourceSpec{
		SourceType:  operatorsv1alpha1.SourceTypeGrpc,
		Image:       image,
		DisplayName: CatalogSourceName(operator),
		Publisher:   "Red Hat",
	}
}

func (o *operation) ensureSubscription(ctx context.Context, source, sourceNamespace string) error {
	ns := o.namespace()
	sub := &operatorsv1alpha1.Subscription{
		ObjectMeta: metav1.ObjectMeta{Name: o.req.Name, Namespace: ns},
	}

	spec := &operatorsv1alpha1.SubscriptionSpec{
		CatalogSource:          source,
		CatalogSourceNamespace: sourceNamespace,
		Package:                o.req.Name,
		Channel:                o.req.Channel,
		InstallPlanApproval:    operatorsv1alpha1.ApprovalAutomatic,
	}
	if len(o.req.Parameters) > 0 {
		env := make([]corev1.EnvVar, 0, len(o.req.Parameters))
		for _, p := range o.req.Parameters {
			env = append(env, corev1.EnvVar{Name: p.Key, Value: p.Value})
		}
		spec.Config = &operatorsv1alpha1.SubscriptionConfig{Env: env}
	}

	err := o.client.Ctrl.Get(ctx, ctrlclient.ObjectKeyFromObject(sub), sub)
	switch {
	case apierrors.IsNotFound(err):
		sub.Spec = spec
		if err := o.client.Ctrl.Create(ctx, sub); err != nil {
			return fmt.Errorf("failed to create subscription %s/%s: %w", ns, sub.Name, err)
		}
		o.log.Info("Created subscription", "namespace", ns, "channel", spec.Channel, "source", source)
	case err != nil:
		return fmt.Errorf("failed to get subscription %s/%s: %w", ns, sub.Name, err)
	default:
		sub.Spec = spec
		if err := o.client.Ctrl.Update(ctx, sub); err != nil {
			return fmt.Errorf("failed to update subscription %s/%s: %w", ns, sub.Name, err)
		}
		o.log.Info("Updated subscription", "namespace", ns, "channel", spec.Channel, "source", source)
	}
	return nil
}
