package operator

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	operatorsv1 "github.com/operator-framework/api/pkg/operators/v1"
	operatorsv1alpha1 "github.com/operator-framework/api/pkg/operators/v1alpha1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	k8sfake "k8s.io/client-go/kubernetes/fake"
	ctrlclient "sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/controller-runtime/pkg/client/interceptor"

	"github.com/redhatqe/ocp-addons-operators-cli/internal/k8s"
	"github.com/redhatqe/ocp-addons-operators-cli/internal/product"
)

// fakeOLM plays the part of the OLM controllers: catalog sources become
// ready and subscriptions resolve to a CSV in the configured phase.
type fakeOLM struct {
	csvPhase   operatorsv1alpha1.ClusterServiceVersionPhase
	catalogsUp bool
}

func (f *fakeOLM) create(ctx context.Context, c ctrlclient.WithWatch, obj ctrlclient.Object, opts ...ctrlclient.CreateOption) error {
	switch o := obj.(type) {
	case *operatorsv1alpha1.CatalogSource:
		if f.catalogsUp {
			o.Status.GRPCConnectionState = &operatorsv1alpha1.GRPCConnectionState{LastObservedState: catalogReady}
		}
	case *operatorsv1alpha1.Subscription:
		csvName := o.Spec.Package + ".v1.0.0"
		o.Status.InstalledCSV = csvName
		csv := &operatorsv1alpha1.ClusterServiceVersion{
			ObjectMeta: metav1.ObjectMeta{Name: csvName, Namespace: o.Namespace},
			Status: operatorsv1alpha1.ClusterServiceVersionStatus{
				Phase:   f.csvPhase,
				Message: "install strategy failed",
			},
		}
		if err := c.Create(ctx, csv); err != nil {
			return err
		}
	}
	return c.Create(ctx, obj, opts...)
}

func pullSecret() *corev1.Secret {
	return &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Name: k8s.PullSecretName, Namespace: k8s.PullSecretNamespace},
		Type:       corev1.SecretTypeDockerConfigJson,
		Data:       map[string][]byte{corev1.DockerConfigJsonKey: []byte(`{"auths":{}}`)},
	}
}

var _ = Describe("Installer", func() {
	var (
		ctx       context.Context
		olm       *fakeOLM
		client    *k8s.Client
		installer *Installer
		factories int
	)

	newRequest := func(name string) *product.Request {
		return &product.Request{
			Kind:       product.KindOperator,
			Name:       name,
			Kubeconfig: "/tmp/kubeconfig",
			Channel:    product.DefaultChannel,
			Source:     product.DefaultSource,
			Timeout:    5 * time.Second,
		}
	}

	get := func(key ctrlclient.ObjectKey, obj ctrlclient.Object) error {
		return client.Ctrl.Get(ctx, key, obj)
	}

	BeforeEach(func() {
		ctx = logr.NewContext(context.Background(), GinkgoLogr)
		olm = &fakeOLM{csvPhase: operatorsv1alpha1.CSVPhaseSucceeded, catalogsUp: true}

		scheme, err := k8s.NewScheme()
		Expect(err).NotTo(HaveOccurred())

		client = &k8s.Client{
			Clientset: k8sfake.NewSimpleClientset(pullSecret()),
			Ctrl: fake.NewClientBuilder().
				WithScheme(scheme).
				WithInterceptorFuncs(interceptor.Funcs{Create: olm.create}).
				Build(),
			PollInterval: 10 * time.Millisecond,
		}

		factories = 0
		installer = NewInstaller(func(string) (*k8s.Client, error) {
			factories++
			return client, nil
		})
	})

	Context("Prepare", func() {
		It("creates one client per kubeconfig", func() {
			req := newRequest("serverless-operator")

			prepared, err := installer.Prepare(ctx, req)
			Expect(err).NotTo(HaveOccurred())
			Expect(prepared.Target).To(BeAssignableToTypeOf(&Target{}))

			_, err = installer.Prepare(ctx, req)
			Expect(err).NotTo(HaveOccurred())
			Expect(factories).To(Equal(1))
		})
	})

	Context("Install", func() {
		It("subscribes an operator in its own namespace", func() {
			req := newRequest("serverless-operator")
			req.Namespace = "openshift-serverless"
			req.TargetNamespaces = []string{"openshift-serverless"}
			req.Parameters = []product.Param{{Key: "LOG_LEVEL", Value: "debug"}}

			Expect(installer.Run(ctx, req, product.ActionInstall)).To(Succeed())

			By("creating the namespace")
			_, err := client.Clientset.CoreV1().Namespaces().Get(ctx, "openshift-serverless", metav1.GetOptions{})
			Expect(err).NotTo(HaveOccurred())

			By("creating the operator group")
			groups := &operatorsv1.OperatorGroupList{}
			Expect(client.Ctrl.List(ctx, groups, ctrlclient.InNamespace("openshift-serverless"))).To(Succeed())
			Expect(groups.Items).To(HaveLen(1))
			Expect(groups.Items[0].Spec.TargetNamespaces).To(Equal([]string{"openshift-serverless"}))

			By("creating the subscription")
			sub := &operatorsv1alpha1.Subscription{}
			Expect(get(ctrlclient.ObjectKey{Namespace: "openshift-serverless", Name: "serverless-operator"}, sub)).To(Succeed())
			Expect(sub.Spec.Package).To(Equal("serverless-operator"))
			Expect(sub.Spec.Channel).To(Equal("stable"))
			Expect(sub.Spec.CatalogSource).To(Equal("redhat-operators"))
			Expect(sub.Spec.CatalogSourceNamespace).To(Equal(MarketplaceNamespace))
			Expect(sub.Spec.InstallPlanApproval).To(Equal(operatorsv1alpha1.ApprovalAutomatic))
			Expect(sub.Spec.Config.Env).To(ConsistOf(corev1.EnvVar{Name: "LOG_LEVEL", Value: "debug"}))
		})

		It("does not create an operator group in the global namespace", func() {
			req := newRequest("rhods-operator")

			Expect(installer.Run(ctx, req, product.ActionInstall)).To(Succeed())

			groups := &operatorsv1.OperatorGroupList{}
			Expect(client.Ctrl.List(ctx, groups, ctrlclient.InNamespace(GlobalNamespace))).To(Succeed())
			Expect(groups.Items).To(BeEmpty())

			sub := &operatorsv1alpha1.Subscription{}
			Expect(get(ctrlclient.ObjectKey{Namespace: GlobalNamespace, Name: "rhods-operator"}, sub)).To(Succeed())
			Expect(sub.Spec.Config).To(BeNil())
		})

		It("serves an index image override from its own catalog source", func() {
			req := newRequest("rhods-operator").WithOverrideImage("brew.registry.redhat.io/rh-osbs/iib:123456")

			Expect(installer.Run(ctx, req, product.ActionInstall)).To(Succeed())

			cs := &operatorsv1alpha1.CatalogSource{}
			Expect(get(ctrlclient.ObjectKey{Namespace: MarketplaceNamespace, Name: "iib-catalog-rhods-operator"}, cs)).To(Succeed())
			Expect(cs.Spec.Image).To(Equal("brew.registry.redhat.io/rh-osbs/iib:123456"))
			Expect(cs.Spec.SourceType).To(Equal(operatorsv1alpha1.SourceTypeGrpc))

			sub := &operatorsv1alpha1.Subscription{}
			Expect(get(ctrlclient.ObjectKey{Namespace: GlobalNamespace, Name: "rhods-operator"}, sub)).To(Succeed())
			Expect(sub.Spec.CatalogSource).To(Equal("iib-catalog-rhods-operator"))
		})

		It("adds the brew token to the cluster pull secret", func() {
			req := newRequest("rhods-operator")
			req.BrewToken = "YnJldw=="

			Expect(installer.Run(ctx, req, product.ActionInstall)).To(Succeed())

			secret, err := client.Clientset.CoreV1().Secrets(k8s.PullSecretNamespace).Get(ctx, k8s.PullSecretName, metav1.GetOptions{})
			Expect(err).NotTo(HaveOccurred())
			cfg := map[string]map[string]map[string]string{}
			Expect(json.Unmarshal(secret.Data[corev1.DockerConfigJsonKey], &cfg)).To(Succeed())
			Expect(cfg["auths"][k8s.BrewRegistry]["auth"]).To(Equal("YnJldw=="))
		})

		It("fails when the cluster service version fails", func() {
			olm.csvPhase = operatorsv1alpha1.CSVPhaseFailed

			err := installer.Run(ctx, newRequest("rhods-operator"), product.ActionInstall)
			Expect(err).To(MatchError(ErrCSVFailed))
			Expect(err.Error()).To(ContainSubstring("install strategy failed"))
		})

		It("times out when the operator never becomes ready", func() {
			olm.csvPhase = operatorsv1alpha1.CSVPhaseInstalling
			req := newRequest("rhods-operator")
			req.Timeout = 100 * time.Millisecond

			err := installer.Run(ctx, req, product.ActionInstall)
			Expect(err).To(MatchError(ContainSubstring("timed out after 100ms")))
		})

		It("times out when the catalog source never becomes ready", func() {
			olm.catalogsUp = false
			req := newRequest("rhods-operator").WithOverrideImage("brew.registry.redhat.io/rh-osbs/iib:1")
			req.Timeout = 100 * time.Millisecond

			err := installer.Run(ctx, req, product.ActionInstall)
			Expect(err).To(MatchError(ContainSubstring("catalog source iib-catalog-rhods-operator")))
		})

		It("does not wait with a zero timeout", func() {
			olm.csvPhase = operatorsv1alpha1.CSVPhaseInstalling
			olm.catalogsUp = false
			req := newRequest("rhods-operator").WithOverrideImage("brew.registry.redhat.io/rh-osbs/iib:1")
			req.Timeout = 0

			Expect(installer.Run(ctx, req, product.ActionInstall)).To(Succeed())
		})

		It("updates an existing subscription", func() {
			req := newRequest("rhods-operator")
			Expect(installer.Run(ctx, req, product.ActionInstall)).To(Succeed())

			req.Channel = "fast"
			Expect(installer.Run(ctx, req, product.ActionInstall)).To(Succeed())

			sub := &operatorsv1alpha1.Subscription{}
			Expect(get(ctrlclient.ObjectKey{Namespace: GlobalNamespace, Name: "rhods-operator"}, sub)).To(Succeed())
			Expect(sub.Spec.Channel).To(Equal("fast"))
		})
	})

	Context("Uninstall", func() {
		It("removes everything the install created", func() {
			req := newRequest("serverless-operator").WithOverrideImage("brew.registry.redhat.io/rh-osbs/iib:1")
			req.Namespace = "openshift-serverless"
			Expect(installer.Run(ctx, req, product.ActionInstall)).To(Succeed())

			Expect(installer.Run(ctx, req, product.ActionUninstall)).To(Succeed())

			Expect(apierrors.IsNotFound(get(
				ctrlclient.ObjectKey{Namespace: "openshift-serverless", Name: "serverless-operator"},
				&operatorsv1alpha1.Subscription{},
			))).To(BeTrue())
			Expect(apierrors.IsNotFound(get(
				ctrlclient.ObjectKey{Namespace: "openshift-serverless", Name: "serverless-operator.v1.0.0"},
				&operatorsv1alpha1.ClusterServiceVersion{},
			))).To(BeTrue())
			Expect(apierrors.IsNotFound(get(
				ctrlclient.ObjectKey{Namespace: MarketplaceNamespace, Name: "iib-catalog-serverless-operator"},
				&operatorsv1alpha1.CatalogSource{},
			))).To(BeTrue())
			Expect(apierrors.IsNotFound(get(
				ctrlclient.ObjectKey{Namespace: "openshift-serverless", Name: "openshift-serverless"},
				&operatorsv1.OperatorGroup{},
			))).To(BeTrue())

			_, err := client.Clientset.CoreV1().Namespaces().Get(ctx, "openshift-serverless", metav1.GetOptions{})
			Expect(apierrors.IsNotFound(err)).To(BeTrue())
		})

		It("keeps the global namespace", func() {
			req := newRequest("rhods-operator")
			Expect(installer.Run(ctx, req, product.ActionInstall)).To(Succeed())
			Expect(installer.Run(ctx, req, product.ActionUninstall)).To(Succeed())

			_, err := client.Clientset.CoreV1().Namespaces().Get(ctx, GlobalNamespace, metav1.GetOptions{})
			Expect(err).NotTo(HaveOccurred())
		})

		It("fails for an operator that is not subscribed", func() {
			err := installer.Run(ctx, newRequest("rhods-operator"), product.ActionUninstall)
			Expect(err).To(MatchError(ErrSubscriptionNotFound))
		})
	})

	It("rejects unknown actions", func() {
		err := installer.Run(ctx, newRequest("rhods-operator"), product.Action("upgrade"))
		Expect(err).To(MatchError(ContainSubstring("unsupported action")))
	})
})

var _ = DescribeTable("Namespace",
	func(namespace, expected string) {
		Expect(Namespace(&product.Request{Namespace: namespace})).To(Equal(expected))
	},
	Entry("defaults to the global namespace", "", GlobalNamespace),
	Entry("uses the requested namespace", "openshift-serverless", "openshift-serverless"),
)
