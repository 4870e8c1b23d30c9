package handlers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	operatorsv1alpha1 "github.com/operator-framework/api/pkg/operators/v1alpha1"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	dynfake "k8s.io/client-go/dynamic/fake"
	k8sfake "k8s.io/client-go/kubernetes/fake"
	ctrlclient "sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/controller-runtime/pkg/client/interceptor"

	"github.com/redhatqe/ocp-addons-operators-cli/internal/addon"
	"github.com/redhatqe/ocp-addons-operators-cli/internal/config"
	"github.com/redhatqe/ocp-addons-operators-cli/internal/k8s"
	"github.com/redhatqe/ocp-addons-operators-cli/internal/platform/ocm"
)

// fakeOCM is an in-memory OCM with one cluster.
type fakeOCM struct {
	mu sync.Mutex

	installErr error
	installed  []string
	removed    []string
}

func (f *fakeOCM) ClusterID(_ context.Context, name string) (string, error) {
	if name != "my-cluster" {
		return "", ocm.ErrClusterNotFound
	}
	return "c1", nil
}

func (f *fakeOCM) AddonExists(context.Context, string) (bool, error) { return true, nil }

func (f *fakeOCM) InstallAddon(_ context.Context, _, addonID string, _ []ocm.Parameter) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.installed = append(f.installed, addonID)
	return f.installErr
}

func (f *fakeOCM) UninstallAddon(_ context.Context, _, addonID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, addonID)
	return nil
}

func (f *fakeOCM) WaitForAddonState(context.Context, string, string, string, time.Duration) error {
	return nil
}

func (f *fakeOCM) WaitForAddonRemoved(context.Context, string, string, time.Duration) error {
	return nil
}

// newFakeCluster returns a cluster client whose OLM resolves every
// subscription to a succeeded CSV.
func newFakeCluster(t *testing.T, version string) *k8s.Client {
	t.Helper()

	scheme, err := k8s.NewScheme()
	require.NoError(t, err)

	create := func(ctx context.Context, c ctrlclient.WithWatch, obj ctrlclient.Object, opts ...ctrlclient.CreateOption) error {
		switch o := obj.(type) {
		case *operatorsv1alpha1.CatalogSource:
			o.Status.GRPCConnectionState = &operatorsv1alpha1.GRPCConnectionState{LastObservedState: "READY"}
		case *operatorsv1alpha1.Subscription:
			o.Status.InstalledCSV = o.Spec.Package + ".v1"
			csv := &operatorsv1alpha1.ClusterServiceVersion{
				ObjectMeta: metav1.ObjectMeta{Name: o.Status.InstalledCSV, Namespace: o.Namespace},
				Status:     operatorsv1alpha1.ClusterServiceVersionStatus{Phase: operatorsv1alpha1.CSVPhaseSucceeded},
			}
			if err := c.Create(ctx, csv); err != nil {
				return err
			}
		}
		return c.Create(ctx, obj, opts...)
	}

	cv := &unstructured.Unstructured{Object: map[string]any{
		"apiVersion": "config.openshift.io/v1",
		"kind":       "ClusterVersion",
		"metadata":   map[string]any{"name": "version"},
		"status":     map[string]any{"desired": map[string]any{"version": version}},
	}}

	return &k8s.Client{
		Clientset: k8sfake.NewSimpleClientset(),
		Dynamic: dynfake.NewSimpleDynamicClientWithCustomListKinds(runtime.NewScheme(),
			map[schema.GroupVersionResource]string{k8s.ClusterVersionGVR: "ClusterVersionList"}, cv),
		Ctrl: fake.NewClientBuilder().
			WithScheme(scheme).
			WithInterceptorFuncs(interceptor.Funcs{Create: create}).
			Build(),
		PollInterval: 5 * time.Millisecond,
	}
}

type fakeEnv map[string]string

func (e fakeEnv) get(key string) string { return e[key] }

// stubClients replaces every factory variable for the duration of a test.
func stubClients(t *testing.T, api addon.API, cluster *k8s.Client, env fakeEnv) {
	t.Helper()

	origLoad := loadConfigFile
	origClusterName := clusterNameFromKubeconfig
	origKube := newKubeClient
	origOCM := newOCMClient
	origRosa := newRosaRunner
	origDownloader := newObjectDownloader
	origInteractive := isInteractive
	origConfirm := confirmUninstall
	origGetenv := getenv
	t.Cleanup(func() {
		loadConfigFile = origLoad
		clusterNameFromKubeconfig = origClusterName
		newKubeClient = origKube
		newOCMClient = origOCM
		newRosaRunner = origRosa
		newObjectDownloader = origDownloader
		isInteractive = origInteractive
		confirmUninstall = origConfirm
		getenv = origGetenv
	})

	clusterNameFromKubeconfig = func(string) (string, error) { return "api-test-cluster", nil }
	newKubeClient = func(string) (*k8s.Client, error) {
		if cluster == nil {
			return nil, errors.New("no cluster")
		}
		return cluster, nil
	}
	newOCMClient = func(context.Context, *config.RunConfiguration, string, logr.Logger) (addon.API, error) {
		return api, nil
	}
	newRosaRunner = func(*config.RunConfiguration) addon.RosaRunner { return nil }
	isInteractive = func() bool { return false }
	confirmUninstall = func(context.Context, []string) (bool, error) {
		t.Fatal("unexpected confirmation prompt")
		return false, nil
	}
	getenv = env.get
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
