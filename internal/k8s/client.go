// Package k8s provides the Kubernetes client used to install operators on an
// OpenShift cluster.
package k8s

import (
	"context"
	"errors"
	"fmt"
	"time"

	operatorsv1 "github.com/operator-framework/api/pkg/operators/v1"
	operatorsv1alpha1 "github.com/operator-framework/api/pkg/operators/v1alpha1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	kscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	ctrlclient "sigs.k8s.io/controller-runtime/pkg/client"
)

// DefaultPollInterval is the interval between two status checks.
const DefaultPollInterval = 5 * time.Second

// ClusterVersionGVR is the OpenShift ClusterVersion resource.
var ClusterVersionGVR = schema.GroupVersionResource{
	Group:    "config.openshift.io",
	Version:  "v1",
	Resource: "clusterversions",
}

// ErrKubeconfigClusters is returned when a kubeconfig does not hold exactly
// one cluster.
var ErrKubeconfigClusters = errors.New("kubeconfig must contain exactly one cluster")

// Client wraps the clients needed to manage operators on one cluster.
type Client struct {
	Clientset kubernetes.Interface
	Dynamic   dynamic.Interface
	// Ctrl is a controller-runtime client whose scheme knows the OLM types.
	Ctrl ctrlclient.Client

	PollInterval time.Duration
}

// NewScheme returns a scheme with the core and OLM types registered.
func NewScheme() (*runtime.Scheme, error) {
	scheme := runtime.NewScheme()
	builder := runtime.NewSchemeBuilder(
		kscheme.AddToScheme,
		operatorsv1alpha1.AddToScheme,
		operatorsv1.AddToScheme,
	)
	if err := builder.AddToScheme(scheme); err != nil {
		return nil, fmt.Errorf("failed to build scheme: %w", err)
	}
	return scheme, nil
}

// NewClient creates a new Kubernetes client from a kubeconfig file.
func NewClient(kubeconfigPath string) (*Client, error) {
	config, err := clientcmd.BuildConfigFromFlags("", kubeconfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to build kubeconfig: %w", err)
	}
	return NewClientFromConfig(config)
}

// NewClientFromConfig creates a new Kubernetes client from a REST config.
func NewClientFromConfig(config *rest.Config) (*Client, error) {
	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}

	dynamicClient, err := dynamic.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}

	scheme, err := NewScheme()
	if err != nil {
		return nil, err
	}
	ctrl, err := ctrlclient.New(config, ctrlclient.Options{Scheme: scheme})
	if err != nil {
		return nil, fmt.Errorf("failed to create controller-runtime client: %w", err)
	}

	return &Client{
		Clientset:    clientset,
		Dynamic:      dynamicClient,
		Ctrl:         ctrl,
		PollInterval: DefaultPollInterval,
	}, nil
}

// ClusterNameFromKubeconfig returns the name of the only cluster of a
// kubeconfig file.
func ClusterNameFromKubeconfig(path string) (string, error) {
	cfg, err := clientcmd.LoadFromFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to load kubeconfig %s: %w", path, err)
	}
	if len(cfg.Clusters) != 1 {
		return "", fmt.Errorf("%w, %s has %d", ErrKubeconfigClusters, path, len(cfg.Clusters))
	}
	for name := range cfg.Clusters {
		return name, nil
	}
	return "", nil
}

// ClusterVersion returns the desired OpenShift version of the cluster, or ""
// when the cluster has no ClusterVersion or it carries no desired version.
func (c *Client) ClusterVersion(ctx context.Context) (string, error) {
	cv, err := c.Dynamic.Resource(ClusterVersionGVR).Get(ctx, "version", metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get cluster version: %w", err)
	}

	version, found, err := unstructured.NestedString(cv.Object, "status", "desired", "version")
	if err != nil {
		return "", fmt.Errorf("failed to read cluster version: %w", err)
	}
	if !found {
		return "", nil
	}
	return version, nil
}

func (c *Client) pollInterval() time.Duration {
	if c.PollInterval > 0 {
		return c.PollInterval
	}
	return DefaultPollInterval
}
