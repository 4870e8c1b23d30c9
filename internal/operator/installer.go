package operator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-logr/logr"

	"github.com/redhatqe/ocp-addons-operators-cli/internal/k8s"
	"github.com/redhatqe/ocp-addons-operators-cli/internal/product"
)

const (
	// GlobalNamespace hosts operators watching all namespaces. Its
	// OperatorGroup is managed by OpenShift.
	GlobalNamespace = "openshift-operators"

	// MarketplaceNamespace hosts the catalog sources.
	MarketplaceNamespace = "openshift-marketplace"

	iibCatalogPrefix = "iib-catalog-"
)

var (
	// ErrCSVFailed is returned when the ClusterServiceVersion of an operator
	// reaches the Failed phase.
	ErrCSVFailed = errors.New("cluster service version failed")
	// ErrSubscriptionNotFound is returned by an uninstall of an operator that
	// is not subscribed.
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// ClientFactory returns the cluster client of a kubeconfig.
type ClientFactory func(kubeconfig string) (*k8s.Client, error)

// Target is the prepared handle of an operator request.
type Target struct {
	Client *k8s.Client
}

// Installer runs operator actions.
type Installer struct {
	newClient ClientFactory

	mu      sync.Mutex
	clients map[string]*k8s.Client
}

// NewInstaller returns an installer creating cluster clients with newClient.
func NewInstaller(newClient ClientFactory) *Installer {
	return &Installer{
		newClient: newClient,
		clients:   map[string]*k8s.Client{},
	}
}

func (i *Installer) client(kubeconfig string) (*k8s.Client, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if c, ok := i.clients[kubeconfig]; ok {
		return c, nil
	}
	c, err := i.newClient(kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create cluster client for %s: %w", kubeconfig, err)
	}
	i.clients[kubeconfig] = c
	return c, nil
}

// Prepare connects to the request's cluster. The returned request carries a
// *Target.
func (i *Installer) Prepare(_ context.Context, req *product.Request) (*product.Request, error) {
	c, err := i.client(req.Kubeconfig)
	if err != nil {
		return nil, err
	}
	return req.WithTarget(&Target{Client: c}), nil
}

// Run installs or uninstalls the operator of req. A zero request timeout
// skips waiting.
func (i *Installer) Run(ctx context.Context, req *product.Request, action product.Action) error {
	target, ok := req.Target.(*Target)
	if !ok {
		prepared, err := i.Prepare(ctx, req)
		if err != nil {
			return err
		}
		target = prepared.Target.(*Target)
	}

	op := &operation{
		client: target.Client,
		req:    req,
		log:    logr.FromContextOrDiscard(ctx),
	}
	switch action {
	case product.ActionInstall:
		return op.install(ctx)
	case product.ActionUninstall:
		return op.uninstall(ctx)
	default:
		return fmt.Errorf("unsupported action %q", action)
	}
}

// Namespace returns the namespace the operator of req is installed in.
func Namespace(req *product.Request) string {
	if req.Namespace != "" {
		return req.Namespace
	}
	return GlobalNamespace
}

// CatalogSourceName returns the name of the catalog source serving the index
// image override of an operator.
func CatalogSourceName(operator string) string {
	return iibCatalogPrefix + operator
}

type operation struct {
	client *k8s.Client
	req    *product.Request
	log    logr.Logger
}

func (o *operation) namespace() string {
	return Namespace(o.req)
}

func (o *operation) ownsNamespace() bool {
	return o.namespace() != GlobalNamespace
}
