package addon

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/redhatqe/ocp-addons-operators-cli/internal/platform/ocm"
	"github.com/redhatqe/ocp-addons-operators-cli/internal/product"
)

// BrewTokenParameter is the installation parameter carrying the brew token
// of add-ons that pull from the brew registry.
const BrewTokenParameter = "brew-token"

// managedODH pulls unreleased images from brew when installed on stage.
const managedODH = "managed-odh"

// API is the part of the OCM client used by the installer.
type API interface {
	ClusterID(ctx context.Context, name string) (string, error)
	AddonExists(ctx context.Context, addonID string) (bool, error)
	InstallAddon(ctx context.Context, clusterID, addonID string, params []ocm.Parameter) error
	UninstallAddon(ctx context.Context, clusterID, addonID string) error
	WaitForAddonState(ctx context.Context, clusterID, addonID, state string, timeout time.Duration) error
	WaitForAddonRemoved(ctx context.Context, clusterID, addonID string, timeout time.Duration) error
}

// ClientFactory returns the API client of an OCM environment.
type ClientFactory func(ocmEnv string) (API, error)

// Target is the prepared handle of an add-on request.
type Target struct {
	API       API
	ClusterID string
}

// ErrAddonNotFound is returned by Prepare for an add-on OCM does not know.
var ErrAddonNotFound = errors.New("addon not found")

// Installer runs add-on actions.
type Installer struct {
	newClient ClientFactory
	rosa      RosaRunner

	mu      sync.Mutex
	clients map[string]API
}

// NewInstaller returns an installer creating OCM clients with newClient.
// rosa may be nil when no request uses the rosa path.
func NewInstaller(newClient ClientFactory, rosa RosaRunner) *Installer {
	return &Installer{
		newClient: newClient,
		rosa:      rosa,
		clients:   map[string]API{},
	}
}

func (i *Installer) client(env string) (API, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if c, ok := i.clients[env]; ok {
		return c, nil
	}
	c, err := i.newClient(env)
	if err != nil {
		return nil, fmt.Errorf("failed to create OCM client for %s: %w", env, err)
	}
	i.clients[env] = c
	return c, nil
}

// Prepare resolves the request's cluster and checks that the add-on
// exists. The returned request carries a *Target.
func (i *Installer) Prepare(ctx context.Context, req *product.Request) (*product.Request, error) {
	api, err := i.client(req.OCMEnv)
	if err != nil {
		return nil, err
	}

	clusterID, err := api.ClusterID(ctx, req.ClusterName)
	if err != nil {
		return nil, fmt.Errorf("failed to get cluster %s: %w", req.ClusterName, err)
	}

	exists, err := api.AddonExists(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s (cluster %s)", ErrAddonNotFound, req.Name, req.ClusterName)
	}

	return req.WithTarget(&Target{API: api, ClusterID: clusterID}), nil
}

// Run installs or uninstalls the add-on of req and waits up to the
// request timeout for the result. A zero timeout skips waiting.
func (i *Installer) Run(ctx context.Context, req *product.Request, action product.Action) error {
	target, ok := req.Target.(*Target)
	if !ok {
		prepared, err := i.Prepare(ctx, req)
		if err != nil {
			return err
		}
		target = prepared.Target.(*Target)
	}

	log := logr.FromContextOrDiscard(ctx)
	if req.Rosa && i.rosa == nil {
		return errors.New("rosa was requested but no rosa runner is configured")
	}

	switch action {
	case product.ActionInstall:
		params := Parameters(req)
		log.Info("Installing addon", "rosa", req.Rosa, "parameters", len(params))
		var err error
		if req.Rosa {
			err = i.rosa.InstallAddon(ctx, req.OCMEnv, req.ClusterName, req.Name, params)
		} else {
			err = target.API.InstallAddon(ctx, target.ClusterID, req.Name, params)
		}
		if err != nil {
			return err
		}
		if req.Timeout == 0 {
			return nil
		}
		log.Info("Waiting for addon to be ready", "timeout", req.Timeout.String())
		return target.API.WaitForAddonState(ctx, target.ClusterID, req.Name, ocm.StateReady, req.Timeout)

	case product.ActionUninstall:
		log.Info("Uninstalling addon", "rosa", req.Rosa)
		var err error
		if req.Rosa {
			err = i.rosa.UninstallAddon(ctx, req.OCMEnv, req.ClusterName, req.Name)
		} else {
			err = target.API.UninstallAddon(ctx, target.ClusterID, req.Name)
		}
		if err != nil {
			return err
		}
		if req.Timeout == 0 {
			return nil
		}
		log.Info("Waiting for addon to be removed", "timeout", req.Timeout.String())
		return target.API.WaitForAddonRemoved(ctx, target.ClusterID, req.Name, req.Timeout)

	default:
		return fmt.Errorf("unsupported action %q", action)
	}
}

// Parameters returns the installation parameters of req. The brew token is
// added for managed-odh on stage.
func Parameters(req *product.Request) []ocm.Parameter {
	params := make([]ocm.Parameter, 0, len(req.Parameters)+1)
	for _, p := range req.Parameters {
		params = append(params, ocm.Parameter{ID: p.Key, Value: p.Value})
	}
	if req.Name == managedODH && req.OCMEnv == product.OCMEnvStage && req.BrewToken != "" {
		params = append(params, ocm.Parameter{ID: BrewTokenParameter, Value: req.BrewToken})
	}
	return params
}
