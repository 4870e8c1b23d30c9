package handlers

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/redhatqe/ocp-addons-operators-cli/internal/config"
	"github.com/redhatqe/ocp-addons-operators-cli/internal/iib"
	"github.com/redhatqe/ocp-addons-operators-cli/internal/operator"
	"github.com/redhatqe/ocp-addons-operators-cli/internal/product"
)

// resolveIndexImages sets the override image of every operator without an
// explicit iib from the IIB index. Without a job name the index is not
// consulted.
func resolveIndexImages(ctx context.Context, cfg *config.RunConfiguration, log logr.Logger, reqs []*product.Request) ([]*product.Request, error) {
	if cfg.JobName == "" {
		log.V(1).Info("No job name, operators are installed from their catalog")
		return reqs, nil
	}

	source, err := newIndexSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	resolver := iib.NewResolver(source, log)

	versions := map[string]string{}
	out := make([]*product.Request, 0, len(reqs))
	for _, req := range reqs {
		if req.Kind != product.KindOperator || req.OverrideImage != "" {
			out = append(out, req)
			continue
		}

		version, err := clusterVersion(ctx, cfg, req, versions)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", req, err)
		}

		image, err := resolver.Resolve(ctx, req.Name, "", version, cfg.JobName)
		if err != nil {
			return nil, err
		}
		if image != "" {
			req = req.WithOverrideImage(image)
		}
		out = append(out, req)
	}
	return out, nil
}

// clusterVersion returns OCP_VERSION when set, the version reported by the
// operator's cluster otherwise.
func clusterVersion(ctx context.Context, cfg *config.RunConfiguration, req *product.Request, cache map[string]string) (string, error) {
	if cfg.ClusterVersion != "" {
		return cfg.ClusterVersion, nil
	}
	if v, ok := cache[req.Kubeconfig]; ok {
		return v, nil
	}

	target, ok := req.Target.(*operator.Target)
	if !ok {
		return "", fmt.Errorf("no cluster connection for %s", req.Kubeconfig)
	}
	v, err := target.Client.ClusterVersion(ctx)
	if err != nil {
		return "", err
	}
	cache[req.Kubeconfig] = v
	return v, nil
}
