package handlers

import (
	"sort"

	"github.com/go-logr/logr"

	"github.com/redhatqe/ocp-addons-operators-cli/internal/config"
	"github.com/redhatqe/ocp-addons-operators-cli/internal/product"
)

// verify checks the user input and every operator kubeconfig. All problems
// are reported together in a *config.ConfigurationError.
func verify(cfg *config.RunConfiguration, log logr.Logger) error {
	err := cfg.Validate()
	if err != nil {
		return err
	}

	kubeconfigs := map[string]struct{}{}
	for _, entry := range cfg.OperatorEntries() {
		if path, ok := product.Lookup(entry, product.KeyKubeconfig); ok {
			kubeconfigs[path] = struct{}{}
		}
	}
	paths := make([]string, 0, len(kubeconfigs))
	for path := range kubeconfigs {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	problems := &config.ConfigurationError{}
	for _, path := range paths {
		cluster, err := clusterNameFromKubeconfig(path)
		if err != nil {
			problems.Problems = append(problems.Problems, err)
			continue
		}
		log.V(1).Info("Kubeconfig verified", "kubeconfig", path, "cluster", cluster)
	}
	if len(problems.Problems) > 0 {
		return problems
	}

	log.Info("User input verified",
		"action", string(cfg.Action),
		"addons", len(cfg.Addons),
		"operators", len(cfg.Operators),
		"parallel", cfg.Parallel,
	)
	return nil
}
