package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/redhatqe/ocp-addons-operators-cli/internal/product"
)

// ConfigurationError collects every problem found in a RunConfiguration.
type ConfigurationError struct {
	Problems []error
}

func (e *ConfigurationError) Error() string {
	msgs := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		msgs = append(msgs, p.Error())
	}
	return "invalid configuration: " + strings.Join(msgs, "; ")
}

func (e *ConfigurationError) Unwrap() []error {
	return e.Problems
}

func (e *ConfigurationError) add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Errorf(format, args...))
}

// ErrNoProducts is reported when neither add-ons nor operators were requested.
var ErrNoProducts = errors.New("at least one --operator or --addon must be provided")

// Validate checks the configuration before any product is touched and
// returns a *ConfigurationError listing every problem.
func (c *RunConfiguration) Validate() error {
	e := &ConfigurationError{}

	if _, err := product.ParseAction(string(c.Action)); err != nil {
		e.Problems = append(e.Problems, err)
	}

	if !c.HasAddons() && !c.HasOperators() {
		e.Problems = append(e.Problems, ErrNoProducts)
	}

	c.validateAddons(e)
	c.validateOperators(e)
	c.validateIIB(e)

	switch c.Executor {
	case ExecutorPool, ExecutorProcess:
	default:
		e.add("unsupported executor %q, supported: %s, %s", c.Executor, ExecutorPool, ExecutorProcess)
	}
	if c.MaxWorkers < 0 {
		e.add("max-workers must not be negative, got %d", c.MaxWorkers)
	}

	if len(e.Problems) > 0 {
		return e
	}
	return nil
}

func (c *RunConfiguration) validateAddons(e *ConfigurationError) {
	if !c.HasAddons() {
		return
	}
	if c.OCMToken == "" {
		e.add("--ocm-token is required for addon installation")
	}

	var missingCluster, wrongEnv, missingBrew []string
	for _, entry := range c.AddonEntries() {
		name, _ := product.Lookup(entry, product.KeyName)
		if v, _ := product.Lookup(entry, product.KeyClusterName); v == "" {
			missingCluster = append(missingCluster, name)
		}

		env, ok := product.Lookup(entry, product.KeyOCMEnv)
		if ok && env != product.OCMEnvStage && env != product.OCMEnvProduction {
			wrongEnv = append(wrongEnv, name)
		}
		if !ok {
			env = product.OCMEnvStage
		}

		if c.Action == product.ActionInstall && name == ManagedODHAddon && env == product.OCMEnvStage {
			if v, _ := product.Lookup(entry, product.KeyBrewToken); v == "" {
				missingBrew = append(missingBrew, name)
			}
		}
	}

	if len(missingCluster) > 0 {
		e.add("addons %v: cluster-name is missing, either add it to the addon config or pass --cluster-name", missingCluster)
	}
	if len(wrongEnv) > 0 {
		e.add("addons %v: wrong OCM environment, supported: %s, %s", wrongEnv, product.OCMEnvStage, product.OCMEnvProduction)
	}
	if len(missingBrew) > 0 {
		e.add("addons %v: --brew-token is required to install on stage", missingBrew)
	}
}

func (c *RunConfiguration) validateOperators(e *ConfigurationError) {
	if !c.HasOperators() {
		return
	}

	var missing, notFound []string
	for _, entry := range c.OperatorEntries() {
		name, _ := product.Lookup(entry, product.KeyName)
		kubeconfig, _ := product.Lookup(entry, product.KeyKubeconfig)
		if kubeconfig == "" {
			missing = append(missing, name)
			continue
		}
		if _, err := os.Stat(kubeconfig); err != nil {
			notFound = append(notFound, name)
		}
	}

	if len(missing) > 0 {
		e.add("operators %v: kubeconfig is missing, either add it to the operator config or pass --kubeconfig", missing)
	}
	if len(notFound) > 0 {
		e.add("operators %v: kubeconfig file does not exist", notFound)
	}
}

func (c *RunConfiguration) validateIIB(e *ConfigurationError) {
	sources := 0
	if c.IIB.File != "" {
		sources++
	}
	if c.IIB.S3Bucket != "" || c.IIB.S3Key != "" {
		sources++
		if c.IIB.S3Bucket == "" || c.IIB.S3Key == "" {
			e.add("both --iib-s3-bucket and --iib-s3-key are required for the S3 IIB source")
		}
	}
	if c.IIB.URL != "" {
		sources++
	}
	if sources > 1 {
		e.add("only one IIB source may be configured: --iib-file, --iib-s3-bucket/--iib-s3-key or --iib-url")
	}
}
