package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/redhatqe/ocp-addons-operators-cli/internal/product"
)

func TestNew_Defaults(t *testing.T) {
	c := New()

	assert.Equal(t, ExecutorPool, c.Executor)
	assert.Equal(t, DefaultSSOTokenURL, c.Endpoint)
	assert.NotNil(t, c.Timeouts)
	assert.Equal(t, IIBSourceURL, c.IIB.Source())
}

func TestEntries_FillRunWideSettings(t *testing.T) {
	t.Parallel()

	c := &RunConfiguration{
		ClusterName: "run-cluster",
		Kubeconfig:  "/run/kubeconfig",
		BrewToken:   "brew",
		Addons: [][]product.Param{
			{{Key: "name", Value: "a"}},
			{{Key: "name", Value: "b"}, {Key: "cluster-name", Value: "own"}},
		},
		Operators: [][]product.Param{
			{{Key: "name", Value: "op"}, {Key: "kubeconfig", Value: "/own"}},
		},
	}

	addons := c.AddonEntries()
	v, _ := product.Lookup(addons[0], product.KeyClusterName)
	assert.Equal(t, "run-cluster", v)
	v, _ = product.Lookup(addons[1], product.KeyClusterName)
	assert.Equal(t, "own", v)
	v, _ = product.Lookup(addons[0], product.KeyBrewToken)
	assert.Equal(t, "brew", v)

	operators := c.OperatorEntries()
	v, _ = product.Lookup(operators[0], product.KeyKubeconfig)
	assert.Equal(t, "/own", v)

	assert.Len(t, c.Addons[0], 1, "raw entries are not modified")
}

func TestOCMBaseURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, OCMProductionURL, OCMBaseURL(product.OCMEnvProduction))
	assert.Equal(t, OCMStageURL, OCMBaseURL(product.OCMEnvStage))
	assert.Equal(t, OCMStageURL, OCMBaseURL(""))
}
