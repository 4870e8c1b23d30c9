package config

import (
	"github.com/redhatqe/ocp-addons-operators-cli/internal/product"
)

// Executor selects how parallel batches are run.
type Executor string

const (
	// ExecutorPool runs products as goroutines in this process.
	ExecutorPool Executor = "pool"
	// ExecutorProcess runs every product in its own worker process.
	ExecutorProcess Executor = "process"
)

// IIBSourceKind identifies where the IIB index is loaded from.
type IIBSourceKind string

const (
	IIBSourceURL  IIBSourceKind = "url"
	IIBSourceFile IIBSourceKind = "file"
	IIBSourceS3   IIBSourceKind = "s3"
)

// RunConfiguration is everything a single invocation needs.
type RunConfiguration struct {
	Action     product.Action
	Parallel   bool
	Executor   Executor
	MaxWorkers int

	OCMToken  string
	BrewToken string
	// Endpoint is the SSO token URL.
	Endpoint string

	ClusterName string
	Kubeconfig  string

	// Addons and Operators are the raw product entries in input order.
	Addons    [][]product.Param
	Operators [][]product.Param

	// JobName and ClusterVersion are the IIB index coordinates. JobName is
	// only set when installing from IIB was requested.
	JobName        string
	ClusterVersion string

	IIB IIBConfig
	S3  S3Config

	ReportFile  string
	MetricsFile string

	Debug     bool
	AssumeYes bool

	Timeouts *Timeouts
}

// IIBConfig holds the mutually exclusive IIB index locations.
type IIBConfig struct {
	File     string
	S3Bucket string
	S3Key    string
	URL      string
}

// S3Config holds the object storage settings used by the S3 index source.
type S3Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// New returns a configuration with defaults applied.
func New() *RunConfiguration {
	return &RunConfiguration{
		Executor: ExecutorPool,
		Endpoint: DefaultSSOTokenURL,
		Timeouts: LoadTimeouts(),
	}
}

// Source reports which IIB index source is configured. Without an
// explicit file or bucket the index is fetched over HTTP.
func (i IIBConfig) Source() IIBSourceKind {
	switch {
	case i.File != "":
		return IIBSourceFile
	case i.S3Bucket != "" || i.S3Key != "":
		return IIBSourceS3
	default:
		return IIBSourceURL
	}
}

// HasAddons reports whether any add-on was requested.
func (c *RunConfiguration) HasAddons() bool {
	return len(c.Addons) > 0
}

// HasOperators reports whether any operator was requested.
func (c *RunConfiguration) HasOperators() bool {
	return len(c.Operators) > 0
}

// AddonEntries returns the add-on entries with the run-wide cluster name
// and brew token filled in where an entry does not set them.
func (c *RunConfiguration) AddonEntries() [][]product.Param {
	out := make([][]product.Param, 0, len(c.Addons))
	for _, entry := range c.Addons {
		entry = product.SetDefault(entry, product.KeyClusterName, c.ClusterName)
		entry = product.SetDefault(entry, product.KeyBrewToken, c.BrewToken)
		out = append(out, entry)
	}
	return out
}

// OperatorEntries returns the operator entries with the run-wide
// kubeconfig and brew token filled in where an entry does not set them.
func (c *RunConfiguration) OperatorEntries() [][]product.Param {
	out := make([][]product.Param, 0, len(c.Operators))
	for _, entry := range c.Operators {
		entry = product.SetDefault(entry, product.KeyKubeconfig, c.Kubeconfig)
		entry = product.SetDefault(entry, product.KeyBrewToken, c.BrewToken)
		out = append(out, entry)
	}
	return out
}

// OCMBaseURL returns the API URL of an OCM environment.
func OCMBaseURL(env string) string {
	if env == product.OCMEnvProduction {
		return OCMProductionURL
	}
	return OCMStageURL
}
