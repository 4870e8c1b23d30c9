package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/redhatqe/ocp-addons-operators-cli/internal/product"
)

// Flag names shared by the command line and FileConfig.Apply.
const (
	FlagAction      = "action"
	FlagParallel    = "parallel"
	FlagExecutor    = "executor"
	FlagMaxWorkers  = "max-workers"
	FlagClusterName = "cluster-name"
	FlagKubeconfig  = "kubeconfig"
	FlagEndpoint    = "endpoint"
	FlagIIBFile     = "iib-file"
	FlagIIBS3Bucket = "iib-s3-bucket"
	FlagIIBS3Key    = "iib-s3-key"
	FlagIIBURL      = "iib-url"
	FlagReportFile  = "report-file"
	FlagMetricsFile = "metrics-file"
)

// FileConfig is the content of a --config YAML file.
//
//	action: install
//	parallel: true
//	cluster_name: my-cluster
//	kubeconfig: /path/to/kubeconfig
//	operators:
//	  - name: serverless-operator
//	    namespace: openshift-serverless
//	    timeout: 30m
//	addons:
//	  - name: ocm-addon-test-operator
//	    has-external-resources: "false"
//	  - "name=managed-odh;notification-email=me@example.com"
type FileConfig struct {
	Action      string        `mapstructure:"action" yaml:"action"`
	Parallel    *bool         `mapstructure:"parallel" yaml:"parallel"`
	Executor    string        `mapstructure:"executor" yaml:"executor"`
	MaxWorkers  *int          `mapstructure:"max_workers" yaml:"max_workers"`
	ClusterName string        `mapstructure:"cluster_name" yaml:"cluster_name"`
	Kubeconfig  string        `mapstructure:"kubeconfig" yaml:"kubeconfig"`
	Endpoint    string        `mapstructure:"endpoint" yaml:"endpoint"`
	IIB         IIBFileConfig `mapstructure:"iib" yaml:"iib"`
	ReportFile  string        `mapstructure:"report_file" yaml:"report_file"`
	MetricsFile string        `mapstructure:"metrics_file" yaml:"metrics_file"`

	// Product entries keep the key order of the file.
	Addons    [][]product.Param `mapstructure:"-" yaml:"-"`
	Operators [][]product.Param `mapstructure:"-" yaml:"-"`
}

// IIBFileConfig is the iib section of a FileConfig.
type IIBFileConfig struct {
	File     string `mapstructure:"file" yaml:"file"`
	S3Bucket string `mapstructure:"s3_bucket" yaml:"s3_bucket"`
	S3Key    string `mapstructure:"s3_key" yaml:"s3_key"`
	URL      string `mapstructure:"url" yaml:"url"`
}

// LoadFile reads and parses a YAML configuration file.
func LoadFile(path string) (*FileConfig, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses the content of a YAML configuration file.
func Parse(data []byte) (*FileConfig, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	var cfg FileConfig
	if len(root.Content) == 0 {
		return &cfg, nil
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("config file must be a mapping, got %s", nodeKind(doc))
	}

	var rawConfig map[string]interface{}
	if err := doc.Decode(&rawConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(rawConfig); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, value := doc.Content[i].Value, doc.Content[i+1]
		switch key {
		case "addons":
			cfg.Addons, err = decodeEntries(key, value)
		case "operators":
			cfg.Operators, err = decodeEntries(key, value)
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

func decodeEntries(section string, node *yaml.Node) ([][]product.Param, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%s must be a list, got %s", section, nodeKind(node))
	}

	entries := make([][]product.Param, 0, len(node.Content))
	for i, item := range node.Content {
		var (
			entry []product.Param
			err   error
		)
		switch item.Kind {
		case yaml.ScalarNode:
			entry, err = product.ParseEntry(item.Value)
		case yaml.MappingNode:
			entry, err = decodeMapping(item)
		default:
			err = fmt.Errorf("expected a mapping or a string, got %s", nodeKind(item))
		}
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", section, i, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func decodeMapping(node *yaml.Node) ([]product.Param, error) {
	params := make([]product.Param, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]

		var v string
		switch value.Kind {
		case yaml.ScalarNode:
			v = value.Value
		case yaml.SequenceNode:
			items := make([]string, 0, len(value.Content))
			for _, item := range value.Content {
				if item.Kind != yaml.ScalarNode {
					return nil, fmt.Errorf("%s: list items must be scalars", key.Value)
				}
				items = append(items, item.Value)
			}
			v = strings.Join(items, ",")
		default:
			return nil, fmt.Errorf("%s: unsupported value of kind %s", key.Value, nodeKind(value))
		}
		params = append(params, product.Param{Key: strings.TrimSpace(key.Value), Value: strings.TrimSpace(v)})
	}
	return params, nil
}

func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "list"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}

// Apply merges the file into c. isSet reports whether a flag was given
// explicitly; explicit flags win over the file. Products from the command
// line replace the file's list of the same kind.
func (f *FileConfig) Apply(c *RunConfiguration, isSet func(flag string) bool) {
	str := func(flag string, dst *string, v string) {
		if v != "" && !isSet(flag) {
			*dst = v
		}
	}

	if f.Action != "" && !isSet(FlagAction) {
		c.Action = product.Action(strings.ToLower(strings.TrimSpace(f.Action)))
	}
	if f.Parallel != nil && !isSet(FlagParallel) {
		c.Parallel = *f.Parallel
	}
	if f.Executor != "" && !isSet(FlagExecutor) {
		c.Executor = Executor(f.Executor)
	}
	if f.MaxWorkers != nil && !isSet(FlagMaxWorkers) {
		c.MaxWorkers = *f.MaxWorkers
	}

	str(FlagClusterName, &c.ClusterName, f.ClusterName)
	str(FlagKubeconfig, &c.Kubeconfig, f.Kubeconfig)
	str(FlagEndpoint, &c.Endpoint, f.Endpoint)
	str(FlagIIBFile, &c.IIB.File, f.IIB.File)
	str(FlagIIBS3Bucket, &c.IIB.S3Bucket, f.IIB.S3Bucket)
	str(FlagIIBS3Key, &c.IIB.S3Key, f.IIB.S3Key)
	str(FlagIIBURL, &c.IIB.URL, f.IIB.URL)
	str(FlagReportFile, &c.ReportFile, f.ReportFile)
	str(FlagMetricsFile, &c.MetricsFile, f.MetricsFile)

	if len(c.Addons) == 0 {
		c.Addons = f.Addons
	}
	if len(c.Operators) == 0 {
		c.Operators = f.Operators
	}
}
