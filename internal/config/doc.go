// Package config defines the run configuration of ocp-addons-operators.
//
// A [RunConfiguration] is assembled once per invocation from command-line
// flags, an optional YAML file ([LoadFile]) and the environment
// ([LoadEnv]), validated with [RunConfiguration.Validate] and then passed
// down explicitly. Nothing in this package reads or writes process-wide
// state after construction.
package config
