// Package main is the entry point for the ocp-addons-operators CLI.
//
// ocp-addons-operators installs and uninstalls OpenShift managed add-ons
// (through OCM) and OLM operators (through a kubeconfig) in bulk, optionally
// in parallel, and reports the outcome of every product.
//
// For detailed usage information, run:
//
//	ocp-addons-operators --help
package main

import (
	"fmt"
	"os"

	"github.com/redhatqe/ocp-addons-operators-cli/cmd/ocp-addons-operators/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
