// Package handlers implements the business logic of the CLI commands.
//
// Commands bind flags and delegate here. External clients are created
// through package-level factory variables so tests can replace them.
package handlers
