// Package logging builds the logr.Logger handed to every component.
package logging

import (
	"io"
	"log/slog"

	"github.com/go-logr/logr"

	"github.com/redhatqe/ocp-addons-operators-cli/internal/product"
)

// DebugLevel is the logr verbosity used for request/response level detail.
const DebugLevel = 1

// New returns a text logger writing to w. Debug enables V(DebugLevel) lines.
func New(w io.Writer, debug bool) logr.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return logr.FromSlogHandler(handler)
}

// Section returns a logger tagged with a workflow section such as
// "Verify user input" or "Install".
func Section(log logr.Logger, section string) logr.Logger {
	return log.WithValues("section", section)
}

// ForRequest returns a logger tagged with the request's identity.
func ForRequest(log logr.Logger, req *product.Request) logr.Logger {
	log = log.WithValues("kind", string(req.Kind), "product", req.Name)
	if req.ClusterName != "" {
		log = log.WithValues("cluster", req.ClusterName)
	}
	return log
}
