package handlers

import (
	"context"
	"io"
	"os"

	"github.com/go-logr/logr"

	"github.com/redhatqe/ocp-addons-operators-cli/internal/config"
	"github.com/redhatqe/ocp-addons-operators-cli/internal/dispatch"
	"github.com/redhatqe/ocp-addons-operators-cli/internal/logging"
	"github.com/redhatqe/ocp-addons-operators-cli/internal/product"
)

// WorkerOptions are the inputs of the hidden worker command.
type WorkerOptions struct {
	Action   string
	Endpoint string
	Debug    bool

	// In carries the JSON request; os.Stdin when nil.
	In io.Reader
	// Err receives the logs; os.Stderr when nil.
	Err io.Writer
}

// Worker runs a single product action on behalf of the process executor.
//
// The request is read from stdin. Credentials come from the environment and
// the target is re-created here. The exit status reports the outcome.
func Worker(ctx context.Context, opts WorkerOptions) error {
	in, errOut := opts.In, opts.Err
	if in == nil {
		in = os.Stdin
	}
	if errOut == nil {
		errOut = os.Stderr
	}

	action, err := product.ParseAction(opts.Action)
	if err != nil {
		return err
	}
	req, err := dispatch.DecodeRequest(in)
	if err != nil {
		return err
	}

	cfg := config.New()
	if opts.Endpoint != "" {
		cfg.Endpoint = opts.Endpoint
	}
	config.LoadEnv(cfg, getenv)
	if req.BrewToken == "" {
		req.BrewToken = cfg.BrewToken
	}

	log := logging.ForRequest(logging.Section(logging.New(errOut, opts.Debug), action.Title()), req)
	ctx = logr.NewContext(ctx, log)

	addons, operators := newInstallers(ctx, cfg, log)
	return route(addons, operators)(ctx, req, action)
}
