package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/redhatqe/ocp-addons-operators-cli/internal/addon"
	"github.com/redhatqe/ocp-addons-operators-cli/internal/config"
	"github.com/redhatqe/ocp-addons-operators-cli/internal/dispatch"
	"github.com/redhatqe/ocp-addons-operators-cli/internal/logging"
	"github.com/redhatqe/ocp-addons-operators-cli/internal/operator"
	"github.com/redhatqe/ocp-addons-operators-cli/internal/product"
	"github.com/redhatqe/ocp-addons-operators-cli/internal/report"
)

var (
	// ErrProductsFailed is returned when at least one product action failed.
	ErrProductsFailed = errors.New("products failed")
	// ErrAborted is returned when the user declines the uninstall.
	ErrAborted = errors.New("aborted by user")
)

// RunOptions are the inputs of the install/uninstall command.
type RunOptions struct {
	// Config holds the values of the command line flags.
	Config     *config.RunConfiguration
	ConfigFile string

	// Addons and Operators are the raw --addon and --operator entries.
	Addons    []string
	Operators []string

	// FlagChanged reports whether a flag was given explicitly.
	FlagChanged func(name string) bool

	// Out receives the report, Err the logs. os.Stdout and os.Stderr when nil.
	Out io.Writer
	Err io.Writer
}

// Run handles the install/uninstall command.
//
// It verifies the user input, normalizes every product, resolves add-on
// clusters and operator index images, runs all actions and prints the
// report. Per-product failures do not stop the run; they are reported and
// turned into ErrProductsFailed at the end.
func Run(ctx context.Context, opts RunOptions) error {
	start := time.Now()

	out, errOut := opts.Out, opts.Err
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	defer func() {
		fmt.Fprintf(out, "Total execution time: %s\n", time.Since(start).Round(time.Second))
	}()

	cfg, err := buildConfiguration(opts)
	if err != nil {
		return err
	}
	log := logging.New(errOut, cfg.Debug)

	if err := verify(cfg, logging.Section(log, "Verify user input")); err != nil {
		return err
	}

	reqs, err := normalize(cfg)
	if err != nil {
		return err
	}

	if cfg.Action == product.ActionUninstall && !cfg.AssumeYes && isInteractive() {
		names := make([]string, 0, len(reqs))
		for _, req := range reqs {
			names = append(names, req.String())
		}
		confirmed, err := confirmUninstall(ctx, names)
		if err != nil {
			return err
		}
		if !confirmed {
			return ErrAborted
		}
	}

	addons, operators := newInstallers(ctx, cfg, log)

	reqs, err = prepare(ctx, logging.Section(log, "Prepare"), reqs, addons, operators)
	if err != nil {
		return err
	}

	if cfg.Action == product.ActionInstall {
		reqs, err = resolveIndexImages(ctx, cfg, logging.Section(log, "IIB"), reqs)
		if err != nil {
			return err
		}
	}

	metrics := report.NewMetrics()
	d := dispatch.New(
		dispatch.WithStrategy(newStrategy(cfg, errOut)),
		dispatch.WithLogger(log),
		dispatch.WithObserver(metrics),
	)
	outcomes, dispatchErr := d.Dispatch(ctx, reqs, cfg.Action, route(addons, operators), cfg.Parallel)

	res := report.Aggregate(outcomes)
	metrics.SetResult(res)

	if err := report.NewReporter(out).Render(res, outcomes); err != nil {
		log.Error(err, "Failed to render report")
	}
	if cfg.ReportFile != "" {
		if err := report.WriteFile(cfg.ReportFile, res, outcomes); err != nil {
			log.Error(err, "Failed to write report file")
		}
	}
	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Error(err, "Failed to write metrics file")
		}
	}

	if dispatchErr != nil {
		return dispatchErr
	}
	if !res.Success {
		return fmt.Errorf("%w: %s", ErrProductsFailed, strings.Join(res.FailedNames(), ", "))
	}
	return nil
}

// buildConfiguration merges the command line, the config file and the
// environment.
func buildConfiguration(opts RunOptions) (*config.RunConfiguration, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.New()
	}

	var err error
	if cfg.Addons, err = parseEntries("--addon", opts.Addons); err != nil {
		return nil, err
	}
	if cfg.Operators, err = parseEntries("--operator", opts.Operators); err != nil {
		return nil, err
	}

	if opts.ConfigFile != "" {
		file, err := loadConfigFile(opts.ConfigFile)
		if err != nil {
			return nil, err
		}
		changed := opts.FlagChanged
		if changed == nil {
			changed = func(string) bool { return false }
		}
		file.Apply(cfg, changed)
	}

	config.LoadEnv(cfg, getenv)

	if action, err := product.ParseAction(string(cfg.Action)); err == nil {
		cfg.Action = action
	}
	return cfg, nil
}

func parseEntries(flag string, raw []string) ([][]product.Param, error) {
	entries := make([][]product.Param, 0, len(raw))
	for _, r := range raw {
		entry, err := product.ParseEntry(r)
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", flag, r, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func normalize(cfg *config.RunConfiguration) ([]*product.Request, error) {
	var reqs []*product.Request
	for _, entry := range cfg.OperatorEntries() {
		req, err := product.Normalize(product.KindOperator, cfg.Action, entry, product.ControlKeys(product.KindOperator))
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	for _, entry := range cfg.AddonEntries() {
		req, err := product.Normalize(product.KindAddon, cfg.Action, entry, product.ControlKeys(product.KindAddon))
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// prepare attaches the target of every request. Any failure aborts the run
// before a product is touched.
func prepare(ctx context.Context, log logr.Logger, reqs []*product.Request, addons *addon.Installer, operators *operator.Installer) ([]*product.Request, error) {
	prepared := make([]*product.Request, 0, len(reqs))
	var errs []error
	for _, req := range reqs {
		var (
			p   *product.Request
			err error
		)
		switch req.Kind {
		case product.KindAddon:
			p, err = addons.Prepare(ctx, req)
		case product.KindOperator:
			p, err = operators.Prepare(ctx, req)
		default:
			err = fmt.Errorf("unknown product kind %q", req.Kind)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", req, err))
			continue
		}
		logging.ForRequest(log, p).V(1).Info("Prepared")
		prepared = append(prepared, p)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return prepared, nil
}

func route(addons *addon.Installer, operators *operator.Installer) dispatch.ActionFunc {
	return func(ctx context.Context, req *product.Request, action product.Action) error {
		switch req.Kind {
		case product.KindAddon:
			return addons.Run(ctx, req, action)
		case product.KindOperator:
			return operators.Run(ctx, req, action)
		default:
			return fmt.Errorf("unknown product kind %q", req.Kind)
		}
	}
}

func newStrategy(cfg *config.RunConfiguration, output io.Writer) dispatch.Strategy {
	if cfg.Executor != config.ExecutorProcess {
		return &dispatch.PoolStrategy{Limit: cfg.MaxWorkers}
	}

	args := []string{"worker", "--endpoint", cfg.Endpoint}
	if cfg.Debug {
		args = append(args, "--debug")
	}
	env := append(os.Environ(),
		config.EnvOCMToken+"="+cfg.OCMToken,
		config.EnvBrewToken+"="+cfg.BrewToken,
	)
	return &dispatch.ProcessStrategy{Args: args, Env: env, Output: output}
}
