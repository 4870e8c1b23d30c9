package handlers

import (
	"context"
	"net/http"
	"os"

	"github.com/go-logr/logr"
	"github.com/mattn/go-isatty"

	"github.com/redhatqe/ocp-addons-operators-cli/internal/addon"
	"github.com/redhatqe/ocp-addons-operators-cli/internal/config"
	"github.com/redhatqe/ocp-addons-operators-cli/internal/iib"
	"github.com/redhatqe/ocp-addons-operators-cli/internal/k8s"
	"github.com/redhatqe/ocp-addons-operators-cli/internal/operator"
	"github.com/redhatqe/ocp-addons-operators-cli/internal/platform/ocm"
	"github.com/redhatqe/ocp-addons-operators-cli/internal/platform/s3"
	"github.com/redhatqe/ocp-addons-operators-cli/internal/util/retry"
)

// Factory function variables - can be replaced in tests.
var (
	// loadConfigFile reads a --config YAML file.
	loadConfigFile = config.LoadFile

	// clusterNameFromKubeconfig returns the only cluster of a kubeconfig.
	clusterNameFromKubeconfig = k8s.ClusterNameFromKubeconfig

	// newKubeClient connects to the cluster of a kubeconfig.
	newKubeClient = func(kubeconfig string) (*k8s.Client, error) {
		return k8s.NewClient(kubeconfig)
	}

	// newOCMClient creates the OCM client of an environment.
	newOCMClient = func(ctx context.Context, cfg *config.RunConfiguration, env string, log logr.Logger) (addon.API, error) {
		return ocm.NewClient(ctx, config.OCMBaseURL(env), cfg.Endpoint, cfg.OCMToken,
			ocm.WithHTTPTimeout(cfg.Timeouts.HTTPRequest),
			ocm.WithPollInterval(cfg.Timeouts.AddonPoll),
			ocm.WithRetry(retryOptions(cfg)...),
			ocm.WithLogger(log),
		), nil
	}

	// newRosaRunner returns the rosa CLI wrapper.
	newRosaRunner = func(cfg *config.RunConfiguration) addon.RosaRunner {
		return addon.NewRosa("", cfg.OCMToken)
	}

	// newObjectDownloader creates the S3 client of the IIB index source.
	newObjectDownloader = func(ctx context.Context, cfg config.S3Config) (iib.ObjectDownloader, error) {
		return s3.NewClient(ctx, s3.Options{
			Endpoint:        cfg.Endpoint,
			Region:          cfg.Region,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
		})
	}

	// isInteractive reports whether the user can answer a prompt.
	isInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
	}

	// getenv reads the process environment.
	getenv = os.Getenv
)

func retryOptions(cfg *config.RunConfiguration) []retry.Option {
	return []retry.Option{
		retry.WithMaxRetries(cfg.Timeouts.RetryMaxAttempts),
		retry.WithInitialDelay(cfg.Timeouts.RetryInitialDelay),
	}
}

// newInstallers returns the add-on and operator installers of a run.
func newInstallers(ctx context.Context, cfg *config.RunConfiguration, log logr.Logger) (*addon.Installer, *operator.Installer) {
	addons := addon.NewInstaller(func(env string) (addon.API, error) {
		return newOCMClient(ctx, cfg, env, log.WithName("ocm"))
	}, newRosaRunner(cfg))

	operators := operator.NewInstaller(func(kubeconfig string) (*k8s.Client, error) {
		c, err := newKubeClient(kubeconfig)
		if err != nil {
			return nil, err
		}
		c.PollInterval = cfg.Timeouts.OperatorPoll
		return c, nil
	})

	return addons, operators
}

// newIndexSource returns the configured IIB index source.
func newIndexSource(ctx context.Context, cfg *config.RunConfiguration) (iib.Source, error) {
	switch cfg.IIB.Source() {
	case config.IIBSourceFile:
		return &iib.FileSource{Path: cfg.IIB.File}, nil
	case config.IIBSourceS3:
		downloader, err := newObjectDownloader(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return &iib.S3Source{Bucket: cfg.IIB.S3Bucket, Key: cfg.IIB.S3Key, Client: downloader}, nil
	default:
		url := cfg.IIB.URL
		if url == "" {
			url = iib.DefaultIndexURL
		}
		return &iib.HTTPSource{
			URL:    url,
			Client: &http.Client{Timeout: cfg.Timeouts.HTTPRequest},
			Retry:  retryOptions(cfg),
		}, nil
	}
}
