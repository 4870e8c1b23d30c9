package addon

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/redhatqe/ocp-addons-operators-cli/internal/platform/ocm"
	"github.com/redhatqe/ocp-addons-operators-cli/internal/product"
)

// RosaRunner carries out add-on mutations through the rosa CLI.
type RosaRunner interface {
	InstallAddon(ctx context.Context, ocmEnv, cluster, addon string, params []ocm.Parameter) error
	UninstallAddon(ctx context.Context, ocmEnv, cluster, addon string) error
}

// Rosa runs the rosa binary. It logs in once per OCM environment.
type Rosa struct {
	// Binary is the rosa executable; "rosa" from PATH when empty.
	Binary string
	Token  string

	mu       sync.Mutex
	loggedIn map[string]bool
}

// NewRosa returns a runner logging in with the offline OCM token.
func NewRosa(binary, token string) *Rosa {
	return &Rosa{Binary: binary, Token: token}
}

// InstallAddon runs "rosa install addon".
func (r *Rosa) InstallAddon(ctx context.Context, ocmEnv, cluster, addon string, params []ocm.Parameter) error {
	if err := r.login(ctx, ocmEnv); err != nil {
		return err
	}
	args := []string{"install", "addon", addon, "--cluster", cluster, "--yes"}
	for _, p := range params {
		args = append(args, "--"+p.ID, p.Value)
	}
	return r.run(ctx, args...)
}

// UninstallAddon runs "rosa uninstall addon".
func (r *Rosa) UninstallAddon(ctx context.Context, ocmEnv, cluster, addon string) error {
	if err := r.login(ctx, ocmEnv); err != nil {
		return err
	}
	return r.run(ctx, "uninstall", "addon", addon, "--cluster", cluster, "--yes")
}

func (r *Rosa) login(ctx context.Context, ocmEnv string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loggedIn[ocmEnv] {
		return nil
	}
	env := "staging"
	if ocmEnv == product.OCMEnvProduction {
		env = "production"
	}
	if err := r.run(ctx, "login", "--env", env, "--token", r.Token); err != nil {
		return err
	}
	if r.loggedIn == nil {
		r.loggedIn = map[string]bool{}
	}
	r.loggedIn[ocmEnv] = true
	return nil
}

func (r *Rosa) run(ctx context.Context, args ...string) error {
	bin := r.Binary
	if bin == "" {
		bin = "rosa"
	}

	// #nosec G204
	cmd := exec.CommandContext(ctx, bin, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("rosa %s failed: %w: %s", args[0], err, strings.TrimSpace(out.String()))
	}
	return nil
}
