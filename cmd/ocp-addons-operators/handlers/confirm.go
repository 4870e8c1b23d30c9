package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

// confirmUninstall asks the user to confirm an uninstall. It can be
// replaced in tests.
var confirmUninstall = func(ctx context.Context, products []string) (bool, error) {
	confirmed := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Uninstall %d products?", len(products))).
				Description(strings.Join(products, "\n")).
				Affirmative("Uninstall").
				Negative("Cancel").
				Value(&confirmed),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		return false, fmt.Errorf("confirmation canceled: %w", err)
	}
	return confirmed, nil
}
