package report

import (
	"sort"

	"github.com/redhatqe/ocp-addons-operators-cli/internal/dispatch"
	"github.com/redhatqe/ocp-addons-operators-cli/internal/product"
)

// Result is the verdict of a batch.
type Result struct {
	Success bool
	// Failures maps each failed product to its captured error. The key is
	// the product name, or "<kind>/<name>" when the name was requested
	// under both kinds.
	Failures map[string]error
}

// Aggregate collapses outcomes into a Result. It performs no I/O.
func Aggregate(outcomes []dispatch.Outcome) Result {
	kindsByName := make(map[string]map[product.Kind]struct{}, len(outcomes))
	for _, o := range outcomes {
		if kindsByName[o.Name] == nil {
			kindsByName[o.Name] = map[product.Kind]struct{}{}
		}
		kindsByName[o.Name][o.Kind] = struct{}{}
	}

	failures := map[string]error{}
	for _, o := range outcomes {
		if o.Success {
			continue
		}
		key := o.Name
		if len(kindsByName[o.Name]) > 1 {
			key = string(o.Kind) + "/" + o.Name
		}
		failures[key] = o.Err
	}

	return Result{
		Success:  len(failures) == 0,
		Failures: failures,
	}
}

// FailedNames returns the failure keys in sorted order.
func (r Result) FailedNames() []string {
	names := make([]string, 0, len(r.Failures))
	for name := range r.Failures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
