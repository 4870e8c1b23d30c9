package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"sigs.k8s.io/yaml"

	"github.com/redhatqe/ocp-addons-operators-cli/internal/dispatch"
)

// Document is the machine-readable report written by WriteFile.
type Document struct {
	Success  bool              `json:"success"`
	Products []ProductReport   `json:"products"`
	Failures map[string]string `json:"failures,omitempty"`
}

// ProductReport is the outcome of one product.
type ProductReport struct {
	Name       string    `json:"name"`
	Kind       string    `json:"kind"`
	Action     string    `json:"action"`
	Success    bool      `json:"success"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Duration   string    `json:"duration"`
	Error      string    `json:"error,omitempty"`
}

// NewDocument builds the report document of a run.
func NewDocument(res Result, outcomes []dispatch.Outcome) Document {
	doc := Document{
		Success:  res.Success,
		Products: make([]ProductReport, 0, len(outcomes)),
	}
	for _, o := range outcomes {
		p := ProductReport{
			Name:       o.Name,
			Kind:       string(o.Kind),
			Action:     string(o.Action),
			Success:    o.Success,
			StartedAt:  o.StartedAt.UTC(),
			FinishedAt: o.FinishedAt.UTC(),
			Duration:   o.Duration().Round(time.Millisecond).String(),
		}
		if o.Err != nil {
			p.Error = o.Err.Error()
		}
		doc.Products = append(doc.Products, p)
	}
	sort.SliceStable(doc.Products, func(i, j int) bool {
		if doc.Products[i].Kind != doc.Products[j].Kind {
			return doc.Products[i].Kind < doc.Products[j].Kind
		}
		return doc.Products[i].Name < doc.Products[j].Name
	})

	if len(res.Failures) > 0 {
		doc.Failures = make(map[string]string, len(res.Failures))
		for name, err := range res.Failures {
			msg := ""
			if err != nil {
				msg = err.Error()
			}
			doc.Failures[name] = msg
		}
	}
	return doc
}

// WriteFile writes the report to path. Files ending in .yaml or .yml are
// written as YAML, everything else as JSON.
func WriteFile(path string, res Result, outcomes []dispatch.Outcome) error {
	doc := NewDocument(res, outcomes)

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(doc)
	default:
		data, err = json.MarshalIndent(doc, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}
