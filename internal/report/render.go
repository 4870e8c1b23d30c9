package report

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/redhatqe/ocp-addons-operators-cli/internal/dispatch"
)

// Reporter renders the final report of a run.
type Reporter struct {
	out   io.Writer
	color bool
}

// NewReporter returns a Reporter writing to w. Colors are enabled when w is
// a terminal.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{out: w, color: isTerminal(w)}
}

// WithColor forces colored output on or off.
func (r *Reporter) WithColor(color bool) *Reporter {
	r.color = color
	return r
}

// Render writes one table row per outcome followed by the verdict and the
// list of failures.
func (r *Reporter) Render(res Result, outcomes []dispatch.Outcome) error {
	var buf bytes.Buffer

	buf.WriteString(r.style(titleStyle, "Results"))
	buf.WriteString("\n")

	if len(outcomes) > 0 {
		buf.Write(r.table(outcomes))
		buf.WriteString("\n")
	}

	switch {
	case res.Success:
		buf.WriteString(r.style(successStyle, fmt.Sprintf("All %d products succeeded", len(outcomes))))
		buf.WriteString("\n")
	default:
		buf.WriteString(r.style(failedStyle, fmt.Sprintf("%d of %d products failed", len(res.Failures), len(outcomes))))
		buf.WriteString("\n")
		for _, name := range res.FailedNames() {
			fmt.Fprintf(&buf, "  %s: %v\n", name, res.Failures[name])
		}
	}

	_, err := r.out.Write(buf.Bytes())
	return err
}

func (r *Reporter) table(outcomes []dispatch.Outcome) []byte {
	sorted := make([]dispatch.Outcome, len(outcomes))
	copy(sorted, outcomes)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Kind != sorted[j].Kind {
			return sorted[i].Kind < sorted[j].Kind
		}
		return sorted[i].Name < sorted[j].Name
	})

	var buf bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.AppendHeader(table.Row{"Name", "Kind", "Action", "Status", "Duration", "Error"})
	for _, o := range sorted {
		status := r.style(successStyle, statusSucceeded)
		errText := ""
		if !o.Success {
			status = r.style(failedStyle, statusFailed)
			if o.Err != nil {
				errText = o.Err.Error()
			}
		}
		t.AppendRow(table.Row{
			o.Name,
			string(o.Kind),
			string(o.Action),
			status,
			r.style(dimStyle, o.Duration().Round(time.Second).String()),
			errText,
		})
	}
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Render()
	return buf.Bytes()
}

func (r *Reporter) style(s lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return s.Render(text)
}
