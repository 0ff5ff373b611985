package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/bianoble/snipsync/internal/engine"
)

// Renderer writes a human-readable run summary. Output order is stable:
// documents sorted by path, findings by position — the engine guarantees
// it, the renderer just walks the result.
type Renderer struct {
	Out io.Writer

	// Color toggles lipgloss styling.
	Color bool

	// Verbose includes clean findings and full drift diffs.
	Verbose bool

	// Check relabels mutations as failures ("would rewrite").
	Check bool
}

type styles struct {
	header lipgloss.Style
	ok     lipgloss.Style
	warn   lipgloss.Style
	fail   lipgloss.Style
	dim    lipgloss.Style
	add    lipgloss.Style
	del    lipgloss.Style
}

func (r *Renderer) styles() styles {
	if !r.Color {
		plain := lipgloss.NewStyle()
		return styles{header: plain, ok: plain, warn: plain, fail: plain, dim: plain, add: plain, del: plain}
	}
	return styles{
		header: lipgloss.NewStyle().Bold(true),
		ok:     lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		warn:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		fail:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		dim:    lipgloss.NewStyle().Faint(true),
		add:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		del:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
}

// Render writes the per-document findings and the run totals.
func (r *Renderer) Render(res *engine.SyncResult) {
	st := r.styles()

	for _, fe := range res.SamplesErrors {
		fmt.Fprintf(r.Out, "%s %s\n", st.fail.Render("samples"), fe.Error())
	}

	for _, doc := range res.Docs {
		printed := false
		for _, f := range doc.Findings {
			if !r.Verbose && !f.Kind.Failure() && f.Kind != engine.FindingWarning && f.Kind != engine.FindingResolved {
				continue
			}
			if !printed {
				fmt.Fprintln(r.Out, st.header.Render(doc.Doc))
				printed = true
			}
			r.renderFinding(st, f)
		}
		if doc.Mutated {
			if !printed {
				fmt.Fprintln(r.Out, st.header.Render(doc.Doc))
			}
			verb := "rewritten"
			if r.Check {
				verb = "would be rewritten — run 'snipsync sync' and commit the diff"
			}
			fmt.Fprintf(r.Out, "  %s\n", st.warn.Render(verb))
		}
	}

	r.renderTotals(st, res)
}

func (r *Renderer) renderFinding(st styles, f engine.Finding) {
	style := st.ok
	switch {
	case f.Kind.Failure():
		style = st.fail
	case f.Kind == engine.FindingWarning:
		style = st.warn
	}

	loc := ""
	if f.Line > 0 {
		loc = fmt.Sprintf(":%d", f.Line)
	}
	fmt.Fprintf(r.Out, "  %-10s %s%s  %s\n", style.Render(string(f.Kind)), f.Doc, loc, f.Message)

	if f.Kind == engine.FindingDrift && r.Verbose {
		for _, line := range diffLines(f.Actual, f.Expected) {
			switch {
			case strings.HasPrefix(line, "+"):
				fmt.Fprintf(r.Out, "    %s\n", st.add.Render(line))
			case strings.HasPrefix(line, "-"):
				fmt.Fprintf(r.Out, "    %s\n", st.del.Render(line))
			default:
				fmt.Fprintf(r.Out, "    %s\n", st.dim.Render(line))
			}
		}
	}
}

func (r *Renderer) renderTotals(st styles, res *engine.SyncResult) {
	t := res.Totals
	fmt.Fprintln(r.Out)
	fmt.Fprintf(r.Out, "%s %d resolved, %d unchanged, %d ok",
		st.header.Render("Summary:"), t.Resolved, t.Unchanged, t.OK)
	if failures := res.Failures(); failures > 0 {
		fmt.Fprintf(r.Out, ", %s", st.fail.Render(fmt.Sprintf(
			"%d failing (%d unmatched, %d ambiguous, %d drift, %d broken refs, %d structural, %d unmarked)",
			failures, t.Unmatched, t.Ambiguous, t.Drift, t.BrokenRef, t.Structural, t.Unmarked)))
	}
	if t.Warnings > 0 {
		fmt.Fprintf(r.Out, ", %s", st.warn.Render(fmt.Sprintf("%d warning(s)", t.Warnings)))
	}
	fmt.Fprintln(r.Out)

	if len(res.Written) > 0 {
		verb := "rewrote"
		if r.Check {
			verb = "would rewrite"
		}
		fmt.Fprintf(r.Out, "%s %d document(s)\n", verb, len(res.Written))
	}
}

// diffLines produces a line-based diff between the document excerpt and the
// current source, "-" for document-only lines, "+" for source-only lines.
func diffLines(actual, expected string) []string {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(actual, expected)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	var out []string
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			out = append(out, prefix+line)
		}
	}
	return out
}
