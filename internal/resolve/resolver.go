// Package resolve matches document markers against the region index and
// rewrites snippet bodies in memory. Region name collisions are an explicit
// Ambiguous outcome, never a silently picked match: documentation must not
// be able to diverge from source without the run failing.
package resolve

import (
	"fmt"
	"strings"

	"github.com/bianoble/snipsync/internal/marker"
	"github.com/bianoble/snipsync/internal/region"
)

// Outcome classifies the result of resolving one marker.
type Outcome int

const (
	// OutcomeResolved means the snippet body was replaced with new content.
	OutcomeResolved Outcome = iota
	// OutcomeUnchanged means the snippet body already matched its region.
	OutcomeUnchanged
	// OutcomeUnmatched means no region carries the snippet's id.
	OutcomeUnmatched
	// OutcomeAmbiguous means more than one region carries the id.
	OutcomeAmbiguous
	// OutcomeOK means the marker needed no resolution (invalid, pseudo).
	OutcomeOK
)

// Result is the resolution of a single snippet marker.
type Result struct {
	Outcome    Outcome
	Body       string   // region content, for Resolved/Unchanged
	Candidates []string // defining files, for Ambiguous
	Warning    string   // non-fatal advisory, for OK
}

// Resolver resolves snippet markers against a read-only region index.
type Resolver struct {
	Index *region.Index
	// FenceTag is the language tag emitted on rewritten fences.
	FenceTag string
}

// Snippet resolves one snippet marker.
func (r *Resolver) Snippet(m marker.Marker) Result {
	regions := r.Index.Lookup(m.ID)
	switch {
	case len(regions) == 0:
		return Result{Outcome: OutcomeUnmatched}
	case len(regions) > 1:
		files := make([]string, len(regions))
		for i, reg := range regions {
			files[i] = fmt.Sprintf("%s:%d", reg.File, reg.StartLine)
		}
		return Result{Outcome: OutcomeAmbiguous, Candidates: files}
	}

	body := Dedent(regions[0].Content)
	if body == m.Body {
		return Result{Outcome: OutcomeUnchanged, Body: body}
	}
	return Result{Outcome: OutcomeResolved, Body: body}
}

// Static checks an invalid or pseudo marker. Content is never substituted,
// but a body identical to an indexed region under the same id suggests the
// marker type was chosen in error; that is an advisory, not a failure,
// since intent cannot be proven.
func (r *Resolver) Static(m marker.Marker) Result {
	for _, reg := range r.Index.Lookup(m.ID) {
		if Dedent(reg.Content) == m.Body {
			return Result{
				Outcome: OutcomeOK,
				Warning: fmt.Sprintf("%s block %q is identical to region %s:%d; should this be a snippet marker?",
					m.Kind, m.ID, reg.File, reg.StartLine),
			}
		}
	}
	return Result{Outcome: OutcomeOK}
}

// Rewrite renders the replacement lines for a resolved snippet marker:
// directive, fenced body, trailer, all re-based to the directive's column so
// snippets nested in lists or quotes stay valid Markdown.
func (r *Resolver) Rewrite(m marker.Marker, body string) []string {
	fence := fenceFor(body)
	out := []string{
		m.Indent + "snippet: " + m.ID,
		m.Indent + fence + r.FenceTag,
	}
	for _, line := range splitBody(body) {
		if line == "" {
			out = append(out, "")
			continue
		}
		out = append(out, m.Indent+line)
	}
	out = append(out, m.Indent+fence, m.Indent+"endSnippet")
	return out
}

// fenceFor picks a fence longer than any backtick run inside body, so region
// content that itself contains Markdown fences is copied verbatim and still
// round-trips.
func fenceFor(body string) string {
	longest := 0
	run := 0
	for _, c := range body {
		if c == '`' {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	n := 3
	if longest >= n {
		n = longest + 1
	}
	return strings.Repeat("`", n)
}

func splitBody(body string) []string {
	if body == "" {
		return nil
	}
	return strings.Split(body, "\n")
}

// Dedent strips the common leading whitespace of all non-blank lines.
// Region content keeps the samples tree's own indentation; documents get it
// normalized to column zero before re-basing to the directive's column.
func Dedent(text string) string {
	lines := strings.Split(text, "\n")

	prefix := ""
	first := true
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if first {
			prefix = indent
			first = false
			continue
		}
		prefix = commonPrefix(prefix, indent)
	}
	if prefix == "" {
		return text
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			out[i] = ""
			continue
		}
		out[i] = strings.TrimPrefix(line, prefix)
	}
	return strings.Join(out, "\n")
}

func commonPrefix(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}
