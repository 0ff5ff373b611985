// Package drift verifies generated markers against their source line ranges.
// Generated markers are a provenance claim over exact lines of a source file,
// so they are never auto-healed; a mismatch must be reviewed by a human.
package drift

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bianoble/snipsync/internal/marker"
)

// Outcome classifies the verification of one generated marker.
type Outcome int

const (
	// OutcomeOK means the document excerpt matches the source lines exactly.
	OutcomeOK Outcome = iota
	// OutcomeDrift means the referenced lines no longer match the excerpt.
	OutcomeDrift
	// OutcomeBrokenRef means the reference itself is unusable: missing file
	// or out-of-range line numbers. Distinct from drift, since the remedy is
	// fixing the reference rather than reviewing changed output.
	OutcomeBrokenRef
)

// Result is the verification of a single generated marker.
type Result struct {
	Outcome  Outcome
	Expected string // current source lines, for Drift
	Actual   string // document excerpt, for Drift
	Err      string // description, for BrokenRef
}

// Verifier checks generated markers against the samples tree.
type Verifier struct {
	SamplesRoot string
}

// Generated verifies one generated marker. The comparison is byte-for-byte
// after trimming a single trailing newline from each side.
func (v *Verifier) Generated(m marker.Marker) Result {
	path := filepath.Join(v.SamplesRoot, filepath.FromSlash(m.Path))
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{
			Outcome: OutcomeBrokenRef,
			Err:     fmt.Sprintf("reading %s: %v", m.Path, err),
		}
	}

	lines := strings.Split(trimTrailingNewline(string(data)), "\n")
	if m.TargetEnd > len(lines) {
		return Result{
			Outcome: OutcomeBrokenRef,
			Err: fmt.Sprintf("%s#L%d-L%d is out of range: file has %d lines",
				m.Path, m.TargetStart, m.TargetEnd, len(lines)),
		}
	}

	expected := strings.Join(lines[m.TargetStart-1:m.TargetEnd], "\n")
	actual := trimTrailingNewline(m.Body)
	if expected == actual {
		return Result{Outcome: OutcomeOK}
	}
	return Result{Outcome: OutcomeDrift, Expected: expected, Actual: actual}
}

func trimTrailingNewline(s string) string {
	return strings.TrimSuffix(s, "\n")
}
