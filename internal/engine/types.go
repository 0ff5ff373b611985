package engine

import "github.com/bianoble/snipsync/internal/region"

// FindingKind classifies one per-marker outcome in a run report.
type FindingKind string

const (
	FindingResolved   FindingKind = "resolved"
	FindingUnchanged  FindingKind = "unchanged"
	FindingOK         FindingKind = "ok"
	FindingUnmatched  FindingKind = "unmatched"
	FindingAmbiguous  FindingKind = "ambiguous"
	FindingDrift      FindingKind = "drift"
	FindingBrokenRef  FindingKind = "broken-ref"
	FindingStructural FindingKind = "structural"
	FindingUnmarked   FindingKind = "unmarked"
	FindingWarning    FindingKind = "warning"
)

// Failure reports whether this kind requires human action. Unmatched,
// ambiguous, drift, broken references, structural errors and unmarked
// blocks all fail verification; warnings and resolutions do not.
func (k FindingKind) Failure() bool {
	switch k {
	case FindingUnmatched, FindingAmbiguous, FindingDrift, FindingBrokenRef,
		FindingStructural, FindingUnmarked:
		return true
	}
	return false
}

// Finding is one outcome tied to a document position.
type Finding struct {
	Doc      string // document path relative to the docs root
	Line     int    // 1-based; 0 for document-level findings
	Kind     FindingKind
	ID       string // marker id, when the marker carries one
	Message  string
	Expected string // drift only: current source lines
	Actual   string // drift only: document excerpt
}

// DocReport aggregates the findings for one document.
type DocReport struct {
	Doc      string
	Findings []Finding
	// Mutated is true when resolution produced different document content.
	// In dry-run mode the document is not written but Mutated still reports
	// that it would have been.
	Mutated bool
}

// Totals holds run-wide outcome counts.
type Totals struct {
	Resolved   int
	Unchanged  int
	OK         int
	Unmatched  int
	Ambiguous  int
	Drift      int
	BrokenRef  int
	Structural int
	Unmarked   int
	Warnings   int
}

// SyncResult is the full report of one run.
type SyncResult struct {
	// Docs is sorted lexicographically by document path; findings within a
	// document are in position order. Deterministic regardless of scan
	// completion order.
	Docs []DocReport

	// Written lists documents that were rewritten (or, in dry-run mode,
	// would have been), sorted.
	Written []string

	// SamplesErrors are structural errors from indexing the samples tree.
	SamplesErrors []region.FileError

	Totals Totals
}

// Failures counts findings that fail verification, including samples-tree
// structural errors.
func (r *SyncResult) Failures() int {
	n := len(r.SamplesErrors)
	for _, d := range r.Docs {
		for _, f := range d.Findings {
			if f.Kind.Failure() {
				n++
			}
		}
	}
	return n
}
