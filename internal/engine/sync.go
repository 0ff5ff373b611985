package engine

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bianoble/snipsync/internal/drift"
	"github.com/bianoble/snipsync/internal/marker"
	"github.com/bianoble/snipsync/internal/region"
	"github.com/bianoble/snipsync/internal/resolve"
	"github.com/bianoble/snipsync/internal/sandbox"
)

// SyncEngine orchestrates one run: index the samples tree, parse and resolve
// every document, verify generated markers, then commit rewrites. All
// resolution is computed in memory first; writes happen in a final commit
// phase, each one atomic, so a canceled run leaves every document either
// original or fully resolved.
type SyncEngine struct {
	DocsRoot    string
	SamplesRoot string

	// Exclude lists directories, relative to DocsRoot, skipped when
	// collecting documents.
	Exclude []string

	Langs    *marker.LangSet
	Syntax   *region.Syntax
	FenceTag string

	// Workers bounds parallel file scanning. <=0 means NumCPU.
	Workers int

	// FailFast aborts the run on the first structural error.
	FailFast bool

	// PseudoWarnRatio attaches a warning to documents whose pseudo markers
	// exceed this fraction of classified code blocks. 0 disables the check.
	PseudoWarnRatio float64
}

// SyncOptions configures a sync operation.
type SyncOptions struct {
	// DryRun computes and reports everything but writes nothing.
	// Check mode is a dry run whose would-be writes count as failures.
	DryRun bool
}

type failFastError struct{ f Finding }

func (e failFastError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.f.Doc, e.f.Line, e.f.Message)
}

// Sync runs the full pipeline. The returned error is reserved for fatal
// environment failures (unreadable trees, fail-fast aborts); every per-file
// and per-marker problem is collected into the result instead.
func (e *SyncEngine) Sync(ctx context.Context, opts SyncOptions) (*SyncResult, error) {
	workers := e.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	idx, err := region.Scan(ctx, e.SamplesRoot, e.Syntax, workers)
	if err != nil {
		return nil, err
	}
	if errs := idx.Structural(); e.FailFast && len(errs) > 0 {
		return nil, fmt.Errorf("samples tree: %s", errs[0])
	}

	docs, err := e.collectDocs()
	if err != nil {
		return nil, err
	}

	resolver := &resolve.Resolver{Index: idx, FenceTag: e.FenceTag}
	verifier := &drift.Verifier{SamplesRoot: e.SamplesRoot}

	type docOutcome struct {
		report  DocReport
		newText string
	}
	outcomes := make([]docOutcome, 0, len(docs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, rel := range docs {
		rel := rel
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report, newText := e.processDoc(rel, resolver, verifier)
			if e.FailFast {
				for _, f := range report.Findings {
					if f.Kind == FindingStructural {
						return failFastError{f}
					}
				}
			}
			mu.Lock()
			outcomes = append(outcomes, docOutcome{report: report, newText: newText})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Merge phase: single-threaded from here on.
	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].report.Doc < outcomes[j].report.Doc
	})

	result := &SyncResult{SamplesErrors: idx.Structural()}
	result.Totals.Structural += len(idx.Structural())

	for _, o := range outcomes {
		result.Docs = append(result.Docs, o.report)
		for _, f := range o.report.Findings {
			result.Totals.count(f.Kind)
		}
		if o.report.Mutated {
			result.Written = append(result.Written, o.report.Doc)
		}
	}

	if opts.DryRun {
		return result, nil
	}

	// Commit phase: every rewrite is write-temp-then-rename.
	for _, o := range outcomes {
		if !o.report.Mutated {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := sandbox.SafeWrite(e.DocsRoot, o.report.Doc, []byte(o.newText), 0644); err != nil {
			return result, fmt.Errorf("writing %s: %w", o.report.Doc, err)
		}
	}

	return result, nil
}

// collectDocs walks the docs tree for Markdown files, honoring the exclusion
// list. Paths are relative to DocsRoot, slash-separated, sorted.
func (e *SyncEngine) collectDocs() ([]string, error) {
	var docs []string
	err := filepath.WalkDir(e.DocsRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == e.DocsRoot {
				return err
			}
			return nil
		}
		rel, relErr := filepath.Rel(e.DocsRoot, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && (e.excluded(rel) || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".md") && !e.excluded(rel) {
			docs = append(docs, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning docs tree %s: %w", e.DocsRoot, err)
	}
	sort.Strings(docs)
	return docs, nil
}

func (e *SyncEngine) excluded(rel string) bool {
	for _, ex := range e.Exclude {
		ex = strings.Trim(filepath.ToSlash(ex), "/")
		if ex == "" {
			continue
		}
		if rel == ex || strings.HasPrefix(rel, ex+"/") {
			return true
		}
	}
	return false
}

// processDoc parses, resolves and verifies one document. Returns the report
// and the (possibly rewritten) document text. Pure apart from reads.
func (e *SyncEngine) processDoc(rel string, resolver *resolve.Resolver, verifier *drift.Verifier) (DocReport, string) {
	report := DocReport{Doc: rel}

	data, err := os.ReadFile(filepath.Join(e.DocsRoot, filepath.FromSlash(rel)))
	if err != nil {
		report.Findings = append(report.Findings, Finding{
			Doc: rel, Kind: FindingStructural, Message: err.Error(),
		})
		return report, ""
	}
	text := string(data)

	parser := &marker.Parser{Langs: e.Langs}
	parsed := parser.Parse(text)

	for _, se := range parsed.Structural {
		report.Findings = append(report.Findings, Finding{
			Doc: rel, Line: se.Line, Kind: FindingStructural, Message: se.Msg,
		})
	}

	lines := strings.Split(text, "\n")
	var out []string
	cursor := 0
	pseudo := 0

	for _, m := range parsed.Markers {
		out = append(out, lines[cursor:m.StartLine-1]...)
		span := lines[m.StartLine-1 : m.EndLine]
		cursor = m.EndLine

		switch m.Kind {
		case marker.KindSnippet:
			res := resolver.Snippet(m)
			switch res.Outcome {
			case resolve.OutcomeResolved:
				out = append(out, resolver.Rewrite(m, res.Body)...)
				report.Findings = append(report.Findings, Finding{
					Doc: rel, Line: m.StartLine, Kind: FindingResolved, ID: m.ID,
					Message: fmt.Sprintf("snippet %q resolved", m.ID),
				})
			case resolve.OutcomeUnchanged:
				out = append(out, span...)
				report.Findings = append(report.Findings, Finding{
					Doc: rel, Line: m.StartLine, Kind: FindingUnchanged, ID: m.ID,
					Message: fmt.Sprintf("snippet %q up to date", m.ID),
				})
			case resolve.OutcomeUnmatched:
				out = append(out, span...)
				report.Findings = append(report.Findings, Finding{
					Doc: rel, Line: m.StartLine, Kind: FindingUnmatched, ID: m.ID,
					Message: fmt.Sprintf("no region named %q in the samples tree", m.ID),
				})
			case resolve.OutcomeAmbiguous:
				out = append(out, span...)
				report.Findings = append(report.Findings, Finding{
					Doc: rel, Line: m.StartLine, Kind: FindingAmbiguous, ID: m.ID,
					Message: fmt.Sprintf("region %q is defined in multiple files: %s",
						m.ID, strings.Join(res.Candidates, ", ")),
				})
			}

		case marker.KindInvalid, marker.KindPseudo:
			out = append(out, span...)
			if m.Kind == marker.KindPseudo {
				pseudo++
			}
			res := resolver.Static(m)
			if res.Warning != "" {
				report.Findings = append(report.Findings, Finding{
					Doc: rel, Line: m.StartLine, Kind: FindingWarning, ID: m.ID,
					Message: res.Warning,
				})
			} else {
				report.Findings = append(report.Findings, Finding{
					Doc: rel, Line: m.StartLine, Kind: FindingOK, ID: m.ID,
					Message: fmt.Sprintf("%s block %q", m.Kind, m.ID),
				})
			}

		case marker.KindGenerated:
			out = append(out, span...)
			res := verifier.Generated(m)
			switch res.Outcome {
			case drift.OutcomeOK:
				report.Findings = append(report.Findings, Finding{
					Doc: rel, Line: m.StartLine, Kind: FindingOK,
					Message: fmt.Sprintf("generated excerpt %s#L%d-L%d matches", m.Path, m.TargetStart, m.TargetEnd),
				})
			case drift.OutcomeDrift:
				report.Findings = append(report.Findings, Finding{
					Doc: rel, Line: m.StartLine, Kind: FindingDrift,
					Message: fmt.Sprintf("generated excerpt %s#L%d-L%d no longer matches the source", m.Path, m.TargetStart, m.TargetEnd),
					Expected: res.Expected,
					Actual:   res.Actual,
				})
			case drift.OutcomeBrokenRef:
				report.Findings = append(report.Findings, Finding{
					Doc: rel, Line: m.StartLine, Kind: FindingBrokenRef,
					Message: res.Err,
				})
			}

		case marker.KindUnmarked:
			out = append(out, span...)
			report.Findings = append(report.Findings, Finding{
				Doc: rel, Line: m.StartLine, Kind: FindingUnmarked,
				Message: fmt.Sprintf("fenced %s block has no governing marker", m.Fence),
			})
		}
	}
	out = append(out, lines[cursor:]...)

	if e.PseudoWarnRatio > 0 && len(parsed.Markers) > 0 {
		ratio := float64(pseudo) / float64(len(parsed.Markers))
		if ratio > e.PseudoWarnRatio {
			report.Findings = append(report.Findings, Finding{
				Doc: rel, Kind: FindingWarning,
				Message: fmt.Sprintf("%d of %d code blocks are pseudo-code (%.0f%%) — prefer compiled snippets",
					pseudo, len(parsed.Markers), ratio*100),
			})
		}
	}

	sort.SliceStable(report.Findings, func(i, j int) bool {
		return report.Findings[i].Line < report.Findings[j].Line
	})

	newText := strings.Join(out, "\n")
	report.Mutated = newText != text
	return report, newText
}

func (t *Totals) count(k FindingKind) {
	switch k {
	case FindingResolved:
		t.Resolved++
	case FindingUnchanged:
		t.Unchanged++
	case FindingOK:
		t.OK++
	case FindingUnmatched:
		t.Unmatched++
	case FindingAmbiguous:
		t.Ambiguous++
	case FindingDrift:
		t.Drift++
	case FindingBrokenRef:
		t.BrokenRef++
	case FindingStructural:
		t.Structural++
	case FindingUnmarked:
		t.Unmarked++
	case FindingWarning:
		t.Warnings++
	}
}
