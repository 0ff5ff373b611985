package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bianoble/snipsync/internal/marker"
	"github.com/bianoble/snipsync/internal/region"
)

type fixture struct {
	root string
	eng  *SyncEngine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	for _, dir := range []string{"docs", "samples"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	syn, err := region.BuiltinSyntax("csharp")
	if err != nil {
		t.Fatalf("BuiltinSyntax: %v", err)
	}
	return &fixture{
		root: root,
		eng: &SyncEngine{
			DocsRoot:    filepath.Join(root, "docs"),
			SamplesRoot: filepath.Join(root, "samples"),
			Langs:       marker.NewLangSet([]string{"csharp"}),
			Syntax:      syn,
			FenceTag:    "csharp",
			Workers:     2,
		},
	}
}

func (f *fixture) writeDoc(t *testing.T, rel, content string) {
	t.Helper()
	f.write(t, filepath.Join("docs", rel), content)
}

func (f *fixture) writeSample(t *testing.T, rel, content string) {
	t.Helper()
	f.write(t, filepath.Join("samples", rel), content)
}

func (f *fixture) write(t *testing.T, rel, content string) {
	t.Helper()
	path := filepath.Join(f.root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func (f *fixture) readDoc(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.root, "docs", rel))
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}

func TestSyncResolvesSnippet(t *testing.T) {
	f := newFixture(t)
	f.writeDoc(t, "getting-started.md", "# Start\n\nsnippet: hello-world\nendSnippet\n")
	f.writeSample(t, "Hello.cs", "#region hello-world\nreturn \"Hello, World!\";\n#endregion\n")

	result, err := f.eng.Sync(context.Background(), SyncOptions{})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}

	if len(result.Written) != 1 || result.Written[0] != "getting-started.md" {
		t.Fatalf("written = %v, want the one document", result.Written)
	}
	if result.Totals.Resolved != 1 {
		t.Errorf("resolved = %d, want 1", result.Totals.Resolved)
	}
	if result.Failures() != 0 {
		t.Errorf("failures = %d, want 0", result.Failures())
	}

	got := f.readDoc(t, "getting-started.md")
	want := "# Start\n\nsnippet: hello-world\n```csharp\nreturn \"Hello, World!\";\n```\nendSnippet\n"
	if got != want {
		t.Errorf("document = %q, want %q", got, want)
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.writeDoc(t, "a.md", "snippet: ex\nendSnippet\n")
	f.writeSample(t, "X.cs", "#region ex\nvar x = 1;\n#endregion\n")

	if _, err := f.eng.Sync(context.Background(), SyncOptions{}); err != nil {
		t.Fatalf("first Sync: %v", err)
	}
	afterFirst := f.readDoc(t, "a.md")

	second, err := f.eng.Sync(context.Background(), SyncOptions{})
	if err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	if len(second.Written) != 0 {
		t.Errorf("second run written = %v, want none — first run must be a fixed point", second.Written)
	}
	if second.Totals.Unchanged != 1 {
		t.Errorf("unchanged = %d, want 1", second.Totals.Unchanged)
	}
	if f.readDoc(t, "a.md") != afterFirst {
		t.Error("second run mutated the document")
	}
}

func TestSyncDryRunWritesNothing(t *testing.T) {
	f := newFixture(t)
	original := "snippet: ex\nendSnippet\n"
	f.writeDoc(t, "a.md", original)
	f.writeSample(t, "X.cs", "#region ex\nvar x = 1;\n#endregion\n")

	result, err := f.eng.Sync(context.Background(), SyncOptions{DryRun: true})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(result.Written) != 1 {
		t.Errorf("written = %v, want the would-be rewrite reported", result.Written)
	}
	if f.readDoc(t, "a.md") != original {
		t.Error("dry run wrote to disk")
	}
}

func TestSyncUnmatchedSnippet(t *testing.T) {
	f := newFixture(t)
	f.writeDoc(t, "a.md", "snippet: ghost\nendSnippet\n")

	result, err := f.eng.Sync(context.Background(), SyncOptions{})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if result.Totals.Unmatched != 1 {
		t.Errorf("unmatched = %d, want 1", result.Totals.Unmatched)
	}
	if len(result.Written) != 0 {
		t.Errorf("written = %v, want none", result.Written)
	}
}

func TestSyncAmbiguousSnippet(t *testing.T) {
	f := newFixture(t)
	f.writeDoc(t, "a.md", "snippet: example-1\nendSnippet\n")
	f.writeSample(t, "A.cs", "#region example-1\nfrom a\n#endregion\n")
	f.writeSample(t, "B.cs", "#region example-1\nfrom b\n#endregion\n")

	result, err := f.eng.Sync(context.Background(), SyncOptions{})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if result.Totals.Ambiguous != 1 {
		t.Fatalf("ambiguous = %d, want 1", result.Totals.Ambiguous)
	}
	// Neither candidate may be silently written into the document.
	doc := f.readDoc(t, "a.md")
	if strings.Contains(doc, "from a") || strings.Contains(doc, "from b") {
		t.Errorf("document = %q, ambiguous snippet must not be resolved", doc)
	}
}

func TestSyncDriftDetectedExactlyOnce(t *testing.T) {
	f := newFixture(t)
	f.writeSample(t, "Gen.cs", "l1\nl2\nl3\nl4\nl5\n")
	f.writeDoc(t, "a.md", strings.Join([]string{
		"<!-- generated: Gen.cs#L2-L3 -->",
		"```csharp",
		"l2",
		"stale",
		"```",
		"",
		"<!-- generated: Gen.cs#L4-L5 -->",
		"```csharp",
		"l4",
		"l5",
		"```",
		"",
	}, "\n"))

	result, err := f.eng.Sync(context.Background(), SyncOptions{})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if result.Totals.Drift != 1 {
		t.Errorf("drift = %d, want exactly 1", result.Totals.Drift)
	}
	if result.Totals.OK != 1 {
		t.Errorf("ok = %d, want 1 — the untouched excerpt must not report drift", result.Totals.OK)
	}
	// Generated markers are never auto-healed.
	if len(result.Written) != 0 {
		t.Errorf("written = %v, want none", result.Written)
	}
}

func TestSyncUnmarkedBlockFails(t *testing.T) {
	f := newFixture(t)
	f.writeDoc(t, "a.md", "```csharp\nvar stray = 1;\n```\n")

	result, err := f.eng.Sync(context.Background(), SyncOptions{})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if result.Totals.Unmarked != 1 {
		t.Errorf("unmarked = %d, want 1", result.Totals.Unmarked)
	}
	if result.Failures() != 1 {
		t.Errorf("failures = %d, want 1", result.Failures())
	}
}

func TestSyncExcludesDirectories(t *testing.T) {
	f := newFixture(t)
	f.writeDoc(t, "todos/log.md", "```csharp\nignored\n```\n")
	f.writeDoc(t, "guide.md", "nothing here\n")
	f.eng.Exclude = []string{"todos"}

	result, err := f.eng.Sync(context.Background(), SyncOptions{})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(result.Docs) != 1 || result.Docs[0].Doc != "guide.md" {
		t.Errorf("docs = %+v, want only guide.md", result.Docs)
	}
}

func TestSyncDeterministicOrder(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"z.md", "a.md", "m/inner.md"} {
		f.writeDoc(t, name, "snippet: ghost\nendSnippet\n")
	}

	result, err := f.eng.Sync(context.Background(), SyncOptions{})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	var order []string
	for _, d := range result.Docs {
		order = append(order, d.Doc)
	}
	want := []string{"a.md", "m/inner.md", "z.md"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestSyncStructuralErrorIsolatedPerDoc(t *testing.T) {
	f := newFixture(t)
	f.writeDoc(t, "broken.md", "snippet: never-closed\n")
	f.writeDoc(t, "fine.md", "snippet: ex\nendSnippet\n")
	f.writeSample(t, "X.cs", "#region ex\nok\n#endregion\n")

	result, err := f.eng.Sync(context.Background(), SyncOptions{})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if result.Totals.Structural != 1 {
		t.Errorf("structural = %d, want 1", result.Totals.Structural)
	}
	if result.Totals.Resolved != 1 {
		t.Errorf("resolved = %d, want 1 — broken doc must not block the healthy one", result.Totals.Resolved)
	}
}

func TestSyncDoubleDirectiveNeverDropsALine(t *testing.T) {
	f := newFixture(t)
	f.writeDoc(t, "a.md", "snippet: aa\nsnippet: bb\nendSnippet\n")
	f.writeSample(t, "X.cs", "#region bb\nbody-b\n#endregion\n")

	result, err := f.eng.Sync(context.Background(), SyncOptions{})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if result.Totals.Structural != 1 {
		t.Errorf("structural = %d, want 1 for the unterminated directive", result.Totals.Structural)
	}
	if result.Totals.Resolved != 1 {
		t.Errorf("resolved = %d, want the inner snippet resolved", result.Totals.Resolved)
	}
	// The broken outer directive stays in the document for a human to fix.
	doc := f.readDoc(t, "a.md")
	if !strings.Contains(doc, "snippet: aa") {
		t.Errorf("document = %q, outer directive was deleted", doc)
	}
	if !strings.Contains(doc, "body-b") {
		t.Errorf("document = %q, inner snippet not resolved", doc)
	}
}

func TestSyncFailFast(t *testing.T) {
	f := newFixture(t)
	f.writeDoc(t, "broken.md", "snippet: never-closed\n")
	f.eng.FailFast = true

	if _, err := f.eng.Sync(context.Background(), SyncOptions{}); err == nil {
		t.Fatal("want fail-fast error for structural problem")
	}
}

func TestSyncPseudoRatioWarning(t *testing.T) {
	f := newFixture(t)
	f.writeDoc(t, "a.md", strings.Join([]string{
		"<!-- pseudo: sketch-one -->",
		"```csharp",
		"x",
		"```",
		"<!-- pseudo: sketch-two -->",
		"```csharp",
		"y",
		"```",
		"",
	}, "\n"))
	f.eng.PseudoWarnRatio = 0.5

	result, err := f.eng.Sync(context.Background(), SyncOptions{})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if result.Totals.Warnings != 1 {
		t.Errorf("warnings = %d, want 1 pseudo-ratio warning", result.Totals.Warnings)
	}
	if result.Failures() != 0 {
		t.Errorf("failures = %d — the ratio policy warns, never fails", result.Failures())
	}
}

func TestSyncInvalidBlockIdenticalToRegionWarns(t *testing.T) {
	f := newFixture(t)
	f.writeSample(t, "X.cs", "#region looks-real\nvar x = 1;\n#endregion\n")
	f.writeDoc(t, "a.md", strings.Join([]string{
		"<!-- invalid: looks-real -->",
		"```csharp",
		"var x = 1;",
		"```",
		"",
	}, "\n"))

	result, err := f.eng.Sync(context.Background(), SyncOptions{})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if result.Totals.Warnings != 1 {
		t.Errorf("warnings = %d, want 1", result.Totals.Warnings)
	}
	if result.Failures() != 0 {
		t.Errorf("failures = %d, want 0", result.Failures())
	}
}

func TestSyncMissingDocsRootIsFatal(t *testing.T) {
	f := newFixture(t)
	f.eng.DocsRoot = filepath.Join(f.root, "nope")

	if _, err := f.eng.Sync(context.Background(), SyncOptions{}); err == nil {
		t.Fatal("want fatal error for unreadable docs root")
	}
}

func TestSyncCancellation(t *testing.T) {
	f := newFixture(t)
	f.writeDoc(t, "a.md", "snippet: ex\nendSnippet\n")
	f.writeSample(t, "X.cs", "#region ex\nvar x = 1;\n#endregion\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.eng.Sync(ctx, SyncOptions{}); err == nil {
		t.Fatal("want error for canceled context")
	}
	// The document must be untouched, never half-written.
	if got := f.readDoc(t, "a.md"); got != "snippet: ex\nendSnippet\n" {
		t.Errorf("document = %q, want original", got)
	}
}
