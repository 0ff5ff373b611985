package drift

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bianoble/snipsync/internal/marker"
)

func sampleTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return dir
}

func numberedLines(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		b.WriteString("line ")
		b.WriteString(strings.Repeat("x", i%3))
		b.WriteByte('0' + byte(i%10))
		b.WriteByte('\n')
	}
	return b.String()
}

func TestGeneratedExactMatch(t *testing.T) {
	content := "a\nb\nc\nd\ne\n"
	root := sampleTree(t, map[string]string{"Generated/Factory.g.cs": content})
	v := &Verifier{SamplesRoot: root}

	res := v.Generated(marker.Marker{
		Kind: marker.KindGenerated,
		Path: "Generated/Factory.g.cs", TargetStart: 2, TargetEnd: 4,
		Body: "b\nc\nd",
	})
	if res.Outcome != OutcomeOK {
		t.Errorf("outcome = %v, want ok (%s)", res.Outcome, res.Err)
	}
}

func TestGeneratedTrailingNewlineTrimmed(t *testing.T) {
	root := sampleTree(t, map[string]string{"F.cs": "only\n"})
	v := &Verifier{SamplesRoot: root}

	res := v.Generated(marker.Marker{
		Kind: marker.KindGenerated,
		Path: "F.cs", TargetStart: 1, TargetEnd: 1,
		Body: "only\n",
	})
	if res.Outcome != OutcomeOK {
		t.Errorf("outcome = %v, want ok after trimming one trailing newline", res.Outcome)
	}
}

func TestGeneratedDriftDetected(t *testing.T) {
	lines := strings.Split(strings.TrimSuffix(numberedLines(20), "\n"), "\n")
	frozen := strings.Join(lines[9:15], "\n") // lines 10-15 at freeze time

	lines[11] = "changed line 12"
	root := sampleTree(t, map[string]string{"F.cs": strings.Join(lines, "\n") + "\n"})
	v := &Verifier{SamplesRoot: root}

	res := v.Generated(marker.Marker{
		Kind: marker.KindGenerated,
		Path: "F.cs", TargetStart: 10, TargetEnd: 15,
		Body: frozen,
	})
	if res.Outcome != OutcomeDrift {
		t.Fatalf("outcome = %v, want drift", res.Outcome)
	}
	if res.Actual != frozen {
		t.Errorf("actual = %q, want the document excerpt", res.Actual)
	}
	if !strings.Contains(res.Expected, "changed line 12") {
		t.Errorf("expected = %q, want current source lines", res.Expected)
	}
}

func TestGeneratedMissingFileIsBrokenRef(t *testing.T) {
	v := &Verifier{SamplesRoot: t.TempDir()}

	res := v.Generated(marker.Marker{
		Kind: marker.KindGenerated,
		Path: "Gone.cs", TargetStart: 1, TargetEnd: 2,
	})
	if res.Outcome != OutcomeBrokenRef {
		t.Errorf("outcome = %v, want broken-ref — a missing file is not drift", res.Outcome)
	}
}

func TestGeneratedOutOfRangeIsBrokenRef(t *testing.T) {
	root := sampleTree(t, map[string]string{"F.cs": "a\nb\n"})
	v := &Verifier{SamplesRoot: root}

	res := v.Generated(marker.Marker{
		Kind: marker.KindGenerated,
		Path: "F.cs", TargetStart: 1, TargetEnd: 10,
	})
	if res.Outcome != OutcomeBrokenRef {
		t.Errorf("outcome = %v, want broken-ref", res.Outcome)
	}
	if !strings.Contains(res.Err, "out of range") {
		t.Errorf("err = %q, want out-of-range description", res.Err)
	}
}
