// Package report renders run results for humans and maps them to the CI
// exit-code contract. In CI the exit code alone determines pass/fail; the
// rendered text is kept as a build artifact for diagnosis.
package report

import "github.com/bianoble/snipsync/internal/engine"

// Exit codes. The distinction matters in CI: 1 means "regenerate and commit
// the diff", 2 means "a human has to fix something".
const (
	ExitClean        = 0
	ExitRegenerated  = 1
	ExitVerification = 2
	ExitFatal        = 3
)

// ExitCode maps a run result to the process exit code. Verification
// failures dominate rewrites: a run that both rewrote documents and found
// an unmatched snippet still needs human action first.
func ExitCode(res *engine.SyncResult) int {
	if res.Failures() > 0 {
		return ExitVerification
	}
	if len(res.Written) > 0 {
		return ExitRegenerated
	}
	return ExitClean
}
