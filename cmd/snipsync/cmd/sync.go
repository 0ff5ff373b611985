package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bianoble/snipsync/internal/engine"
	"github.com/bianoble/snipsync/internal/report"
)

var syncDryRun bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Resolve snippet markers and rewrite documents",
	Long: `Indexes the samples source tree, resolves every snippet marker in the
documentation tree, and rewrites documents whose snippet bodies have
changed. Writes are atomic and happen only after all resolution has been
computed. Generated markers are verified but never rewritten.

Exit 0 if nothing changed and everything verifies; exit 1 if documents
were rewritten (review and commit the diff, then re-run); exit 2 on
verification failures that need a human fix.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		eng, err := newEngine(cfg)
		if err != nil {
			return err
		}

		result, err := eng.Sync(cmd.Context(), engine.SyncOptions{DryRun: syncDryRun})
		if err != nil {
			return err
		}

		if syncDryRun {
			info("Dry run — no files written.")
		}
		code := report.ExitCode(result)
		if !quiet || code == report.ExitVerification {
			newRenderer(false).Render(result)
		}
		verb := "rewrote"
		if syncDryRun {
			verb = "would rewrite"
		}
		for _, doc := range result.Written {
			detail("%s  %s", verb, doc)
		}

		switch code {
		case report.ExitRegenerated:
			return &exitError{code: code, msg: fmt.Sprintf("%d document(s) regenerated — review and commit", len(result.Written))}
		case report.ExitVerification:
			return &exitError{code: code, msg: fmt.Sprintf("%d verification failure(s)", result.Failures())}
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "show what would change without writing files")
	rootCmd.AddCommand(syncCmd)
}
