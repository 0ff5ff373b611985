package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bianoble/snipsync/internal/engine"
	"github.com/bianoble/snipsync/internal/report"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify documents without writing anything",
	Long: `Runs the full resolution pipeline read-only. Any document that sync
would have rewritten is itself a failure here: in CI, run 'snipsync sync',
commit the diff, then gate merges on 'snipsync check'.

Exit 0 if everything is classified, resolved and drift-free; exit 1 if the
tool would have rewritten documents; exit 2 on verification failures.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		eng, err := newEngine(cfg)
		if err != nil {
			return err
		}

		result, err := eng.Sync(cmd.Context(), engine.SyncOptions{DryRun: true})
		if err != nil {
			return err
		}

		code := report.ExitCode(result)
		if !quiet || code != report.ExitClean {
			newRenderer(true).Render(result)
		}
		for _, doc := range result.Written {
			detail("out of date  %s", doc)
		}

		switch code {
		case report.ExitRegenerated:
			return &exitError{code: code, msg: fmt.Sprintf("%d document(s) out of date — run 'snipsync sync'", len(result.Written))}
		case report.ExitVerification:
			return &exitError{code: code, msg: fmt.Sprintf("%d verification failure(s)", result.Failures())}
		}

		info("All code blocks classified, all snippets in sync.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
