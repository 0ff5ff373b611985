package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bianoble/snipsync/internal/report"
)

// Build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags.
var (
	configPath  string
	docsFlag    string
	samplesFlag string
	excludeFlag []string
	workersFlag int
	failFast    bool
	verbose     bool
	quiet       bool
	noColor     bool
)

var rootCmd = &cobra.Command{
	Use:   "snipsync",
	Short: "Synchronize and verify documentation code snippets",
	Long: `snipsync keeps Markdown documentation in lockstep with a compilable
samples source tree. It scans documents for typed code-block markers,
injects named source regions into snippet blocks, verifies generated
excerpts against their source line ranges, and fails on any code block
that escapes classification. Documentation can never silently diverge
from source.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("snipsync %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "snipsync.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVar(&docsFlag, "docs", "", "documentation tree root (overrides config)")
	rootCmd.PersistentFlags().StringVar(&samplesFlag, "samples", "", "samples source tree root (overrides config)")
	rootCmd.PersistentFlags().StringSliceVar(&excludeFlag, "exclude", nil, "directories under the docs root to skip (repeatable)")
	rootCmd.PersistentFlags().IntVar(&workersFlag, "workers", 0, "parallel scan workers (0 = CPU count)")
	rootCmd.PersistentFlags().BoolVar(&failFast, "fail-fast", false, "abort on the first structural error")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "detailed output, including drift diffs")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "minimal output (errors only)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(versionCmd)
}

// exitError carries a specific process exit code out of a RunE.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

// Execute runs the root command and returns the process exit code:
// 0 clean, 1 documents were regenerated, 2 verification failures,
// 3 fatal errors such as an unreadable tree.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			if ee.msg != "" {
				fmt.Fprintln(os.Stderr, ee.msg)
			}
			return ee.code
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		return report.ExitFatal
	}
	return report.ExitClean
}
