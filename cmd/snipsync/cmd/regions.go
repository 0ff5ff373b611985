package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bianoble/snipsync/internal/region"
	"github.com/bianoble/snipsync/internal/report"
)

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List the named regions indexed from the samples tree",
	Long: `Scans the samples source tree and lists every named region with its file
and line span. Names defined in more than one file are flagged — they will
resolve as ambiguous. Exit 2 if the tree has structural errors or duplicate
region names.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		root, err := projectRoot()
		if err != nil {
			return err
		}
		syn, err := regionSyntax(cfg)
		if err != nil {
			return err
		}

		idx, err := region.Scan(cmd.Context(), filepath.Join(root, cfg.Samples), syn, cfg.Workers)
		if err != nil {
			return err
		}

		dupes := 0
		for _, r := range idx.Regions() {
			flag := ""
			if len(idx.Lookup(r.Name)) > 1 {
				flag = "  (duplicate — ambiguous)"
				dupes++
			}
			info("  %-30s %s:%d-%d%s", r.Name, r.File, r.StartLine, r.EndLine, flag)
		}
		for _, fe := range idx.Structural() {
			errorf("%s", fe)
		}

		total := len(idx.Regions())
		info("")
		info("%d region(s) indexed.", total)

		if len(idx.Structural()) > 0 || dupes > 0 {
			return &exitError{code: report.ExitVerification, msg: "samples tree has indexing problems"}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(regionsCmd)
}
