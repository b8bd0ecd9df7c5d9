package cmd

import (
	"github.com/spf13/cobra"

	"keepgen.dev/pkg/keepgen/internal/domain"
	m "keepgen.dev/pkg/keepgen/internal/model"
)

// scanCmd represents the scan command.
var scanCmd = newScanCmd()

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <path>",
		Short: "List the protected sections of a file or directory",
		Long: `Scan a file with the comment tags of its file type and list every protected
section found: name, lines, comment leader and content size. Stray close tags
and unterminated sections are reported as warnings. Given a directory, every
file with known comment tags below it is scanned.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.Scan(cmd.Context(), domain.ScanArgs{Path: m.Path(args[0])})
		},
	}
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
