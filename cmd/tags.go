package cmd

import (
	"github.com/spf13/cobra"

	"keepgen.dev/pkg/keepgen/internal/domain"
)

// tagsCmd represents the tags command.
var tagsCmd = newTagsCmd()

func newTagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags [file-type]",
		Short: "List the comment tags known per file type",
		Long: `List the comment leaders registered for each file type, including those
added under comment_tags in keepgen.yaml. Pass a file type such as .py or py
to show only that type.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var fileType string
			if len(args) == 1 {
				fileType = args[0]
			}

			return workflow.Tags(cmd.Context(), domain.TagsArgs{FileType: fileType})
		},
	}
}

func init() {
	rootCmd.AddCommand(tagsCmd)
}
