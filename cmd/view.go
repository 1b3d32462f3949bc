package cmd

import (
	"github.com/spf13/cobra"

	"treejson.dev/pkg/treejson/internal/domain"
	m "treejson.dev/pkg/treejson/internal/model"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <file>",
		Short: "Browse rendered JSON next to its authoring locations",
		Long: `Render a description and show the JSON with the origin of every line.
On a terminal the output is an interactive viewer; otherwise the annotated
text is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.View(cmd.Context(), domain.ViewArgs{
				RenderSettings: renderSettings(cmd),
				Path:           m.Path(args[0]),
			})
		},
	}

	configureRenderFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
