package cmd

import (
	"github.com/spf13/cobra"

	"treejson.dev/pkg/treejson/internal/domain"
	m "treejson.dev/pkg/treejson/internal/model"
)

// mappingsCmd represents the mappings command.
var mappingsCmd = newMappingsCmd()

func newMappingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mappings <file>",
		Short: "List the source map entries of a rendered description",
		Long:  "Render a description with source maps enabled and list every generated position with the authoring location it maps to.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.Mappings(cmd.Context(), domain.MappingsArgs{
				RenderSettings: renderSettings(cmd),
				Path:           m.Path(args[0]),
			})
		},
	}

	configureRenderFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(mappingsCmd)
}
