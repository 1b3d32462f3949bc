package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"treejson.dev/pkg/treejson/internal/domain"
	m "treejson.dev/pkg/treejson/internal/model"
)

var convertPatchFlag string

// convertCmd represents the convert command.
var convertCmd = newConvertCmd()

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert [paths...]",
		Short: "Convert static JSON or YAML data through a node tree",
		Long: `Load plain JSON or YAML data, build a node tree from it and print the
canonical JSON again. With --patch an RFC 6902 JSON patch (written as JSON
or YAML) is applied to every input first.

` + pathPatternsHelp,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bindFlagToConfig(cmd.Flags().Lookup(indentFlagName), indentConfigKey)

			return workflow.Convert(cmd.Context(), domain.ConvertArgs{
				Paths:  parsePaths(args),
				Patch:  m.Path(convertPatchFlag),
				Output: m.Path(viper.GetString(outputFlagName)),
				Indent: indentString(viper.GetInt(indentConfigKey)),
			})
		},
	}

	cmd.Flags().StringVar(&convertPatchFlag, "patch", "", "JSON patch applied to each input before conversion")
	cmd.Flags().Int(indentFlagName, viper.GetInt(indentConfigKey), "spaces per indentation level")

	return cmd
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
