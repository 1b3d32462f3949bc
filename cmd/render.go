package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"treejson.dev/pkg/treejson/internal/domain"
	m "treejson.dev/pkg/treejson/internal/model"
)

// renderCmd represents the render command.
var renderCmd = newRenderCmd()

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [paths...]",
		Short: "Render element descriptions into JSON",
		Long:  renderLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.Render(cmd.Context(), domain.RenderArgs{
				RenderSettings: renderSettings(cmd),
				Paths:          parsePaths(args),
				Output:         m.Path(viper.GetString(outputFlagName)),
				SourceMap:      viper.GetBool(sourceMapConfigKey),
				Parallel:       viper.GetInt(parallelConfigKey),
				SpillDir:       viper.GetString(spillDirConfigKey),
			})
		},
	}

	configureRenderCmdFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(renderCmd)
}

func configureRenderCmdFlags(cmd *cobra.Command) {
	configureRenderFlags(cmd)

	cmd.Flags().IntP(parallelFlagName, "p", viper.GetInt(parallelConfigKey), "number of inputs rendered concurrently")
	bindFlagToConfig(cmd.Flags().Lookup(parallelFlagName), parallelConfigKey)

	cmd.Flags().BoolP(sourceMapFlagName, "s", viper.GetBool(sourceMapConfigKey), "write a .map file next to every output")
	bindFlagToConfig(cmd.Flags().Lookup(sourceMapFlagName), sourceMapConfigKey)
}
