package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// initCmd represents the init command.
var initCmd = newInitCmd()

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate a default treejson.yaml configuration file",
		Long: `Create a treejson.yaml in the current working directory populated with the
current CLI defaults so it can be edited manually.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			targetPath := filepath.Join(configFolderPath, configFileName)

			err := viper.SafeWriteConfigAs(targetPath)
			if err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			cmd.Printf("wrote %s (render.max_flush_rounds=%d, render.indent=%d)\n",
				targetPath, viper.GetInt(maxFlushRoundsConfigKey), viper.GetInt(indentConfigKey))

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
}
