// Package cmd provides the root command and CLI setup for treejson.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"treejson.dev/pkg/treejson/internal/adapter"
	"treejson.dev/pkg/treejson/internal/controller"
	"treejson.dev/pkg/treejson/internal/domain"
	m "treejson.dev/pkg/treejson/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var documentLoader adapter.DocumentLoader
var outputStore adapter.OutputStore
var printer adapter.Printer
var renderer domain.Renderer
var workflow domain.Workflow
var ui controller.UI

// outputDirFlag is a root-level flag shared by commands that write files.
var outputDirFlag string

// verboseFlag raises the log level to debug.
var verboseFlag bool

// logFileFlag overrides the configured log file.
var logFileFlag string

const pathPatternsHelp = `Inputs may be files or directories:
  - ./docs         every .yaml, .yml and .json file in docs
  - ./docs/...     the same, recursively
  - a.yaml b.yaml  several files`

const rootLongDescription = `treejson builds JSON documents from trees of typed nodes
(objects, arrays, properties, values and transparent proxies) and
correlates the printed JSON back to where each node was authored
through version 3 source maps.

` + pathPatternsHelp

const renderLongDescription = `Render element descriptions into pretty-printed JSON.

Without --output the JSON is printed to stdout. With --output every input
is written to <name>.json in that directory, plus <name>.json.map when
--source-map is set.

` + pathPatternsHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "treejson",
		Short:         "Build JSON from node trees with source maps",
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger := configureLogger(logFileFlag, verboseFlag)
			setupDependencies(cmd.Root(), logger)

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&outputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for rendered JSON (default: stdout)",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", false, "log at debug level")
	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, "", "log file (default from log.filename)")
}

// setupDependencies wires the shared adapters. Dependencies already set,
// for example by tests, are left alone.
func setupDependencies(cmd *cobra.Command, logger *slog.Logger) {
	if ui == nil {
		ui = controller.NewUI(cmd, controller.IsTTY(cmd.OutOrStdout()))
	}

	if fsAdapter == nil {
		fsAdapter = adapter.NewLocalSourceFSAdapter()
	}

	if documentLoader == nil {
		documentLoader = adapter.NewYAMLDocumentLoader()
	}

	if outputStore == nil {
		outputStore = adapter.NewOutputStore(fsAdapter)
	}

	if printer == nil {
		printer = adapter.NewJSONPrinter()
	}

	if renderer == nil {
		renderer = domain.NewRenderer(printer, nil, logger)
	}

	if workflow == nil {
		workflow = domain.NewWorkflow(fsAdapter, documentLoader, outputStore, printer, ui, renderer)
	}
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// renderSettings reads the render knobs shared by every command. Several
// commands define the same flags, so the running command binds its own.
func renderSettings(cmd *cobra.Command) domain.RenderSettings {
	bindFlagToConfig(cmd.Flags().Lookup(maxFlushRoundsFlagName), maxFlushRoundsConfigKey)
	bindFlagToConfig(cmd.Flags().Lookup(indentFlagName), indentConfigKey)

	return domain.RenderSettings{
		MaxFlushRounds: viper.GetInt(maxFlushRoundsConfigKey),
		Indent:         indentString(viper.GetInt(indentConfigKey)),
	}
}

// configureRenderFlags adds the flags shared by commands that render.
func configureRenderFlags(cmd *cobra.Command) {
	cmd.Flags().Int(maxFlushRoundsFlagName, viper.GetInt(maxFlushRoundsConfigKey), "maximum deferred flush rounds before giving up")
	cmd.Flags().Int(indentFlagName, viper.GetInt(indentConfigKey), "spaces per indentation level")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}

