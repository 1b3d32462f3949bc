package cmd

import (
	"github.com/spf13/cobra"

	"treejson.dev/pkg/treejson/internal/domain"
	m "treejson.dev/pkg/treejson/internal/model"
)

var checkExpectFlag string

// checkCmd represents the check command.
var checkCmd = newCheckCmd()

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <file> --expect <json>",
		Short: "Compare a rendered description with expected JSON",
		Long: `Render a single element description and compare it with an expected
JSON or YAML document. Differences are shown as a line diff and the
command exits with a non-zero status.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.Check(cmd.Context(), domain.CheckArgs{
				RenderSettings: renderSettings(cmd),
				Path:           m.Path(args[0]),
				Expect:         m.Path(checkExpectFlag),
			})
		},
	}

	configureRenderFlags(cmd)
	cmd.Flags().StringVarP(&checkExpectFlag, "expect", "e", "", "expected JSON or YAML document")
	cobra.CheckErr(cmd.MarkFlagRequired("expect"))

	return cmd
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
