package controller

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "treejson.dev/pkg/treejson/internal/model"
)

// SimpleUI implements UI using cobra Command's output streams.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, _ ...StartOption) error {
	return ctx.Err()
}

// Close finalizes the UI.
func (s *SimpleUI) Close(context.Context) {}

// Wait returns immediately; SimpleUI never blocks.
func (s *SimpleUI) Wait(context.Context) {}

// DisplayJSON prints rendered JSON to stdout.
func (s *SimpleUI) DisplayJSON(ctx context.Context, _ m.Path, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("%s\n", text)

	return nil
}

// DisplayReport prints a one-line status for a finished input.
func (s *SimpleUI) DisplayReport(ctx context.Context, report m.RenderReport) {
	if ctx.Err() != nil {
		return
	}

	line := fmt.Sprintf("%s %s", statusLabel(report.Status), report.Source)
	if report.Output != "" {
		line += " -> " + string(report.Output)
	}

	if report.Message != "" {
		line += ": " + report.Message
	}

	s.errorf("%s\n", line)
}

// DisplaySummary prints a table of batch results.
func (s *SimpleUI) DisplaySummary(ctx context.Context, reports []m.RenderReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.errorf("\n%s", renderSummaryTable(reports))

	return nil
}

func renderSummaryTable(reports []m.RenderReport) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Source", "Status", "Bytes", "Mappings", "Rounds"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
	})

	failed := 0

	for _, r := range reports {
		if r.Status != m.Rendered {
			failed++
		}

		table.Append([]string{
			string(r.Source),
			r.Status.String(),
			fmt.Sprintf("%d", r.Bytes),
			fmt.Sprintf("%d", r.Mappings),
			fmt.Sprintf("%d", r.Rounds),
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total %d", len(reports)),
		fmt.Sprintf("%d failed", failed),
		"", "", "",
	})

	table.Render()

	return tableBuffer.String()
}

// DisplayMappings prints every mapping of a source map as a table.
func (s *SimpleUI) DisplayMappings(ctx context.Context, source m.Path, mappings []m.Mapping) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("%s\n%s", source, renderMappingTable(mappings))

	return nil
}

func renderMappingTable(mappings []m.Mapping) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Generated", "Source", "Original"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})

	for _, mp := range mappings {
		table.Append([]string{
			fmt.Sprintf("%d:%d", mp.GeneratedLine, mp.GeneratedColumn),
			mp.Source,
			fmt.Sprintf("%d:%d", mp.OriginalLine, mp.OriginalColumn),
		})
	}

	table.Render()

	return tableBuffer.String()
}

// DisplayDiff prints a line diff between expected and rendered output.
func (s *SimpleUI) DisplayDiff(ctx context.Context, source m.Path, diff string) {
	if ctx.Err() != nil {
		return
	}

	s.printf("--- expected %s\n+++ rendered %s\n", source, source)

	for _, line := range strings.SplitAfter(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "+"):
			s.printf("%s", color.GreenString("%s", line))
		case strings.HasPrefix(line, "-"):
			s.printf("%s", color.RedString("%s", line))
		default:
			s.printf("%s", line)
		}
	}
}

// DisplayDocument prints the rendered text with the origin of each line.
func (s *SimpleUI) DisplayDocument(ctx context.Context, view DocumentView) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for i, line := range annotateLines(view) {
		s.printf("%4d  %s\n", i+1, line)
	}

	return nil
}

// annotateLines appends the authoring position of each generated line.
func annotateLines(view DocumentView) []string {
	lines := strings.Split(view.Text, "\n")
	res := make([]string, 0, len(lines))

	for i, line := range lines {
		origin := ""
		if view.Lookup != nil {
			if mp, ok := view.Lookup(i+1, len(line)+1); ok {
				origin = fmt.Sprintf("%s:%d:%d", mp.Source, mp.OriginalLine, mp.OriginalColumn)
			}
		}

		if origin != "" {
			line = fmt.Sprintf("%s  %s", line, color.HiBlackString("<- %s", origin))
		}

		res = append(res, line)
	}

	return res
}

func statusLabel(status m.RenderStatus) string {
	switch status {
	case m.Rendered:
		return color.GreenString("✓ %s", status)
	case m.Differs:
		return color.YellowString("≠ %s", status)
	case m.Failed:
		return color.RedString("✗ %s", status)
	default:
		return status.String()
	}
}

func (s *SimpleUI) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func (s *SimpleUI) errorf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.cmd.ErrOrStderr(), format, args...)
}
