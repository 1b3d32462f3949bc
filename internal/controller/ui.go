// Package controller presents treejson results on the terminal.
package controller

import (
	"context"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	m "treejson.dev/pkg/treejson/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeRender StartMode = iota
	ModeView
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode StartMode
}

// WithRenderMode sets the UI to batch rendering mode.
func WithRenderMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeRender
	}
}

// WithViewMode sets the UI to interactive viewing mode.
func WithViewMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeView
	}
}

// LookupFunc resolves a 1-based generated line and column to the authoring
// position that produced it.
type LookupFunc func(line, column int) (m.Mapping, bool)

// DocumentView is one rendered document together with its source map lookup.
type DocumentView struct {
	Source m.Path
	Text   string
	Lookup LookupFunc
}

// UI defines how the workflow reports progress and results.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context)
	DisplayJSON(ctx context.Context, source m.Path, text string) error
	DisplayReport(ctx context.Context, report m.RenderReport)
	DisplaySummary(ctx context.Context, reports []m.RenderReport) error
	DisplayMappings(ctx context.Context, source m.Path, mappings []m.Mapping) error
	DisplayDiff(ctx context.Context, source m.Path, diff string)
	DisplayDocument(ctx context.Context, view DocumentView) error
}

// NewUI picks the interactive TUI when attached to a terminal.
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewTUI(cmd)
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether w is an interactive terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	fd := f.Fd()

	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
