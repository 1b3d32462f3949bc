package domain

import (
	"context"
	"fmt"
	"log/slog"

	"treejson.dev/pkg/treejson/internal/adapter"
	m "treejson.dev/pkg/treejson/internal/model"
)

// DefaultMaxFlushRounds bounds the flush loop when RenderOptions leaves it unset.
const DefaultMaxFlushRounds = 64

// DefaultIndent is the pretty-print indentation.
const DefaultIndent = "  "

// Driver builds a tree through a Host. Update mounts the initial tree into
// root; deferred work is then drained by calling Flush while Pending
// reports true.
type Driver interface {
	Update(ctx context.Context, host Host, root m.Node) error
	Pending() bool
	// Flush runs one round of deferred work. A returned error belongs to a
	// deferred callback and does not abort the render.
	Flush(ctx context.Context, host Host) error
}

// ErrorReporter receives errors raised by deferred callbacks.
type ErrorReporter func(err error)

// RenderOptions controls a single render.
type RenderOptions struct {
	CollectSourceMap bool
	MaxFlushRounds   int
	Indent           string
}

// RenderResult holds the converted output of a render.
type RenderResult struct {
	JSONValue   any
	StringValue string
	SourceMap   *m.SourceMap
	RootNode    m.Node
	// Rounds is the number of flush rounds the tree needed to settle.
	Rounds int
}

// Renderer drives a Driver to a settled tree and converts it.
type Renderer interface {
	Render(ctx context.Context, driver Driver, opts RenderOptions) (RenderResult, error)
}

type renderer struct {
	adapter.Printer
	host     Host
	reporter ErrorReporter
	logger   *slog.Logger
}

// NewRenderer creates a Renderer. A nil reporter logs deferred errors at
// error level.
func NewRenderer(printer adapter.Printer, reporter ErrorReporter, logger *slog.Logger) Renderer {
	if logger == nil {
		logger = slog.Default()
	}

	if reporter == nil {
		reporter = func(err error) {
			logger.Error("deferred callback failed", "error", err)
		}
	}

	return &renderer{
		Printer:  printer,
		host:     NewHost(logger),
		reporter: reporter,
		logger:   logger,
	}
}

func (r *renderer) Render(ctx context.Context, driver Driver, opts RenderOptions) (RenderResult, error) {
	maxRounds := opts.MaxFlushRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxFlushRounds
	}

	indent := opts.Indent
	if indent == "" {
		indent = DefaultIndent
	}

	root := m.NewProxy()

	if err := driver.Update(ctx, r.host, root); err != nil {
		return RenderResult{}, fmt.Errorf("update: %w", err)
	}

	rounds, err := r.settle(ctx, driver, maxRounds)
	if err != nil {
		return RenderResult{}, err
	}

	value, err := ConvertRoot(root)
	if err != nil {
		return RenderResult{}, fmt.Errorf("convert: %w", err)
	}

	printed, err := r.Print(value, indent)
	if err != nil {
		return RenderResult{}, fmt.Errorf("print: %w", err)
	}

	result := RenderResult{
		JSONValue:   value,
		StringValue: printed.Text,
		RootNode:    root,
		Rounds:      rounds,
	}

	if opts.CollectSourceMap && value != nil {
		result.SourceMap = BuildSourceMap(root, printed.Pointers)
	}

	r.logger.Debug("rendered tree", "rounds", rounds, "bytes", len(printed.Text))

	return result, nil
}

// settle flushes deferred work until the driver has nothing pending.
func (r *renderer) settle(ctx context.Context, driver Driver, maxRounds int) (int, error) {
	rounds := 0

	for driver.Pending() {
		if err := ctx.Err(); err != nil {
			return rounds, err
		}

		if rounds == maxRounds {
			return rounds, fmt.Errorf("%w after %d flush rounds", ErrUnsettled, rounds)
		}

		rounds++

		if err := driver.Flush(ctx, r.host); err != nil {
			r.reporter(fmt.Errorf("flush round %d: %w", rounds, err))
		}
	}

	return rounds, nil
}

// Render is a convenience wrapper that renders with a default Renderer.
func Render(ctx context.Context, driver Driver, opts RenderOptions) (RenderResult, error) {
	return NewRenderer(adapter.NewJSONPrinter(), nil, nil).Render(ctx, driver, opts)
}

// FormatJSON pretty prints any converted value.
func FormatJSON(printer adapter.Printer, value any, indent string) (string, error) {
	if indent == "" {
		indent = DefaultIndent
	}

	printed, err := printer.Print(value, indent)
	if err != nil {
		return "", err
	}

	return printed.Text, nil
}
