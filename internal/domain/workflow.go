package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/sergi/go-diff/diffmatchpatch"
	"golang.org/x/sync/errgroup"

	"treejson.dev/pkg/treejson/internal/adapter"
	"treejson.dev/pkg/treejson/internal/controller"
	m "treejson.dev/pkg/treejson/internal/model"
	pkg "treejson.dev/pkg/treejson/pkg"
)

var (
	// ErrRenderFailed is returned when at least one input of a batch failed.
	ErrRenderFailed = errors.New("render failed")
	// ErrOutputDiffers is returned by Check when the rendered JSON does not
	// match the expected document.
	ErrOutputDiffers = errors.New("output differs from expected")
	// ErrNoInputs is returned when the given paths contain no descriptions.
	ErrNoInputs = errors.New("no input files")
)

// inputExtensions are the file types picked up when walking a directory.
var inputExtensions = map[string]bool{".yaml": true, ".yml": true, ".json": true}

// RenderSettings are the per-render knobs shared by every command.
type RenderSettings struct {
	MaxFlushRounds int
	Indent         string
}

// RenderArgs contains the arguments for rendering a batch of descriptions.
type RenderArgs struct {
	RenderSettings
	Paths     []m.Path
	Output    m.Path // empty prints to stdout
	SourceMap bool
	Parallel  int
	SpillDir  string
}

// ConvertArgs contains the arguments for converting static data.
type ConvertArgs struct {
	Paths  []m.Path
	Patch  m.Path
	Output m.Path
	Indent string
}

// CheckArgs contains the arguments for comparing a render with expected JSON.
type CheckArgs struct {
	RenderSettings
	Path   m.Path
	Expect m.Path
}

// MappingsArgs contains the arguments for listing source map entries.
type MappingsArgs struct {
	RenderSettings
	Path m.Path
}

// ViewArgs contains the arguments for the interactive viewer.
type ViewArgs struct {
	RenderSettings
	Path m.Path
}

// Workflow runs the treejson commands end to end.
type Workflow interface {
	Render(ctx context.Context, args RenderArgs) error
	Convert(ctx context.Context, args ConvertArgs) error
	Check(ctx context.Context, args CheckArgs) error
	Mappings(ctx context.Context, args MappingsArgs) error
	View(ctx context.Context, args ViewArgs) error
}

type workflow struct {
	adapter.SourceFSAdapter
	adapter.DocumentLoader
	adapter.OutputStore
	adapter.Printer
	controller.UI
	Renderer
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	loader adapter.DocumentLoader,
	store adapter.OutputStore,
	printer adapter.Printer,
	ui controller.UI,
	renderer Renderer,
) Workflow {
	return &workflow{
		SourceFSAdapter: fsAdapter,
		DocumentLoader:  loader,
		OutputStore:     store,
		Printer:         printer,
		UI:              ui,
		Renderer:        renderer,
	}
}

func (w *workflow) Render(ctx context.Context, args RenderArgs) error {
	inputs, err := w.collectInputs(args.Paths)
	if err != nil {
		return fmt.Errorf("collect inputs: %w", err)
	}

	if err := w.Start(ctx, controller.WithRenderMode()); err != nil {
		return fmt.Errorf("start ui: %w", err)
	}
	defer w.Close(ctx)

	reports, err := pkg.NewFileSpill[m.RenderReport](pkg.WithDir(spillDir(args.SpillDir)))
	if err != nil {
		return fmt.Errorf("create report spill: %w", err)
	}

	defer func() {
		if err := reports.Remove(); err != nil {
			slog.Warn("failed to remove report spill", "path", reports.Path(), "error", err)
		}
	}()

	var stdout sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	if args.Parallel > 0 {
		group.SetLimit(args.Parallel)
	}

	for _, input := range inputs {
		group.Go(func() error {
			report := w.renderOne(groupCtx, input, args, &stdout)
			w.DisplayReport(groupCtx, report)

			return reports.Append(report)
		})
	}

	if err := group.Wait(); err != nil {
		return fmt.Errorf("render batch: %w", err)
	}

	summary, err := summarizeReports(reports)
	if err != nil {
		return fmt.Errorf("read reports: %w", err)
	}

	if len(summary.Reports) > 1 || args.Output != "" {
		if err := w.DisplaySummary(ctx, summary.Reports); err != nil {
			return fmt.Errorf("display summary: %w", err)
		}
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%w: %d of %d inputs", ErrRenderFailed, summary.Failed, len(summary.Reports))
	}

	return nil
}

func spillDir(dir string) string {
	if dir == "" {
		return pkg.DefaultSpillDir()
	}

	return dir
}

// renderOne renders a single input and records the outcome. Failures are
// reported rather than returned so one bad input does not cancel the batch.
func (w *workflow) renderOne(ctx context.Context, input m.Path, args RenderArgs, stdout *sync.Mutex) m.RenderReport {
	report := m.RenderReport{Source: input, Status: m.Rendered}

	fail := func(err error) m.RenderReport {
		slog.Error("render failed", "source", input, "error", err)

		report.Status = m.Failed
		report.Message = err.Error()

		return report
	}

	result, err := w.renderFile(ctx, input, args.RenderSettings, args.SourceMap && args.Output != "")
	if err != nil {
		return fail(err)
	}

	report.Bytes = len(result.StringValue)
	report.Rounds = result.Rounds
	report.Mappings = len(CollectMappingsOf(result))

	if args.Output == "" {
		stdout.Lock()
		defer stdout.Unlock()

		if err := w.DisplayJSON(ctx, input, result.StringValue); err != nil {
			return fail(err)
		}

		return report
	}

	report.Output = w.OutputPath(args.Output, input)
	if err := w.Save(report.Output, result.StringValue, result.SourceMap); err != nil {
		return fail(err)
	}

	return report
}

// CollectMappingsOf returns the mappings carried by a render result.
func CollectMappingsOf(result RenderResult) []m.Mapping {
	if result.SourceMap == nil {
		return nil
	}

	mappings, err := DecodeMappings(result.SourceMap)
	if err != nil {
		return nil
	}

	return mappings
}

func (w *workflow) renderFile(ctx context.Context, path m.Path, settings RenderSettings, sourceMap bool) (RenderResult, error) {
	data, err := w.ReadFile(path)
	if err != nil {
		return RenderResult{}, fmt.Errorf("read %s: %w", path, err)
	}

	doc, err := w.ParseDocument(string(path), data)
	if err != nil {
		return RenderResult{}, err
	}

	return w.Renderer.Render(ctx, NewElementDriver(doc), RenderOptions{
		CollectSourceMap: sourceMap,
		MaxFlushRounds:   settings.MaxFlushRounds,
		Indent:           settings.Indent,
	})
}

// collectInputs expands directories into the description files they hold.
// A path ending in "/..." is walked recursively.
func (w *workflow) collectInputs(paths []m.Path) ([]m.Path, error) {
	if len(paths) == 0 {
		return nil, ErrNoInputs
	}

	seen := map[m.Path]bool{}

	var inputs []m.Path

	add := func(p m.Path) {
		if !seen[p] {
			seen[p] = true
			inputs = append(inputs, p)
		}
	}

	for _, path := range paths {
		root, recursive := strings.CutSuffix(string(path), "/...")
		if root == "..." {
			root, recursive = ".", true
		}

		info, err := w.FileInfo(m.Path(root))
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			add(path)
			continue
		}

		err = w.Walk(m.Path(root), recursive, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if !fi.IsDir() && inputExtensions[strings.ToLower(filepath.Ext(p))] {
				add(m.Path(p))
			}

			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}

	return inputs, nil
}

func (w *workflow) Convert(ctx context.Context, args ConvertArgs) error {
	inputs, err := w.collectInputs(args.Paths)
	if err != nil {
		return fmt.Errorf("collect inputs: %w", err)
	}

	var patch jsonpatch.Patch

	if args.Patch != "" {
		patch, err = w.loadPatch(args.Patch)
		if err != nil {
			return err
		}
	}

	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			return err
		}

		text, err := w.convertFile(input, patch, args.Indent)
		if err != nil {
			return fmt.Errorf("%s: %w", input, err)
		}

		if args.Output == "" {
			if err := w.DisplayJSON(ctx, input, text); err != nil {
				return err
			}

			continue
		}

		out := w.OutputPath(args.Output, input)
		if err := w.Save(out, text, nil); err != nil {
			return err
		}

		w.DisplayReport(ctx, m.RenderReport{Source: input, Output: out, Status: m.Rendered, Bytes: len(text)})
	}

	return nil
}

// loadPatch reads an RFC 6902 patch written as JSON or YAML.
func (w *workflow) loadPatch(path m.Path) (jsonpatch.Patch, error) {
	data, err := w.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read patch: %w", err)
	}

	ops, err := w.ParseData(data)
	if err != nil {
		return nil, fmt.Errorf("parse patch: %w", err)
	}

	raw, err := json.Marshal(ops)
	if err != nil {
		return nil, fmt.Errorf("encode patch: %w", err)
	}

	patch, err := jsonpatch.DecodePatch(raw)
	if err != nil {
		return nil, fmt.Errorf("decode patch: %w", err)
	}

	return patch, nil
}

func (w *workflow) convertFile(path m.Path, patch jsonpatch.Patch, indent string) (string, error) {
	data, err := w.ReadFile(path)
	if err != nil {
		return "", err
	}

	value, err := w.ParseData(data)
	if err != nil {
		return "", err
	}

	if patch != nil {
		value, err = w.applyPatch(value, patch)
		if err != nil {
			return "", err
		}
	}

	node, err := FromJSON(value)
	if err != nil {
		return "", err
	}

	converted, err := ConvertRoot(node)
	if err != nil {
		return "", err
	}

	return FormatJSON(w.Printer, converted, indent)
}

func (w *workflow) applyPatch(value any, patch jsonpatch.Patch) (any, error) {
	doc, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	patched, err := patch.Apply(doc)
	if err != nil {
		return nil, fmt.Errorf("apply patch: %w", err)
	}

	return w.ParseData(patched)
}

func (w *workflow) Check(ctx context.Context, args CheckArgs) error {
	result, err := w.renderFile(ctx, args.Path, args.RenderSettings, false)
	if err != nil {
		return err
	}

	data, err := w.ReadFile(args.Expect)
	if err != nil {
		return fmt.Errorf("read expected: %w", err)
	}

	expectedValue, err := w.ParseData(data)
	if err != nil {
		return fmt.Errorf("parse expected: %w", err)
	}

	expected, err := FormatJSON(w.Printer, expectedValue, args.Indent)
	if err != nil {
		return fmt.Errorf("format expected: %w", err)
	}

	if expected == result.StringValue {
		w.DisplayReport(ctx, m.RenderReport{Source: args.Path, Status: m.Rendered, Bytes: len(result.StringValue)})
		return nil
	}

	w.DisplayDiff(ctx, args.Path, LineDiff(expected, result.StringValue))
	w.DisplayReport(ctx, m.RenderReport{Source: args.Path, Status: m.Differs, Bytes: len(result.StringValue)})

	return fmt.Errorf("%w: %s", ErrOutputDiffers, args.Path)
}

// LineDiff renders a unified-style line diff: removed lines start with "-",
// added lines with "+" and shared lines with a space.
func LineDiff(expected, actual string) string {
	dmp := diffmatchpatch.New()

	a, b, lines := dmp.DiffLinesToChars(ensureNewline(expected), ensureNewline(actual))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out strings.Builder

	for _, d := range diffs {
		prefix := " "

		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffEqual:
		}

		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}

			out.WriteString(prefix)
			out.WriteString(line)
		}
	}

	return out.String()
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}

	return s + "\n"
}

func (w *workflow) Mappings(ctx context.Context, args MappingsArgs) error {
	result, err := w.renderFile(ctx, args.Path, args.RenderSettings, true)
	if err != nil {
		return err
	}

	consumer, err := NewSourceMapConsumer(result.SourceMap)
	if err != nil {
		return err
	}

	return w.DisplayMappings(ctx, args.Path, consumer.Mappings())
}

func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	result, err := w.renderFile(ctx, args.Path, args.RenderSettings, true)
	if err != nil {
		return err
	}

	consumer, err := NewSourceMapConsumer(result.SourceMap)
	if err != nil {
		return err
	}

	if err := w.Start(ctx, controller.WithViewMode()); err != nil {
		return err
	}
	defer w.Close(ctx)

	err = w.DisplayDocument(ctx, controller.DocumentView{
		Source: args.Path,
		Text:   result.StringValue,
		Lookup: consumer.OriginalPositionFor,
	})
	if err != nil {
		return err
	}

	w.Wait(ctx)

	return nil
}

// RenderSummary is the aggregate of a spilled batch.
type RenderSummary struct {
	Reports []m.RenderReport
	Failed  int
}

// summarizeReports reads every spilled report, sorted by source path.
func summarizeReports(reports pkg.FileSpill[m.RenderReport]) (RenderSummary, error) {
	var summary RenderSummary

	err := reports.Range(func(_ uint64, report m.RenderReport) error {
		if report.Status != m.Rendered {
			summary.Failed++
		}

		summary.Reports = append(summary.Reports, report)

		return nil
	})
	if err != nil {
		return RenderSummary{}, err
	}

	sort.Slice(summary.Reports, func(i, j int) bool {
		return summary.Reports[i].Source < summary.Reports[j].Source
	})

	return summary, nil
}
