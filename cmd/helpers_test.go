package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"treejson.dev/pkg/treejson/internal/adapter"
	"treejson.dev/pkg/treejson/internal/controller"
	"treejson.dev/pkg/treejson/internal/domain"
	domainmocks "treejson.dev/pkg/treejson/internal/domain/mocks"
)

// withMockWorkflow swaps the shared workflow for a mock for one test.
func withMockWorkflow(t *testing.T) *domainmocks.MockWorkflow {
	t.Helper()

	mockWorkflow := domainmocks.NewMockWorkflow(t)

	originalWorkflow := workflow
	workflow = mockWorkflow

	t.Cleanup(func() { workflow = originalWorkflow })

	return mockWorkflow
}

// withFreshDependencies clears the shared dependencies so the next command
// wires real adapters against its own output streams.
func withFreshDependencies(t *testing.T) {
	t.Helper()

	saved := struct {
		fs       adapter.SourceFSAdapter
		loader   adapter.DocumentLoader
		store    adapter.OutputStore
		printer  adapter.Printer
		renderer domain.Renderer
		workflow domain.Workflow
		ui       controller.UI
	}{fsAdapter, documentLoader, outputStore, printer, renderer, workflow, ui}

	fsAdapter, documentLoader, outputStore, printer, renderer, workflow, ui = nil, nil, nil, nil, nil, nil, nil

	t.Cleanup(func() {
		fsAdapter, documentLoader, outputStore = saved.fs, saved.loader, saved.store
		printer, renderer, workflow, ui = saved.printer, saved.renderer, saved.workflow, saved.ui
	})
}

// withTempLog keeps test runs from writing the log into the package directory.
func withTempLog(t *testing.T) {
	t.Helper()

	viper.Set(logFilenameKey, filepath.Join(t.TempDir(), "treejson.log"))
	t.Cleanup(func() { viper.Set(logFilenameKey, defaultLogFilename) })
}

// newTestRoot builds a root command with sub attached and captured output.
func newTestRoot(t *testing.T, sub *cobra.Command) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	withTempLog(t)

	// Flags bind to viper keys; drop those bindings so later tests start
	// from the defaults again.
	t.Cleanup(func() {
		viper.Reset()
		registerDefaults()
	})

	cmd := newRootCmd()
	cmd.AddCommand(sub)

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	return cmd, out, errOut
}
