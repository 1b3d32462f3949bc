package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"treejson.dev/pkg/treejson/internal/domain"
	m "treejson.dev/pkg/treejson/internal/model"
)

func TestViewCmd_PassesPath(t *testing.T) {
	mockWorkflow := withMockWorkflow(t)

	cmd, _, _ := newTestRoot(t, newViewCmd())

	mockWorkflow.On("View", mock.Anything, mock.MatchedBy(func(args domain.ViewArgs) bool {
		return args.Path == m.Path("doc.yaml")
	})).Return(nil)

	cmd.SetArgs([]string{"view", "doc.yaml"})
	require.NoError(t, cmd.Execute())
}

func TestViewCmd_RequiresOnePath(t *testing.T) {
	withMockWorkflow(t)

	cmd, _, _ := newTestRoot(t, newViewCmd())

	cmd.SetArgs([]string{"view"})
	assert.Error(t, cmd.Execute())
}

func TestViewCmd_PlainOutputAnnotatesOrigins(t *testing.T) {
	withFreshDependencies(t)

	dir := t.TempDir()
	input := filepath.Join(dir, "doc.yaml")
	require.NoError(t, os.WriteFile(input, []byte("root:\n  array:\n    - value: 1\n"), 0o600))

	cmd, out, _ := newTestRoot(t, newViewCmd())
	cmd.SetArgs([]string{"view", input})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "   1  [")
	assert.Contains(t, out.String(), input+":2:3")
	assert.Contains(t, out.String(), input+":3:7")
}
