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

func TestConvertCmd_PassesPatch(t *testing.T) {
	mockWorkflow := withMockWorkflow(t)

	cmd, _, _ := newTestRoot(t, newConvertCmd())

	mockWorkflow.On("Convert", mock.Anything, mock.MatchedBy(func(args domain.ConvertArgs) bool {
		return args.Patch == m.Path("fix.json") &&
			len(args.Paths) == 1 &&
			args.Paths[0] == m.Path("data.yaml")
	})).Return(nil)

	cmd.SetArgs([]string{"convert", "--patch", "fix.json", "data.yaml"})
	require.NoError(t, cmd.Execute())
}

func TestConvertCmd_EndToEnd(t *testing.T) {
	withFreshDependencies(t)

	dir := t.TempDir()
	input := filepath.Join(dir, "data.yaml")
	require.NoError(t, os.WriteFile(input, []byte("b: 1\na:\n  - x\n  - true\n"), 0o600))

	cmd, out, _ := newTestRoot(t, newConvertCmd())
	cmd.SetArgs([]string{"convert", input})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "{\n  \"b\": 1,\n  \"a\": [\n    \"x\",\n    true\n  ]\n}\n", out.String())
}
