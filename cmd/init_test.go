package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// chdirTemp moves the test into a fresh directory for the config file.
func chdirTemp(t *testing.T) string {
	t.Helper()

	tempDir := t.TempDir()
	originalWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tempDir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(originalWD)) })

	return tempDir
}

func TestInitCmd_WritesRenderDefaults(t *testing.T) {
	tempDir := chdirTemp(t)

	cmd, out, _ := newTestRoot(t, newInitCmd())
	cmd.SetArgs([]string{"init"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "wrote treejson.yaml (render.max_flush_rounds=64, render.indent=2)\n", out.String())

	contents, err := os.ReadFile(filepath.Join(tempDir, configFileName))
	require.NoError(t, err)

	var written struct {
		Version int `yaml:"version"`
		Render  struct {
			SourceMap      bool `yaml:"source_map"`
			Parallel       int  `yaml:"parallel"`
			MaxFlushRounds int  `yaml:"max_flush_rounds"`
			Indent         int  `yaml:"indent"`
		} `yaml:"render"`
		Log struct {
			Level string `yaml:"level"`
		} `yaml:"log"`
	}
	require.NoError(t, yaml.Unmarshal(contents, &written))

	assert.Equal(t, currentConfigVersion, written.Version)
	assert.Equal(t, defaultMaxFlushRounds, written.Render.MaxFlushRounds)
	assert.Equal(t, defaultIndent, written.Render.Indent)
	assert.Equal(t, defaultParallel, written.Render.Parallel)
	assert.False(t, written.Render.SourceMap)
	assert.Equal(t, defaultLogLevel, written.Log.Level)
}

func TestInitCmd_KeepsExistingFile(t *testing.T) {
	tempDir := chdirTemp(t)

	targetPath := filepath.Join(tempDir, configFileName)
	require.NoError(t, os.WriteFile(targetPath, []byte("render:\n  indent: 8\n"), 0o644))

	cmd, _, _ := newTestRoot(t, newInitCmd())
	cmd.SetArgs([]string{"init"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write config file")

	contents, err := os.ReadFile(targetPath)
	require.NoError(t, err)
	assert.Equal(t, "render:\n  indent: 8\n", string(contents))
}
