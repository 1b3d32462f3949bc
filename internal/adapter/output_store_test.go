package adapter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "treejson.dev/pkg/treejson/internal/model"
)

func TestOutputStore_OutputPath(t *testing.T) {
	store := NewOutputStore(NewLocalSourceFSAdapter())

	assert.Equal(t, m.Path(filepath.Join("out", "page.json")), store.OutputPath("out", "docs/page.yaml"))
	assert.Equal(t, m.Path(filepath.Join("out", "data.json")), store.OutputPath("out", "data.json"))
	assert.Equal(t, m.Path(filepath.Join("out", "v1.2.json")), store.OutputPath("out", "v1.2.yml"))
}

func TestOutputStore_Save(t *testing.T) {
	store := NewOutputStore(NewLocalSourceFSAdapter())
	path := m.Path(filepath.Join(t.TempDir(), "out", "page.json"))

	sm := &m.SourceMap{Version: 3, Sources: []string{"page.yaml"}, Names: []string{}, Mappings: "AACA"}
	require.NoError(t, store.Save(path, `{"a":1}`, sm))

	data, err := os.ReadFile(string(path))
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":1}\n", string(data))

	raw, err := os.ReadFile(string(path) + ".map")
	require.NoError(t, err)

	var decoded m.SourceMap
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "page.json", decoded.File)
	assert.Equal(t, "AACA", decoded.Mappings)
	assert.Equal(t, []string{"page.yaml"}, decoded.Sources)
}

func TestOutputStore_SaveWithoutSourceMap(t *testing.T) {
	store := NewOutputStore(NewLocalSourceFSAdapter())
	path := m.Path(filepath.Join(t.TempDir(), "page.json"))

	require.NoError(t, store.Save(path, "null", nil))

	_, err := os.Stat(string(path) + ".map")
	assert.True(t, os.IsNotExist(err))
}
