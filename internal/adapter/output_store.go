package adapter

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	m "treejson.dev/pkg/treejson/internal/model"
)

// OutputStore persists rendered JSON and its source map next to each other.
type OutputStore interface {
	// OutputPath maps an input path to the JSON file written for it.
	OutputPath(dir m.Path, source m.Path) m.Path
	// Save writes text to path and, when sm is non-nil, path + ".map".
	Save(path m.Path, text string, sm *m.SourceMap) error
}

type outputStore struct {
	fs SourceFSAdapter
}

// NewOutputStore creates an OutputStore writing through fs.
func NewOutputStore(fs SourceFSAdapter) OutputStore {
	return &outputStore{fs: fs}
}

func (s *outputStore) OutputPath(dir m.Path, source m.Path) m.Path {
	base := filepath.Base(string(source))
	base = strings.TrimSuffix(base, filepath.Ext(base))

	return s.fs.JoinPath(string(dir), base+".json")
}

func (s *outputStore) Save(path m.Path, text string, sm *m.SourceMap) error {
	if sm != nil {
		sm.File = filepath.Base(string(path))
	}

	if err := s.fs.WriteFile(path, []byte(text+"\n"), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	if sm == nil {
		return nil
	}

	data, err := json.Marshal(sm)
	if err != nil {
		return fmt.Errorf("encode source map: %w", err)
	}

	mapPath := path + ".map"
	if err := s.fs.WriteFile(mapPath, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", mapPath, err)
	}

	return nil
}
