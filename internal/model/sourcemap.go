package model

// SourceMapVersion is the only supported source map revision.
const SourceMapVersion = 3

// SourceMap is a version 3 source map document.
type SourceMap struct {
	Version    int      `json:"version"`
	Sources    []string `json:"sources"`
	Names      []string `json:"names"`
	Mappings   string   `json:"mappings"`
	File       string   `json:"file,omitempty"`
	SourceRoot string   `json:"sourceRoot,omitempty"`
}

// Mapping correlates a generated position with an authoring position.
// Lines are 1-based; columns are stored as given.
type Mapping struct {
	GeneratedLine   int
	GeneratedColumn int
	Source          string
	OriginalLine    int
	OriginalColumn  int
}
