package model

import "fmt"

// Path represents a file system path.
type Path string

// Origin is the authoring location recorded on a node at creation.
type Origin struct {
	File   string
	Line   int
	Column int
}

// NewOrigin builds an origin, defaulting a missing column to 1.
func NewOrigin(file string, line, column int) *Origin {
	if column <= 0 {
		column = 1
	}
	return &Origin{File: file, Line: line, Column: column}
}

// String renders file:line, the form used in nesting diagnostics.
func (o *Origin) String() string {
	if o == nil {
		return ""
	}
	return fmt.Sprintf("%s:%d", o.File, o.Line)
}

// Position renders file:line:column.
func (o *Origin) Position() string {
	if o == nil {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", o.File, o.Line, o.Column)
}
