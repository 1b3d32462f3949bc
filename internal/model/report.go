// Package model defines the node tree and the data exchanged between the
// treejson layers.
package model

// RenderStatus represents the outcome of rendering one input.
type RenderStatus int

const (
	// Rendered indicates the input converted successfully.
	Rendered RenderStatus = iota
	// Failed indicates conversion or driver failure.
	Failed
	// Differs indicates the output did not match the expected JSON.
	Differs
)

func (s RenderStatus) String() string {
	switch s {
	case Rendered:
		return "rendered"
	case Failed:
		return "failed"
	case Differs:
		return "differs"
	default:
		return "unknown"
	}
}

// RenderReport records the outcome of rendering a single input.
type RenderReport struct {
	Source   Path
	Output   Path // empty when written to stdout
	Status   RenderStatus
	Bytes    int
	Mappings int
	Rounds   int
	Message  string // error text; kept as a string so reports can be spilled with gob
}
