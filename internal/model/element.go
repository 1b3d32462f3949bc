package model

// ElementType names what an element creates. Node kinds use their Kind
// names; the remaining types are driver-level constructs.
type ElementType string

const (
	// ElementText is a bare scalar child; it becomes a text value node.
	ElementText ElementType = "text"
	// ElementPortal mounts its children into the node registered under
	// Target once the surrounding tree has committed.
	ElementPortal ElementType = "portal"
)

// Element describes one node of a declarative tree.
type Element struct {
	Type     ElementType
	Name     string   // property key
	Value    Fragment // value local fragment, or the text of a text element
	Ref      string
	Target   string // portal target ref
	Deferred bool
	Children []*Element
	Origin   *Origin
}

// EffectOp is a deferred mutation command.
type EffectOp string

// Supported effect operations.
const (
	EffectAppend  EffectOp = "append"
	EffectRemove  EffectOp = "remove"
	EffectClear   EffectOp = "clear"
	EffectSetText EffectOp = "setText"
)

// Effect runs after commit against nodes registered by ref.
type Effect struct {
	Op     EffectOp
	Target string   // parent (append/remove/clear) or value node (setText)
	Child  string   // ref of the child to remove
	Text   Fragment // setText payload
	Node   *Element // element to mount for append
	Origin *Origin
}

// Document is a parsed description: a root element plus post-commit
// effects.
type Document struct {
	Path    Path
	Root    *Element
	Effects []*Effect
}
