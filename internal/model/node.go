package model

// Kind discriminates the five node variants.
type Kind int

const (
	// ValueKind is a primitive JSON value assembled from fragments.
	ValueKind Kind = iota
	// ArrayKind is an ordered list of items.
	ArrayKind
	// ObjectKind is an ordered list of properties.
	ObjectKind
	// PropertyKind is a key plus at most one value.
	PropertyKind
	// ProxyKind is a transparent grouping node that never reaches the output.
	ProxyKind
)

// String returns the lower-case kind name used in diagnostics and descriptions.
func (k Kind) String() string {
	switch k {
	case ValueKind:
		return "value"
	case ArrayKind:
		return "array"
	case ObjectKind:
		return "object"
	case PropertyKind:
		return "property"
	case ProxyKind:
		return "proxy"
	default:
		return "unknown"
	}
}

// ParseKind maps an element type name to a Kind. "obj" is accepted as an
// alias of "object".
func ParseKind(name string) (Kind, bool) {
	switch name {
	case "value":
		return ValueKind, true
	case "array":
		return ArrayKind, true
	case "obj", "object":
		return ObjectKind, true
	case "property":
		return PropertyKind, true
	case "proxy":
		return ProxyKind, true
	default:
		return 0, false
	}
}

// Node is one element of the tree. The set of implementations is closed:
// *ValueNode, *ArrayNode, *ObjectNode, *PropertyNode and *ProxyNode.
type Node interface {
	Kind() Kind
	// Parent is an advisory back-reference; it never implies ownership.
	Parent() Node
	SetParent(parent Node)
	Origin() *Origin
	SetOrigin(origin *Origin)
	// Children exposes the structural children uniformly across kinds.
	Children() []Node

	sealed()
}

type base struct {
	parent Node
	origin *Origin
}

func (b *base) Parent() Node             { return b.parent }
func (b *base) SetParent(parent Node)    { b.parent = parent }
func (b *base) Origin() *Origin          { return b.origin }
func (b *base) SetOrigin(origin *Origin) { b.origin = origin }
func (b *base) sealed()                  {}

// ValueNode holds a local fragment followed by the resolved values of any
// value nodes merged into it.
type ValueNode struct {
	base
	local  Fragment
	merged []*ValueNode
}

// NewValue creates a value node whose local fragment is f.
func NewValue(f Fragment) *ValueNode {
	return &ValueNode{local: f}
}

// Kind implements Node.
func (v *ValueNode) Kind() Kind { return ValueKind }

// Children implements Node. Fragments are not structural children.
func (v *ValueNode) Children() []Node { return nil }

// Local returns fragment 0.
func (v *ValueNode) Local() Fragment { return v.local }

// SetLocal replaces fragment 0 in place.
func (v *ValueNode) SetLocal(f Fragment) { v.local = f }

// Merged returns the value nodes merged into v, in merge order.
func (v *ValueNode) Merged() []*ValueNode { return v.merged }

// Merge appends child to the fragment sequence.
func (v *ValueNode) Merge(child *ValueNode) { v.merged = append(v.merged, child) }

// Unmerge removes every occurrence of child by identity. It reports whether
// child was present.
func (v *ValueNode) Unmerge(child *ValueNode) bool {
	kept := make([]*ValueNode, 0, len(v.merged))
	for _, m := range v.merged {
		if m != child {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(v.merged) {
		return false
	}
	v.merged = kept
	return true
}

// Fragments returns the full fragment sequence. Merged nodes contribute
// their current resolved value, so later text updates on them are visible.
func (v *ValueNode) Fragments() []Fragment {
	res := make([]Fragment, 0, 1+len(v.merged))
	res = append(res, v.local)
	for _, m := range v.merged {
		res = append(res, m.Resolve())
	}
	return res
}

// Resolve returns the node's value: the sole fragment when there is exactly
// one, otherwise the concatenation of every defined fragment.
func (v *ValueNode) Resolve() Fragment {
	if len(v.merged) == 0 {
		return v.local
	}
	return Concat(v.Fragments())
}

// ArrayNode is an ordered sequence of items.
type ArrayNode struct {
	base
	Items []Node
}

// NewArray creates an array node holding items.
func NewArray(items ...Node) *ArrayNode {
	return &ArrayNode{Items: items}
}

// Kind implements Node.
func (a *ArrayNode) Kind() Kind { return ArrayKind }

// Children implements Node.
func (a *ArrayNode) Children() []Node { return a.Items }

// ObjectNode is an ordered sequence of properties. Members may also be
// proxies that wrap properties.
type ObjectNode struct {
	base
	Properties []Node
}

// NewObject creates an object node holding props.
func NewObject(props ...Node) *ObjectNode {
	return &ObjectNode{Properties: props}
}

// Kind implements Node.
func (o *ObjectNode) Kind() Kind { return ObjectKind }

// Children implements Node.
func (o *ObjectNode) Children() []Node { return o.Properties }

// PropertyNode pairs a key with at most one value.
type PropertyNode struct {
	base
	Key   *ValueNode
	Value Node
}

// NewProperty creates a property keyed by name with an optional value.
func NewProperty(name string, value Node) *PropertyNode {
	return &PropertyNode{Key: NewValue(Scalar(name)), Value: value}
}

// Kind implements Node.
func (p *PropertyNode) Kind() Kind { return PropertyKind }

// Children implements Node.
func (p *PropertyNode) Children() []Node {
	if p.Value == nil {
		return []Node{p.Key}
	}
	return []Node{p.Key, p.Value}
}

// ProxyNode groups any number of nodes and is spliced away on conversion.
type ProxyNode struct {
	base
	Items []Node
}

// NewProxy creates a proxy node holding items.
func NewProxy(items ...Node) *ProxyNode {
	return &ProxyNode{Items: items}
}

// Kind implements Node.
func (p *ProxyNode) Kind() Kind { return ProxyKind }

// Children implements Node.
func (p *ProxyNode) Children() []Node { return p.Items }

var (
	_ Node = (*ValueNode)(nil)
	_ Node = (*ArrayNode)(nil)
	_ Node = (*ObjectNode)(nil)
	_ Node = (*PropertyNode)(nil)
	_ Node = (*ProxyNode)(nil)
)
