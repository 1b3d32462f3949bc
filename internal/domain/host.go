// Package domain contains the tree mutation engine, JSON conversion, source
// map correlation and the render loop that drives them.
package domain

import (
	"fmt"
	"log/slog"

	m "treejson.dev/pkg/treejson/internal/model"
)

// Props carries the creation arguments of a node.
type Props struct {
	// Name is the key of a property.
	Name string
	// Value is the local fragment of a value node.
	Value m.Fragment
}

// Host is the command surface an external engine uses to build and update a
// tree. It is not safe for concurrent use on one tree.
type Host interface {
	CreateNode(kind string, props Props, origin *m.Origin) (m.Node, error)
	CreateText(text string, origin *m.Origin) *m.ValueNode
	AppendChild(parent, child m.Node) (m.Node, error)
	RemoveChild(parent, child m.Node)
	ClearContainer(parent m.Node)
	SetText(node *m.ValueNode, f m.Fragment)
}

type host struct {
	logger *slog.Logger
}

// NewHost creates a Host that logs structural commands to logger. A nil
// logger uses slog.Default().
func NewHost(logger *slog.Logger) Host {
	if logger == nil {
		logger = slog.Default()
	}
	return &host{logger: logger}
}

func (h *host) CreateNode(kind string, props Props, origin *m.Origin) (m.Node, error) {
	k, ok := m.ParseKind(kind)
	if !ok {
		return nil, fmt.Errorf("%w: cannot create instance of type %q", ErrUnsupportedKind, kind)
	}

	var node m.Node

	switch k {
	case m.ArrayKind:
		node = m.NewArray()
	case m.ObjectKind:
		node = m.NewObject()
	case m.PropertyKind:
		node = m.NewProperty(props.Name, nil)
	case m.ValueKind:
		node = m.NewValue(props.Value)
	case m.ProxyKind:
		node = m.NewProxy()
	}

	node.SetOrigin(origin)
	h.logger.Debug("created node", "kind", k, "origin", origin.Position())

	return node, nil
}

func (h *host) CreateText(text string, origin *m.Origin) *m.ValueNode {
	node := m.NewValue(m.Scalar(text))
	node.SetOrigin(origin)

	return node
}

func (h *host) AppendChild(parent, child m.Node) (m.Node, error) {
	return appendChild(h.logger, parent, child)
}

func appendChild(logger *slog.Logger, parent, child m.Node) (m.Node, error) {
	child.SetParent(parent)

	if err := Validate(parent, child); err != nil {
		logger.Debug("rejected append", "parent", parent.Kind(), "child", child.Kind(), "error", err)
		return nil, err
	}

	switch p := parent.(type) {
	case *m.ArrayNode:
		p.Items = append(p.Items, child)
	case *m.ObjectNode:
		p.Properties = append(p.Properties, child)
	case *m.PropertyNode:
		if p.Value != nil {
			if _, err := appendChild(logger, p.Value, child); err != nil {
				return nil, err
			}
		} else {
			p.Value = child
		}
	case *m.ValueNode:
		mergeValues(p, child)
	case *m.ProxyNode:
		p.Items = append(p.Items, child)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnexpectedNode, parent)
	}

	return parent, nil
}

// mergeValues folds child into parent's fragment sequence. Validate has
// already established that child is a value or a proxy of values.
func mergeValues(parent *m.ValueNode, child m.Node) {
	if v, ok := child.(*m.ValueNode); ok {
		parent.Merge(v)
		return
	}

	for _, item := range Flatten(child.Children()) {
		if v, ok := item.(*m.ValueNode); ok {
			parent.Merge(v)
		}
	}
}

func (h *host) RemoveChild(parent, child m.Node) {
	switch p := parent.(type) {
	case *m.ArrayNode:
		p.Items = removeNode(p.Items, child)
	case *m.ObjectNode:
		p.Properties = removeNode(p.Properties, child)
	case *m.PropertyNode:
		if p.Value == child {
			p.Value = nil
		}
	case *m.ValueNode:
		unmergeValues(p, child)
	case *m.ProxyNode:
		p.Items = removeNode(p.Items, child)
	}
}

// unmergeValues reverses mergeValues. A proxy child contributed its
// flattened values, so each of them is unmerged.
func unmergeValues(parent *m.ValueNode, child m.Node) {
	if v, ok := child.(*m.ValueNode); ok {
		parent.Unmerge(v)
		return
	}

	if _, ok := child.(*m.ProxyNode); !ok {
		return
	}

	for _, item := range Flatten(child.Children()) {
		if v, ok := item.(*m.ValueNode); ok {
			parent.Unmerge(v)
		}
	}
}

// removeNode drops every occurrence of child by identity, returning nodes
// unchanged when absent.
func removeNode(nodes []m.Node, child m.Node) []m.Node {
	var res []m.Node

	for i, n := range nodes {
		if n != child {
			if res != nil {
				res = append(res, n)
			}
			continue
		}
		if res == nil {
			res = make([]m.Node, 0, len(nodes)-1)
			res = append(res, nodes[:i]...)
		}
	}

	if res == nil {
		return nodes
	}

	return res
}

func (h *host) ClearContainer(parent m.Node) {
	switch p := parent.(type) {
	case *m.ArrayNode:
		p.Items = nil
	case *m.ObjectNode:
		p.Properties = nil
	case *m.PropertyNode:
		p.Value = nil
	case *m.ValueNode, *m.ProxyNode:
	}
}

func (h *host) SetText(node *m.ValueNode, f m.Fragment) {
	node.SetLocal(f)
}
