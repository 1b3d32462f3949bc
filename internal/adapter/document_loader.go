package adapter

import (
	"errors"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	m "treejson.dev/pkg/treejson/internal/model"
)

// ErrInvalidDocument is returned when a description does not follow the
// element syntax.
var ErrInvalidDocument = errors.New("invalid document")

// DocumentLoader parses element descriptions and static data. Both YAML
// and JSON inputs are accepted.
type DocumentLoader interface {
	// ParseDocument reads an element description. name is recorded as the
	// file of every origin.
	ParseDocument(name string, data []byte) (m.Document, error)
	// ParseData reads plain data into *m.Map, []any and primitives,
	// keeping mapping key order.
	ParseData(data []byte) (any, error)
}

// YAMLDocumentLoader implements DocumentLoader on top of yaml.v3.
type YAMLDocumentLoader struct{}

// NewYAMLDocumentLoader returns a YAMLDocumentLoader.
func NewYAMLDocumentLoader() *YAMLDocumentLoader {
	return &YAMLDocumentLoader{}
}

// ParseData implements DocumentLoader.
func (l *YAMLDocumentLoader) ParseData(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse data: %w", err)
	}

	if doc.Kind == 0 {
		return nil, nil
	}

	return plainValue(&doc)
}

func plainValue(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return plainValue(node.Content[0])
	case yaml.AliasNode:
		return plainValue(node.Alias)
	case yaml.SequenceNode:
		res := make([]any, 0, len(node.Content))
		for _, item := range node.Content {
			v, err := plainValue(item)
			if err != nil {
				return nil, err
			}
			res = append(res, v)
		}
		return res, nil
	case yaml.MappingNode:
		res := m.NewMap()
		for i := 0; i+1 < len(node.Content); i += 2 {
			v, err := plainValue(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			res.Set(node.Content[i].Value, v)
		}
		return res, nil
	case yaml.ScalarNode:
		return scalarValue(node)
	default:
		return nil, fmt.Errorf("%w: unexpected yaml node at line %d", ErrInvalidDocument, node.Line)
	}
}

func scalarValue(node *yaml.Node) (any, error) {
	var v any
	if err := node.Decode(&v); err != nil {
		return nil, fmt.Errorf("line %d: %w", node.Line, err)
	}

	switch x := v.(type) {
	case uint64:
		if x > math.MaxInt64 {
			return float64(x), nil
		}
		return int64(x), nil
	case nil, string, bool, int, int64, float64:
		return v, nil
	default:
		// Timestamps and binary values keep their source text.
		return node.Value, nil
	}
}

// ParseDocument implements DocumentLoader.
//
// A document is a mapping with a root element and an optional effects
// list. An element is a mapping keyed by its type (object, obj, array,
// proxy, portal, property, value, text) plus the optional ref, deferred,
// target and children attributes. A bare scalar is a text element.
func (l *YAMLDocumentLoader) ParseDocument(name string, data []byte) (m.Document, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return m.Document{}, fmt.Errorf("parse %s: %w", name, err)
	}

	p := &elementParser{file: name}
	res := m.Document{Path: m.Path(name)}

	if doc.Kind == 0 || len(doc.Content) == 0 {
		return res, nil
	}

	top := doc.Content[0]
	if top.Kind != yaml.MappingNode {
		return m.Document{}, p.errorf(top, "document must be a mapping with a root element")
	}

	for i := 0; i+1 < len(top.Content); i += 2 {
		key, val := top.Content[i], top.Content[i+1]

		switch key.Value {
		case "root":
			if isNull(val) {
				continue
			}
			root, err := p.element(val)
			if err != nil {
				return m.Document{}, err
			}
			res.Root = root
		case "effects":
			effects, err := p.effects(val)
			if err != nil {
				return m.Document{}, err
			}
			res.Effects = effects
		default:
			return m.Document{}, p.errorf(key, "unknown document key %q", key.Value)
		}
	}

	return res, nil
}

type elementParser struct {
	file string
}

func (p *elementParser) origin(node *yaml.Node) *m.Origin {
	return m.NewOrigin(p.file, node.Line, node.Column)
}

func (p *elementParser) errorf(node *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("%w: %s:%d:%d: %s", ErrInvalidDocument, p.file, node.Line, node.Column, fmt.Sprintf(format, args...))
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.Tag == "!!null"
}

func (p *elementParser) element(node *yaml.Node) (*m.Element, error) {
	if node.Kind == yaml.AliasNode {
		return p.element(node.Alias)
	}

	if node.Kind == yaml.ScalarNode {
		return &m.Element{Type: m.ElementText, Value: m.Scalar(textOf(node)), Origin: p.origin(node)}, nil
	}

	if node.Kind != yaml.MappingNode {
		return nil, p.errorf(node, "element must be a mapping or a scalar")
	}

	el := &m.Element{Origin: p.origin(node)}

	var (
		body     *yaml.Node
		children *yaml.Node
	)

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]

		switch key.Value {
		case "object", "obj", "array", "proxy", "portal", "property", "value", "text":
			if el.Type != "" {
				return nil, p.errorf(key, "element declares both %q and %q", el.Type, key.Value)
			}
			el.Type = m.ElementType(key.Value)
			body = val
		case "ref":
			el.Ref = val.Value
		case "target":
			el.Target = val.Value
		case "deferred":
			if err := val.Decode(&el.Deferred); err != nil {
				return nil, p.errorf(val, "deferred: %v", err)
			}
		case "children":
			children = val
		default:
			return nil, p.errorf(key, "unknown element key %q", key.Value)
		}
	}

	if el.Type == "" {
		return nil, p.errorf(node, "element has no type")
	}
	if el.Type == "obj" {
		el.Type = m.ElementType(m.ObjectKind.String())
	}

	switch el.Type {
	case "property":
		if body.Kind != yaml.ScalarNode {
			return nil, p.errorf(body, "property name must be a scalar")
		}
		el.Name = body.Value
	case "text":
		if body.Kind != yaml.ScalarNode {
			return nil, p.errorf(body, "text must be a scalar")
		}
		el.Value = m.Scalar(textOf(body))
	case "value":
		switch body.Kind {
		case yaml.ScalarNode:
			v, err := scalarValue(body)
			if err != nil {
				return nil, p.errorf(body, "%v", err)
			}
			el.Value = m.Scalar(v)
		case yaml.SequenceNode:
			// A sequence body holds the children; the local fragment stays undefined.
			children = body
		default:
			return nil, p.errorf(body, "value must be a scalar or a list of children")
		}
	default:
		if !isNull(body) {
			if children != nil {
				return nil, p.errorf(body, "children given twice")
			}
			children = body
		}
	}

	if el.Type == m.ElementPortal && el.Target == "" {
		return nil, p.errorf(node, "portal needs a target")
	}

	if children != nil {
		kids, err := p.elements(children)
		if err != nil {
			return nil, err
		}
		el.Children = kids
	}

	return el, nil
}

func (p *elementParser) elements(node *yaml.Node) ([]*m.Element, error) {
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, p.errorf(node, "children must be a list")
	}

	res := make([]*m.Element, 0, len(node.Content))
	for _, item := range node.Content {
		el, err := p.element(item)
		if err != nil {
			return nil, err
		}
		res = append(res, el)
	}

	return res, nil
}

func textOf(node *yaml.Node) string {
	if isNull(node) {
		return ""
	}
	return node.Value
}

func (p *elementParser) effects(node *yaml.Node) ([]*m.Effect, error) {
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, p.errorf(node, "effects must be a list")
	}

	res := make([]*m.Effect, 0, len(node.Content))
	for _, item := range node.Content {
		eff, err := p.effect(item)
		if err != nil {
			return nil, err
		}
		res = append(res, eff)
	}

	return res, nil
}

func (p *elementParser) effect(node *yaml.Node) (*m.Effect, error) {
	if node.Kind != yaml.MappingNode {
		return nil, p.errorf(node, "effect must be a mapping")
	}

	eff := &m.Effect{Origin: p.origin(node)}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]

		switch key.Value {
		case "op":
			eff.Op = m.EffectOp(val.Value)
		case "target":
			eff.Target = val.Value
		case "child":
			eff.Child = val.Value
		case "text":
			v, err := scalarValue(val)
			if err != nil {
				return nil, p.errorf(val, "%v", err)
			}
			eff.Text = m.Scalar(v)
		case "node":
			el, err := p.element(val)
			if err != nil {
				return nil, err
			}
			eff.Node = el
		default:
			return nil, p.errorf(key, "unknown effect key %q", key.Value)
		}
	}

	switch eff.Op {
	case m.EffectAppend:
		if eff.Node == nil {
			return nil, p.errorf(node, "append needs a node")
		}
	case m.EffectRemove:
		if eff.Child == "" {
			return nil, p.errorf(node, "remove needs a child ref")
		}
	case m.EffectClear, m.EffectSetText:
	default:
		return nil, p.errorf(node, "unknown effect op %q", eff.Op)
	}

	if eff.Target == "" {
		return nil, p.errorf(node, "effect needs a target ref")
	}

	return eff, nil
}
