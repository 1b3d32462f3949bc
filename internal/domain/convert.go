package domain

import (
	"fmt"
	"sort"

	m "treejson.dev/pkg/treejson/internal/model"
)

// ToJSON converts a node into a JSON value. ok is false when the node
// resolves to undefined; callers in array and object positions omit such
// results.
//
// Values are string, bool, nil, the numeric fragment types, []any and *m.Map.
func ToJSON(node m.Node) (v any, ok bool, err error) {
	switch n := node.(type) {
	case *m.ValueNode:
		f := n.Resolve()
		return f.Value, f.Defined, nil

	case *m.ArrayNode:
		items := Flatten(n.Items)
		res := make([]any, 0, len(items))
		for i, item := range items {
			v, ok, err := ToJSON(item)
			if err != nil {
				return nil, false, fmt.Errorf("[%d]: %w", i, err)
			}
			if ok {
				res = append(res, v)
			}
		}
		return res, true, nil

	case *m.ObjectNode:
		res := m.NewMap()
		for _, member := range Flatten(n.Properties) {
			prop, isProp := member.(*m.PropertyNode)
			if !isProp {
				return nil, false, fmt.Errorf("%w: %s inside object", ErrUnexpectedNode, member.Kind())
			}
			if prop.Value == nil {
				continue
			}
			key, keyOK := propertyKey(prop)
			if !keyOK {
				continue
			}
			v, ok, err := ToJSON(prop.Value)
			if err != nil {
				return nil, false, fmt.Errorf("%s: %w", key, err)
			}
			if !ok {
				res.Delete(key)
				continue
			}
			res.Set(key, v)
		}
		return res, true, nil

	case *m.ProxyNode:
		items := Flatten(n.Items)
		switch len(items) {
		case 0:
			return nil, false, nil
		case 1:
			return ToJSON(items[0])
		default:
			return nil, false, fmt.Errorf("%w: proxy has %d children", ErrAmbiguousProxyValue, len(items))
		}

	case *m.PropertyNode:
		return nil, false, fmt.Errorf("%w: property", ErrUnexpectedNode)

	default:
		return nil, false, fmt.Errorf("%w: %T", ErrUnexpectedNode, node)
	}
}

// propertyKey resolves the key of prop. Non-string keys use their text form.
func propertyKey(prop *m.PropertyNode) (string, bool) {
	if prop.Key == nil {
		return "", false
	}
	f := prop.Key.Resolve()
	if !f.Defined {
		return "", false
	}
	if s, ok := f.Value.(string); ok {
		return s, true
	}
	return f.Text(), true
}

// ConvertRoot converts the root of a settled tree. An empty tree becomes
// JSON null; a bare value that resolves to undefined is an error.
func ConvertRoot(root m.Node) (any, error) {
	v, ok, err := ToJSON(root)
	if err != nil {
		return nil, err
	}
	if ok {
		return v, nil
	}
	if effective := unwrapProxies(root); effective != nil && effective.Kind() == m.ValueKind {
		return nil, fmt.Errorf("%w at %s", ErrUndefinedValue, describe(effective))
	}
	return nil, nil
}

// unwrapProxies follows single-member proxies down to the node that
// actually occupies the value position, or nil for an empty proxy.
func unwrapProxies(node m.Node) m.Node {
	for {
		proxy, ok := node.(*m.ProxyNode)
		if !ok {
			return node
		}
		items := Flatten(proxy.Items)
		if len(items) != 1 {
			return nil
		}
		node = items[0]
	}
}

func describe(node m.Node) string {
	if o := node.Origin(); o != nil {
		return fmt.Sprintf("%s (%s)", node.Kind(), o.Position())
	}
	return node.Kind().String()
}

// FromJSON builds a tree from a JSON value. Object entries holding
// m.Undefined are left out; undefined array elements are kept as undefined
// value nodes. Plain maps are visited in sorted key order.
func FromJSON(v any) (m.Node, error) {
	switch x := v.(type) {
	case []any:
		arr := m.NewArray()
		for i, item := range x {
			child, err := FromJSON(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			child.SetParent(arr)
			arr.Items = append(arr.Items, child)
		}
		return arr, nil

	case *m.Map:
		obj := m.NewObject()
		for _, key := range x.Keys() {
			val, _ := x.Get(key)
			if err := addProperty(obj, key, val); err != nil {
				return nil, err
			}
		}
		return obj, nil

	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := m.NewObject()
		for _, key := range keys {
			if err := addProperty(obj, key, x[key]); err != nil {
				return nil, err
			}
		}
		return obj, nil
	}

	if v == m.Undefined {
		return m.NewValue(m.Fragment{}), nil
	}
	if m.IsPrimitive(v) {
		return m.NewValue(m.Scalar(v)), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
}

func addProperty(obj *m.ObjectNode, key string, val any) error {
	if val == m.Undefined {
		return nil
	}
	child, err := FromJSON(val)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	prop := m.NewProperty(key, child)
	prop.Key.SetParent(prop)
	child.SetParent(prop)
	prop.SetParent(obj)
	obj.Properties = append(obj.Properties, prop)
	return nil
}
