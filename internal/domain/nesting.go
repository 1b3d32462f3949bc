package domain

import (
	"fmt"

	m "treejson.dev/pkg/treejson/internal/model"
)

// Validate reports whether child may be attached under parent. Proxies are
// looked through: each of their flattened members is checked on its own.
func Validate(parent, child m.Node) error {
	if proxy, ok := child.(*m.ProxyNode); ok {
		for _, item := range Flatten(proxy.Items) {
			if err := Validate(parent, item); err != nil {
				return err
			}
		}
		return nil
	}

	switch parent.Kind() {
	case m.ArrayKind:
		if child.Kind() == m.PropertyKind {
			return nestingError(parent, child, "a property cannot appear as a child of an array")
		}
	case m.ObjectKind:
		if child.Kind() != m.PropertyKind {
			return nestingError(parent, child, fmt.Sprintf("objects can only contain property children, found: %s", child.Kind()))
		}
	case m.ValueKind:
		if child.Kind() != m.ValueKind {
			return nestingError(parent, child, fmt.Sprintf("values can only contain other values, found: %s", child.Kind()))
		}
	case m.PropertyKind, m.ProxyKind:
	}
	return nil
}

func nestingError(parent, child m.Node, reason string) error {
	return &NestingError{
		Parent:       parent.Kind(),
		Child:        child.Kind(),
		ParentOrigin: parent.Origin(),
		ChildOrigin:  child.Origin(),
		Reason:       reason,
	}
}
