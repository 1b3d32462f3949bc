package domain

import (
	"errors"
	"fmt"
	"strings"

	m "treejson.dev/pkg/treejson/internal/model"
)

var (
	// ErrInvalidNesting is returned when a child may not be attached to a parent.
	ErrInvalidNesting = errors.New("invalid nesting")
	// ErrUnsupportedKind is returned when CreateNode is asked for an unknown kind.
	ErrUnsupportedKind = errors.New("unsupported kind")
	// ErrUnexpectedNode is returned when a node reaches a position that cannot represent it.
	ErrUnexpectedNode = errors.New("unexpected node")
	// ErrUndefinedValue is returned when a value resolves to undefined where JSON is required.
	ErrUndefinedValue = errors.New("undefined value")
	// ErrAmbiguousProxyValue is returned when a proxy with several children sits in a value position.
	ErrAmbiguousProxyValue = errors.New("cannot collapse multiple siblings into a single value position")
	// ErrUnsupportedValue is returned by FromJSON for Go values with no JSON shape.
	ErrUnsupportedValue = errors.New("unsupported value")
	// ErrUnsettled is returned when deferred work keeps scheduling more work past the flush cap.
	ErrUnsettled = errors.New("tree did not settle")
)

// NestingError describes a rejected parent/child pairing.
type NestingError struct {
	Parent       m.Kind
	Child        m.Kind
	ParentOrigin *m.Origin
	ChildOrigin  *m.Origin
	Reason       string
}

func (e *NestingError) Error() string {
	var b strings.Builder
	b.WriteString(e.Reason)
	if e.ParentOrigin != nil {
		fmt.Fprintf(&b, "\n\t↳ Parent(%s) %s", e.Parent, e.ParentOrigin)
	}
	if e.ChildOrigin != nil {
		fmt.Fprintf(&b, "\n\t↳ Child(%s) %s", e.Child, e.ChildOrigin)
	}
	return b.String()
}

// Unwrap lets errors.Is match ErrInvalidNesting.
func (e *NestingError) Unwrap() error {
	return ErrInvalidNesting
}
