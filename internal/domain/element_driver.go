package domain

import (
	"context"
	"errors"
	"fmt"

	m "treejson.dev/pkg/treejson/internal/model"
)

// ErrUnknownRef is returned when a portal or effect names a ref that no
// mounted element declared.
var ErrUnknownRef = errors.New("unknown ref")

// mountJob attaches an element to an already mounted parent.
type mountJob struct {
	el     *m.Element
	parent m.Node
	// retried is set on a portal already postponed for an unknown target.
	retried bool
}

// ElementDriver mounts a parsed Document through a Host. Elements marked
// deferred and portal contents are mounted in later flush rounds; document
// effects then run one per round.
type ElementDriver struct {
	doc     m.Document
	refs    map[string]m.Node
	next    []mountJob
	effects []*m.Effect
}

// NewElementDriver creates a driver for doc. A driver renders once.
func NewElementDriver(doc m.Document) *ElementDriver {
	return &ElementDriver{
		doc:  doc,
		refs: map[string]m.Node{},
	}
}

// Ref returns the node registered under name.
func (d *ElementDriver) Ref(name string) (m.Node, bool) {
	n, ok := d.refs[name]
	return n, ok
}

// Update mounts the document root into root.
func (d *ElementDriver) Update(_ context.Context, host Host, root m.Node) error {
	d.effects = append(d.effects[:0], d.doc.Effects...)

	if d.doc.Root == nil {
		return nil
	}

	return d.mount(host, d.doc.Root, root)
}

// Pending implements Driver.
func (d *ElementDriver) Pending() bool {
	return len(d.next) > 0 || len(d.effects) > 0
}

// Flush mounts everything scheduled by the previous round. When nothing is
// scheduled it runs the next effect instead.
func (d *ElementDriver) Flush(ctx context.Context, host Host) error {
	if len(d.next) == 0 {
		if len(d.effects) == 0 {
			return nil
		}
		eff := d.effects[0]
		d.effects = d.effects[1:]
		return d.apply(host, eff)
	}

	jobs := d.next
	d.next = nil

	var errs []error
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := d.mountNow(host, job.el, job.parent, job.retried); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// mount attaches el under parent, or schedules it when it is deferred.
func (d *ElementDriver) mount(host Host, el *m.Element, parent m.Node) error {
	if el.Deferred {
		d.next = append(d.next, mountJob{el: el, parent: parent})
		return nil
	}

	return d.mountNow(host, el, parent, false)
}

func (d *ElementDriver) mountNow(host Host, el *m.Element, parent m.Node, retried bool) error {
	if el.Type == m.ElementPortal {
		target, ok := d.refs[el.Target]
		if !ok {
			// The target may be mounted later in this round.
			if retried {
				return fmt.Errorf("%w %q for portal at %s", ErrUnknownRef, el.Target, el.Origin.Position())
			}
			d.next = append(d.next, mountJob{el: el, parent: parent, retried: true})
			return nil
		}
		for _, child := range el.Children {
			if err := d.mount(host, child, target); err != nil {
				return err
			}
		}
		return nil
	}

	node, err := d.create(host, el)
	if err != nil {
		return err
	}

	for _, child := range el.Children {
		if err := d.mount(host, child, node); err != nil {
			return err
		}
	}

	if _, err := host.AppendChild(parent, node); err != nil {
		return err
	}

	if el.Ref != "" {
		d.refs[el.Ref] = node
	}

	return nil
}

func (d *ElementDriver) create(host Host, el *m.Element) (m.Node, error) {
	if el.Type == m.ElementText {
		return host.CreateText(el.Value.Text(), el.Origin), nil
	}

	return host.CreateNode(string(el.Type), Props{Name: el.Name, Value: el.Value}, el.Origin)
}

func (d *ElementDriver) lookup(name string, eff *m.Effect) (m.Node, error) {
	node, ok := d.refs[name]
	if !ok {
		return nil, fmt.Errorf("%w %q for %s effect at %s", ErrUnknownRef, name, eff.Op, eff.Origin.Position())
	}
	return node, nil
}

func (d *ElementDriver) apply(host Host, eff *m.Effect) error {
	target, err := d.lookup(eff.Target, eff)
	if err != nil {
		return err
	}

	switch eff.Op {
	case m.EffectAppend:
		return d.mount(host, eff.Node, target)
	case m.EffectRemove:
		child, err := d.lookup(eff.Child, eff)
		if err != nil {
			return err
		}
		host.RemoveChild(target, child)
	case m.EffectClear:
		host.ClearContainer(target)
	case m.EffectSetText:
		value, ok := target.(*m.ValueNode)
		if !ok {
			return fmt.Errorf("%w: setText on %s at %s", ErrUnexpectedNode, target.Kind(), eff.Origin.Position())
		}
		host.SetText(value, eff.Text)
	default:
		return fmt.Errorf("unknown effect %q", eff.Op)
	}

	return nil
}

var _ Driver = (*ElementDriver)(nil)
