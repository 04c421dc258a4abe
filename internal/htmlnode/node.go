package htmlnode

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingValue = errors.New("leaf node must have a value")
	ErrMissingTag   = errors.New("container node must have a tag")
	ErrNoChildren   = errors.New("container node must have at least one child")
)

// Node is an element of the output tree. It is either a *Leaf or a *Container;
// no other implementations exist.
type Node interface {
	// Tag returns the element name. An untagged leaf returns "".
	Tag() string
	// Attrs returns the element attributes in insertion order.
	Attrs() Attrs
	fmt.Stringer

	node()
}

// Leaf is a node without children that carries a text value.
type Leaf struct {
	tag   string
	value string
	attrs Attrs
}

// Container is a node that carries only child nodes.
type Container struct {
	tag      string
	children []Node
	attrs    Attrs
}

// Text returns a present leaf value.
func Text(s string) *string {
	return &s
}

// NewLeaf creates a leaf node. An empty tag makes an untagged (raw text) leaf.
// A nil value is rejected; an empty string is a valid value.
func NewLeaf(tag string, value *string, attrs Attrs) (*Leaf, error) {
	if value == nil {
		return nil, ErrMissingValue
	}
	return &Leaf{tag: tag, value: *value, attrs: attrs.Clone()}, nil
}

// NewContainer creates a node with the given children. The children slice is
// copied; the container owns it from then on.
func NewContainer(tag string, children []Node, attrs Attrs) (*Container, error) {
	if tag == "" {
		return nil, ErrMissingTag
	}
	if len(children) == 0 {
		return nil, fmt.Errorf("<%s>: %w", tag, ErrNoChildren)
	}
	for i, c := range children {
		if isNil(c) {
			return nil, fmt.Errorf("<%s> child %d is nil: %w", tag, i, ErrNoChildren)
		}
	}
	cs := make([]Node, len(children))
	copy(cs, children)
	return &Container{tag: tag, children: cs, attrs: attrs.Clone()}, nil
}

func (l *Leaf) Tag() string { return l.tag }

func (l *Leaf) Attrs() Attrs { return l.attrs }

// Value returns the leaf text.
func (l *Leaf) Value() string { return l.value }

func (l *Leaf) node() {}

func (c *Container) Tag() string { return c.tag }

func (c *Container) Attrs() Attrs { return c.attrs }

func (c *Container) node() {}

// Children returns a copy of the child list.
func (c *Container) Children() []Node {
	cs := make([]Node, len(c.children))
	copy(cs, c.children)
	return cs
}

// Child returns the i-th child, or nil if out of range.
func (c *Container) Child(i int) Node {
	if i < 0 || i >= len(c.children) {
		return nil
	}
	return c.children[i]
}

// Len returns the number of children.
func (c *Container) Len() int { return len(c.children) }

func (l *Leaf) String() string {
	return fmt.Sprintf("Leaf(tag=%s, value=%s, attrs=%s)", l.tag, l.value, l.attrs)
}

func (c *Container) String() string {
	var sb strings.Builder
	for i, ch := range c.children {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(ch.String())
	}
	return fmt.Sprintf("Container(tag=%s, children=[%s], attrs=%s)", c.tag, sb.String(), c.attrs)
}

// isNil also catches typed nil pointers stored in the interface.
func isNil(n Node) bool {
	switch n := n.(type) {
	case nil:
		return true
	case *Leaf:
		return n == nil
	case *Container:
		return n == nil
	}
	return false
}
