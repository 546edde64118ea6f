/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package schema

import (
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

var (
	ErrPathNotFound = errors.New("schema node not found")
	ErrNotObject    = errors.New("children can only be appended to object nodes")
	ErrNotLeaf      = errors.New("only leaf nodes can be the time key")
	ErrRootNode     = errors.New("the root node cannot be removed")
	ErrInvalidType  = errors.New("invalid schema type")
)

type (
	// Node is one element of the editable schema tree.
	// Nodes are immutable: every edit returns a new root that shares the untouched subtrees
	// with the previous one, so older roots stay valid.
	Node struct {
		Key     string
		Type    Type
		Format  string
		TimeKey bool
		// Expanded is presentation state only and never reaches the schema.
		Expanded bool
		// Value is the sample value of a leaf rendered as a string.
		Value    string
		Children []*Node
	}

	// Path addresses a node by child positions from the root. The empty path is the root.
	Path []int
)

// HasChildren decides whether the node renders as expandable or as a leaf.
func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

// FromSchema builds a tree from s, attaching the matching values of sample to the leaves.
func FromSchema(s *JSONSchema, sample interface{}) *Node {
	return fromSchema("", s, sample)
}

func fromSchema(key string, s *JSONSchema, sample interface{}) *Node {
	if s == nil {
		return &Node{Key: key}
	}
	n := &Node{
		Key:     key,
		Type:    s.Type,
		Format:  s.Format,
		TimeKey: s.TimeKey,
	}
	switch s.Type {
	case TypeObject:
		m, _ := sample.(map[string]interface{})
		keys := sortedKeys(s.Properties)
		if len(keys) > 0 {
			n.Children = make([]*Node, 0, len(keys))
			for _, k := range keys {
				n.Children = append(n.Children, fromSchema(k, s.Properties[k], m[k]))
			}
		}
	case TypeArray:
		var first interface{}
		if a, ok := sample.([]interface{}); ok && len(a) > 0 {
			first = a[0]
		}
		if s.Items != nil {
			n.Children = []*Node{fromSchema(ItemsKey, s.Items, first)}
		}
	default:
		if sample != nil {
			n.Value = cast.ToString(sample)
		}
	}
	return n
}

// ItemsKey is the key of the items template of an array node.
const ItemsKey = "items"

// ToSchema converts the tree back to its persisted form. Sample values are not kept.
// Object children with an empty key are skipped since they cannot be addressed.
func (n *Node) ToSchema() *JSONSchema {
	s := &JSONSchema{
		Type:    n.Type,
		Format:  n.Format,
		TimeKey: n.TimeKey,
	}
	switch n.Type {
	case TypeObject:
		for _, c := range n.Children {
			if c.Key == "" {
				continue
			}
			if s.Properties == nil {
				s.Properties = make(map[string]*JSONSchema, len(n.Children))
			}
			s.Properties[c.Key] = c.ToSchema()
		}
	case TypeArray:
		if len(n.Children) > 0 {
			s.Items = n.Children[0].ToSchema()
		}
	}
	return s
}

// Get returns the node at path.
func (n *Node) Get(path Path) (*Node, bool) {
	cur := n
	for _, i := range path {
		if i < 0 || i >= len(cur.Children) {
			return nil, false
		}
		cur = cur.Children[i]
	}
	return cur, true
}

// update copies the nodes along path and applies fn to the copy of the target.
func (n *Node) update(path Path, fn func(target *Node) error) (*Node, error) {
	cp := *n
	if len(path) == 0 {
		if err := fn(&cp); err != nil {
			return nil, err
		}
		return &cp, nil
	}
	i := path[0]
	if i < 0 || i >= len(n.Children) {
		return nil, ErrPathNotFound
	}
	child, err := n.Children[i].update(path[1:], fn)
	if err != nil {
		return nil, err
	}
	cp.Children = make([]*Node, len(n.Children))
	copy(cp.Children, n.Children)
	cp.Children[i] = child
	return &cp, nil
}

// Toggle flips the expanded state of the node at path.
func (n *Node) Toggle(path Path) (*Node, error) {
	return n.update(path, func(target *Node) error {
		target.Expanded = !target.Expanded
		return nil
	})
}

func (n *Node) SetKey(path Path, key string) (*Node, error) {
	return n.update(path, func(target *Node) error {
		target.Key = key
		return nil
	})
}

func (n *Node) SetFormat(path Path, format string) (*Node, error) {
	return n.update(path, func(target *Node) error {
		target.Format = format
		return nil
	})
}

// SetType changes the type of the node at path.
// Leaf types drop all children, arrays keep at most the first child as items template.
func (n *Node) SetType(path Path, t Type) (*Node, error) {
	if !t.Valid() {
		return nil, errors.Wrapf(ErrInvalidType, "type %q", t)
	}
	return n.update(path, func(target *Node) error {
		target.Type = t
		switch t {
		case TypeObject:
		case TypeArray:
			if len(target.Children) > 1 {
				target.Children = target.Children[:1:1]
			}
			if len(target.Children) == 1 && target.Children[0].Key != ItemsKey {
				items := *target.Children[0]
				items.Key = ItemsKey
				target.Children = []*Node{&items}
			}
		default:
			target.Children = nil
			target.Expanded = false
		}
		if t.IsContainer() {
			target.Format = ""
			target.TimeKey = false
			target.Value = ""
		}
		return nil
	})
}

// AddChild appends an untyped child to the object node at path and expands it.
func (n *Node) AddChild(path Path) (*Node, error) {
	return n.update(path, func(target *Node) error {
		if target.Type != TypeObject {
			return ErrNotObject
		}
		children := make([]*Node, len(target.Children), len(target.Children)+1)
		copy(children, target.Children)
		target.Children = append(children, &Node{})
		target.Expanded = true
		return nil
	})
}

// RemoveChild removes the node at path from its parent. Siblings after it shift left.
// A parent left without children has nil Children and renders as a leaf.
func (n *Node) RemoveChild(path Path) (*Node, error) {
	if len(path) == 0 {
		return nil, ErrRootNode
	}
	last := path[len(path)-1]
	return n.update(path[:len(path)-1], func(target *Node) error {
		if last < 0 || last >= len(target.Children) {
			return ErrPathNotFound
		}
		if len(target.Children) == 1 {
			target.Children = nil
			target.Expanded = false
			return nil
		}
		children := make([]*Node, 0, len(target.Children)-1)
		children = append(children, target.Children[:last]...)
		target.Children = append(children, target.Children[last+1:]...)
		return nil
	})
}

// SetTimeKey marks the leaf at path as the record timestamp and clears the mark everywhere else.
// Passing on=false only clears the mark of that leaf.
func (n *Node) SetTimeKey(path Path, on bool) (*Node, error) {
	target, ok := n.Get(path)
	if !ok {
		return nil, ErrPathNotFound
	}
	if on && target.Type.IsContainer() {
		return nil, ErrNotLeaf
	}
	root := n
	if on {
		root = n.clearTimeKey()
	}
	return root.update(path, func(target *Node) error {
		target.TimeKey = on
		return nil
	})
}

// clearTimeKey returns a tree without any time key mark, copying only the changed branches.
func (n *Node) clearTimeKey() *Node {
	changed := n.TimeKey
	var children []*Node
	for i, c := range n.Children {
		nc := c.clearTimeKey()
		if nc != c && children == nil {
			children = make([]*Node, len(n.Children))
			copy(children, n.Children)
		}
		if children != nil {
			children[i] = nc
		}
	}
	if !changed && children == nil {
		return n
	}
	cp := *n
	cp.TimeKey = false
	if children != nil {
		cp.Children = children
	}
	return &cp
}

// TimeKeyPath returns the path of the node marked as time key.
func (n *Node) TimeKeyPath() (Path, bool) {
	if n.TimeKey {
		return Path{}, true
	}
	for i, c := range n.Children {
		if p, ok := c.TimeKeyPath(); ok {
			return append(Path{i}, p...), true
		}
	}
	return nil, false
}

// DottedKey renders path as a dotted field name, skipping array items templates.
func (n *Node) DottedKey(path Path) (string, bool) {
	cur := n
	key := ""
	for _, i := range path {
		if i < 0 || i >= len(cur.Children) {
			return "", false
		}
		parent := cur
		cur = cur.Children[i]
		if parent.Type == TypeArray {
			continue
		}
		if key == "" {
			key = cur.Key
		} else {
			key += "." + cur.Key
		}
	}
	return key, true
}

// FindPath is the inverse of DottedKey.
func (n *Node) FindPath(dotted string) (Path, bool) {
	return n.findPath(dotted, "", Path{})
}

func (n *Node) findPath(dotted, prefix string, at Path) (Path, bool) {
	if prefix == dotted && len(at) > 0 {
		return at, true
	}
	for i, c := range n.Children {
		key := prefix
		if n.Type != TypeArray {
			if key == "" {
				key = c.Key
			} else {
				key += "." + c.Key
			}
		}
		next := append(append(Path{}, at...), i)
		if p, ok := c.findPath(dotted, key, next); ok {
			return p, true
		}
	}
	return nil, false
}
