// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

package config

import "github.com/danos/rtrmgr/template"

// Tree pairs a live configuration root with the template.Tree it was
// instantiated from.
type Tree struct {
	Root   *Node
	Schema *template.Tree
}

// NewTree returns an empty configuration tree bound to schema.
func NewTree(schema *template.Tree) *Tree {
	return &Tree{Root: NewRoot(), Schema: schema}
}

// Find navigates the live tree by literal segment match — a config node's
// Segname is always its rendered value (for tag instances) or its literal
// schema name, so no type-dispatch is needed here the way
// template.FindByPath needs it against the bare schema.
func (t *Tree) Find(path []string) (*Node, error) {
	cur := t.Root
	for i, seg := range path {
		var next *Node
		for _, c := range cur.Children {
			if !c.Deleted && c.Segname == seg {
				next = c
				break
			}
		}
		if next == nil {
			return nil, unknownElementAt(path[:i+1], seg)
		}
		cur = next
	}
	return cur, nil
}

// FindModule returns every boundary node belonging to module: a node whose
// template declares module as its effective module while its parent's
// effective module differs (or has none).
func (t *Tree) FindModule(module string) []*Node {
	var out []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.Template != nil && n.Template.EffectiveModule() == module {
			parentModule := ""
			if n.Parent != nil && n.Parent.Template != nil {
				parentModule = n.Parent.Template.EffectiveModule()
			}
			if parentModule != module {
				out = append(out, n)
				return
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.Root)
	return out
}

// Clone performs a deep, whole-subtree copy of n, used by the apply facade
// to keep a pending-commit snapshot (spec.md §3 "Lifecycles") without
// sharing structure with the live tree.
func Clone(n *Node) *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		Template:           n.Template,
		Segname:            n.Segname,
		HasValue:           n.HasValue,
		Value:              n.Value,
		Operator:           n.Operator,
		CommittedValue:     n.CommittedValue,
		CommittedOperator:  n.CommittedOperator,
		UserID:             n.UserID,
		CommittedUserID:    n.CommittedUserID,
		ModTime:            n.ModTime,
		CommittedModTime:   n.CommittedModTime,
		ID:                 n.ID,
		ClientID:           n.ClientID,
		ExistenceCommitted: n.ExistenceCommitted,
		ValueCommitted:     n.ValueCommitted,
		Deleted:            n.Deleted,
		Vars:               make(map[string]string, len(n.Vars)),
		nextInstance:       n.nextInstance,
	}
	for k, v := range n.Vars {
		c.Vars[k] = v
	}
	for _, child := range n.Children {
		cc := Clone(child)
		cc.Parent = c
		c.Children = append(c.Children, cc)
	}
	return c
}
