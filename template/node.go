// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2014-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

// Package template implements the template tree (spec component C2): the
// schema loaded once from disk that defines every legal configuration
// path, its type, default, validation predicates and the external actions
// that realize it.
package template

import (
	"github.com/danos/rtrmgr/action"
	"github.com/danos/rtrmgr/value"
)

// OrderPolicy governs the render and commit order of a tag node's
// value-children (spec.md §4.2).
type OrderPolicy int

const (
	Unsorted OrderPolicy = iota
	SortedNumeric
	SortedAlphabetic
)

// Reason carries the free-text justification attached to a deprecated,
// user-hidden, read-only or permanent flag.
type Reason struct {
	Text string
}

// Node is a single template-tree node. The root node has Segname "" and a
// nil Parent; every other node is reachable from it via Children.
type Node struct {
	Segname string
	Kind    value.Kind
	IsTag   bool

	Default    *value.Value
	HelpShort  string
	HelpLong   string
	ModuleName string
	// DefaultTargetName is the module's default remote-call target,
	// substituted for a "$"-prefixed action target (spec.md §4.5).
	DefaultTargetName string
	Order             OrderPolicy

	Deprecated *Reason
	UserHidden *Reason
	ReadOnly   *Reason
	Permanent  *Reason

	// MandatoryRefs are the raw "$(...)" references from "%mandatory".
	// Resolved is filled in by the tree's expansion pass.
	MandatoryRefs     []string
	MandatoryResolved []*Node

	// UniqueIn is the raw "$(...)" reference from "%unique-in"; UniquePath
	// is the resolved relative path from the named ancestor down to this
	// node, using "@:=<typestr>" steps for tag crossings (spec.md §4.2).
	UniqueIn        string
	UniqueAncestor  *Node
	UniquePath      []string

	Commands map[string][]*action.Action

	AllowedValues    []value.Allowed
	AllowedRanges    []value.Range
	AllowedOperators []value.Operator

	ChildNumber int

	Children []*Node
	Parent   *Node
}

// NewNode returns an empty node ready for a parser to populate.
func NewNode(segname string) *Node {
	return &Node{
		Segname:  segname,
		Kind:     value.Void,
		Commands: make(map[string][]*action.Action),
	}
}

// IsLeaf reports whether this node can itself carry a configuration value:
// it declares a non-Void kind and is not itself a tag-grouping node.
func (n *Node) IsLeaf() bool {
	return n.Kind != value.Void && !n.IsTag
}

// AddChild appends child to n's children, stamping its Parent back-link and
// ChildNumber (declaration order, used to stabilize UNSORTED rendering).
func (n *Node) AddChild(child *Node) {
	child.Parent = n
	child.ChildNumber = len(n.Children)
	n.Children = append(n.Children, child)
}

// Path renders the sequence of Segnames from the root to n, excluding the
// synthetic root segment.
func (n *Node) Path() []string {
	if n.Parent == nil {
		return nil
	}
	return append(n.Parent.Path(), n.Segname)
}

// EffectiveModule returns n's ModuleName, inheriting from the nearest
// ancestor that declares one when n itself does not (spec.md §4.2 "load").
func (n *Node) EffectiveModule() string {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.ModuleName != "" {
			return cur.ModuleName
		}
	}
	return ""
}

// EffectiveDefaultTarget mirrors EffectiveModule for DefaultTargetName.
func (n *Node) EffectiveDefaultTarget() string {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.DefaultTargetName != "" {
			return cur.DefaultTargetName
		}
	}
	return ""
}

// HasDefault reports whether n declares a default value.
func (n *Node) HasDefault() bool {
	return n.Default != nil
}

// TagVariants returns n's children that are value-typed variants of n's
// logical slot (segname "@"), used by FindByPath's dispatch-by-type and by
// the commit engine / parser when instantiating a new tag member.
func (n *Node) TagVariants() []*Node {
	if !n.IsTag {
		return nil
	}
	var variants []*Node
	for _, c := range n.Children {
		if c.Segname == "@" {
			variants = append(variants, c)
		}
	}
	return variants
}
