// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2014-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

// Package config implements the configuration tree (spec component C3): a
// live, versioned, typed document instantiating a template.Tree. It
// records committed state, pending deltas, per-node identity and
// provenance, and supports structural diff/merge.
package config

import (
	"time"

	"github.com/danos/rtrmgr/template"
	"github.com/danos/rtrmgr/value"
)

// NodeID is a stable identifier for a configuration node, unique among
// siblings of its effective parent (spec.md §3/§6). Position is the
// Instance of the preceding ordered sibling (0 for the first).
type NodeID struct {
	ClientID uint32
	Instance uint32
	Position uint32
}

// Node is a single configuration-tree node (C3). The root node has a nil
// Template and no value.
type Node struct {
	Template *template.Node
	Parent   *Node
	Children []*Node

	Segname string

	HasValue bool
	Value    value.Value
	Operator value.Operator

	CommittedValue    value.Value
	CommittedOperator value.Operator

	UserID            uint32
	CommittedUserID   uint32
	ModTime           time.Time
	CommittedModTime  time.Time

	ID       NodeID
	ClientID uint32

	ExistenceCommitted bool
	ValueCommitted     bool
	Deleted            bool

	// Vars holds named variables an action's return spec installed on
	// this node (spec.md §4.5/§8 scenario S5).
	Vars map[string]string

	// nextInstance is this node's per-effective-parent ID generator; it
	// is only ever consulted on a node that is actually serving as some
	// child's effective parent (spec.md §4.3).
	nextInstance uint32
}

// NewRoot returns an empty root configuration node.
func NewRoot() *Node {
	return &Node{Vars: make(map[string]string)}
}

// NewChild constructs a child of the given segname/template, without
// linking it into the tree; callers use AddChild or the merge operations
// to attach it.
func NewChild(segname string, tmpl *template.Node) *Node {
	return &Node{Segname: segname, Template: tmpl, Vars: make(map[string]string)}
}

// IsLeafValue reports spec.md §3's "a node is a leaf value iff (it has a
// value) or (its template is a value type and its parent is not a tag)".
func (n *Node) IsLeafValue() bool {
	if n.HasValue {
		return true
	}
	if n.Template == nil {
		return false
	}
	return n.Template.Kind != value.Void && !(n.Parent != nil && n.Parent.Template != nil && n.Parent.Template.IsTag)
}

// Path recomputes the display path from the root to n.
func (n *Node) Path() []string {
	if n.Parent == nil {
		return nil
	}
	return append(n.Parent.Path(), n.Segname)
}

// effectiveParent implements spec.md §4.3's node-id scoping rule: a
// value-child of a tag shares its grandparent's ID namespace, since all
// of the tag's instances (regardless of which typed variant matched) must
// have distinct IDs at that shared scope.
func effectiveParent(parent *Node) *Node {
	if parent != nil && parent.Template != nil && parent.Template.IsTag && parent.Parent != nil {
		return parent.Parent
	}
	return parent
}

// AddChild links child under n in declaration/creation order (callers that
// need order-policy placement use insertOrdered instead) and allocates its
// NodeID from the effective parent's generator.
func (n *Node) AddChild(child *Node, clientID uint32) {
	child.Parent = n
	n.Children = append(n.Children, child)
	allocateID(child, clientID)
}

// allocateID draws a fresh instance ID from child's effective parent and
// records the preceding ordered sibling as its Position, per spec.md §4.3.
func allocateID(child *Node, clientID uint32) {
	ep := effectiveParent(child.Parent)
	if ep == nil {
		return
	}
	ep.nextInstance++
	instance := ep.nextInstance
	var position uint32
	if idx := indexOf(child.Parent, child); idx > 0 {
		// walk back to the nearest non-deleted preceding sibling
		for i := idx - 1; i >= 0; i-- {
			if !child.Parent.Children[i].Deleted {
				position = child.Parent.Children[i].ID.Instance
				break
			}
		}
	}
	child.ID = NodeID{ClientID: clientID, Instance: instance, Position: position}
	child.ClientID = clientID
}

func indexOf(parent *Node, child *Node) int {
	if parent == nil {
		return -1
	}
	for i, c := range parent.Children {
		if c == child {
			return i
		}
	}
	return -1
}

// UpdateNodeIDPositions re-walks the tree refreshing Position on every
// child to account for siblings deleted in the same commit (spec.md §4.3,
// "update_node_id_position"). Call this after finalize_commit.
func UpdateNodeIDPositions(n *Node) {
	for _, parent := range n.walkContainers() {
		var prevLive *Node
		for _, c := range parent.Children {
			if c.Deleted {
				continue
			}
			if prevLive != nil {
				c.ID.Position = prevLive.ID.Instance
			} else {
				c.ID.Position = 0
			}
			prevLive = c
		}
	}
}

// walkContainers returns n and every descendant, used by
// UpdateNodeIDPositions to visit every potential "effective parent".
func (n *Node) walkContainers() []*Node {
	all := []*Node{n}
	for _, c := range n.Children {
		all = append(all, c.walkContainers()...)
	}
	return all
}

// SetValue implements spec.md §4.3's set_value: if v fails the node's
// allowed-value/range check, the explanation is returned unchanged and the
// node is untouched. Otherwise current value/operator are stamped along
// with user/time, and value_committed is cleared.
func SetValue(n *Node, v value.Value, user uint32, now time.Time) error {
	if n.Template != nil {
		if ok, explanation := value.CheckAllowed(v, n.Template.AllowedValues, n.Template.AllowedRanges); !ok {
			return checkFailure(n, explanation)
		}
	}
	n.HasValue = true
	n.Value = v
	n.Operator = value.OpAssign
	n.UserID = user
	n.ModTime = now
	n.ValueCommitted = false
	return nil
}

// SetOperator implements set_operator: as SetValue, but only for the
// operator; it is rejected if op is not in the node's allowed-operator
// list (when that list is non-empty).
func SetOperator(n *Node, op value.Operator, user uint32, now time.Time) error {
	if n.Template != nil && len(n.Template.AllowedOperators) > 0 {
		allowed := false
		for _, a := range n.Template.AllowedOperators {
			if a == op {
				allowed = true
				break
			}
		}
		if !allowed {
			return operatorFailure(n, op)
		}
	}
	n.Operator = op
	n.UserID = user
	n.ModTime = now
	n.ValueCommitted = false
	return nil
}

// Equal implements spec.md §3's configuration-node equality: it ignores
// timestamps and owners and compares segname, tag-ness, value (when
// present), operator, template identity and leaf-ness; compareIDs also
// compares node_id when true.
func Equal(a, b *Node, compareIDs bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Segname != b.Segname || a.Template != b.Template {
		return false
	}
	if a.IsLeafValue() != b.IsLeafValue() {
		return false
	}
	if a.HasValue != b.HasValue {
		return false
	}
	if a.HasValue && !a.Value.Equal(b.Value) {
		return false
	}
	if a.Operator != b.Operator {
		return false
	}
	if compareIDs && a.ID != b.ID {
		return false
	}
	if len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i], compareIDs) {
			return false
		}
	}
	return true
}
