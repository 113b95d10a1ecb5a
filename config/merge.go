// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2014-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

package config

import (
	"fmt"
	"time"

	"github.com/danos/rtrmgr/template"
	"github.com/danos/rtrmgr/value"
)

// insertOrdered attaches child under parent at the position its value sorts
// to under parent's template order policy (spec.md §4.2/§4.3); parents
// whose template isn't a tag, or whose policy is Unsorted, just append in
// arrival order.
func insertOrdered(parent *Node, child *Node, clientID uint32) {
	if parent.Template == nil || !parent.Template.IsTag || parent.Template.Order == template.Unsorted {
		child.Parent = parent
		parent.Children = append(parent.Children, child)
		allocateID(child, clientID)
		return
	}

	cv, err := value.Parse(child.Template.Kind, child.Segname)
	if err != nil {
		child.Parent = parent
		parent.Children = append(parent.Children, child)
		allocateID(child, clientID)
		return
	}

	idx := len(parent.Children)
	for i, sib := range parent.Children {
		if sib.Deleted || sib.Template == nil {
			continue
		}
		sv, err := value.Parse(sib.Template.Kind, sib.Segname)
		if err != nil {
			continue
		}
		if parent.Template.Order.Less(cv, sv) {
			idx = i
			break
		}
	}
	child.Parent = parent
	parent.Children = append(parent.Children, nil)
	copy(parent.Children[idx+1:], parent.Children[idx:])
	parent.Children[idx] = child
	allocateID(child, clientID)
}

// MergeDelta implements merge_delta (spec.md §4.3): delta is merged into
// current as a structural union, matched child-by-child on Segname. A delta
// child absent from current is created (order-policy placed, or, when
// preserveNodeID is set, spliced in with delta's own NodeID rather than a
// freshly allocated one — the path taken when replaying a snapshot that
// already carries committed identities). A delta child present in current
// recurses, and if the delta child carries a value, that value is applied
// through applyValue.
func MergeDelta(current, delta *Node, clientID uint32, preserveNodeID, provisional bool, user uint32, now time.Time) error {
	for _, dchild := range delta.Children {
		match := childByName(current, dchild.Segname)
		if match == nil {
			match = NewChild(dchild.Segname, dchild.Template)
			if preserveNodeID {
				match.ID = dchild.ID
				match.ClientID = dchild.ClientID
				match.Parent = current
				current.Children = append(current.Children, match)
			} else {
				insertOrdered(current, match, clientID)
			}
			match.ExistenceCommitted = !provisional
		} else if match.Deleted {
			match.Deleted = false
		}

		if err := MergeDelta(match, dchild, clientID, preserveNodeID, provisional, user, now); err != nil {
			return err
		}

		if dchild.HasValue {
			applyValue(match, dchild, provisional, user, now)
		}
	}
	return nil
}

// applyValue applies delta's value/operator onto match, per merge_delta's
// provisional-vs-immediate commit split: a provisional merge snapshots the
// prior value into the committed_* fields (so a rollback can restore it)
// and leaves value_committed false; a non-provisional merge (replaying
// already-committed state) marks the new value committed immediately.
func applyValue(match, delta *Node, provisional bool, user uint32, now time.Time) {
	if provisional {
		match.CommittedValue = match.Value
		match.CommittedOperator = match.Operator
		match.CommittedUserID = match.UserID
		match.CommittedModTime = match.ModTime
		match.ValueCommitted = false
	} else {
		match.ValueCommitted = true
	}
	match.HasValue = true
	match.Value = delta.Value
	match.Operator = delta.Operator
	match.UserID = user
	match.ModTime = now
}

// MergeDeletion implements merge_deletion: a provisional deletion schedules
// the node (Deleted=true, still visible to rollback) instead of removing
// it. A non-provisional deletion removes it from its parent outright. A
// path that does not match live configuration is a hard error, per
// spec.md §4.3.
func MergeDeletion(root *Node, path []string, provisional bool) error {
	n, err := findLive(root, path)
	if err != nil {
		return err
	}
	if provisional {
		n.Deleted = true
		return nil
	}
	parent := n.Parent
	if parent == nil {
		return referenceError(path, "cannot delete the configuration root")
	}
	idx := indexOf(parent, n)
	if idx < 0 {
		return referenceError(path, "node not found among its parent's children")
	}
	parent.Children = append(parent.Children[:idx], parent.Children[idx+1:]...)
	return nil
}

func childByName(parent *Node, segname string) *Node {
	for _, c := range parent.Children {
		if c.Segname == segname {
			return c
		}
	}
	return nil
}

func findLive(root *Node, path []string) (*Node, error) {
	cur := root
	for i, seg := range path {
		next := childByName(cur, seg)
		if next == nil || next.Deleted {
			return nil, referenceError(path[:i+1], fmt.Sprintf("no configuration at %v to delete", path[:i+1]))
		}
		cur = next
	}
	return cur, nil
}
