// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2014-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

package config

// shallowCopy copies n's own fields but not its children or Parent link;
// callers reattach both.
func shallowCopy(n *Node) *Node {
	vars := make(map[string]string, len(n.Vars))
	for k, v := range n.Vars {
		vars[k] = v
	}
	return &Node{
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
		Vars:               vars,
	}
}

// RetainDifferent implements spec.md §4.3's retain_different: a pruned copy
// of a holding exactly the leaf values (and the containers that lead to
// them) that are absent from b or whose value/operator differs. A pure
// container with no differing descendant is dropped.
func RetainDifferent(a, b *Node) *Node {
	if a == nil {
		return nil
	}
	if a.IsLeafValue() {
		if b == nil || !Equal(a, b, false) {
			return fullCopy(a)
		}
		return nil
	}
	out := shallowCopy(a)
	any := false
	for _, ac := range a.Children {
		var bc *Node
		if b != nil {
			bc = childByName(b, ac.Segname)
		}
		if d := RetainDifferent(ac, bc); d != nil {
			d.Parent = out
			out.Children = append(out.Children, d)
			any = true
		}
	}
	if !any {
		return nil
	}
	return out
}

// RetainDeletions implements retain_deletions: the subtree of a whose
// segnames have no counterpart anywhere under the matching path in b —
// i.e. what a commit would need to tear down.
func RetainDeletions(a, b *Node) *Node {
	if a == nil {
		return nil
	}
	if b == nil {
		return fullCopy(a)
	}
	out := shallowCopy(a)
	any := false
	for _, ac := range a.Children {
		bc := childByName(b, ac.Segname)
		if bc == nil {
			cp := fullCopy(ac)
			cp.Parent = out
			out.Children = append(out.Children, cp)
			any = true
			continue
		}
		if d := RetainDeletions(ac, bc); d != nil {
			d.Parent = out
			out.Children = append(out.Children, d)
			any = true
		}
	}
	if !any {
		return nil
	}
	return out
}

// RetainCommon implements retain_common: the subtree present, with equal
// leaf values, in both a and b.
func RetainCommon(a, b *Node) *Node {
	if a == nil || b == nil {
		return nil
	}
	if a.IsLeafValue() || b.IsLeafValue() {
		if Equal(a, b, false) {
			return fullCopy(a)
		}
		return nil
	}
	out := shallowCopy(a)
	any := false
	for _, ac := range a.Children {
		bc := childByName(b, ac.Segname)
		if bc == nil {
			continue
		}
		if c := RetainCommon(ac, bc); c != nil {
			c.Parent = out
			out.Children = append(out.Children, c)
			any = true
		}
	}
	if !any {
		return nil
	}
	return out
}

func fullCopy(n *Node) *Node {
	cp := Clone(n)
	cp.Parent = nil
	return cp
}
