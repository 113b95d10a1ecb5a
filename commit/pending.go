// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

package commit

import "github.com/danos/rtrmgr/config"

// CollectPending returns a pruned copy of root containing exactly the
// nodes that haven't yet been committed: newly created nodes
// (!ExistenceCommitted), nodes carrying an uncommitted value change
// (HasValue && !ValueCommitted), and nodes scheduled for deletion
// (Deleted). It is the tree depgraph.CollectModuleSet and BuildTasks both
// walk, standing in for the original's per-node "changed" bookkeeping.
func CollectPending(root *config.Node) *config.Node {
	out := collectPending(root)
	if out == nil {
		return emptyLike(root)
	}
	return out
}

func collectPending(n *config.Node) *config.Node {
	self := !n.ExistenceCommitted || (n.HasValue && !n.ValueCommitted) || n.Deleted
	var kept []*config.Node
	for _, c := range n.Children {
		if pc := collectPending(c); pc != nil {
			kept = append(kept, pc)
		}
	}
	if !self && len(kept) == 0 {
		return nil
	}
	out := shallowPendingCopy(n)
	for _, c := range kept {
		c.Parent = out
		out.Children = append(out.Children, c)
	}
	return out
}

func shallowPendingCopy(n *config.Node) *config.Node {
	c := config.NewChild(n.Segname, n.Template)
	c.HasValue = n.HasValue
	c.Value = n.Value
	c.Operator = n.Operator
	c.Deleted = n.Deleted
	c.ExistenceCommitted = n.ExistenceCommitted
	c.ValueCommitted = n.ValueCommitted
	c.ID = n.ID
	c.ClientID = n.ClientID
	return c
}

func emptyLike(n *config.Node) *config.Node {
	return shallowPendingCopy(n)
}
