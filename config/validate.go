// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2014-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

package config

import (
	"fmt"
	"strings"

	"github.com/danos/rtrmgr/template"
)

// CheckConfigTree implements check_config_tree (spec.md §4.3/§6): walks the
// live tree verifying every mandatory reference is satisfied and every
// %unique-in constraint holds among a tag's live instances. It is run at
// commit Pass 1, with the same strictness as an %allow verifier (Open
// Question decision #2, DESIGN.md).
func (t *Tree) CheckConfigTree() error {
	if err := t.checkMandatory(t.Root); err != nil {
		return err
	}
	return t.checkUniqueIn(t.Root)
}

func (t *Tree) checkMandatory(n *Node) error {
	if n.Template != nil {
		for _, ref := range n.Template.MandatoryResolved {
			// A reference into a fixed (non-tag) location is resolved here
			// by the referenced template node's own absolute schema path.
			// Any reference whose template node lies under a tag is
			// skipped, including one into n's own tag instance: it is not
			// checked here, and no other part of the commit path checks it.
			if crossesForeignTag(ref) {
				continue
			}
			live, err := t.Find(ref.Path())
			if err != nil || !live.HasValue {
				return referenceError(n.Path(),
					fmt.Sprintf("mandatory reference %q is not satisfied", "/"+joinPath(ref.Path())))
			}
		}
	}
	for _, c := range n.Children {
		if c.Deleted {
			continue
		}
		if err := t.checkMandatory(c); err != nil {
			return err
		}
	}
	return nil
}

func crossesForeignTag(n *template.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.IsTag {
			return true
		}
	}
	return false
}

// checkUniqueIn verifies, for every tag template node declaring %unique-in,
// that no two live instances share the value reachable via its
// UniquePath.
func (t *Tree) checkUniqueIn(n *Node) error {
	if n.Template != nil && n.Template.IsTag && n.Template.UniqueIn != "" {
		seen := make(map[string]string)
		for _, inst := range n.Children {
			if inst.Deleted {
				continue
			}
			target := resolveUniquePath(inst, n.Template.UniquePath)
			if target == nil || !target.HasValue {
				continue
			}
			key := target.Value.Canonical()
			if other, dup := seen[key]; dup {
				return referenceError(inst.Path(),
					fmt.Sprintf("value %q duplicates unique-in value of %q", key, other))
			}
			seen[key] = inst.Segname
		}
	}
	for _, c := range n.Children {
		if c.Deleted {
			continue
		}
		if err := t.checkUniqueIn(c); err != nil {
			return err
		}
	}
	return nil
}

// resolveUniquePath walks a tag instance down a recorded unique-in path.
// An "@:=Kind" hop (crossing into a nested tag's own instance scope) is
// resolved only when that nested tag happens to have exactly one live
// instance; an ambiguous crossing is skipped, as checkMandatory skips
// references under a tag.
func resolveUniquePath(inst *Node, path []string) *Node {
	cur := inst
	for _, seg := range path {
		if strings.HasPrefix(seg, "@:=") {
			if len(cur.Children) != 1 {
				return nil
			}
			cur = cur.Children[0]
			continue
		}
		cur = childByName(cur, seg)
		if cur == nil {
			return nil
		}
	}
	return cur
}

func joinPath(path []string) string {
	out := ""
	for i, s := range path {
		if i > 0 {
			out += "/"
		}
		out += s
	}
	return out
}
