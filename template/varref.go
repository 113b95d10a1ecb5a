// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2014-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

package template

import "strings"

// FindVarnameNode resolves a "$(...)" reference against the schema,
// implementing spec.md §4.2's find_varname_node at the template level:
// used while validating that a "%mandatory"/"%unique-in" reference is
// resolvable at all, before any configuration instance exists.
//
// "$(@)", "$(<>)" and "$(#)" all resolve to node itself (the self value,
// operator and node-id aspects respectively; the aspect is distinguished
// at the live-expansion layer, package expand, not here). A trailing
// "DEFAULT" segment resolves to the node whose schema default applies.
// Search proceeds from node outward: a walk starting with a literal
// segment (not "@") climbs ancestors until one's Segname matches that
// segment (or its tag parent does), then descends through the remaining
// segments as literal/typed child lookups.
func (t *Tree) FindVarnameNode(node *Node, varname string) (*Node, error) {
	inner := strings.TrimSuffix(strings.TrimPrefix(varname, "$("), ")")
	switch inner {
	case "@", "<>", "#":
		return node, nil
	}
	if strings.HasSuffix(inner, "DEFAULT") {
		base := strings.TrimSuffix(strings.TrimSuffix(inner, "DEFAULT"), ".")
		return t.resolveDotted(node, base)
	}
	return t.resolveDotted(node, inner)
}

func (t *Tree) resolveDotted(node *Node, path string) (*Node, error) {
	if path == "" {
		return node, nil
	}
	segs := strings.Split(path, ".")
	var cur *Node
	if segs[0] == "@" {
		cur = node
		segs = segs[1:]
	} else {
		cur = climbTo(node, segs[0])
		if cur == nil {
			// Fall back to an absolute path from the schema root: the
			// reference may simply name a path that does not pass through
			// any ancestor of node.
			cur = t.Root
		} else {
			segs = segs[1:]
		}
	}
	for i, seg := range segs {
		if seg == "" {
			continue
		}
		next, _, err := matchChild(cur, seg, segs[:i])
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// climbTo walks upward from node (inclusive) looking for an ancestor whose
// own Segname, or whose tag parent's Segname, equals name.
func climbTo(node *Node, name string) *Node {
	for cur := node; cur != nil; cur = cur.Parent {
		if cur.Segname == name {
			return cur
		}
		if cur.Parent != nil && cur.Parent.IsTag && cur.Parent.Segname == name {
			return cur.Parent
		}
	}
	return nil
}
