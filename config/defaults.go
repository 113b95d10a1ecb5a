// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2014-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

package config

import "github.com/danos/rtrmgr/template"

// AddDefaultChildren implements add_default_children (spec.md §4.3): for
// every fixed (non-tag) schema child of n's template that n is missing,
// materialize a node carrying the template's declared default, marked
// committed since nothing provisional ever touched it. Tag nodes are never
// given synthetic instances — a tag has no default membership, only
// defaults within instances that already exist.
func (t *Tree) AddDefaultChildren(n *Node) {
	schemaNode := t.Schema.Root
	if n.Template != nil {
		schemaNode = n.Template
	}
	if schemaNode.IsTag {
		return
	}
	for _, tc := range schemaNode.Children {
		if tc.Segname == "@" {
			continue
		}
		existing := childByName(n, tc.Segname)
		if existing == nil {
			switch {
			case tc.IsLeaf() && tc.HasDefault():
				existing = NewChild(tc.Segname, tc)
				existing.HasValue = true
				existing.Value = *tc.Default
				existing.ExistenceCommitted = true
				existing.ValueCommitted = true
				insertOrdered(n, existing, 0)
			case !tc.IsTag && hasDefaultDescendant(tc):
				existing = NewChild(tc.Segname, tc)
				existing.ExistenceCommitted = true
				insertOrdered(n, existing, 0)
			}
		}
		if existing != nil && !tc.IsTag {
			t.AddDefaultChildren(existing)
		}
	}
}

// hasDefaultDescendant reports whether some non-tag descendant of tc
// carries a default value, so AddDefaultChildren knows whether it's worth
// fabricating an empty intermediate container for tc.
func hasDefaultDescendant(tc *template.Node) bool {
	for _, c := range tc.Children {
		if c.Segname == "@" {
			continue
		}
		if c.IsLeaf() && c.HasDefault() {
			return true
		}
		if !c.IsTag && hasDefaultDescendant(c) {
			return true
		}
	}
	return false
}
