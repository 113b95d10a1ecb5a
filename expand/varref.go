// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2014-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

// Package expand implements the variable expander (spec component C4):
// resolving a "$(...)" or backtick-negated reference against the live
// configuration tree at the cursor node an action or command is being
// dispatched from.
package expand

import (
	"fmt"
	"strings"

	"github.com/danos/rtrmgr/config"
)

// resolveLiveDotted walks a dotted reference from cursor, the live-tree
// counterpart of template.Tree.FindVarnameNode's resolveDotted. It needs no
// "@:=<typestr>" tag-crossing special case: unlike the bare schema, a tag's
// container keeps its literal declared segname as a real ancestor of every
// instance, so plain Segname matching during the climb is enough.
func resolveLiveDotted(cursor *config.Node, path string) (*config.Node, error) {
	segs := strings.Split(path, ".")
	if len(segs) == 0 || segs[0] == "" {
		return nil, fmt.Errorf("empty variable reference")
	}

	var cur *config.Node
	if segs[0] == "@" {
		cur = cursor
		segs = segs[1:]
	} else if anchor := climbToLive(cursor, segs[0]); anchor != nil {
		cur = anchor
		segs = segs[1:]
	} else {
		cur = rootOf(cursor)
	}

	for _, seg := range segs {
		next := childByNameLive(cur, seg)
		if next == nil {
			return nil, fmt.Errorf("no configuration node at %q (resolving %q)", seg, path)
		}
		cur = next
	}
	return cur, nil
}

func climbToLive(node *config.Node, name string) *config.Node {
	for cur := node; cur != nil; cur = cur.Parent {
		if cur.Segname == name {
			return cur
		}
	}
	return nil
}

func childByNameLive(parent *config.Node, segname string) *config.Node {
	if parent == nil {
		return nil
	}
	for _, c := range parent.Children {
		if !c.Deleted && c.Segname == segname {
			return c
		}
	}
	return nil
}

func rootOf(node *config.Node) *config.Node {
	cur := node
	for cur.Parent != nil {
		cur = cur.Parent
	}
	return cur
}
