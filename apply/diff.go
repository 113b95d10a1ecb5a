// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

package apply

import (
	"github.com/danos/encoding/rfc7951"
	"github.com/danos/rtrmgr/config"
	"github.com/danos/rtrmgr/rpc"
	"github.com/danos/utils/pathutil"
)

// entryWire is a structural-diff entry's RFC 7951 wire shape, broadcast
// to subscribers after a successful commit.
type entryWire struct {
	Path   string `rfc7951:"path"`
	Status string `rfc7951:"status"`
}

// Diff computes a structural diff between two config trees — typically
// the tree as it was before a commit and the same tree immediately after
// — and encodes it as RFC 7951 JSON for broadcast (spec.md §3/§8's
// apply_change notification path).
func Diff(before, after *config.Node) ([]byte, error) {
	var entries []entryWire
	diffWalk(before, after, nil, &entries)
	return rfc7951.Marshal(entries)
}

func diffWalk(old, new *config.Node, path []string, out *[]entryWire) {
	segname := ""
	switch {
	case new != nil:
		segname = new.Segname
	case old != nil:
		segname = old.Segname
	}

	var here []string
	if segname != "" {
		here = append(append([]string{}, path...), segname)
	} else {
		here = path
	}

	if len(here) > 0 {
		if status := status(old, new); status != rpc.Unchanged {
			*out = append(*out, entryWire{Path: pathutil.Pathstr(here), Status: status.String()})
		}
	}

	for _, seg := range unionChildNames(old, new) {
		diffWalk(childByName(old, seg), childByName(new, seg), here, out)
	}
}

func status(old, new *config.Node) rpc.NodeStatus {
	switch {
	case old == nil:
		return rpc.Added
	case new == nil:
		return rpc.Deleted
	case !config.Equal(old, new, false):
		return rpc.Changed
	default:
		return rpc.Unchanged
	}
}

func childByName(n *config.Node, segname string) *config.Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Segname == segname {
			return c
		}
	}
	return nil
}

func unionChildNames(old, new *config.Node) []string {
	var names []string
	seen := make(map[string]bool)
	add := func(n *config.Node) {
		if n == nil {
			return
		}
		for _, c := range n.Children {
			if !seen[c.Segname] {
				seen[c.Segname] = true
				names = append(names, c.Segname)
			}
		}
	}
	add(old)
	add(new)
	return names
}
