// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2014-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

// Package commit implements the two-pass commit engine (spec component
// C6): Pass 1 dry-runs every pending action against a synthetic success
// outcome to validate the candidate before anything external is touched;
// Pass 2 dispatches the same actions for real and finalizes the tree.
package commit

import (
	"github.com/danos/rtrmgr/action"
	"github.com/danos/rtrmgr/config"
)

// Kind distinguishes the shapes of work a commit can ask a template node
// to perform.
type Kind int

const (
	KindSet Kind = iota
	KindDelete
	KindActivate
	KindCreate
	KindUpdate
)

// Task is an explicit unit of commit work — spec.md §9's redesign of the
// original's "actions_pending" ad hoc decrement counter into a concrete
// object a barrier can wait on (see Engine.runTasks).
type Task struct {
	Node    *config.Node
	Kind    Kind
	Actions []*action.Action
}

// cmds returns n's commands for key ("%set"/"%create"/"%update"/"%delete"/
// "%activate") when non-empty.
func cmds(n *config.Node, key string) ([]*action.Action, bool) {
	if n == nil || n.Template == nil {
		return nil, false
	}
	acts, ok := n.Template.Commands[key]
	return acts, ok && len(acts) > 0
}

// nearestActivate climbs n's ancestors for the first one declaring
// "%activate", implementing needs_activate propagation: a leaf with
// neither "%set" nor "%delete" of its own defers to the nearest
// ancestor that knows how to realize a change anywhere beneath it.
func nearestActivate(n *config.Node) (*config.Node, []*action.Action) {
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		if acts, ok := cmds(cur, "%activate"); ok {
			return cur, acts
		}
	}
	return nil, nil
}

// BuildTasks walks root (typically the whole tree, or a module's boundary
// subtree) collecting one Task per changed node that has its own command,
// or, failing that, one deduplicated Task per ancestor whose %activate
// covers one or more changed descendants.
func BuildTasks(root *config.Node) []*Task {
	visited := make(map[*config.Node]bool)
	var tasks []*Task
	var walk func(n *config.Node)
	walk = func(n *config.Node) {
		switch {
		case n.Deleted:
			if acts, ok := cmds(n, "%delete"); ok {
				tasks = append(tasks, &Task{Node: n, Kind: KindDelete, Actions: acts})
			} else if anc, accts := nearestActivate(n); anc != nil && !visited[anc] {
				visited[anc] = true
				tasks = append(tasks, &Task{Node: anc, Kind: KindActivate, Actions: accts})
			}
			// A deleted subtree's descendants are going away with it;
			// don't also visit them for their own set/delete commands.
			return
		case !n.ExistenceCommitted:
			if acts, ok := cmds(n, "%create"); ok {
				tasks = append(tasks, &Task{Node: n, Kind: KindCreate, Actions: acts})
			} else if acts, ok := cmds(n, "%set"); ok {
				tasks = append(tasks, &Task{Node: n, Kind: KindSet, Actions: acts})
			} else if anc, accts := nearestActivate(n); anc != nil && !visited[anc] {
				visited[anc] = true
				tasks = append(tasks, &Task{Node: anc, Kind: KindActivate, Actions: accts})
			}
		case n.HasValue && !n.ValueCommitted:
			// An existing node whose value changed dispatches its own
			// "%set" (or defers to an ancestor's "%activate"), then
			// separately its "%update" if it declares one -- both fire
			// together, unlike the exactly-one-of create/set on a new
			// node (spec.md section 4.6).
			if acts, ok := cmds(n, "%set"); ok {
				tasks = append(tasks, &Task{Node: n, Kind: KindSet, Actions: acts})
			} else if anc, accts := nearestActivate(n); anc != nil && !visited[anc] {
				visited[anc] = true
				tasks = append(tasks, &Task{Node: anc, Kind: KindActivate, Actions: accts})
			}
			if acts, ok := cmds(n, "%update"); ok {
				tasks = append(tasks, &Task{Node: n, Kind: KindUpdate, Actions: acts})
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	return tasks
}
