// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2014-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

// Package depgraph implements the module dependency resolver (spec
// component C7): collecting the set of modules touched by a pending
// commit, expanding it to a transitively-dependency-closed set, and
// emitting a start order (and its shutdown-order complement) with cycle
// detection.
package depgraph

import (
	"fmt"
	"log"
	"sort"

	"github.com/danos/rtrmgr/common"
	"github.com/danos/rtrmgr/config"
	"github.com/danos/rtrmgr/template"
)

// CollectModuleSet returns the set of module names owning at least one
// node under delta. The commit engine passes CollectPending's copy (nodes
// added, changed or deleted) to find the modules a commit touches, and the
// finalized root to find every module that still has configuration.
func CollectModuleSet(delta *config.Node) map[string]bool {
	out := make(map[string]bool)
	var walk func(n *config.Node)
	walk = func(n *config.Node) {
		if n.Template != nil {
			if m := n.Template.EffectiveModule(); m != "" {
				out[m] = true
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	if delta != nil {
		walk(delta)
	}
	return out
}

// ExpandDependencies closes modules under schema's declared %depends
// relation: every module a touched module depends on is added too, since
// it may need to be (re)started before the touched module's actions run.
func ExpandDependencies(schema *template.Tree, modules map[string]bool) map[string]bool {
	out := make(map[string]bool, len(modules))
	var add func(name string)
	add = func(name string) {
		if out[name] {
			return
		}
		out[name] = true
		info, ok := schema.Modules[name]
		if !ok {
			return
		}
		for _, dep := range info.Depends {
			add(dep)
		}
	}
	for name := range modules {
		add(name)
	}
	return out
}

// CycleError reports a dependency cycle discovered while computing a
// start order.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("module dependency cycle: %v", e.Cycle)
}

// TopoOrder computes a deterministic start order for modules (dependencies
// before dependents) via Kahn's algorithm, grounded on
// module_manager.cc's start-order computation. Ties are broken
// alphabetically so the order is stable across runs.
func TopoOrder(schema *template.Tree, modules map[string]bool) ([]string, error) {
	inDegree := make(map[string]int, len(modules))
	dependents := make(map[string][]string, len(modules))
	for name := range modules {
		inDegree[name] = 0
	}
	for name := range modules {
		info, ok := schema.Modules[name]
		if !ok {
			continue
		}
		for _, dep := range info.Depends {
			if !modules[dep] {
				continue
			}
			inDegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var ready []string
	for name, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	var order []string
	for len(ready) > 0 {
		sort.Strings(ready)
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)
		var newlyReady []string
		for _, dependent := range dependents[next] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				newlyReady = append(newlyReady, dependent)
			}
		}
		sort.Strings(newlyReady)
		ready = append(ready, newlyReady...)
	}

	if len(order) != len(modules) {
		var stuck []string
		for name, deg := range inDegree {
			if deg > 0 {
				stuck = append(stuck, name)
			}
		}
		sort.Strings(stuck)
		return nil, &CycleError{Cycle: stuck}
	}
	if common.LoggingIsEnabledAtLevel(common.LevelDebug, common.TypeDepgraph) {
		log.Printf("depgraph: start order %v", order)
	}
	return order, nil
}

// ShutdownOrder reverses a start order, per module_manager.cc's rule that
// modules are always torn down in the opposite order they were brought up
// in (a dependency may not be stopped while a dependent is still live).
func ShutdownOrder(startOrder []string) []string {
	out := make([]string, len(startOrder))
	for i, name := range startOrder {
		out[len(startOrder)-1-i] = name
	}
	return out
}

// Difference reports, relative to the module set active after the
// previous commit, which modules this commit newly needs started and
// which it no longer needs (and so should be stopped, in ShutdownOrder).
func Difference(previous, next map[string]bool) (started, stopped []string) {
	for name := range next {
		if !previous[name] {
			started = append(started, name)
		}
	}
	for name := range previous {
		if !next[name] {
			stopped = append(stopped, name)
		}
	}
	sort.Strings(started)
	sort.Strings(stopped)
	return started, stopped
}
