// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2014-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

package template

import (
	"fmt"

	"github.com/danos/mgmterror"
	"github.com/danos/rtrmgr/value"
)

// ModuleInfo records a module's declared dependencies, as read from a
// "%modinfo: depends ...;" statement (spec.md §4.7 / SPEC_FULL.md's
// depgraph grounding).
type ModuleInfo struct {
	Name    string
	Depends []string
}

// Tree is the template tree (C2): the schema, built once by package parse
// and immutable for the process lifetime thereafter.
type Tree struct {
	Root    *Node
	Modules map[string]*ModuleInfo
}

// NewTree returns an empty tree with a synthetic root node, ready for a
// parser to populate before Finalize is called.
func NewTree() *Tree {
	return &Tree{
		Root:    NewNode(""),
		Modules: make(map[string]*ModuleInfo),
	}
}

// DeclareModule records module's dependency list, creating the entry if
// this is the first statement naming it.
func (t *Tree) DeclareModule(module string, depends []string) {
	m, ok := t.Modules[module]
	if !ok {
		m = &ModuleInfo{Name: module}
		t.Modules[module] = m
	}
	m.Depends = append(m.Depends, depends...)
}

// Finalize runs the two load-time passes spec.md §4.2 describes:
// expansion (resolve %mandatory/%unique-in variable references; %allow,
// %allow-range and %allow-operator entries are kept as parsed, with no
// variable resolution) and
// validation (reject ill-formed flag/command combinations). Call this once
// after the whole tree has been parsed.
func (t *Tree) Finalize() error {
	if err := t.expand(t.Root); err != nil {
		return err
	}
	return t.validate(t.Root)
}

func (t *Tree) expand(n *Node) error {
	for _, ref := range n.MandatoryRefs {
		target, err := t.FindVarnameNode(n, ref)
		if err != nil {
			return fmt.Errorf("mandatory reference %q on %v: %w", ref, n.Path(), err)
		}
		n.MandatoryResolved = append(n.MandatoryResolved, target)
	}
	if n.UniqueIn != "" {
		ancestor, err := t.FindVarnameNode(n, n.UniqueIn)
		if err != nil {
			return fmt.Errorf("unique-in reference %q on %v: %w", n.UniqueIn, n.Path(), err)
		}
		n.UniqueAncestor = ancestor
		n.UniquePath = relativePath(ancestor, n)
	}
	for _, c := range n.Children {
		if err := t.expand(c); err != nil {
			return err
		}
	}
	return nil
}

// relativePath walks up from n to ancestor, recording each step; a step
// through a tag's variant child is recorded as "@:=<typestr>" so that a
// later uniqueness lookup can match same-type tag siblings specifically
// (spec.md §4.2).
func relativePath(ancestor, n *Node) []string {
	var steps []string
	for cur := n; cur != nil && cur != ancestor; cur = cur.Parent {
		if cur.Segname == "@" {
			steps = append([]string{"@:=" + cur.Kind.String()}, steps...)
		} else {
			steps = append([]string{cur.Segname}, steps...)
		}
	}
	return steps
}

func malformed(node *Node, reason string) error {
	err := mgmterror.NewMalformedMessageError()
	err.Message = fmt.Sprintf("%v: %s", node.Path(), reason)
	return err
}

func (t *Tree) validate(n *Node) error {
	if n.ReadOnly != nil {
		// read_only implies permanent: the node behaves as permanent even
		// if no explicit %permanent statement was given.
		if n.Permanent == nil {
			n.Permanent = &Reason{Text: n.ReadOnly.Text}
		}
	}
	if _, ok := n.Commands["%set"]; ok && !n.IsLeaf() {
		return malformed(n, "%set may only appear on value-bearing leaves")
	}
	if n.IsTag {
		for _, v := range n.TagVariants() {
			if v.Kind == value.Void {
				return malformed(v, "tag variant must declare a value type")
			}
		}
	}
	for _, target := range n.MandatoryResolved {
		if target.IsTag || !target.IsLeaf() {
			return malformed(n, fmt.Sprintf(
				"mandatory reference %v does not resolve to a single-value node", target.Path()))
		}
		if target.EffectiveModule() != n.EffectiveModule() {
			return malformed(n, fmt.Sprintf(
				"mandatory reference %v is not in module %s", target.Path(), n.EffectiveModule()))
		}
	}
	if n.UniqueAncestor != nil {
		if !isAncestor(n.UniqueAncestor, n) {
			return malformed(n, fmt.Sprintf(
				"unique-in reference %v is not an ancestor", n.UniqueAncestor.Path()))
		}
		if n.UniqueAncestor.EffectiveModule() != n.EffectiveModule() {
			return malformed(n, fmt.Sprintf(
				"unique-in reference %v is not in module %s", n.UniqueAncestor.Path(), n.EffectiveModule()))
		}
	}
	for _, c := range n.Children {
		if err := t.validate(c); err != nil {
			return err
		}
	}
	return nil
}

func isAncestor(ancestor, n *Node) bool {
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// Validate re-runs the validation pass standalone, without re-running
// expansion — this is the "boot-time template-only check" mode restored
// from the XORP original's "-b"/"-t" startup flags (SPEC_FULL.md
// SUPPLEMENTED FEATURES).
func (t *Tree) Validate() error {
	return t.validate(t.Root)
}
