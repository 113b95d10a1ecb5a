// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

package template

import (
	"testing"

	"github.com/danos/rtrmgr/value"
)

// buildInterfacesTree constructs the schema from spec.md's S1 scenario by
// hand, the way a unit test exercises a parsed structure without invoking
// package parse.
func buildInterfacesTree(t *testing.T) *Tree {
	t.Helper()
	tree := NewTree()
	interfaces := NewNode("interfaces")
	tree.Root.AddChild(interfaces)

	iface := NewNode("interface")
	iface.IsTag = true
	iface.ModuleName = "if_mgr"
	interfaces.AddChild(iface)

	variant := NewNode("@")
	variant.Kind = value.Text
	iface.AddChild(variant)

	mtu := NewNode("mtu")
	mtu.Kind = value.Uint32
	def, _ := value.Parse(value.Uint32, "1500")
	mtu.Default = &def
	variant.AddChild(mtu)

	if err := tree.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return tree
}

func TestFindByPathThroughTag(t *testing.T) {
	tree := buildInterfacesTree(t)
	n, err := tree.FindByPath([]string{"interfaces", "interface", "eth0", "mtu"})
	if err != nil {
		t.Fatal(err)
	}
	if n.Segname != "mtu" || n.Kind != value.Uint32 {
		t.Fatalf("unexpected node: %+v", n)
	}
}

func TestFindByPathUnknownElement(t *testing.T) {
	tree := buildInterfacesTree(t)
	if _, err := tree.FindByPath([]string{"bogus"}); err == nil {
		t.Fatal("expected an error for an unknown top-level element")
	}
}

func TestMandatoryReferenceResolution(t *testing.T) {
	tree := NewTree()
	protocols := NewNode("protocols")
	tree.Root.AddChild(protocols)
	ospf := NewNode("ospf")
	ospf.ModuleName = "ospf"
	protocols.AddChild(ospf)
	routerID := NewNode("router-id")
	routerID.Kind = value.IPv4
	ospf.AddChild(routerID)

	area := NewNode("area")
	area.IsTag = true
	area.MandatoryRefs = []string{"$(protocols.ospf.router-id)"}
	ospf.AddChild(area)
	areaVariant := NewNode("@")
	areaVariant.Kind = value.IPv4
	area.AddChild(areaVariant)

	if err := tree.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if len(area.MandatoryResolved) != 1 || area.MandatoryResolved[0] != routerID {
		t.Fatalf("expected mandatory ref to resolve to router-id, got %+v", area.MandatoryResolved)
	}
}

func TestSetOnNonLeafRejected(t *testing.T) {
	tree := NewTree()
	grouping := NewNode("grouping")
	grouping.Commands["%set"] = nil
	tree.Root.AddChild(grouping)
	if err := tree.Finalize(); err == nil {
		t.Fatal("expected an error: %set on a non-leaf grouping node")
	}
}

func TestOrderPolicyNumeric(t *testing.T) {
	v10, _ := value.Parse(value.Uint32, "10")
	v20, _ := value.Parse(value.Uint32, "20")
	if !SortedNumeric.Less(v10, v20) {
		t.Fatal("expected 10 < 20 under SORTED_NUMERIC")
	}
}
