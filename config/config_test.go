// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

package config

import (
	"testing"
	"time"

	"github.com/danos/rtrmgr/template"
	"github.com/danos/rtrmgr/value"
)

func buildInterfacesSchema(t *testing.T) *template.Tree {
	t.Helper()
	tree := template.NewTree()
	interfaces := template.NewNode("interfaces")
	tree.Root.AddChild(interfaces)

	iface := template.NewNode("interface")
	iface.IsTag = true
	iface.Order = template.SortedAlphabetic
	interfaces.AddChild(iface)

	variant := template.NewNode("@")
	variant.Kind = value.Text
	iface.AddChild(variant)

	mtu := template.NewNode("mtu")
	mtu.Kind = value.Uint32
	def, _ := value.Parse(value.Uint32, "1500")
	mtu.Default = &def
	variant.AddChild(mtu)

	description := template.NewNode("description")
	description.Kind = value.Text
	variant.AddChild(description)

	if err := tree.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return tree
}

func TestMergeDeltaCreatesInstanceWithDefault(t *testing.T) {
	schema := buildInterfacesSchema(t)
	cfg := NewTree(schema)

	ifacesTmpl := schema.Root.Children[0]
	ifaceTmpl := ifacesTmpl.Children[0]
	variantTmpl := ifaceTmpl.Children[0]

	interfaces := NewChild("interfaces", ifacesTmpl)
	cfg.Root.AddChild(interfaces, 1)
	iface := NewChild("interface", ifaceTmpl)
	interfaces.AddChild(iface, 1)

	delta := NewChild("eth0", variantTmpl)
	now := time.Now()
	descVal, _ := value.Parse(value.Text, "uplink")
	desc := NewChild("description", variantTmpl.Children[1])
	desc.HasValue = true
	desc.Value = descVal
	desc.Operator = value.OpAssign
	delta.AddChild(desc, 0)

	wrapper := NewChild("", nil)
	wrapper.AddChild(delta, 0)

	if err := MergeDelta(iface, wrapper, 1, false, true, 42, now); err != nil {
		t.Fatalf("MergeDelta: %v", err)
	}
	cfg.AddDefaultChildren(iface.Children[0])

	found, err := cfg.Find([]string{"interfaces", "interface", "eth0", "mtu"})
	if err != nil {
		t.Fatalf("Find mtu: %v", err)
	}
	if !found.HasValue || found.Value.Canonical() != "1500" {
		t.Fatalf("expected default mtu 1500, got %+v", found.Value)
	}

	descFound, err := cfg.Find([]string{"interfaces", "interface", "eth0", "description"})
	if err != nil {
		t.Fatalf("Find description: %v", err)
	}
	if descFound.Value.Canonical() != "uplink" {
		t.Fatalf("expected description uplink, got %q", descFound.Value.Canonical())
	}
	if descFound.ValueCommitted {
		t.Fatal("expected provisional merge to leave value_committed false")
	}
}

func TestMergeDeletionProvisionalMarksDeleted(t *testing.T) {
	root := NewRoot()
	child := NewChild("foo", nil)
	root.AddChild(child, 1)

	if err := MergeDeletion(root, []string{"foo"}, true); err != nil {
		t.Fatalf("MergeDeletion: %v", err)
	}
	if !child.Deleted {
		t.Fatal("expected node marked deleted under provisional deletion")
	}
	if len(root.Children) != 1 {
		t.Fatal("provisional deletion must not remove the node from its parent")
	}
}

func TestMergeDeletionMissingPathIsError(t *testing.T) {
	root := NewRoot()
	if err := MergeDeletion(root, []string{"bogus"}, true); err == nil {
		t.Fatal("expected an error deleting a path absent from the live tree")
	}
}

func TestRetainDifferentAndCommon(t *testing.T) {
	a := NewRoot()
	av, _ := value.Parse(value.Uint32, "10")
	leafA := NewChild("mtu", nil)
	leafA.HasValue = true
	leafA.Value = av
	a.AddChild(leafA, 1)

	b := NewRoot()
	bv, _ := value.Parse(value.Uint32, "20")
	leafB := NewChild("mtu", nil)
	leafB.HasValue = true
	leafB.Value = bv
	b.AddChild(leafB, 1)

	diff := RetainDifferent(a, b)
	if diff == nil || len(diff.Children) != 1 {
		t.Fatalf("expected one differing child, got %+v", diff)
	}

	same := NewRoot()
	sv, _ := value.Parse(value.Uint32, "10")
	leafSame := NewChild("mtu", nil)
	leafSame.HasValue = true
	leafSame.Value = sv
	same.AddChild(leafSame, 1)

	common := RetainCommon(a, same)
	if common == nil || len(common.Children) != 1 {
		t.Fatalf("expected one common child, got %+v", common)
	}

	deletions := RetainDeletions(a, NewRoot())
	if deletions == nil || len(deletions.Children) != 1 {
		t.Fatalf("expected mtu reported as a deletion, got %+v", deletions)
	}
}

func TestEffectiveParentScopesTagInstanceIDs(t *testing.T) {
	root := NewRoot()
	tagTmpl := template.NewNode("interface")
	tagTmpl.IsTag = true
	tag := NewChild("interface", tagTmpl)
	root.AddChild(tag, 1)

	inst1 := NewChild("eth0", nil)
	tag.AddChild(inst1, 1)
	inst2 := NewChild("eth1", nil)
	tag.AddChild(inst2, 1)

	if inst1.ID.Instance == 0 || inst2.ID.Instance == 0 {
		t.Fatal("expected non-zero instance IDs")
	}
	if inst1.ID.Instance == inst2.ID.Instance {
		t.Fatal("expected distinct instance IDs for distinct tag instances")
	}
	if inst2.ID.Position != inst1.ID.Instance {
		t.Fatalf("expected inst2 position to reference inst1's instance id, got %d", inst2.ID.Position)
	}
}
