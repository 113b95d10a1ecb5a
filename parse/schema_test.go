// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

package parse

import (
	"testing"

	"github.com/danos/rtrmgr/template"
	"github.com/danos/rtrmgr/value"
)

const interfacesSchema = `
/* interfaces template */
interfaces {
    %module "if_mgr";

    interface @: txt {
        %order sorted-alphabetic;

        mtu: u32 = 1500 {
            %allow-range [68..9192] %help "valid MTU range";
            %set: program "/usr/bin/set-mtu $(@)";
        }

        description: txt;

        enabled: bool = true;

        %mandatory "$(@.mtu)";
        %unique-in "$(interfaces)";
    }
}

protocols {
    %module "proto_mgr";
    %modinfo: depends if_mgr;

    ospf {
        router-id: ipv4 {
            %set: xrl "ospf/set_router_id?id:ipv4=$(@)";
        }
    }
}
`

func TestSchemaParsesInterfacesTemplate(t *testing.T) {
	tree, err := Schema(interfacesSchema, "interfaces.tp")
	if err != nil {
		t.Fatalf("Schema: %v", err)
	}

	interfaces, err := tree.FindByPath([]string{"interfaces"})
	if err != nil {
		t.Fatalf("FindByPath interfaces: %v", err)
	}
	iface := interfaces.Children[0]
	if !iface.IsTag {
		t.Fatal("expected interface to be a tag node")
	}
	if iface.Order != template.SortedAlphabetic {
		t.Fatalf("expected sorted-alphabetic order on the tag container, got %v", iface.Order)
	}

	variant := iface.Children[0]
	if variant.Segname != "@" || variant.Kind != value.Text {
		t.Fatalf("unexpected variant: %+v", variant)
	}
	if variant.EffectiveModule() != "if_mgr" {
		t.Fatalf("expected effective module if_mgr, got %q", variant.EffectiveModule())
	}
	if len(variant.MandatoryResolved) != 1 {
		t.Fatalf("expected one resolved mandatory ref, got %d", len(variant.MandatoryResolved))
	}
	if variant.UniqueAncestor == nil {
		t.Fatal("expected unique-in ancestor to resolve")
	}

	mtu := variant.Children[0]
	if mtu.Kind != value.Uint32 || mtu.Default == nil || mtu.Default.Canonical() != "1500" {
		t.Fatalf("unexpected mtu node: %+v", mtu)
	}
	if len(mtu.AllowedRanges) != 1 {
		t.Fatalf("expected one allowed range, got %d", len(mtu.AllowedRanges))
	}
	if _, ok := mtu.Commands["%set"]; !ok {
		t.Fatal("expected %set command on mtu")
	}

	if _, ok := tree.Modules["if_mgr"]; !ok {
		t.Fatal("expected if_mgr declared via %module")
	}
	protoInfo, ok := tree.Modules["proto_mgr"]
	if !ok || len(protoInfo.Depends) != 1 || protoInfo.Depends[0] != "if_mgr" {
		t.Fatalf("expected proto_mgr to depend on if_mgr, got %+v", protoInfo)
	}
}

func TestSchemaRejectsMalformedInput(t *testing.T) {
	_, err := Schema(`interfaces { interface @ : bogus-type { } }`, "bad.tp")
	if err == nil {
		t.Fatal("expected a parse error for an unrecognised type keyword")
	}
}
