// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

package parse

import (
	"strings"
	"testing"
	"time"

	"github.com/danos/rtrmgr/config"
	"github.com/danos/rtrmgr/value"
)

func childByName(n *config.Node, name string) *config.Node {
	for _, c := range n.Children {
		if c.Segname == name {
			return c
		}
	}
	return nil
}

func mustChild(t *testing.T, n *config.Node, name string) *config.Node {
	t.Helper()
	c := childByName(n, name)
	if c == nil {
		t.Fatalf("expected a child named %q", name)
	}
	return c
}

func TestConfigParsesTagInstanceAndLeaves(t *testing.T) {
	tree, err := Schema(interfacesSchema, "interfaces.tp")
	if err != nil {
		t.Fatalf("Schema: %v", err)
	}

	const cfgText = `
interfaces {
    interface "eth0" {
        mtu 9000;
        description "uplink";
        enabled true;
    }
}
protocols {
    ospf {
        router-id 10.0.0.1;
    }
}
`
	now := time.Date(2026, 7, 29, 12, 0, 0, 0, time.UTC)
	root, err := Config(cfgText, "running.conf", tree, 1, 42, now)
	if err != nil {
		t.Fatalf("Config: %v", err)
	}

	interfaces := mustChild(t, root, "interfaces")
	iface := mustChild(t, interfaces, "interface")
	eth0 := mustChild(t, iface, "eth0")
	if !eth0.ExistenceCommitted {
		t.Fatal("expected eth0 instance to be existence-committed")
	}
	if eth0.HasValue {
		t.Fatal("a tag instance node identifies itself via Segname, not HasValue/Value")
	}

	mtu := mustChild(t, eth0, "mtu")
	if !mtu.HasValue || !mtu.ValueCommitted {
		t.Fatal("expected mtu to be a committed value")
	}
	if mtu.Value.Canonical() != "9000" {
		t.Fatalf("expected mtu 9000, got %v", mtu.Value.Canonical())
	}
	if mtu.Operator != value.OpAssign {
		t.Fatalf("expected default OpAssign, got %v", mtu.Operator)
	}
	if mtu.UserID != 42 {
		t.Fatalf("expected UserID 42, got %d", mtu.UserID)
	}

	desc := mustChild(t, eth0, "description")
	if desc.Value.Canonical() != "uplink" {
		t.Fatalf("expected description uplink, got %v", desc.Value.Canonical())
	}

	protocols := mustChild(t, root, "protocols")
	ospf := mustChild(t, protocols, "ospf")
	routerID := mustChild(t, ospf, "router-id")
	if routerID.Value.Canonical() != "10.0.0.1" {
		t.Fatalf("expected router-id 10.0.0.1, got %v", routerID.Value.Canonical())
	}
}

func TestConfigRejectsUnknownSegment(t *testing.T) {
	tree, err := Schema(interfacesSchema, "interfaces.tp")
	if err != nil {
		t.Fatalf("Schema: %v", err)
	}
	_, err = Config(`bogus { foo; }`, "bad.conf", tree, 1, 1, time.Unix(0, 0))
	if err == nil {
		t.Fatal("expected an error for a segment absent from the schema")
	}
}

func TestSaveRoundTripsCommittedLeaf(t *testing.T) {
	tree, err := Schema(interfacesSchema, "interfaces.tp")
	if err != nil {
		t.Fatalf("Schema: %v", err)
	}
	const cfgText = `
interfaces {
    interface "eth0" {
        mtu 1400;
    }
}
`
	now := time.Date(2026, 7, 29, 12, 0, 0, 0, time.UTC)
	root, err := Config(cfgText, "running.conf", tree, 1, 7, now)
	if err != nil {
		t.Fatalf("Config: %v", err)
	}

	saved := Save(root, "testhost", "tester", now)
	for _, want := range []string{"interfaces", "eth0", "1400"} {
		if !strings.Contains(saved, want) {
			t.Fatalf("expected saved text to mention %q, got:\n%s", want, saved)
		}
	}
}
