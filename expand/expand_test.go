// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

package expand

import (
	"testing"

	"github.com/danos/rtrmgr/config"
	"github.com/danos/rtrmgr/template"
	"github.com/danos/rtrmgr/value"
)

func buildRouterIDTree(t *testing.T) (*config.Tree, *config.Node) {
	t.Helper()
	schema := template.NewTree()
	protocols := template.NewNode("protocols")
	schema.Root.AddChild(protocols)
	ospf := template.NewNode("ospf")
	protocols.AddChild(ospf)
	routerIDTmpl := template.NewNode("router-id")
	routerIDTmpl.Kind = value.IPv4
	ospf.AddChild(routerIDTmpl)
	enabledTmpl := template.NewNode("enabled")
	enabledTmpl.Kind = value.Boolean
	ospf.AddChild(enabledTmpl)
	if err := schema.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	cfg := config.NewTree(schema)
	protocolsCfg := config.NewChild("protocols", protocols)
	cfg.Root.AddChild(protocolsCfg, 1)
	ospfCfg := config.NewChild("ospf", ospf)
	protocolsCfg.AddChild(ospfCfg, 1)
	routerID := config.NewChild("router-id", routerIDTmpl)
	rid, _ := value.Parse(value.IPv4, "10.0.0.1")
	routerID.HasValue = true
	routerID.Value = rid
	ospfCfg.AddChild(routerID, 1)
	enabled := config.NewChild("enabled", enabledTmpl)
	ev, _ := value.Parse(value.Boolean, "true")
	enabled.HasValue = true
	enabled.Value = ev
	ospfCfg.AddChild(enabled, 1)

	return cfg, ospfCfg
}

func TestResolveSelfValue(t *testing.T) {
	cfg, ospf := buildRouterIDTree(t)
	routerID := ospf.Children[0]
	got, err := ResolveRef(cfg, routerID, "$(@)")
	if err != nil {
		t.Fatal(err)
	}
	if got != "10.0.0.1" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveDottedSibling(t *testing.T) {
	cfg, ospf := buildRouterIDTree(t)
	got, err := ResolveRef(cfg, ospf, "$(ospf.router-id)")
	if err != nil {
		t.Fatal(err)
	}
	if got != "10.0.0.1" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveBacktickNegation(t *testing.T) {
	cfg, ospf := buildRouterIDTree(t)
	enabled := ospf.Children[1]
	got, err := ResolveRef(cfg, enabled, "`~$(@)`")
	if err != nil {
		t.Fatal(err)
	}
	if got != "false" {
		t.Fatalf("expected negated true -> false, got %q", got)
	}
}

func TestExpandStringSubstitutesMultipleRefs(t *testing.T) {
	cfg, ospf := buildRouterIDTree(t)
	routerID := ospf.Children[0]
	out, err := ExpandString(cfg, routerID, "configure router $(@) in area $(ospf.router-id)")
	if err != nil {
		t.Fatal(err)
	}
	want := "configure router 10.0.0.1 in area 10.0.0.1"
	if out != want {
		t.Fatalf("got %q want %q", out, want)
	}
}
