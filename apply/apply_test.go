// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

package apply

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/danos/rtrmgr/action"
	"github.com/danos/rtrmgr/commit"
	"github.com/danos/rtrmgr/config"
	"github.com/danos/rtrmgr/depgraph"
	"github.com/danos/rtrmgr/template"
	"github.com/danos/rtrmgr/value"
)

type noopDispatcher struct{}

func (noopDispatcher) Dispatch(ctx context.Context, req action.Request, dryRun bool, done func(action.Outcome)) {
	done(action.Outcome{Success: true})
}

type noopModules struct{}

func (noopModules) Start(ctx context.Context, module string) error { return nil }
func (noopModules) Stop(ctx context.Context, module string) error  { return nil }

func buildFacade(t *testing.T) (*Facade, *config.Tree, *template.Node) {
	t.Helper()
	schema := template.NewTree()
	leaf := template.NewNode("mtu")
	leaf.Kind = value.Uint32
	schema.Root.AddChild(leaf)
	if err := schema.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	tree := config.NewTree(schema)
	engine := commit.NewEngine(schema, noopModules{}, noopDispatcher{})
	return NewFacade(engine), tree, leaf
}

func TestApplyChangeThenCommitPromotesValue(t *testing.T) {
	facade, tree, leafTmpl := buildFacade(t)

	delta := config.NewChild("", nil)
	mtuDelta := config.NewChild("mtu", leafTmpl)
	v, _ := value.Parse(value.Uint32, "1500")
	mtuDelta.HasValue = true
	mtuDelta.Value = v
	mtuDelta.Operator = value.OpAssign
	delta.AddChild(mtuDelta, 0)

	if err := facade.ApplyChange(tree, delta, 1, 7, time.Now()); err != nil {
		t.Fatalf("ApplyChange: %v", err)
	}

	found, err := tree.Find([]string{"mtu"})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if found.ValueCommitted {
		t.Fatal("expected value_committed false before commit")
	}

	result, err := facade.Commit(context.Background(), tree, 7)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected commit success, got %v", result.Errors)
	}
	if !found.ValueCommitted {
		t.Fatal("expected value_committed true after commit")
	}
}

func TestCommitInProgressGuard(t *testing.T) {
	facade, tree, _ := buildFacade(t)
	facade.committing = true
	if _, err := facade.Commit(context.Background(), tree, 1); err == nil {
		t.Fatal("expected an error while a commit is already in progress")
	}
}

func TestDiffReportsAddedLeaf(t *testing.T) {
	schema := template.NewTree()
	leaf := template.NewNode("mtu")
	leaf.Kind = value.Uint32
	schema.Root.AddChild(leaf)
	if err := schema.Finalize(); err != nil {
		t.Fatal(err)
	}

	before := config.NewRoot()
	after := config.NewRoot()
	mtu := config.NewChild("mtu", leaf)
	v, _ := value.Parse(value.Uint32, "1500")
	mtu.HasValue = true
	mtu.Value = v
	after.AddChild(mtu, 1)

	out, err := Diff(before, after)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	var entries []entryWire
	if err := json.Unmarshal(out, &entries); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "/mtu" || entries[0].Status != "ADDED" {
		t.Fatalf("unexpected diff entries: %+v", entries)
	}
}

func TestDepgraphPackageIsWiredThroughCommit(t *testing.T) {
	// CollectModuleSet/TopoOrder are exercised end-to-end via
	// commit.Engine.Commit; this just confirms the package compiles
	// against the same config.Node shape apply hands it.
	n := config.NewChild("x", nil)
	if got := depgraph.CollectModuleSet(n); len(got) != 0 {
		t.Fatalf("expected no modules for an untemplated node, got %v", got)
	}
}
