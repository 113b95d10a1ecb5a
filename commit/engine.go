// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2014-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

package commit

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/danos/rtrmgr/action"
	"github.com/danos/rtrmgr/common"
	"github.com/danos/rtrmgr/config"
	"github.com/danos/rtrmgr/depgraph"
	"github.com/danos/rtrmgr/expand"
	"github.com/danos/rtrmgr/rpc"
	"github.com/danos/rtrmgr/template"
	"github.com/danos/utils/audit"
	"github.com/danos/utils/pathutil"
)

// AuditSink receives one audit.UserLog per successfully dispatched task,
// the shape the teacher's commitctx.LogAudit (session/commit.go) hands to
// config/auth.Auther — kept as a narrow interface here rather than
// depending on that package, which this repo supersedes.
type AuditSink interface {
	LogUserLog(audit.UserLog)
}

// Engine is the commit engine (C6): it owns the module lifecycle, the
// action dispatcher, and the record of which modules were active after
// the previous successful commit (for depgraph.Difference).
type Engine struct {
	Schema     *template.Tree
	Modules    depgraph.ModuleManager
	Dispatcher action.Dispatcher
	Audit      AuditSink

	activeModules map[string]bool
}

// NewEngine constructs an Engine with no modules active yet (the state a
// freshly booted process starts from).
func NewEngine(schema *template.Tree, modules depgraph.ModuleManager, dispatcher action.Dispatcher) *Engine {
	return &Engine{
		Schema:        schema,
		Modules:       modules,
		Dispatcher:    dispatcher,
		activeModules: make(map[string]bool),
	}
}

// Result reports the outcome of a Validate or Commit pass.
type Result struct {
	Outputs rpc.ExecOutputs
	Errors  rpc.ExecErrors
	Success bool
}

// Validate runs Pass 1 (spec.md §4/§6): check_config_tree, then every
// pending task dispatched with dryRun so the dispatcher reports synthetic
// success without touching anything external. tree is left untouched
// either way.
func (e *Engine) Validate(ctx context.Context, tree *config.Tree) *Result {
	if err := tree.CheckConfigTree(); err != nil {
		return &Result{Errors: rpc.ExecErrors{{Path: tree.Root.Path(), Err: err}}}
	}

	pending := CollectPending(tree.Root)
	tasks := BuildTasks(pending)

	return e.runTasks(ctx, tree, tasks, true)
}

// Commit runs Pass 2: starts any newly-needed modules, dispatches every
// pending task for real, and — only on total success — finalizes the tree
// (spec.md §4.3's finalize_commit) and stops, in reverse dependency order,
// every running module that no longer has any configuration. A failure
// leaves the tree's pending and committed state as it was (return atoms
// already installed on live nodes are kept): spec.md's commit engine never
// attempts to roll back actions that already ran.
func (e *Engine) Commit(ctx context.Context, tree *config.Tree, user uint32, now time.Time) *Result {
	if err := tree.CheckConfigTree(); err != nil {
		return &Result{Errors: rpc.ExecErrors{{Path: tree.Root.Path(), Err: err}}}
	}

	pending := CollectPending(tree.Root)
	moduleSet := depgraph.ExpandDependencies(e.Schema, depgraph.CollectModuleSet(pending))
	if common.LoggingIsEnabledAtLevel(common.LevelDebug, common.TypeCommitEngine) {
		log.Printf("commit: %d pending change(s), module set %v", len(pending), moduleSet)
	}
	startOrder, err := depgraph.TopoOrder(e.Schema, moduleSet)
	if err != nil {
		return &Result{Errors: rpc.ExecErrors{{Err: err}}}
	}

	for _, m := range startOrder {
		if e.activeModules[m] {
			continue
		}
		if err := e.Modules.Start(ctx, m); err != nil {
			return &Result{Errors: rpc.ExecErrors{{Err: fmt.Errorf("starting module %s: %w", m, err)}}}
		}
	}

	tasks := BuildTasks(pending)
	result := e.runTasks(ctx, tree, tasks, false)
	if !result.Success {
		return result
	}

	finalizeCommit(tree.Root, user, now)
	config.UpdateNodeIDPositions(tree.Root)

	configured := depgraph.ExpandDependencies(e.Schema, depgraph.CollectModuleSet(tree.Root))
	for m := range moduleSet {
		e.activeModules[m] = true
	}
	_, stopped := depgraph.Difference(e.activeModules, configured)
	stopSet := make(map[string]bool, len(stopped))
	for _, m := range stopped {
		stopSet[m] = true
		delete(e.activeModules, m)
	}
	stopOrder, err := depgraph.TopoOrder(e.Schema, stopSet)
	if err != nil {
		stopOrder = stopped
	}
	for _, m := range depgraph.ShutdownOrder(stopOrder) {
		if err := e.Modules.Stop(ctx, m); err != nil {
			result.Errors = append(result.Errors, &rpc.ExecError{Err: fmt.Errorf("stopping module %s: %w", m, err)})
		}
	}
	return result
}

// runTasks dispatches every task in order, auditing each success and
// stopping at the first failure (the commit engine is single-threaded and
// cooperative: the only suspension point is the dispatcher's callback,
// per spec.md §5).
func (e *Engine) runTasks(ctx context.Context, tree *config.Tree, tasks []*Task, dryRun bool) *Result {
	result := &Result{Success: true}
	for _, task := range tasks {
		for _, act := range task.Actions {
			outcome, err := e.runAction(ctx, tree, task.Node, act, dryRun)
			path := task.Node.Path()
			if err != nil {
				result.Errors = append(result.Errors, &rpc.ExecError{Path: path, Err: err})
				result.Success = false
				return result
			}
			if outcome.Output != nil {
				result.Outputs = append(result.Outputs, &rpc.ExecOutput{Path: path, Output: outcome.Output.Output})
			}
			if !outcome.Success {
				result.Errors = append(result.Errors, &rpc.ExecError{Path: path, Err: outcome.Err})
				result.Success = false
				return result
			}
			// task.Node belongs to CollectPending's pruned copy, so atoms
			// also go onto the matching live node, which outlives the commit.
			var live *config.Node
			if found, ferr := tree.Find(path); !dryRun && ferr == nil {
				live = found
			}
			for k, v := range outcome.Atoms {
				task.Node.Vars[k] = v
				if live != nil {
					live.Vars[k] = v
				}
			}
		}
		if !dryRun && e.Audit != nil {
			e.Audit.LogUserLog(auditEntry(task, task.Node.UserID))
		}
	}
	return result
}

func (e *Engine) runAction(ctx context.Context, tree *config.Tree, node *config.Node, act *action.Action, dryRun bool) (action.Outcome, error) {
	req, err := e.resolveRequest(tree, node, act)
	if err != nil {
		return action.Outcome{}, err
	}
	done := make(chan action.Outcome, 1)
	e.Dispatcher.Dispatch(ctx, req, dryRun, func(o action.Outcome) { done <- o })
	select {
	case o := <-done:
		return o, nil
	case <-ctx.Done():
		return action.Outcome{}, ctx.Err()
	}
}

func (e *Engine) resolveRequest(tree *config.Tree, node *config.Node, act *action.Action) (action.Request, error) {
	argv := make([]string, len(act.Argv))
	for i, raw := range act.Argv {
		s, err := expand.ExpandString(tree, node, raw)
		if err != nil {
			return action.Request{}, err
		}
		argv[i] = s
	}

	reqAct := *act
	var call string
	if act.Kind == action.Remote {
		target, err := expand.ExpandString(tree, node, act.ResolvedTarget(node.Template.EffectiveDefaultTarget()))
		if err != nil {
			return action.Request{}, err
		}
		method, err := expand.ExpandString(tree, node, act.Method)
		if err != nil {
			return action.Request{}, err
		}
		call = target + "/" + method
		reqAct.Args = append([]action.CallArg(nil), act.Args...)
		for i, a := range act.Args {
			v, err := expand.ExpandString(tree, node, a.Value)
			if err != nil {
				return action.Request{}, err
			}
			reqAct.Args[i].Value = v
			sep := "&"
			if i == 0 {
				sep = "?"
			}
			call += sep + a.Name + ":" + a.Type.String() + "=" + v
		}
	}

	module := ""
	if node.Template != nil {
		module = node.Template.EffectiveModule()
	}

	return action.Request{
		Action:       &reqAct,
		NodePath:     node.Path(),
		ModuleName:   module,
		ResolvedArgv: argv,
		ResolvedCall: call,
	}, nil
}

// finalizeCommit promotes every pending change to committed state and
// physically prunes nodes scheduled for deletion (spec.md §4.3).
func finalizeCommit(n *config.Node, user uint32, now time.Time) {
	var kept []*config.Node
	for _, c := range n.Children {
		if c.Deleted {
			continue
		}
		finalizeCommit(c, user, now)
		kept = append(kept, c)
	}
	n.Children = kept

	if n.HasValue {
		n.CommittedValue = n.Value
		n.CommittedOperator = n.Operator
		n.CommittedUserID = user
		n.CommittedModTime = now
		n.ValueCommitted = true
	}
	n.ExistenceCommitted = true
}

func auditEntry(task *Task, user uint32) audit.UserLog {
	verb := "set"
	switch task.Kind {
	case KindDelete:
		verb = "deleted"
	case KindActivate:
		verb = "activated"
	case KindCreate:
		verb = "created"
	case KindUpdate:
		verb = "updated"
	}
	return audit.UserLog{
		Type:   audit.LOG_TYPE_USER_CFG,
		Msg:    fmt.Sprintf("configuration path [%s] %s by user %d", pathutil.Pathstr(task.Node.Path()), verb, user),
		Result: 1,
	}
}
