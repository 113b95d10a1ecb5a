// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

package action

import (
	"context"

	"github.com/danos/utils/exec"
)

// Outcome is what a dispatched action reports back to the commit engine:
// whether it succeeded, any captured output (subprocess stdout/stderr, or
// the atoms of a remote call's return spec), and an error on failure.
type Outcome struct {
	Success bool
	Output  *exec.Output
	Atoms   map[string]string // return-spec name -> rendered atom, remote calls only
	Err     error
}

// Request bundles an Action with its fully expanded argument values (every
// $(...)/`...` placeholder already resolved by package expand) plus enough
// addressing information for the dispatcher to route it.
type Request struct {
	Action     *Action
	NodePath   []string
	ModuleName string
	// ResolvedArgv/ResolvedCall carry the placeholder-substituted body:
	// ResolvedArgv for Subprocess actions, ResolvedCall for Remote actions
	// (already expanded "target/method?arg:type=value&...").
	ResolvedArgv []string
	ResolvedCall string
}

// Dispatcher is the abstract external collaborator spec.md §1 calls the
// "action dispatcher": RPC transport and subprocess-spawning machinery the
// core treats as a black box returning success/failure and captured
// output. Dispatch is asynchronous; the callback fires exactly once.
//
// dryRun instructs the dispatcher to synthesize success without any side
// effect, implementing the commit engine's Pass 1 (spec.md §4.6): "the
// dispatcher is told not to execute: it replies immediately with synthetic
// success".
type Dispatcher interface {
	Dispatch(ctx context.Context, req Request, dryRun bool, done func(Outcome))
}
