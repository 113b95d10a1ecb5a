// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

package action

import (
	"bytes"
	"context"
	"log"
	spawn "os/exec"

	"github.com/danos/mgmterror"
	"github.com/danos/rtrmgr/common"
	"github.com/danos/utils/exec"
)

// ExecDispatcher is the reference Dispatcher implementation for Subprocess
// actions: it spawns req.ResolvedArgv[0] with the remaining entries as
// argv, exactly as danos-configd's session/commit.go spawns run-parts
// hooks via os/exec. Captured stdout goes into exec.Output; captured
// stderr becomes the error text on failure and the Stderr atom on success.
type ExecDispatcher struct{}

func NewExecDispatcher() *ExecDispatcher { return &ExecDispatcher{} }

func (d *ExecDispatcher) Dispatch(ctx context.Context, req Request, dryRun bool, done func(Outcome)) {
	if dryRun {
		go func() { done(Outcome{Success: true}) }()
		return
	}
	go func() {
		if len(req.ResolvedArgv) == 0 {
			err := mgmterror.NewOperationFailedApplicationError()
			err.Message = "empty program invocation"
			done(Outcome{Success: false, Err: err})
			return
		}
		if common.LoggingIsEnabledAtLevel(common.LevelDebug, common.TypeAction) {
			log.Printf("action: exec %v", req.ResolvedArgv)
		}
		cmd := spawn.CommandContext(ctx, req.ResolvedArgv[0], req.ResolvedArgv[1:]...)
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		runErr := cmd.Run()
		out := &exec.Output{Output: stdout.String()}
		if runErr != nil {
			execErr := mgmterror.NewExecError(req.NodePath, stderr.String())
			done(Outcome{Success: false, Output: out, Err: execErr})
			return
		}
		atoms := make(map[string]string)
		if req.Action.Stdout != "" {
			atoms[req.Action.Stdout] = stdout.String()
		}
		if req.Action.Stderr != "" {
			atoms[req.Action.Stderr] = stderr.String()
		}
		done(Outcome{Success: true, Output: out, Atoms: atoms})
	}()
}
