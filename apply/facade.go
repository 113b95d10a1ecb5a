// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2014-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

// Package apply implements the session/apply facade (spec component C8):
// the single entry point a client session uses to stage changes, run a
// commit, and retrieve a structural diff, serializing commits against
// each other the way the teacher's commitmgr serializes against its
// request channel.
package apply

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/danos/mgmterror"
	"github.com/danos/rtrmgr/commit"
	"github.com/danos/rtrmgr/config"
)

// Facade is the commit-in-progress-guarded wrapper around one Engine and
// the live configuration tree it commits against.
type Facade struct {
	Engine *commit.Engine

	mu         sync.Mutex
	committing bool
}

// NewFacade constructs a Facade over an already-built commit.Engine.
func NewFacade(engine *commit.Engine) *Facade {
	return &Facade{Engine: engine}
}

func commitInProgressError() error {
	err := mgmterror.NewOperationFailedApplicationError()
	err.Message = "a commit is already in progress"
	return err
}

// ApplyChange merges delta into tree as a provisional edit (spec.md
// §4.3's merge_delta), staging it for the next Commit without touching
// anything external. clientID scopes node-id allocation for any newly
// created node; user/now stamp provenance.
func (f *Facade) ApplyChange(tree *config.Tree, delta *config.Node, clientID, user uint32, now time.Time) error {
	return config.MergeDelta(tree.Root, delta, clientID, false, true, user, now)
}

// ApplyDeletion schedules path for removal (merge_deletion, provisional).
func (f *Facade) ApplyDeletion(tree *config.Tree, path []string) error {
	return config.MergeDeletion(tree.Root, path, true)
}

// DeleteEntireConfiguration schedules every top-level subtree for
// deletion, leaving the actual removal to the next successful commit —
// mirroring master_conf_tree.cc's delete_entire_config, which only marks
// the candidate and still requires commit to take effect.
func (f *Facade) DeleteEntireConfiguration(tree *config.Tree) {
	for _, c := range tree.Root.Children {
		c.Deleted = true
	}
}

// Validate runs Pass 1 without taking the commit-in-progress guard: a
// dry-run validation never touches external state, so sessions may
// validate freely even while another session's commit is in flight.
func (f *Facade) Validate(ctx context.Context, tree *config.Tree) *commit.Result {
	return f.Engine.Validate(ctx, tree)
}

// Commit runs Pass 2, refusing to start a second commit while one is
// already in progress (spec.md §5's single-threaded, cooperative
// concurrency model — the guard is what makes that true across
// concurrent client sessions, not just within one).
func (f *Facade) Commit(ctx context.Context, tree *config.Tree, user uint32) (*commit.Result, error) {
	f.mu.Lock()
	if f.committing {
		f.mu.Unlock()
		return nil, commitInProgressError()
	}
	f.committing = true
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.committing = false
		f.mu.Unlock()
	}()

	result := f.Engine.Commit(ctx, tree, user, time.Now())
	if !result.Success {
		return result, fmt.Errorf("commit failed: %s", result.Errors)
	}
	return result, nil
}
