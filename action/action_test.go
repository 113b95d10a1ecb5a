// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

package action

import (
	"context"
	"testing"

	"github.com/danos/rtrmgr/value"
)

func TestParseRemoteCallAction(t *testing.T) {
	a, err := Parse(`xrl "ribd/add_route?net:ipv4net=$(@)&metric:u32=1->status:u32=rv"`)
	if err != nil {
		t.Fatal(err)
	}
	if a.Kind != Remote || a.Target != "ribd" || a.Method != "add_route" {
		t.Fatalf("unexpected parse: %+v", a)
	}
	if len(a.Args) != 2 || a.Args[0].Name != "net" || a.Args[0].Type != value.IPv4Net {
		t.Fatalf("unexpected args: %+v", a.Args)
	}
	if len(a.Returns) != 1 || a.Returns[0].Name != "rv" {
		t.Fatalf("unexpected returns: %+v", a.Returns)
	}
	if len(a.Refs) != 1 || a.Refs[0] != "$(@)" {
		t.Fatalf("expected a single $(@) ref, got %v", a.Refs)
	}
}

func TestParseDefaultTarget(t *testing.T) {
	a, err := Parse(`xrl "$/set_mtu?mtu:u32=$(@)"`)
	if err != nil {
		t.Fatal(err)
	}
	if !a.TargetIsDefault() {
		t.Fatal("expected $-prefixed target to report TargetIsDefault")
	}
	if got := a.ResolvedTarget("rib"); got != "rib" {
		t.Fatalf("ResolvedTarget = %q, want rib", got)
	}
}

func TestParseProgramAction(t *testing.T) {
	a, err := Parse(`program "/usr/bin/genkey $(@)" -> stdout=key`)
	if err != nil {
		t.Fatal(err)
	}
	if a.Kind != Subprocess {
		t.Fatalf("expected Subprocess kind")
	}
	if len(a.Argv) != 2 || a.Argv[0] != "/usr/bin/genkey" || a.Argv[1] != "$(@)" {
		t.Fatalf("unexpected argv: %v", a.Argv)
	}
	if a.Stdout != "key" {
		t.Fatalf("expected stdout=key, got %q", a.Stdout)
	}
}

func TestParseProgramBothOutputs(t *testing.T) {
	a, err := Parse(`program "/bin/true" -> stdout=out & stderr=errtext`)
	if err != nil {
		t.Fatal(err)
	}
	if a.Stdout != "out" || a.Stderr != "errtext" {
		t.Fatalf("unexpected outputs: stdout=%q stderr=%q", a.Stdout, a.Stderr)
	}
}

func TestParseProgramDuplicateStdoutRejected(t *testing.T) {
	_, err := Parse(`program "/bin/true" -> stdout=a & stdout=b`)
	if err == nil {
		t.Fatal("expected an error for duplicate stdout=")
	}
}

func TestExecDispatcherDryRun(t *testing.T) {
	d := NewExecDispatcher()
	done := make(chan Outcome, 1)
	d.Dispatch(context.Background(), Request{ResolvedArgv: []string{"/bin/false"}}, true, func(o Outcome) {
		done <- o
	})
	out := <-done
	if !out.Success {
		t.Fatal("dry run must always report success")
	}
}

func TestExecDispatcherLiveRun(t *testing.T) {
	d := NewExecDispatcher()
	a, _ := Parse(`program "/bin/echo hello" -> stdout=greeting`)
	done := make(chan Outcome, 1)
	d.Dispatch(context.Background(), Request{
		Action:       a,
		ResolvedArgv: []string{"/bin/echo", "hello"},
	}, false, func(o Outcome) { done <- o })
	out := <-done
	if !out.Success {
		t.Fatalf("expected success, got err=%v", out.Err)
	}
	if out.Atoms["greeting"] != "hello\n" {
		t.Fatalf("unexpected captured stdout: %q", out.Atoms["greeting"])
	}
}
