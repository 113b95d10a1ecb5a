// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2014-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

// Package action implements the action model (spec component C5): parsing
// of the two action-body flavors a template command can carry (remote call
// and subprocess invocation), collection of their $(...)/`...` variable
// references, and dispatch through an external collaborator.
package action

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/danos/mgmterror"
	"github.com/danos/rtrmgr/value"
)

// Kind distinguishes the two action-body flavors spec.md §4.5 names.
type Kind int

const (
	Remote Kind = iota
	Subprocess
)

// CallArg is one "name:type=value" argument of a remote-call action, where
// value is a raw token that may still contain $(...)/`...` placeholders.
type CallArg struct {
	Name  string
	Type  value.Kind
	Value string
}

// ReturnSpec is one "type=name" entry of a remote-call action's return
// clause: the returned atom of the given type is installed into the
// originating node's named-variable map under Name.
type ReturnSpec struct {
	Type value.Kind
	Name string
}

// Action is a single parsed action body attached to a template command.
type Action struct {
	Kind Kind
	Raw  string

	// Remote fields.
	Target  string
	Method  string
	Args    []CallArg
	Returns []ReturnSpec

	// Subprocess fields.
	Argv   []string
	Stdout string
	Stderr string

	// Refs lists every distinct $(...) or `...` reference found anywhere
	// in the action body, collected once at parse time per spec.md §4.5
	// ("Action parsing records every $(...) reference it contains").
	Refs []string
}

var refPattern = regexp.MustCompile("\\$\\([^)]*\\)|`[^`]*`")

func collectRefs(parts ...string) []string {
	seen := make(map[string]bool)
	var refs []string
	for _, p := range parts {
		for _, m := range refPattern.FindAllString(p, -1) {
			if !seen[m] {
				seen[m] = true
				refs = append(refs, m)
			}
		}
	}
	return refs
}

func parseError(body, reason string) error {
	err := mgmterror.NewMalformedMessageError()
	err.Message = fmt.Sprintf("malformed action body %q: %s", body, reason)
	return err
}

// Parse parses the body of a "%cmd: body;" template statement into an
// Action. body is the text following the %cmd verb and its colon, with the
// surrounding quotes of the action string already stripped.
func Parse(body string) (*Action, error) {
	verb, rest, ok := strings.Cut(strings.TrimSpace(body), " ")
	if !ok {
		return nil, parseError(body, "expected a verb (xrl or program) followed by a quoted body")
	}
	rest = strings.TrimSpace(rest)
	rest = strings.Trim(rest, `"`)
	switch verb {
	case "xrl":
		return parseRemote(rest)
	case "program":
		return parseProgram(rest)
	}
	return nil, parseError(body, "unrecognised action verb "+verb)
}

func parseRemote(raw string) (*Action, error) {
	callspec, retspec, hasReturn := strings.Cut(raw, "->")

	targetMethod, argstr, hasArgs := strings.Cut(callspec, "?")
	target, method, ok := strings.Cut(targetMethod, "/")
	if !ok {
		return nil, parseError(raw, "expected target/method")
	}

	a := &Action{Kind: Remote, Raw: raw, Target: target, Method: method}

	if hasArgs {
		for _, entry := range strings.Split(argstr, "&") {
			if entry == "" {
				continue
			}
			nameType, val, ok := strings.Cut(entry, "=")
			if !ok {
				return nil, parseError(raw, "expected name:type=value in argument "+entry)
			}
			name, typ, ok := strings.Cut(nameType, ":")
			if !ok {
				return nil, parseError(raw, "expected name:type in argument "+entry)
			}
			kind, err := value.ParseKind(typ)
			if err != nil {
				return nil, parseError(raw, err.Error())
			}
			a.Args = append(a.Args, CallArg{Name: name, Type: kind, Value: val})
		}
	}

	if hasReturn {
		for _, entry := range strings.Split(retspec, "&") {
			if entry == "" {
				continue
			}
			typ, name, ok := strings.Cut(entry, "=")
			if !ok {
				return nil, parseError(raw, "expected type=name in return spec "+entry)
			}
			kind, err := value.ParseKind(strings.Split(typ, ":")[len(strings.Split(typ, ":"))-1])
			if err != nil {
				return nil, parseError(raw, err.Error())
			}
			a.Returns = append(a.Returns, ReturnSpec{Type: kind, Name: name})
		}
	}

	parts := []string{a.Target, a.Method}
	for _, arg := range a.Args {
		parts = append(parts, arg.Value)
	}
	a.Refs = collectRefs(parts...)
	return a, nil
}

func parseProgram(raw string) (*Action, error) {
	argvstr, outspec, hasOut := strings.Cut(raw, "->")
	argvstr = strings.TrimSpace(argvstr)
	if argvstr == "" {
		return nil, parseError(raw, "expected a program path")
	}
	a := &Action{Kind: Subprocess, Raw: raw, Argv: tokenize(argvstr)}

	if hasOut {
		for _, entry := range strings.Split(outspec, "&") {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}
			name, val, ok := strings.Cut(entry, "=")
			if !ok {
				return nil, parseError(raw, "expected stdout=var or stderr=var in "+entry)
			}
			switch strings.TrimSpace(name) {
			case "stdout":
				if a.Stdout != "" {
					return nil, parseError(raw, "stdout= specified more than once")
				}
				a.Stdout = strings.TrimSpace(val)
			case "stderr":
				if a.Stderr != "" {
					return nil, parseError(raw, "stderr= specified more than once")
				}
				a.Stderr = strings.TrimSpace(val)
			default:
				return nil, parseError(raw, "unrecognised output redirection "+name)
			}
		}
	}

	a.Refs = collectRefs(a.Argv...)
	return a, nil
}

// tokenize performs whitespace tokenization honoring double-quoted spans,
// so a $(...) or literal argument containing spaces may be quoted.
func tokenize(s string) []string {
	var tokens []string
	var cur strings.Builder
	inQuotes := false
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ' ' && !inQuotes:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// TargetIsDefault reports whether the action's target uses the "$" sigil
// meaning "resolve to the declaring module's default target name" for
// static validation, per spec.md §4.5.
func (a *Action) TargetIsDefault() bool {
	return a.Kind == Remote && strings.HasPrefix(a.Target, "$")
}

// ResolvedTarget returns the action's target, substituting
// defaultTargetName for a "$"-prefixed target.
func (a *Action) ResolvedTarget(defaultTargetName string) string {
	if a.TargetIsDefault() {
		return defaultTargetName
	}
	return a.Target
}
