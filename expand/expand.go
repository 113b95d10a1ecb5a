// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

package expand

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/danos/rtrmgr/config"
	"github.com/danos/rtrmgr/value"
)

// Kind records which of spec.md §9's variable-resolution strategies
// produced a Resolve result, replacing the original's mutable on-node
// "resolved" flags with a plain returned enum.
type Kind int

const (
	KindNone Kind = iota
	KindNodeValue
	KindNodeOperator
	KindNodeID
	KindNamed
	KindTemplateDefault
)

func (k Kind) String() string {
	switch k {
	case KindNodeValue:
		return "node-value"
	case KindNodeOperator:
		return "node-operator"
	case KindNodeID:
		return "node-id"
	case KindNamed:
		return "named"
	case KindTemplateDefault:
		return "template-default"
	}
	return "none"
}

// refPattern matches a "$(...)" variable reference or a backtick-wrapped
// (optionally "~"-negated) reference, the same shape package action
// collects from a command body.
var refPattern = regexp.MustCompile("\\$\\([^)]*\\)|`[^`]*`")

// ExpandString replaces every reference in s with its resolved text,
// evaluated against cursor's position in tree.
func ExpandString(tree *config.Tree, cursor *config.Node, s string) (string, error) {
	var outErr error
	out := refPattern.ReplaceAllStringFunc(s, func(ref string) string {
		if outErr != nil {
			return ref
		}
		v, err := ResolveRef(tree, cursor, ref)
		if err != nil {
			outErr = err
			return ref
		}
		return v
	})
	if outErr != nil {
		return "", outErr
	}
	return out, nil
}

// ResolveRef resolves a single "$(...)" or backtick reference (including
// the surrounding delimiters) against cursor.
func ResolveRef(tree *config.Tree, cursor *config.Node, ref string) (string, error) {
	if strings.HasPrefix(ref, "`") && strings.HasSuffix(ref, "`") {
		inner := strings.TrimSuffix(strings.TrimPrefix(ref, "`"), "`")
		negate := false
		if strings.HasPrefix(inner, "~") {
			negate = true
			inner = inner[1:]
		}
		text, _, err := resolveBody(tree, cursor, unwrapDollar(inner))
		if err != nil {
			return "", err
		}
		if !negate {
			return text, nil
		}
		b, err := value.Parse(value.Boolean, text)
		if err != nil {
			return "", fmt.Errorf("negated reference %q did not resolve to a boolean: %w", ref, err)
		}
		if b.Canonical() == "true" {
			return "false", nil
		}
		return "true", nil
	}

	if strings.HasPrefix(ref, "$(") && strings.HasSuffix(ref, ")") {
		text, _, err := resolveBody(tree, cursor, unwrapDollar(ref))
		return text, err
	}

	return "", fmt.Errorf("unrecognized reference syntax %q", ref)
}

func unwrapDollar(s string) string {
	s = strings.TrimPrefix(s, "$(")
	s = strings.TrimSuffix(s, ")")
	return s
}

// resolveBody implements the resolution-kind dispatch from spec.md §9:
// "@"/"<>"/"#" resolve against cursor itself; a bare name already present
// in cursor's action-installed Vars resolves as a named variable; a
// ".DEFAULT"-suffixed path resolves against the target's template default
// rather than its live value; anything else walks the live tree.
func resolveBody(tree *config.Tree, cursor *config.Node, inner string) (string, Kind, error) {
	switch inner {
	case "@":
		if !cursor.HasValue {
			return "", KindNone, nil
		}
		return cursor.Value.Canonical(), KindNodeValue, nil
	case "<>":
		return cursor.Operator.String(), KindNodeOperator, nil
	case "#":
		return fmt.Sprintf("%d.%d", cursor.ID.ClientID, cursor.ID.Instance), KindNodeID, nil
	}

	if named, ok := cursor.Vars[inner]; ok {
		return named, KindNamed, nil
	}

	isDefault := strings.HasSuffix(inner, ".DEFAULT")
	path := inner
	if isDefault {
		path = strings.TrimSuffix(path, ".DEFAULT")
	}

	target, err := resolveLiveDotted(cursor, path)
	if err != nil {
		return "", KindNone, err
	}

	if isDefault {
		if target.Template == nil || !target.Template.HasDefault() {
			return "", KindNone, fmt.Errorf("no default declared for %v", target.Path())
		}
		return target.Template.Default.Canonical(), KindTemplateDefault, nil
	}

	if !target.HasValue {
		return "", KindNone, nil
	}
	return target.Value.Canonical(), KindNodeValue, nil
}
