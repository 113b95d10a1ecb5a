// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

package parse

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/danos/rtrmgr/config"
	"github.com/danos/rtrmgr/value"
)

// Save renders root's committed subtree back into configuration text
// (spec.md §6), preceded by the "XORP configuration file" header. Only
// existence_committed, non-deleted nodes are rendered; a leaf's current
// Value is written only once value_committed is set, since an
// in-progress-but-uncommitted edit has nothing durable to save yet.
func Save(root *config.Node, host, user string, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "/* XORP configuration file\n")
	fmt.Fprintf(&b, " * Configuration format: 1.1\n")
	fmt.Fprintf(&b, " * Generated %s by %s on %s\n", now.Format(time.RFC3339), user, host)
	fmt.Fprintf(&b, " */\n")
	for _, c := range root.Children {
		writeNode(&b, c, 0)
	}
	return b.String()
}

func indent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString("    ")
	}
}

func writeNode(b *strings.Builder, n *config.Node, depth int) {
	if !n.ExistenceCommitted || n.Deleted {
		return
	}
	indent(b, depth)
	b.WriteString(quoteSegment(n.Segname))
	if n.HasValue && n.ValueCommitted {
		fmt.Fprintf(b, " %s%s", operatorPrefix(n.Operator), quoteValue(n.Value))
	}
	if len(n.Children) == 0 {
		b.WriteString(";\n")
		return
	}
	b.WriteString(" {\n")
	for _, c := range n.Children {
		writeNode(b, c, depth+1)
	}
	indent(b, depth)
	b.WriteString("}\n")
}

// operatorPrefix renders op as the leading token before a saved value; the
// plain-ASSIGN case writes nothing, matching "segname value;" rather than
// "segname : value;" for the overwhelmingly common case.
func operatorPrefix(op value.Operator) string {
	if op == value.OpAssign {
		return ""
	}
	return op.String() + " "
}

func quoteSegment(s string) string {
	if needsQuoting(s) {
		return strconv.Quote(s)
	}
	return s
}

func quoteValue(v value.Value) string {
	switch v.Kind() {
	case value.Text, value.URL, value.Expr:
		return strconv.Quote(v.Canonical())
	}
	return v.Canonical()
}

func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if isWordBreak(r) || r == '"' {
			return true
		}
	}
	return false
}
