// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2014-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

package value

import (
	"fmt"
	"strings"
)

// Range is an inclusive [Lo, Hi] bound used by a template node's
// "%allow-range" set.
type Range struct {
	Lo, Hi Value
	Help   string
}

// Allowed is a single "%allow" entry: a permitted literal value with its
// accompanying help text.
type Allowed struct {
	Value Value
	Help  string
}

func (r Range) contains(v Value) bool {
	vb, ok1 := v.asBig()
	lob, ok2 := r.Lo.asBig()
	hib, ok3 := r.Hi.asBig()
	if ok1 && ok2 && ok3 {
		return vb.Cmp(lob) >= 0 && vb.Cmp(hib) <= 0
	}
	if c, ok := v.Compare(r.Lo); ok && c < 0 {
		return false
	}
	if c, ok := v.Compare(r.Hi); ok && c > 0 {
		return false
	}
	return true
}

// CheckAllowed implements spec.md §4.1: if allowedValues is non-empty, v
// must appear in it; if allowedRanges is non-empty, v must lie in some
// range. Either constraint alone is sufficient to satisfy the check; a node
// with both sets is satisfied by matching either. An empty explanation
// string (with ok==true) means the value is permitted.
func CheckAllowed(v Value, allowedValues []Allowed, allowedRanges []Range) (ok bool, explanation string) {
	if len(allowedValues) == 0 && len(allowedRanges) == 0 {
		return true, ""
	}
	for _, a := range allowedValues {
		if v.Equal(a.Value) {
			return true, ""
		}
	}
	for _, r := range allowedRanges {
		if r.contains(v) {
			return true, ""
		}
	}
	return false, explain(v, allowedValues, allowedRanges)
}

func explain(v Value, allowedValues []Allowed, allowedRanges []Range) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%q is not a permitted value.", v.Canonical())
	if len(allowedValues) > 0 {
		b.WriteString(" Allowed values:")
		for _, a := range allowedValues {
			fmt.Fprintf(&b, " %s", a.Value.Canonical())
			if a.Help != "" {
				fmt.Fprintf(&b, " (%s)", a.Help)
			}
		}
	}
	if len(allowedRanges) > 0 {
		b.WriteString(" Allowed ranges:")
		for _, r := range allowedRanges {
			fmt.Fprintf(&b, " [%s..%s]", r.Lo.Canonical(), r.Hi.Canonical())
			if r.Help != "" {
				fmt.Fprintf(&b, " (%s)", r.Help)
			}
		}
	}
	return b.String()
}
