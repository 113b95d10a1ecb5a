// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2014-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

package template

import (
	"strconv"

	"github.com/danos/rtrmgr/value"
	"github.com/danos/utils/natsort"
)

// Less orders two tag-child values according to policy, per spec.md §4.2:
// SORTED_NUMERIC compares by leading decimal, SORTED_ALPHABETIC compares
// lexicographically (natural-sort aware, so "if10" sorts after "if9"), and
// UNSORTED always reports false (callers fall back to declaration order /
// ChildNumber).
func (o OrderPolicy) Less(a, b value.Value) bool {
	switch o {
	case SortedNumeric:
		return leadingDecimal(a.Canonical()) < leadingDecimal(b.Canonical())
	case SortedAlphabetic:
		return natsort.Compare(a.Canonical(), b.Canonical()) < 0
	}
	return false
}

func leadingDecimal(s string) int64 {
	i := 0
	for i < len(s) && (s[i] == '-' || (s[i] >= '0' && s[i] <= '9')) {
		i++
	}
	n, err := strconv.ParseInt(s[:i], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// SameTemplate reports whether a and b are instances of the same template
// node, so their ordering may use that node's declared policy rather than
// falling back to ChildNumber (spec.md §4.2, "If the compared children
// share a template, use the policy; otherwise use child_number").
func SameTemplate(a, b *Node) bool {
	return a == b
}
