// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

package parse

import "fmt"

// Error is spec.md §7's ParseError: schema or configuration text that is
// malformed, carrying the file name and line number when known.
type Error struct {
	File    string
	Line    int
	Message string
}

func (e *Error) Error() string {
	if e.File == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
}
