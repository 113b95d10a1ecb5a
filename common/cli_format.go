// Copyright (c) 2017-2020, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

// This file formats mgmterror values raised by a commit/validate run into
// the path-then-message-then-path shape rtrmgrd prints on its stderr.
// Only FormatCommitOrValErrors survives from the teacher's broader CLI
// pretty-printer: the rest of that file formatted RPC-path and
// load/merge-warning shapes this core's action dispatchers never raise,
// since there is no session/RPC/load surface here to produce them.

package common

import (
	"bytes"
	"strings"

	"github.com/danos/mgmterror"
	"github.com/danos/utils/pathutil"
)

// FormatCommitOrValErrors pretty-prints one commit/validate failure: the
// path, then the error message, then the path again (CLI convention for
// spotting which node failed in a scroll of output).
func FormatCommitOrValErrors(err error) string {
	var b bytes.Buffer

	if me, ok := err.(mgmterror.Formattable); ok {
		pathStr := strings.Join(pathutil.Makepath(me.GetPath()), " ")
		b.WriteString("[")
		b.WriteString(pathStr)
		b.WriteString("]\n\n")
		b.WriteString(me.GetMessage())
		b.WriteString("\n\n[[")
		b.WriteString(pathStr)
		b.WriteString("]] failed.")
	} else {
		b.WriteString(err.Error())
	}
	return b.String()
}
