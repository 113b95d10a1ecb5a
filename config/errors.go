// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

package config

import (
	"fmt"

	"github.com/danos/mgmterror"
	"github.com/danos/rtrmgr/value"
	"github.com/danos/utils/pathutil"
)

func checkFailure(n *Node, explanation string) error {
	err := mgmterror.NewInvalidValueApplicationError()
	err.Message = explanation
	err.Path = pathutil.Pathstr(n.Path())
	return err
}

func operatorFailure(n *Node, op value.Operator) error {
	err := mgmterror.NewInvalidValueApplicationError()
	err.Message = fmt.Sprintf("operator %s is not permitted here", op)
	err.Path = pathutil.Pathstr(n.Path())
	return err
}

func unknownElementAt(path []string, seg string) error {
	err := mgmterror.NewUnknownElementApplicationError(seg)
	err.Path = pathutil.Pathstr(path)
	return err
}

func referenceError(path []string, msg string) error {
	err := mgmterror.NewOperationFailedApplicationError()
	err.Message = msg
	err.Path = pathutil.Pathstr(path)
	return err
}
