// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

package parse

import (
	"fmt"
	"time"

	"github.com/danos/rtrmgr/config"
	"github.com/danos/rtrmgr/template"
	"github.com/danos/rtrmgr/value"
)

// Config parses a configuration-text file (spec.md §6: "segment [op value]
// { child … } ;", string values quoted) against schema, producing a live
// config.Node tree rooted like config.NewRoot(). A tag instance may follow
// its tag name directly ("interface eth0 { … }") or sit inside a braced
// tag body ("interface { eth0 { … } }"). Every node produced is
// stamped existence/value-committed (this is what Load feeds to the apply
// facade as the starting committed state, not a pending delta) under user
// at time now. The optional "/* XORP configuration file ... */" header
// comment is consumed by the lexer's generic comment handling, not parsed
// for its fields.
func Config(src, filename string, schema *template.Tree, clientID, user uint32, now time.Time) (*config.Node, error) {
	s := newStream(src, filename)
	root := config.NewRoot()
	err := parseStatements(s, schema.Root, root, clientID, user, now, func() bool { return s.atEOF() })
	if err != nil {
		return nil, err
	}
	return root, nil
}

func parseStatements(s *stream, schemaNode *template.Node, cfgNode *config.Node, clientID, user uint32, now time.Time, until func() bool) error {
	for !until() {
		if err := parseStatement(s, schemaNode, cfgNode, clientID, user, now); err != nil {
			return err
		}
	}
	return nil
}

func parseStatement(s *stream, schemaNode *template.Node, cfgNode *config.Node, clientID, user uint32, now time.Time) error {
	segTok, line, err := s.takeSegnameToken()
	if err != nil {
		return err
	}

	if schemaNode.IsTag {
		variant, verr := matchTagVariant(schemaNode, segTok)
		if verr != nil {
			return s.errorf(line, "%s", verr)
		}
		child := config.NewChild(segTok, variant)
		child.ExistenceCommitted = true
		cfgNode.AddChild(child, clientID)
		return parseChildrenOrTerminator(s, variant, child, clientID, user, now)
	}

	schemaChild := findLiteralChild(schemaNode, segTok)
	if schemaChild == nil {
		return s.errorf(line, "no schema node named %q under %v", segTok, schemaNode.Path())
	}
	var child *config.Node
	if schemaChild.IsTag {
		for _, c := range cfgNode.Children {
			if c.Segname == segTok {
				child = c
			}
		}
	}
	if child == nil {
		child = config.NewChild(segTok, schemaChild)
		child.ExistenceCommitted = true
		cfgNode.AddChild(child, clientID)
	}

	if schemaChild.IsTag && !s.atPunct("{") && !s.atPunct(";") {
		// "tag value { ... }": the instance value follows the tag name.
		return parseStatement(s, schemaChild, child, clientID, user, now)
	}
	if schemaChild.IsTag || !schemaChild.IsLeaf() {
		return parseChildrenOrTerminator(s, schemaChild, child, clientID, user, now)
	}

	pk, err := s.peek()
	if err != nil {
		return err
	}
	if pk.kind == tokPunct && pk.text == ";" {
		s.take()
		return nil
	}

	op := value.OpAssign
	if pk.kind == tokPunct && pk.text == ":" {
		s.take()
	} else if pk.kind == tokWord {
		if parsedOp, operr := value.ParseOperator(pk.text); operr == nil && pk.text != "" {
			// Only consume pk as an explicit operator if it can't also be
			// read as this leaf's own value — disambiguates the rare case
			// of a text value that happens to match an operator symbol.
			if _, valerr := value.Parse(schemaChild.Kind, pk.text); valerr != nil {
				op = parsedOp
				s.take()
			}
		}
	}

	valTok, err := s.take()
	if err != nil {
		return err
	}
	v, err := value.Parse(schemaChild.Kind, valTok.text)
	if err != nil {
		return s.errorf(valTok.line, "%s", err)
	}
	child.HasValue = true
	child.Value = v
	child.Operator = op
	child.UserID = user
	child.ModTime = now
	child.ValueCommitted = true
	return s.expectPunct(";")
}

// parseChildrenOrTerminator parses either a bare ";" (a grouping or tag
// statement with no members present in this file) or a "{ ... }" body of
// further statements.
func parseChildrenOrTerminator(s *stream, schemaNode *template.Node, cfgNode *config.Node, clientID, user uint32, now time.Time) error {
	pk, err := s.peek()
	if err != nil {
		return err
	}
	if pk.kind == tokPunct && pk.text == ";" {
		s.take()
		return nil
	}
	if err := s.expectPunct("{"); err != nil {
		return err
	}
	if err := parseStatements(s, schemaNode, cfgNode, clientID, user, now, func() bool { return s.atPunct("}") }); err != nil {
		return err
	}
	return s.expectPunct("}")
}

func findLiteralChild(n *template.Node, segname string) *template.Node {
	for _, c := range n.Children {
		if c.Segname == segname {
			return c
		}
	}
	return nil
}

// matchTagVariant finds the TagVariants() entry whose declared Kind parses
// token, implementing the type-dispatch spec.md §4.2 calls for at a tag
// boundary (the live-tree analogue of template.FindByTypedPath's matching).
func matchTagVariant(tag *template.Node, token string) (*template.Node, error) {
	for _, v := range tag.TagVariants() {
		if _, err := value.Parse(v.Kind, token); err == nil {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%q does not match any declared type for tag %v", token, tag.Path())
}
