// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

package parse

import (
	"fmt"
	"strings"

	"github.com/danos/rtrmgr/action"
	"github.com/danos/rtrmgr/template"
	"github.com/danos/rtrmgr/value"
)

// Schema parses a schema (template) file per spec.md §6 into a
// *template.Tree and runs its Finalize pass. filename is used only to
// annotate ParseErrors.
func Schema(src, filename string) (*template.Tree, error) {
	s := newStream(src, filename)
	t := template.NewTree()
	for !s.atEOF() {
		w, line, err := s.expectWord()
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(w, "%") {
			if err := parseDirective(s, t, t.Root, w, line); err != nil {
				return nil, err
			}
			continue
		}
		if err := parseDecl(s, t, t.Root, w, line); err != nil {
			return nil, err
		}
	}
	if err := t.Finalize(); err != nil {
		return nil, err
	}
	return t, nil
}

func findOrCreateChild(parent *template.Node, segname string) *template.Node {
	for _, c := range parent.Children {
		if c.Segname == segname {
			return c
		}
	}
	child := template.NewNode(segname)
	parent.AddChild(child)
	return child
}

// parseDecl parses one path-declaration statement (spec.md §6: "Path
// segments separated by spaces, terminated by '{'/'}' blocks or ';'.") whose
// leading segname has already been consumed as w.
func parseDecl(s *stream, t *template.Tree, parent *template.Node, w string, line int) error {
	pk, err := s.peek()
	if err != nil {
		return err
	}
	switch {
	case pk.kind == tokPunct && pk.text == ";":
		s.take()
		findOrCreateChild(parent, w)
		return nil

	case pk.kind == tokPunct && pk.text == "{":
		return parseBody(s, t, findOrCreateChild(parent, w))

	case pk.kind == tokWord && pk.text == "@":
		// Tag declaration: "segname @ : TYPE { ... }" (spec.md §4.2's tag
		// node, whose value-bearing variant is a child literally named
		// "@" — see template.Node.TagVariants).
		s.take()
		if err := s.expectPunct(":"); err != nil {
			return err
		}
		typeWord, typeLine, err := s.expectWord()
		if err != nil {
			return err
		}
		kind, err := value.ParseKind(typeWord)
		if err != nil {
			return s.errorf(typeLine, "%s", err)
		}
		tagNode := findOrCreateChild(parent, w)
		tagNode.IsTag = true
		variant := template.NewNode("@")
		variant.Kind = kind
		tagNode.AddChild(variant)
		return parseBody(s, t, variant)

	case pk.kind == tokPunct && pk.text == ":":
		s.take()
		typeWord, typeLine, err := s.expectWord()
		if err != nil {
			return err
		}
		kind, err := value.ParseKind(typeWord)
		if err != nil {
			return s.errorf(typeLine, "%s", err)
		}
		child := findOrCreateChild(parent, w)
		child.Kind = kind

		if s.atPunctWord("=") {
			s.take()
			defTok, err := s.take()
			if err != nil {
				return err
			}
			defVal, err := value.Parse(kind, defTok.text)
			if err != nil {
				return s.errorf(defTok.line, "%s", err)
			}
			child.Default = &defVal
		}

		if s.atPunct(";") {
			s.take()
			return nil
		}
		return parseBody(s, t, child)
	}
	return s.errorf(line, "unexpected token after segment %q", w)
}

func parseBody(s *stream, t *template.Tree, node *template.Node) error {
	if err := s.expectPunct("{"); err != nil {
		return err
	}
	for {
		if s.atPunct("}") {
			s.take()
			return nil
		}
		w, line, err := s.expectWord()
		if err != nil {
			return err
		}
		if strings.HasPrefix(w, "%") {
			if err := parseDirective(s, t, node, w, line); err != nil {
				return err
			}
			continue
		}
		if err := parseDecl(s, t, node, w, line); err != nil {
			return err
		}
	}
}

// parseDirective handles one "%..." statement. Most (the flag/allow/help/
// order/mandatory/unique-in/module family) take their arguments directly,
// with no colon; everything else — including any command name a module
// chooses to use, not just %set/%delete/%activate/%update — is the
// "%cmd: action-body;" command form (spec.md §6).
func parseDirective(s *stream, t *template.Tree, node *template.Node, directive string, line int) error {
	switch directive {
	case "%read-only", "%permanent", "%deprecated", "%user-hidden":
		reason, _, err := s.expectString()
		if err != nil {
			return err
		}
		if err := s.expectPunct(";"); err != nil {
			return err
		}
		r := &template.Reason{Text: reason}
		switch directive {
		case "%read-only":
			node.ReadOnly = r
		case "%permanent":
			node.Permanent = r
		case "%deprecated":
			node.Deprecated = r
		case "%user-hidden":
			node.UserHidden = r
		}
		return nil

	case "%module":
		name, _, err := s.expectString()
		if err != nil {
			return err
		}
		if err := s.expectPunct(";"); err != nil {
			return err
		}
		node.ModuleName = name
		t.DeclareModule(name, nil)
		return nil

	case "%mandatory":
		for {
			ref, _, err := s.expectString()
			if err != nil {
				return err
			}
			node.MandatoryRefs = append(node.MandatoryRefs, ref)
			if s.atPunct(";") {
				s.take()
				return nil
			}
		}

	case "%unique-in":
		ref, _, err := s.expectString()
		if err != nil {
			return err
		}
		if err := s.expectPunct(";"); err != nil {
			return err
		}
		node.UniqueIn = ref
		return nil

	case "%order":
		w, wline, err := s.expectWord()
		if err != nil {
			return err
		}
		if err := s.expectPunct(";"); err != nil {
			return err
		}
		// Order governs a tag's own Children order (config.insertOrdered
		// reads it off the live tree's tag-container Template), but the
		// grammar only gives %order a body to appear in inside the "@"
		// variant's own block; retarget to the tag container when that's
		// where we are.
		target := node
		if node.Segname == "@" && node.Parent != nil && node.Parent.IsTag {
			target = node.Parent
		}
		switch w {
		case "unsorted":
			target.Order = template.Unsorted
		case "sorted-numeric":
			target.Order = template.SortedNumeric
		case "sorted-alphabetic":
			target.Order = template.SortedAlphabetic
		default:
			return s.errorf(wline, "unrecognised %%order value %q", w)
		}
		return nil

	case "%help":
		which, whichLine, err := s.expectWord()
		if err != nil {
			return err
		}
		text, _, err := s.expectString()
		if err != nil {
			return err
		}
		if err := s.expectPunct(";"); err != nil {
			return err
		}
		switch which {
		case "short":
			node.HelpShort = text
		case "long":
			node.HelpLong = text
		default:
			return s.errorf(whichLine, "unrecognised %%help variant %q", which)
		}
		return nil

	case "%allow":
		raw, rawLine, err := s.expectString()
		if err != nil {
			return err
		}
		v, err := value.Parse(node.Kind, raw)
		if err != nil {
			return s.errorf(rawLine, "%s", err)
		}
		a := value.Allowed{Value: v}
		if err := parseTrailingHelp(s, &a.Help); err != nil {
			return err
		}
		node.AllowedValues = append(node.AllowedValues, a)
		return nil

	case "%allow-range":
		raw, rawLine, err := s.expectWord()
		if err != nil {
			return err
		}
		lo, hi, err := splitRange(raw)
		if err != nil {
			return s.errorf(rawLine, "%s", err)
		}
		loVal, err := value.Parse(node.Kind, lo)
		if err != nil {
			return s.errorf(rawLine, "%s", err)
		}
		hiVal, err := value.Parse(node.Kind, hi)
		if err != nil {
			return s.errorf(rawLine, "%s", err)
		}
		r := value.Range{Lo: loVal, Hi: hiVal}
		if err := parseTrailingHelp(s, &r.Help); err != nil {
			return err
		}
		node.AllowedRanges = append(node.AllowedRanges, r)
		return nil

	case "%allow-operator":
		for {
			opText, opLine, err := s.expectString()
			if err != nil {
				return err
			}
			op, err := value.ParseOperator(opText)
			if err != nil {
				return s.errorf(opLine, "%s", err)
			}
			node.AllowedOperators = append(node.AllowedOperators, op)
			if s.atPunct(";") {
				s.take()
				return nil
			}
		}

	case "%modinfo":
		if err := s.expectPunct(":"); err != nil {
			return err
		}
		kw, kwLine, err := s.expectWord()
		if err != nil {
			return err
		}
		if kw != "depends" {
			return s.errorf(kwLine, "expected %%modinfo: depends ...;, got %q", kw)
		}
		var depends []string
		for !s.atPunct(";") {
			w, _, err := s.expectWord()
			if err != nil {
				return err
			}
			depends = append(depends, w)
		}
		s.take()
		module := node.EffectiveModule()
		if module == "" {
			return s.errorf(line, "%%modinfo requires a %%module declared on this node or an ancestor")
		}
		t.DeclareModule(module, depends)
		return nil
	}

	return parseActionDirective(s, node, directive)
}

// parseTrailingHelp consumes an optional "%help "…"" suffix that follows a
// single %allow/%allow-range entry.
func parseTrailingHelp(s *stream, out *string) error {
	if !s.atPunctWord("%help") {
		return s.expectPunct(";")
	}
	s.take()
	text, _, err := s.expectString()
	if err != nil {
		return err
	}
	*out = text
	return s.expectPunct(";")
}

func splitRange(raw string) (lo, hi string, err error) {
	raw = strings.TrimPrefix(raw, "[")
	raw = strings.TrimSuffix(raw, "]")
	lo, hi, ok := strings.Cut(raw, "..")
	if !ok {
		return "", "", fmt.Errorf("malformed %%allow-range bound %q, expected [lo..hi]", raw)
	}
	return lo, hi, nil
}

// parseActionDirective parses a "%cmd: verb "raw";" command statement
// (spec.md §6) and records the resulting action.Action under
// node.Commands[directive].
func parseActionDirective(s *stream, node *template.Node, directive string) error {
	if err := s.expectPunct(":"); err != nil {
		return err
	}
	verb, verbLine, err := s.expectWord()
	if err != nil {
		return err
	}
	raw, _, err := s.expectString()
	if err != nil {
		return err
	}
	if err := s.expectPunct(";"); err != nil {
		return err
	}
	act, err := action.Parse(fmt.Sprintf("%s \"%s\"", verb, raw))
	if err != nil {
		return s.errorf(verbLine, "%s", err)
	}
	node.Commands[directive] = append(node.Commands[directive], act)
	return nil
}
