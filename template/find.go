// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2014-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

package template

import (
	"fmt"

	"github.com/danos/mgmterror"
	"github.com/danos/rtrmgr/value"
	"github.com/danos/utils/pathutil"
)

func unknownElement(path []string, seg string) error {
	err := mgmterror.NewUnknownElementApplicationError(seg)
	err.Path = pathutil.Pathstr(path)
	return err
}

// matchChild resolves one path segment against n's children: an exact
// Segname match first, then — if n is a tag — dispatch by parsing seg as
// one of n's value-typed "@" variants, preferring a non-TEXT variant and
// falling back to TEXT, per spec.md §4.2. If more than one non-TEXT
// variant parses the segment, the match is ambiguous.
func matchChild(n *Node, seg string, path []string) (*Node, value.Value, error) {
	for _, c := range n.Children {
		if c.Segname == seg {
			return c, value.Value{}, nil
		}
	}
	if n.IsTag {
		var textVariant *Node
		var matched []*Node
		var matchedVals []value.Value
		for _, v := range n.TagVariants() {
			if v.Kind == value.Text {
				textVariant = v
				continue
			}
			if val, err := value.Parse(v.Kind, seg); err == nil {
				matched = append(matched, v)
				matchedVals = append(matchedVals, val)
			}
		}
		if len(matched) > 1 {
			names := make(map[string]string, len(matched))
			for _, m := range matched {
				names[m.Kind.String()] = m.HelpShort
			}
			return nil, value.Value{}, mgmterror.NewPathAmbiguousError(append(path, seg), names)
		}
		if len(matched) == 1 {
			return matched[0], matchedVals[0], nil
		}
		if textVariant != nil {
			v, _ := value.Parse(value.Text, seg)
			return textVariant, v, nil
		}
	}
	return nil, value.Value{}, unknownElement(path, seg)
}

// FindByPath performs strict name matching at each step of segments,
// dispatching through tag variants as matchChild describes. It returns the
// schema node the path resolves to; it does not report the instance
// values bound along the way (use config.Tree.Find for that).
func (t *Tree) FindByPath(segments []string) (*Node, error) {
	cur := t.Root
	for i, seg := range segments {
		next, _, err := matchChild(cur, seg, segments[:i])
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// TypedSegment is one step of a FindByTypedPath call: Kind selects which
// tag variant to descend into when Name alone would be ambiguous; Kind ==
// value.Void means "match by literal name" as FindByPath does.
type TypedSegment struct {
	Name string
	Kind value.Kind
}

// FindByTypedPath is FindByPath's disambiguated sibling: when Kind is set,
// it selects the tag variant with that declared Kind directly instead of
// parsing Name against each candidate.
func (t *Tree) FindByTypedPath(segments []TypedSegment) (*Node, error) {
	cur := t.Root
	for _, seg := range segments {
		if seg.Kind == value.Void {
			next, _, err := matchChild(cur, seg.Name, nil)
			if err != nil {
				return nil, err
			}
			cur = next
			continue
		}
		var next *Node
		for _, v := range cur.TagVariants() {
			if v.Kind == seg.Kind {
				next = v
				break
			}
		}
		if next == nil {
			return nil, fmt.Errorf("no %s-typed variant at %v", seg.Kind, cur.Path())
		}
		cur = next
	}
	return cur, nil
}
