// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

package parse

import "fmt"

// stream wraps a lexer with one token of lookahead, shared by the schema
// and configuration-text recursive-descent parsers.
type stream struct {
	l       *lexer
	peeked  *token
	file    string
}

func newStream(src, file string) *stream {
	return &stream{l: newLexer(src, file), file: file}
}

func (s *stream) peek() (token, error) {
	if s.peeked != nil {
		return *s.peeked, nil
	}
	t, err := s.l.next()
	if err != nil {
		return token{}, err
	}
	s.peeked = &t
	return t, nil
}

func (s *stream) take() (token, error) {
	t, err := s.peek()
	if err != nil {
		return token{}, err
	}
	s.peeked = nil
	return t, nil
}

func (s *stream) errorf(line int, format string, args ...interface{}) error {
	return &Error{File: s.file, Line: line, Message: fmt.Sprintf(format, args...)}
}

// expectPunct consumes the next token, returning an error unless it is the
// punctuation symbol text.
func (s *stream) expectPunct(text string) error {
	t, err := s.take()
	if err != nil {
		return err
	}
	if t.kind != tokPunct || t.text != text {
		return s.errorf(t.line, "expected %q, got %q", text, t.text)
	}
	return nil
}

// atPunct reports (without consuming) whether the next token is the given
// punctuation symbol.
func (s *stream) atPunct(text string) bool {
	t, err := s.peek()
	return err == nil && t.kind == tokPunct && t.text == text
}

// atPunctWord reports (without consuming) whether the next token is a bare
// word equal to text — used for lookahead on optional "%help" suffixes.
func (s *stream) atPunctWord(text string) bool {
	t, err := s.peek()
	return err == nil && t.kind == tokWord && t.text == text
}

func (s *stream) atEOF() bool {
	t, err := s.peek()
	return err == nil && t.kind == tokEOF
}

// expectWord consumes and returns the next token, requiring it be a bare
// word (not punctuation or a quoted string).
func (s *stream) expectWord() (string, int, error) {
	t, err := s.take()
	if err != nil {
		return "", 0, err
	}
	if t.kind != tokWord {
		return "", 0, s.errorf(t.line, "expected a word, got %q", t.text)
	}
	return t.text, t.line, nil
}

// expectString consumes and returns the next token, requiring it be a
// double-quoted string.
func (s *stream) expectString() (string, int, error) {
	t, err := s.take()
	if err != nil {
		return "", 0, err
	}
	if t.kind != tokString {
		return "", 0, s.errorf(t.line, "expected a quoted string, got %q", t.text)
	}
	return t.text, t.line, nil
}

// takeSegnameToken consumes and returns the next token, requiring it be
// either a bare word or a quoted string — configuration text (§6) allows a
// segment name or tag-instance value to be written either way.
func (s *stream) takeSegnameToken() (string, int, error) {
	t, err := s.take()
	if err != nil {
		return "", 0, err
	}
	if t.kind != tokWord && t.kind != tokString {
		return "", 0, s.errorf(t.line, "expected a configuration segment, got %q", t.text)
	}
	return t.text, t.line, nil
}
