// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2014-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

// Package value implements the typed scalar value model (spec component
// C1): parsing, canonical rendering and comparison of every value kind a
// template leaf can declare.
package value

import (
	"fmt"
	"math/big"
	"net"
	"net/netip"
	"net/url"
	"strconv"
	"strings"

	"github.com/danos/mgmterror"
)

// Kind identifies a value's type. VOID is used by template grouping nodes
// that carry no value of their own.
type Kind int

const (
	Void Kind = iota
	Boolean
	Int32
	Uint32
	Int64
	Uint64
	IPv4
	IPv4Net
	IPv4Range
	IPv6
	IPv6Net
	IPv6Range
	MAC
	URL
	Text
	Expr
)

func (k Kind) String() string {
	switch k {
	case Void:
		return "void"
	case Boolean:
		return "bool"
	case Int32:
		return "i32"
	case Uint32:
		return "u32"
	case Int64:
		return "i64"
	case Uint64:
		return "u64"
	case IPv4:
		return "ipv4"
	case IPv4Net:
		return "ipv4net"
	case IPv4Range:
		return "ipv4range"
	case IPv6:
		return "ipv6"
	case IPv6Net:
		return "ipv6net"
	case IPv6Range:
		return "ipv6range"
	case MAC:
		return "macaddr"
	case URL:
		return "url"
	case Text:
		return "txt"
	case Expr:
		return "expr"
	}
	return "unknown"
}

// ParseKind maps a schema type keyword (as it appears after "segname:" in a
// template file, §6) onto a Kind.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "void":
		return Void, nil
	case "bool":
		return Boolean, nil
	case "i32":
		return Int32, nil
	case "u32":
		return Uint32, nil
	case "i64":
		return Int64, nil
	case "u64":
		return Uint64, nil
	case "ipv4":
		return IPv4, nil
	case "ipv4net":
		return IPv4Net, nil
	case "ipv4range":
		return IPv4Range, nil
	case "ipv6":
		return IPv6, nil
	case "ipv6net":
		return IPv6Net, nil
	case "ipv6range":
		return IPv6Range, nil
	case "macaddr":
		return MAC, nil
	case "url":
		return URL, nil
	case "txt":
		return Text, nil
	case "expr":
		return Expr, nil
	}
	return Void, fmt.Errorf("unrecognised type keyword %q", name)
}

// Value is a tagged union over the scalar kinds a template leaf may
// declare. The zero Value is Void.
type Value struct {
	kind Kind
	i    int64
	u    uint64
	ip   netip.Addr
	pfx  netip.Prefix
	rlo  netip.Addr
	rhi  netip.Addr
	mac  net.HardwareAddr
	text string
}

func (v Value) Kind() Kind { return v.kind }

func newTypeError(kind Kind, text string, reason string) error {
	err := mgmterror.NewInvalidValueApplicationError()
	err.Message = fmt.Sprintf("%q is not a valid %s value: %s", text, kind, reason)
	return err
}

// Parse performs a strict, round-trippable parse of text as kind. Partial
// or non-canonical forms are rejected outright per spec.md §4.1.
func Parse(kind Kind, text string) (Value, error) {
	switch kind {
	case Boolean:
		return parseBool(text)
	case Int32:
		return parseSigned(kind, text, 32)
	case Int64:
		return parseSigned(kind, text, 64)
	case Uint32:
		return parseUnsigned(kind, text, 32)
	case Uint64:
		return parseUnsigned(kind, text, 64)
	case IPv4:
		return parseAddr(kind, text, true)
	case IPv6:
		return parseAddr(kind, text, false)
	case IPv4Net:
		return parseNet(kind, text, true)
	case IPv6Net:
		return parseNet(kind, text, false)
	case IPv4Range:
		return parseRange(kind, text, true)
	case IPv6Range:
		return parseRange(kind, text, false)
	case MAC:
		return parseMAC(text)
	case URL:
		return parseURL(text)
	case Text:
		return Value{kind: Text, text: text}, nil
	case Expr:
		return parseExpr(text)
	}
	return Value{}, fmt.Errorf("cannot parse VOID value")
}

func parseBool(text string) (Value, error) {
	switch text {
	case "true":
		return Value{kind: Boolean, i: 1}, nil
	case "false":
		return Value{kind: Boolean, i: 0}, nil
	}
	return Value{}, newTypeError(Boolean, text, `must be "true" or "false"`)
}

func parseSigned(kind Kind, text string, bits int) (Value, error) {
	n, err := strconv.ParseInt(text, 10, bits)
	if err != nil {
		return Value{}, newTypeError(kind, text, err.Error())
	}
	// reject non-canonical forms such as "+1" or leading zeros ("01")
	if canonical := strconv.FormatInt(n, 10); canonical != text {
		return Value{}, newTypeError(kind, text, "not in canonical form, expected "+canonical)
	}
	return Value{kind: kind, i: n}, nil
}

func parseUnsigned(kind Kind, text string, bits int) (Value, error) {
	n, err := strconv.ParseUint(text, 10, bits)
	if err != nil {
		return Value{}, newTypeError(kind, text, err.Error())
	}
	if canonical := strconv.FormatUint(n, 10); canonical != text {
		return Value{}, newTypeError(kind, text, "not in canonical form, expected "+canonical)
	}
	return Value{kind: kind, u: n}, nil
}

func parseAddr(kind Kind, text string, v4 bool) (Value, error) {
	a, err := netip.ParseAddr(text)
	if err != nil {
		return Value{}, newTypeError(kind, text, err.Error())
	}
	if v4 && !a.Is4() {
		return Value{}, newTypeError(kind, text, "not an IPv4 address")
	}
	if !v4 && !a.Is6() {
		return Value{}, newTypeError(kind, text, "not an IPv6 address")
	}
	if a.String() != text {
		return Value{}, newTypeError(kind, text, "not in canonical form, expected "+a.String())
	}
	return Value{kind: kind, ip: a}, nil
}

func parseNet(kind Kind, text string, v4 bool) (Value, error) {
	p, err := netip.ParsePrefix(text)
	if err != nil {
		return Value{}, newTypeError(kind, text, err.Error())
	}
	addr := p.Addr()
	if v4 && !addr.Is4() {
		return Value{}, newTypeError(kind, text, "not an IPv4 network")
	}
	if !v4 && !addr.Is6() {
		return Value{}, newTypeError(kind, text, "not an IPv6 network")
	}
	bitlen := 32
	if !v4 {
		bitlen = 128
	}
	if p.Bits() < 0 || p.Bits() > bitlen {
		return Value{}, newTypeError(kind, text, "prefix length out of range")
	}
	masked := p.Masked()
	if masked.Addr() != addr {
		return Value{}, newTypeError(kind, text,
			fmt.Sprintf("host bits set, network address is %s", masked))
	}
	if p.String() != text {
		return Value{}, newTypeError(kind, text, "not in canonical form, expected "+p.String())
	}
	return Value{kind: kind, pfx: p}, nil
}

func parseRange(kind Kind, text string, v4 bool) (Value, error) {
	lo, hi, found := strings.Cut(text, "..")
	if !found {
		return Value{}, newTypeError(kind, text, `expected "A..B"`)
	}
	addrKind := IPv4
	if !v4 {
		addrKind = IPv6
	}
	loVal, err := parseAddr(addrKind, lo, v4)
	if err != nil {
		return Value{}, newTypeError(kind, text, "invalid lower bound: "+err.Error())
	}
	hiVal, err := parseAddr(addrKind, hi, v4)
	if err != nil {
		return Value{}, newTypeError(kind, text, "invalid upper bound: "+err.Error())
	}
	if loVal.ip.Compare(hiVal.ip) > 0 {
		return Value{}, newTypeError(kind, text, "lower bound must not exceed upper bound")
	}
	return Value{kind: kind, rlo: loVal.ip, rhi: hiVal.ip}, nil
}

func parseMAC(text string) (Value, error) {
	hw, err := net.ParseMAC(text)
	if err != nil || len(hw) != 6 {
		return Value{}, newTypeError(MAC, text, "expected xx:xx:xx:xx:xx:xx")
	}
	if hw.String() != text {
		return Value{}, newTypeError(MAC, text, "not in canonical form, expected "+hw.String())
	}
	return Value{kind: MAC, mac: hw}, nil
}

func parseURL(text string) (Value, error) {
	u, err := url.Parse(text)
	if err != nil || u.Scheme == "" {
		return Value{}, newTypeError(URL, text, "expected scheme://...")
	}
	switch u.Scheme {
	case "http", "https", "ftp", "tftp", "file":
	default:
		return Value{}, newTypeError(URL, text, "unsupported scheme "+u.Scheme)
	}
	return Value{kind: URL, text: text}, nil
}

// parseExpr accepts any text whose parentheses balance; no further
// arithmetic grammar is checked. The text is stored as given and is never
// evaluated: Canonical renders it back unchanged.
func parseExpr(text string) (Value, error) {
	depth := 0
	for _, r := range text {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth < 0 {
			return Value{}, newTypeError(Expr, text, "unbalanced parentheses")
		}
	}
	if depth != 0 {
		return Value{}, newTypeError(Expr, text, "unbalanced parentheses")
	}
	return Value{kind: Expr, text: text}, nil
}

// Canonical renders v back to its round-trippable string form.
func (v Value) Canonical() string {
	switch v.kind {
	case Boolean:
		if v.i != 0 {
			return "true"
		}
		return "false"
	case Int32, Int64:
		return strconv.FormatInt(v.i, 10)
	case Uint32, Uint64:
		return strconv.FormatUint(v.u, 10)
	case IPv4, IPv6:
		return v.ip.String()
	case IPv4Net, IPv6Net:
		return v.pfx.String()
	case IPv4Range, IPv6Range:
		return v.rlo.String() + ".." + v.rhi.String()
	case MAC:
		return v.mac.String()
	case URL, Text, Expr:
		return v.text
	}
	return ""
}

// Equal reports whether v and other hold the same kind and value.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	return v.Canonical() == other.Canonical()
}

// asBig returns a big.Int representation of v for numeric comparisons,
// widened beyond 64 bits so that Uint64 values above 2^63 still compare
// correctly against signed range bounds (spec.md §9 Open Question #3).
func (v Value) asBig() (*big.Int, bool) {
	switch v.kind {
	case Int32, Int64:
		return big.NewInt(v.i), true
	case Uint32, Uint64:
		return new(big.Int).SetUint64(v.u), true
	}
	return nil, false
}

// Compare orders v relative to other where an ordering exists. ok is false
// for kinds with no total order defined here (URL, Text, Expr are compared
// only for equality).
func (v Value) Compare(other Value) (cmp int, ok bool) {
	if v.kind != other.kind {
		return 0, false
	}
	switch v.kind {
	case Int32, Int64, Uint32, Uint64:
		a, _ := v.asBig()
		b, _ := other.asBig()
		return a.Cmp(b), true
	case Boolean:
		return int(v.i - other.i), true
	case IPv4, IPv6:
		return v.ip.Compare(other.ip), true
	case IPv4Net, IPv6Net:
		if v.pfx.Addr() == other.pfx.Addr() {
			return v.pfx.Bits() - other.pfx.Bits(), true
		}
		return v.pfx.Addr().Compare(other.pfx.Addr()), true
	case IPv6Range, IPv4Range:
		if c := v.rlo.Compare(other.rlo); c != 0 {
			return c, true
		}
		return v.rhi.Compare(other.rhi), true
	}
	return 0, false
}
