// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

package value

import "testing"

func TestParseCanonicalRoundTrip(t *testing.T) {
	tests := []struct {
		kind Kind
		text string
	}{
		{Boolean, "true"},
		{Int32, "-42"},
		{Uint32, "42"},
		{Int64, "-9223372036854775808"},
		{Uint64, "18446744073709551615"},
		{IPv4, "192.0.2.1"},
		{IPv4Net, "192.0.2.0/24"},
		{IPv4Range, "192.0.2.1..192.0.2.10"},
		{IPv6, "2001:db8::1"},
		{IPv6Net, "2001:db8::/32"},
		{MAC, "00:11:22:33:44:55"},
		{URL, "http://example.com/path"},
		{Text, "hello world"},
		{Expr, "(1 + 2) * 3"},
	}
	for _, tt := range tests {
		v, err := Parse(tt.kind, tt.text)
		if err != nil {
			t.Fatalf("Parse(%s, %q): %v", tt.kind, tt.text, err)
		}
		if got := v.Canonical(); got != tt.text {
			t.Errorf("Parse(%s, %q).Canonical() = %q, want %q", tt.kind, tt.text, got, tt.text)
		}
	}
}

func TestParseRejectsNonCanonical(t *testing.T) {
	tests := []struct {
		kind Kind
		text string
	}{
		{Int32, "+1"},
		{Int32, "01"},
		{IPv4Net, "192.0.2.1/24"}, // host bits set
		{IPv4Range, "192.0.2.10..192.0.2.1"},
		{IPv6Net, "2001:db8::1/129"},
	}
	for _, tt := range tests {
		if _, err := Parse(tt.kind, tt.text); err == nil {
			t.Errorf("Parse(%s, %q) = nil error, want rejection", tt.kind, tt.text)
		}
	}
}

func TestCompareWidensUint64(t *testing.T) {
	big, err := Parse(Uint64, "18446744073709551615")
	if err != nil {
		t.Fatal(err)
	}
	small, err := Parse(Uint64, "1")
	if err != nil {
		t.Fatal(err)
	}
	cmp, ok := big.Compare(small)
	if !ok || cmp <= 0 {
		t.Errorf("expected max uint64 to compare greater than 1, got cmp=%d ok=%v", cmp, ok)
	}
}

func TestCheckAllowedValuesAndRanges(t *testing.T) {
	v1500, _ := Parse(Uint32, "1500")
	v9000, _ := Parse(Uint32, "9000")
	vbad, _ := Parse(Uint32, "42")

	allowed := []Allowed{{Value: v1500, Help: "default MTU"}}
	ranges := []Range{{Lo: mustParse(Uint32, "1280"), Hi: mustParse(Uint32, "9216")}}

	if ok, _ := CheckAllowed(v1500, allowed, nil); !ok {
		t.Error("v1500 should be allowed by value list")
	}
	if ok, _ := CheckAllowed(v9000, nil, ranges); !ok {
		t.Error("v9000 should be allowed by range")
	}
	if ok, explanation := CheckAllowed(vbad, allowed, ranges); ok || explanation == "" {
		t.Error("42 should be rejected with an explanation")
	}
}

func mustParse(kind Kind, text string) Value {
	v, err := Parse(kind, text)
	if err != nil {
		panic(err)
	}
	return v
}

func TestOperatorApply(t *testing.T) {
	a, _ := Parse(Uint32, "10")
	b, _ := Parse(Uint32, "20")
	ok, err := Apply(OpLT, a, b)
	if err != nil || !ok {
		t.Fatalf("10 < 20 should hold, got ok=%v err=%v", ok, err)
	}
	ok, err = Apply(OpGTE, b, a)
	if err != nil || !ok {
		t.Fatalf("20 >= 10 should hold, got ok=%v err=%v", ok, err)
	}
}

func TestParseOperatorRoundTrip(t *testing.T) {
	for _, text := range []string{":", "==", "+=", "delete", ""} {
		op, err := ParseOperator(text)
		if err != nil {
			t.Fatalf("ParseOperator(%q): %v", text, err)
		}
		if text == "" || text == ":" {
			if op != OpAssign {
				t.Errorf("ParseOperator(%q) = %v, want OpAssign", text, op)
			}
		}
	}
}
