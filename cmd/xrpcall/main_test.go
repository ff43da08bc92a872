package main

import (
	"testing"

	"github.com/danmuck/xrpc/xmlrpc"
)

func TestParseArgPicksNarrowestType(t *testing.T) {
	cases := []struct {
		raw  string
		want xmlrpc.Value
	}{
		{"42", xmlrpc.Int(42)},
		{"-33", xmlrpc.Int(-33)},
		{"true", xmlrpc.Bool(true)},
		{"false", xmlrpc.Bool(false)},
		{"-44.2", xmlrpc.Double(-44.2)},
		{"hello", xmlrpc.String("hello")},
		{"1.2.3", xmlrpc.String("1.2.3")},
		{"2147483648", xmlrpc.String("2147483648")},
		{"2147483648.0", xmlrpc.Double(2147483648)},
	}
	for _, tc := range cases {
		if got := parseArg(tc.raw); got != tc.want {
			t.Fatalf("parseArg(%q) = %#v, want %#v", tc.raw, got, tc.want)
		}
	}
}

func TestFormatValueNesting(t *testing.T) {
	v := xmlrpc.Struct{
		"zeta":  xmlrpc.Array{xmlrpc.Int(1), xmlrpc.Bool(false)},
		"alpha": xmlrpc.String("hi"),
	}
	got := formatValue(v)
	want := `{alpha: "hi", zeta: [1, false]}`
	if got != want {
		t.Fatalf("formatValue = %s, want %s", got, want)
	}
}

func TestFormatValueScalars(t *testing.T) {
	cases := []struct {
		v    xmlrpc.Value
		want string
	}{
		{xmlrpc.Int(-12), "-12"},
		{xmlrpc.Double(44.2), "44.2"},
		{xmlrpc.Bool(true), "true"},
		{xmlrpc.String(`say "hi"`), `"say \"hi\""`},
		{xmlrpc.DateTime("19980717T14:08:55"), "19980717T14:08:55"},
		{xmlrpc.Base64("eW91IGNhbid0IHJlYWQgdGhpcyE="), "eW91IGNhbid0IHJlYWQgdGhpcyE="},
	}
	for _, tc := range cases {
		if got := formatValue(tc.v); got != tc.want {
			t.Fatalf("formatValue(%#v) = %s, want %s", tc.v, got, tc.want)
		}
	}
}
