package xmlrpc

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func encodeValueString(t *testing.T, v Value) string {
	t.Helper()
	var buf bytes.Buffer
	if err := EncodeValue(&buf, v); err != nil {
		t.Fatalf("encode value: %v", err)
	}
	return buf.String()
}

func roundTripValue(t *testing.T, v Value) {
	t.Helper()
	doc := encodeValueString(t, v)
	got, err := ParseValue(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("parse %s: %v", doc, err)
	}
	if diff := cmp.Diff(v, got); diff != "" {
		t.Fatalf("round trip mismatch for %s (-want +got):\n%s", doc, diff)
	}
}

func TestValueRoundTrip(t *testing.T) {
	values := []Value{
		String("South Dakota"),
		String(""),
		String("a <tag> & \"quotes\""),
		Int(-33),
		Int(0),
		Bool(true),
		Bool(false),
		Double(-44.2),
		Double(0),
		DateTime("19980717T14:08:55"),
		Base64("ASDF="),
		Array{Int(33), Int(-12), Int(44)},
		Array{},
		Struct{"foo": Int(42), "bar": String("baz")},
		Struct{},
		Array{Struct{"inner": Array{Bool(true), Double(1.5)}}, String("tail")},
	}
	for _, v := range values {
		roundTripValue(t, v)
	}
}

func TestEncodeScalarForms(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Int(-33), "<i4>-33</i4>"},
		{Bool(true), "<boolean>1</boolean>"},
		{Bool(false), "<boolean>0</boolean>"},
		{Double(-44.2), "<double>-44.2</double>"},
		{String("hi"), "<string>hi</string>"},
		{DateTime("33"), "<dateTime.iso8601>33</dateTime.iso8601>"},
		{Base64("ASDF="), "<base64>ASDF=</base64>"},
	}
	for _, tc := range cases {
		got := encodeValueString(t, tc.v)
		if !strings.Contains(got, tc.want) {
			t.Fatalf("encoding of %#v: expected %q within %q", tc.v, tc.want, got)
		}
	}
}

func TestEncodeStructIsDeterministic(t *testing.T) {
	v := Struct{"zeta": Int(1), "alpha": Int(2), "mid": Int(3)}
	first := encodeValueString(t, v)
	for i := 0; i < 8; i++ {
		if got := encodeValueString(t, v); got != first {
			t.Fatalf("non-deterministic struct encoding:\n%s\n%s", first, got)
		}
	}
	if strings.Index(first, "alpha") > strings.Index(first, "zeta") {
		t.Fatalf("members not sorted: %s", first)
	}
}

func TestEncodeEscapesText(t *testing.T) {
	doc := encodeValueString(t, String(`<script>&"'`))
	if strings.Contains(doc, "<script>") {
		t.Fatalf("unescaped markup in %s", doc)
	}
	roundTripValue(t, String(`<script>&"'`))
}

func TestEncodeRejectsNilValue(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeValue(&buf, nil); !errors.Is(err, ErrEncode) {
		t.Fatalf("expected ErrEncode, got %v", err)
	}
	if err := EncodeValue(&buf, Array{Int(1), nil}); !errors.Is(err, ErrEncode) {
		t.Fatalf("expected ErrEncode for nil element, got %v", err)
	}
}

func TestCallRoundTrip(t *testing.T) {
	call := Call{
		Name: "foobar",
		Params: []Value{
			String("South Dakota"),
			Struct{"foo": Int(42), "bar": String("baz")},
		},
	}
	var buf bytes.Buffer
	if err := EncodeCall(&buf, call); err != nil {
		t.Fatalf("encode call: %v", err)
	}
	if !strings.HasPrefix(buf.String(), `<?xml version="1.0"?>`) {
		t.Fatalf("missing prolog: %s", buf.String())
	}
	got, err := ParseCall(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("parse call: %v", err)
	}
	if diff := cmp.Diff(call, got); diff != "" {
		t.Fatalf("call mismatch (-want +got):\n%s", diff)
	}
}

func TestCallWithoutParamsRoundTrip(t *testing.T) {
	call := Call{Name: "ping"}
	var buf bytes.Buffer
	if err := EncodeCall(&buf, call); err != nil {
		t.Fatalf("encode call: %v", err)
	}
	got, err := ParseCall(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("parse call: %v", err)
	}
	if got.Name != "ping" || len(got.Params) != 0 {
		t.Fatalf("call mismatch: %+v", got)
	}
}

func TestResponseRoundTrip(t *testing.T) {
	resp := Success(String("South Dakota"), Int(7))
	var buf bytes.Buffer
	if err := EncodeResponse(&buf, resp); err != nil {
		t.Fatalf("encode response: %v", err)
	}
	got, err := ParseResponse(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if diff := cmp.Diff(resp, got); diff != "" {
		t.Fatalf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestFaultRoundTrip(t *testing.T) {
	resp := FaultResponse(4, "Too many parameters.")
	var buf bytes.Buffer
	if err := EncodeResponse(&buf, resp); err != nil {
		t.Fatalf("encode response: %v", err)
	}
	doc := buf.String()
	if !strings.Contains(doc, "<fault>") || !strings.Contains(doc, "faultCode") {
		t.Fatalf("fault document malformed: %s", doc)
	}
	got, err := ParseResponse(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if got.Fault == nil || got.Fault.Code != 4 || got.Fault.Message != "Too many parameters." {
		t.Fatalf("fault mismatch: %+v", got)
	}
}

func TestFaultError(t *testing.T) {
	f := NewFault(4, "Too many parameters.")
	if f.Error() != "xmlrpc: fault 4: Too many parameters." {
		t.Fatalf("unexpected error string: %s", f.Error())
	}
	if !(&Response{Fault: f}).Faulted() {
		t.Fatal("expected Faulted to report true")
	}
	if Success().Faulted() {
		t.Fatal("expected success response to not be faulted")
	}
}
