package xmlrpc

import (
	"encoding/xml"
	"io"
	"sort"
	"strconv"
)

const docProlog = `<?xml version="1.0"?>`

// EncodeValue writes v as a standalone value document.
func EncodeValue(w io.Writer, v Value) error {
	e := &encoder{w: w}
	e.raw(docProlog)
	e.value(v)
	return e.err
}

// EncodeCall writes c as a methodCall document. The params element is
// always present, even when empty.
func EncodeCall(w io.Writer, c Call) error {
	e := &encoder{w: w}
	e.raw(docProlog)
	e.raw("<methodCall><methodName>")
	e.text(c.Name)
	e.raw("</methodName>")
	e.params(c.Params)
	e.raw("</methodCall>")
	return e.err
}

// EncodeResponse writes r as a methodResponse document.
func EncodeResponse(w io.Writer, r Response) error {
	e := &encoder{w: w}
	e.raw(docProlog)
	e.raw("<methodResponse>")
	if r.Fault != nil {
		e.raw("<fault>")
		e.value(Struct{
			"faultCode":   Int(r.Fault.Code),
			"faultString": String(r.Fault.Message),
		})
		e.raw("</fault>")
	} else {
		e.params(r.Params)
	}
	e.raw("</methodResponse>")
	return e.err
}

// encoder carries the writer and the first write error; once err is set
// every later write is a no-op.
type encoder struct {
	w   io.Writer
	err error
}

func (e *encoder) raw(s string) {
	if e.err != nil {
		return
	}
	_, e.err = io.WriteString(e.w, s)
}

func (e *encoder) text(s string) {
	if e.err != nil {
		return
	}
	e.err = xml.EscapeText(e.w, []byte(s))
}

func (e *encoder) params(params []Value) {
	e.raw("<params>")
	for _, p := range params {
		e.raw("<param>")
		e.value(p)
		e.raw("</param>")
	}
	e.raw("</params>")
}

func (e *encoder) value(v Value) {
	if e.err != nil {
		return
	}
	if v == nil {
		e.err = encodeErrorf("cannot encode nil value")
		return
	}
	e.raw("<value>")
	switch t := v.(type) {
	case String:
		e.raw("<string>")
		e.text(string(t))
		e.raw("</string>")
	case Int:
		e.raw("<i4>")
		e.raw(strconv.FormatInt(int64(t), 10))
		e.raw("</i4>")
	case Bool:
		if t {
			e.raw("<boolean>1</boolean>")
		} else {
			e.raw("<boolean>0</boolean>")
		}
	case Double:
		e.raw("<double>")
		e.raw(strconv.FormatFloat(float64(t), 'f', -1, 64))
		e.raw("</double>")
	case DateTime:
		e.raw("<dateTime.iso8601>")
		e.text(string(t))
		e.raw("</dateTime.iso8601>")
	case Base64:
		e.raw("<base64>")
		e.text(string(t))
		e.raw("</base64>")
	case Array:
		e.raw("<array><data>")
		for _, el := range t {
			e.value(el)
		}
		e.raw("</data></array>")
	case Struct:
		e.raw("<struct>")
		for _, name := range sortedMemberNames(t) {
			e.raw("<member><name>")
			e.text(name)
			e.raw("</name>")
			e.value(t[name])
			e.raw("</member>")
		}
		e.raw("</struct>")
	}
	e.raw("</value>")
}

// sortedMemberNames fixes the member order so equal structs encode to
// equal documents.
func sortedMemberNames(st Struct) []string {
	names := make([]string, 0, len(st))
	for name := range st {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
