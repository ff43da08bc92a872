package xmlrpc

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"strings"
)

// ParseValue decodes a standalone value document. The root element may be
// any of the typed value tags or a value wrapper around one. Decoding never
// returns a partial tree: the result is nil whenever the error is not.
func ParseValue(r io.Reader) (Value, error) {
	d := xml.NewDecoder(r)
	root, err := rootElement(d)
	if err != nil {
		return nil, err
	}
	if root.Name.Local == "value" {
		return parseValueElement(d)
	}
	return parseTypedValue(d, root)
}

// ParseCall decodes a methodCall document.
func ParseCall(r io.Reader) (Call, error) {
	d := xml.NewDecoder(r)
	root, err := rootElement(d)
	if err != nil {
		return Call{}, err
	}
	if root.Name.Local != "methodCall" {
		return Call{}, decodeErrorf("expected <methodCall>, found <%s>", root.Name.Local)
	}
	var name string
	var seenName bool
	var params []Value
	for {
		child, ok, err := childElement(d)
		if err != nil {
			return Call{}, err
		}
		if !ok {
			break
		}
		switch child.Name.Local {
		case "methodName":
			text, err := elementText(d)
			if err != nil {
				return Call{}, err
			}
			name = strings.TrimSpace(text)
			seenName = true
		case "params":
			params, err = parseParams(d)
			if err != nil {
				return Call{}, err
			}
		default:
			return Call{}, decodeErrorf("unexpected element <%s> in methodCall", child.Name.Local)
		}
	}
	if !seenName {
		return Call{}, decodeErrorf("methodCall missing <methodName>")
	}
	return Call{Name: name, Params: params}, nil
}

// ParseResponse decodes a methodResponse document holding either success
// parameters or a fault.
func ParseResponse(r io.Reader) (Response, error) {
	d := xml.NewDecoder(r)
	root, err := rootElement(d)
	if err != nil {
		return Response{}, err
	}
	if root.Name.Local != "methodResponse" {
		return Response{}, decodeErrorf("expected <methodResponse>, found <%s>", root.Name.Local)
	}
	var resp Response
	var seen bool
	for {
		child, ok, err := childElement(d)
		if err != nil {
			return Response{}, err
		}
		if !ok {
			break
		}
		if seen {
			return Response{}, decodeErrorf("methodResponse holds more than one of <params> and <fault>")
		}
		switch child.Name.Local {
		case "params":
			params, err := parseParams(d)
			if err != nil {
				return Response{}, err
			}
			resp = Response{Params: params}
		case "fault":
			fault, err := parseFault(d)
			if err != nil {
				return Response{}, err
			}
			resp = Response{Fault: fault}
		default:
			return Response{}, decodeErrorf("unexpected element <%s> in methodResponse", child.Name.Local)
		}
		seen = true
	}
	if !seen {
		return Response{}, decodeErrorf("methodResponse missing <params> or <fault>")
	}
	return resp, nil
}

func parseParams(d *xml.Decoder) ([]Value, error) {
	params := []Value{}
	for {
		child, ok, err := childElement(d)
		if err != nil {
			return nil, err
		}
		if !ok {
			return params, nil
		}
		if child.Name.Local != "param" {
			return nil, decodeErrorf("unexpected element <%s> in params", child.Name.Local)
		}
		inner, ok, err := childElement(d)
		if err != nil {
			return nil, err
		}
		if !ok || inner.Name.Local != "value" {
			return nil, decodeErrorf("param missing <value>")
		}
		v, err := parseValueElement(d)
		if err != nil {
			return nil, err
		}
		params = append(params, v)
		if err := closeElement(d); err != nil {
			return nil, err
		}
	}
}

func parseFault(d *xml.Decoder) (*Fault, error) {
	child, ok, err := childElement(d)
	if err != nil {
		return nil, err
	}
	if !ok || child.Name.Local != "value" {
		return nil, decodeErrorf("fault missing <value>")
	}
	v, err := parseValueElement(d)
	if err != nil {
		return nil, err
	}
	if err := closeElement(d); err != nil {
		return nil, err
	}
	st, isStruct := v.(Struct)
	if !isStruct {
		return nil, decodeErrorf("fault value must be a struct, found %s", tagName(v))
	}
	if len(st) != 2 {
		return nil, decodeErrorf("fault struct must hold exactly faultCode and faultString")
	}
	code, hasCode := st["faultCode"].(Int)
	if !hasCode {
		return nil, decodeErrorf("fault struct missing integer faultCode")
	}
	message, hasMessage := st["faultString"].(String)
	if !hasMessage {
		return nil, decodeErrorf("fault struct missing string faultString")
	}
	return &Fault{Code: int32(code), Message: string(message)}, nil
}

// parseValueElement decodes the single typed child of a value element the
// decoder has just entered, consuming through the closing tag.
func parseValueElement(d *xml.Decoder) (Value, error) {
	inner, ok, err := childElement(d)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, decodeErrorf("empty <value> element")
	}
	v, err := parseTypedValue(d, inner)
	if err != nil {
		return nil, err
	}
	if err := closeElement(d); err != nil {
		return nil, err
	}
	return v, nil
}

func parseTypedValue(d *xml.Decoder, start xml.StartElement) (Value, error) {
	switch start.Name.Local {
	case "string":
		text, err := elementText(d)
		if err != nil {
			return nil, err
		}
		return String(text), nil
	case "int", "i4":
		text, err := elementText(d)
		if err != nil {
			return nil, err
		}
		lit := strings.TrimSpace(text)
		n, err := strconv.ParseInt(lit, 10, 32)
		if err != nil {
			return nil, decodeErrorf("invalid integer literal %q", lit)
		}
		return Int(n), nil
	case "boolean":
		text, err := elementText(d)
		if err != nil {
			return nil, err
		}
		switch strings.TrimSpace(text) {
		case "1":
			return Bool(true), nil
		case "0":
			return Bool(false), nil
		}
		return nil, decodeErrorf("invalid boolean literal %q", strings.TrimSpace(text))
	case "double":
		text, err := elementText(d)
		if err != nil {
			return nil, err
		}
		lit := strings.TrimSpace(text)
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return nil, decodeErrorf("invalid double literal %q", lit)
		}
		return Double(f), nil
	case "dateTime.iso8601":
		text, err := elementText(d)
		if err != nil {
			return nil, err
		}
		return DateTime(text), nil
	case "base64":
		text, err := elementText(d)
		if err != nil {
			return nil, err
		}
		return Base64(text), nil
	case "array":
		return parseArray(d)
	case "struct":
		return parseStruct(d)
	}
	return nil, decodeErrorf("unknown element <%s>", start.Name.Local)
}

func parseArray(d *xml.Decoder) (Value, error) {
	data, ok, err := childElement(d)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, decodeErrorf("array missing <data>")
	}
	if data.Name.Local != "data" {
		return nil, decodeErrorf("unexpected element <%s> in array", data.Name.Local)
	}
	arr := Array{}
	for {
		child, ok, err := childElement(d)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if child.Name.Local != "value" {
			return nil, decodeErrorf("unexpected element <%s> in array data", child.Name.Local)
		}
		v, err := parseValueElement(d)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
	if err := closeElement(d); err != nil {
		return nil, err
	}
	return arr, nil
}

func parseStruct(d *xml.Decoder) (Value, error) {
	st := Struct{}
	for {
		member, ok, err := childElement(d)
		if err != nil {
			return nil, err
		}
		if !ok {
			return st, nil
		}
		if member.Name.Local != "member" {
			return nil, decodeErrorf("unexpected element <%s> in struct", member.Name.Local)
		}
		name, v, err := parseMember(d)
		if err != nil {
			return nil, err
		}
		st[name] = v
	}
}

func parseMember(d *xml.Decoder) (string, Value, error) {
	var name string
	var seenName bool
	var v Value
	for {
		child, ok, err := childElement(d)
		if err != nil {
			return "", nil, err
		}
		if !ok {
			break
		}
		switch child.Name.Local {
		case "name":
			text, err := elementText(d)
			if err != nil {
				return "", nil, err
			}
			name = text
			seenName = true
		case "value":
			v, err = parseValueElement(d)
			if err != nil {
				return "", nil, err
			}
		default:
			return "", nil, decodeErrorf("unexpected element <%s> in member", child.Name.Local)
		}
	}
	if !seenName || v == nil {
		return "", nil, decodeErrorf("struct member missing <name> or <value>")
	}
	return name, v, nil
}

// rootElement scans to the document's first element, skipping the XML
// prolog, comments, and whitespace.
func rootElement(d *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return xml.StartElement{}, decodeErrorf("empty document")
		}
		if err != nil {
			return xml.StartElement{}, decodeErrorf("malformed document: %v", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return t, nil
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return xml.StartElement{}, decodeErrorf("unexpected text before root element")
			}
		}
	}
}

// childElement returns the next child element of the element the decoder is
// inside, or ok == false once that element ends. Non-whitespace character
// data between children is rejected.
func childElement(d *xml.Decoder) (xml.StartElement, bool, error) {
	for {
		tok, err := d.Token()
		if err != nil {
			return xml.StartElement{}, false, decodeErrorf("truncated document: %v", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return t, true, nil
		case xml.EndElement:
			return xml.StartElement{}, false, nil
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return xml.StartElement{}, false, decodeErrorf("unexpected text %q", string(bytes.TrimSpace(t)))
			}
		}
	}
}

// closeElement consumes the end tag of the element the decoder is inside.
func closeElement(d *xml.Decoder) error {
	el, ok, err := childElement(d)
	if err != nil {
		return err
	}
	if ok {
		return decodeErrorf("unexpected element <%s>", el.Name.Local)
	}
	return nil
}

// elementText gathers the character content of the element the decoder is
// inside through its end tag.
func elementText(d *xml.Decoder) (string, error) {
	var sb strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return "", decodeErrorf("truncated document: %v", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.EndElement:
			return sb.String(), nil
		case xml.StartElement:
			return "", decodeErrorf("unexpected element <%s>", t.Name.Local)
		}
	}
}
