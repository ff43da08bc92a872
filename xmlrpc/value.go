package xmlrpc

import "fmt"

// Value is one node of the wire value tree. The concrete types are String,
// Int, Bool, Double, DateTime, Base64, Array, and Struct; nothing else
// satisfies it.
type Value interface {
	valueNode()
}

// String holds character data.
type String string

// Int holds a 32-bit signed integer.
type Int int32

// Bool holds a boolean.
type Bool bool

// Double holds a 64-bit float.
type Double float64

// DateTime holds a calendar timestamp as raw text. The codec performs no
// calendar validation on it.
type DateTime string

// Base64 holds encoded binary as raw text. The codec performs no decoding.
type Base64 string

// Array holds an ordered sequence of values.
type Array []Value

// Struct maps member names to values. Member order carries no meaning and
// duplicate names resolve last-write-wins during decode.
type Struct map[string]Value

func (String) valueNode()   {}
func (Int) valueNode()      {}
func (Bool) valueNode()     {}
func (Double) valueNode()   {}
func (DateTime) valueNode() {}
func (Base64) valueNode()   {}
func (Array) valueNode()    {}
func (Struct) valueNode()   {}

// tagName names the wire element a value encodes to, for error messages.
func tagName(v Value) string {
	switch v.(type) {
	case String:
		return "string"
	case Int:
		return "i4"
	case Bool:
		return "boolean"
	case Double:
		return "double"
	case DateTime:
		return "dateTime.iso8601"
	case Base64:
		return "base64"
	case Array:
		return "array"
	case Struct:
		return "struct"
	}
	return "nil"
}

// Call is a decoded remote procedure invocation: a method name and its
// positional parameters.
type Call struct {
	Name   string
	Params []Value
}

// Fault is a structured failure result carrying an integer code and a
// message, returned in place of success parameters. Fault implements
// error.
type Fault struct {
	Code    int32
	Message string
}

// NewFault builds a fault.
func NewFault(code int32, message string) *Fault {
	return &Fault{Code: code, Message: message}
}

func (f *Fault) Error() string {
	return fmt.Sprintf("xmlrpc: fault %d: %s", f.Code, f.Message)
}

// Response is the protocol-level result of a call. Fault == nil means
// success; when Fault is set, Params carries no meaning.
type Response struct {
	Params []Value
	Fault  *Fault
}

// Success builds a successful response from positional results.
func Success(params ...Value) Response {
	return Response{Params: params}
}

// FaultResponse builds a failed response.
func FaultResponse(code int32, message string) Response {
	return Response{Fault: NewFault(code, message)}
}

// Faulted reports whether the response carries a fault.
func (r Response) Faulted() bool { return r.Fault != nil }
