package httpwire

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// ServerIdent is stamped into the Server header of every response that
// does not carry its own.
const ServerIdent = "xrpc/0.1"

const httpDateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// protectedFields are dropped whenever a caller tries to set them; the
// framing owns connection semantics.
var protectedFields = [...]string{"Connection", "Trailer", "Transfer-Encoding", "Upgrade"}

// Response accumulates a status, headers, and a body, then frames them
// onto a writer exactly once. Construct through NewResponse, Empty400,
// or FromData.
type Response struct {
	status     int
	headers    []Header
	data       []byte
	dataLength int
	sent       bool
}

// NewResponse builds a response, routing the seed headers through the
// same rules AddHeader applies.
func NewResponse(status int, headers []Header, data []byte) *Response {
	r := &Response{
		status:     status,
		headers:    make([]Header, 0, 16),
		data:       data,
		dataLength: len(data),
	}
	for _, h := range headers {
		r.AddHeader(h.Field, h.Value)
	}
	return r
}

// Empty400 is the bare response for requests that cannot be parsed far
// enough to dispatch.
func Empty400() *Response {
	return NewResponse(400, nil, nil)
}

// FromData wraps a payload in a 200 response carrying the given content
// type.
func FromData(contentType string, data []byte) *Response {
	return NewResponse(200, []Header{{Field: "Content-Type", Value: contentType}}, data)
}

// SetStatus replaces the status code.
func (r *Response) SetStatus(code int) {
	r.status = code
}

// SetData replaces the body and the recorded data length.
func (r *Response) SetData(data []byte) {
	r.data = data
	r.dataLength = len(data)
}

// AddHeader appends a header under the field rules: protected fields are
// dropped, Content-Length only updates the recorded data length (and
// only when it parses as a non-negative integer), and Content-Type
// overwrites an existing Content-Type in place. Any other field may
// repeat.
func (r *Response) AddHeader(field, value string) {
	for _, p := range protectedFields {
		if strings.EqualFold(field, p) {
			return
		}
	}
	if strings.EqualFold(field, "Content-Length") {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && n >= 0 {
			r.dataLength = n
		}
		return
	}
	if strings.EqualFold(field, "Content-Type") {
		for i := range r.headers {
			if strings.EqualFold(r.headers[i].Field, "Content-Type") {
				r.headers[i].Value = value
				return
			}
		}
	}
	r.headers = append(r.headers, Header{Field: field, Value: value})
}

// Status reports the current status code.
func (r *Response) Status() int {
	return r.status
}

// DataLength reports the length the Content-Length header will carry.
func (r *Response) DataLength() int {
	return r.dataLength
}

// Headers exposes the headers in insertion order.
func (r *Response) Headers() []Header {
	return r.headers
}

// Header returns the value of the first header matching name,
// case-insensitively.
func (r *Response) Header(name string) (string, bool) {
	for _, h := range r.headers {
		if strings.EqualFold(h.Field, name) {
			return h.Value, true
		}
	}
	return "", false
}

// Send frames the response onto w: an HTTP/1.0 status line, headers in
// insertion order, a blank line, then the body. Date and Server headers
// are synthesized when absent and exactly one Content-Length is appended.
// The body is withheld for 1xx, 204, and 304 statuses and when the caller
// suppresses it for the request's sake. Send never flushes w; that is
// the transport's job. A response sends once, after which ErrAlreadySent
// is returned.
func (r *Response) Send(w io.Writer, suppressBody bool) error {
	if r.sent {
		return ErrAlreadySent
	}
	r.sent = true

	if _, ok := r.Header("Date"); !ok {
		r.headers = append([]Header{{Field: "Date", Value: time.Now().UTC().Format(httpDateLayout)}}, r.headers...)
	}
	if _, ok := r.Header("Server"); !ok {
		r.headers = append([]Header{{Field: "Server", Value: ServerIdent}}, r.headers...)
	}

	suppress := suppressBody || r.status/100 == 1 || r.status == 204 || r.status == 304
	r.headers = append(r.headers, Header{Field: "Content-Length", Value: strconv.Itoa(r.dataLength)})

	if err := r.writeHead(w); err != nil {
		return err
	}
	if suppress || len(r.data) == 0 || r.dataLength < 1 {
		return nil
	}
	if _, err := w.Write(r.data); err != nil {
		return fmt.Errorf("httpwire: write failed: %w", err)
	}
	return nil
}

func (r *Response) writeHead(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "HTTP/1.0 %d %s\r\n", r.status, reasonPhrase(r.status))
	for _, h := range r.headers {
		b.WriteString(h.Field)
		b.WriteString(": ")
		b.WriteString(h.Value)
		b.WriteString("\r\n")
	}
	b.WriteString("\r\n")
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("httpwire: write failed: %w", err)
	}
	return nil
}

var reasonPhrases = map[int]string{
	100: "Continue",
	101: "Switching Protocols",
	200: "OK",
	201: "Created",
	202: "Accepted",
	204: "No Content",
	206: "Partial Content",
	301: "Moved Permanently",
	302: "Found",
	303: "See Other",
	304: "Not Modified",
	307: "Temporary Redirect",
	400: "Bad Request",
	401: "Unauthorized",
	403: "Forbidden",
	404: "Not Found",
	405: "Method Not Allowed",
	408: "Request Timeout",
	411: "Length Required",
	413: "Request Entity Too Large",
	415: "Unsupported Media Type",
	500: "Internal Server Error",
	501: "Not Implemented",
	502: "Bad Gateway",
	503: "Service Unavailable",
	505: "HTTP Version Not Supported",
}

func reasonPhrase(code int) string {
	if phrase, ok := reasonPhrases[code]; ok {
		return phrase
	}
	return "Unknown"
}
