package httpwire

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
)

// Method is a request verb from the fixed set the framing accepts.
type Method string

const (
	MethodGet     Method = "GET"
	MethodHead    Method = "HEAD"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodDelete  Method = "DELETE"
	MethodConnect Method = "CONNECT"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
	MethodPatch   Method = "PATCH"
)

// Version is a protocol version token from the fixed set the framing
// accepts. Responses are always written as HTTP/1.0 regardless of the
// version a request advertises.
type Version string

const (
	Version09 Version = "HTTP/0.9"
	Version10 Version = "HTTP/1.0"
	Version11 Version = "HTTP/1.1"
	Version20 Version = "HTTP/2.0"
	Version30 Version = "HTTP/3.0"
)

// Header is one field/value pair. Field names compare case-insensitively;
// values are kept verbatim after trimming.
type Header struct {
	Field string
	Value string
}

// Request is one parsed request. It is built once per read cycle and not
// mutated afterward. RemoteAddr is nil for transports that cannot name
// their peer.
type Request struct {
	RemoteAddr net.Addr
	Method     Method
	Path       string
	Version    Version
	Headers    []Header
	Body       []byte
	BodyLength int
}

// Header returns the value of the first header matching name,
// case-insensitively.
func (r *Request) Header(name string) (string, bool) {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Field, name) {
			return h.Value, true
		}
	}
	return "", false
}

// ReadRequest parses a single framed request from br. The request line
// must hold exactly a method, a path, and a version; header lines split
// at the first colon with surrounding whitespace trimmed; an empty line
// ends the header block. A Content-Length header governs how many body
// bytes are read, otherwise the body is absent.
//
// A stream that ends mid-parse yields ErrUnexpectedEOF so callers can
// tell a peer disconnect from a protocol violation.
func ReadRequest(br *bufio.Reader, remote net.Addr) (*Request, error) {
	line, err := readLine(br)
	if err != nil {
		return nil, err
	}
	parts := strings.Fields(line)
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: %q", ErrMalformedRequestLine, line)
	}
	method, err := parseMethod(parts[0])
	if err != nil {
		return nil, err
	}
	version, err := parseVersion(parts[2])
	if err != nil {
		return nil, err
	}

	req := &Request{
		RemoteAddr: remote,
		Method:     method,
		Path:       parts[1],
		Version:    version,
	}

	for {
		line, err := readLine(br)
		if err != nil {
			return nil, err
		}
		if line == "" {
			break
		}
		field, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMalformedHeader, line)
		}
		req.Headers = append(req.Headers, Header{
			Field: strings.TrimSpace(field),
			Value: strings.TrimSpace(value),
		})
	}

	raw, ok := req.Header("Content-Length")
	if !ok {
		return req, nil
	}
	length, err := strconv.ParseUint(raw, 10, 31)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidContentLength, raw)
	}
	if length == 0 {
		return req, nil
	}
	body := make([]byte, length)
	if _, err := io.ReadFull(br, body); err != nil {
		return nil, ErrUnexpectedEOF
	}
	req.Body = body
	req.BodyLength = int(length)
	return req, nil
}

// readLine accumulates bytes until a CRLF pair. A lone LF or CR is kept
// as line content. Bytes above 0x7F reject the line; running out of
// stream reports ErrUnexpectedEOF.
func readLine(br *bufio.Reader) (string, error) {
	var buf []byte
	prevCR := false
	for {
		b, err := br.ReadByte()
		if err != nil {
			return "", ErrUnexpectedEOF
		}
		if b > 0x7F {
			return "", ErrHeaderNotASCII
		}
		if b == '\n' && prevCR {
			return string(buf[:len(buf)-1]), nil
		}
		prevCR = b == '\r'
		buf = append(buf, b)
	}
}

func parseMethod(token string) (Method, error) {
	switch m := Method(token); m {
	case MethodGet, MethodHead, MethodPost, MethodPut, MethodDelete,
		MethodConnect, MethodOptions, MethodTrace, MethodPatch:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMethod, token)
}

func parseVersion(token string) (Version, error) {
	switch v := Version(token); v {
	case Version09, Version10, Version11, Version20, Version30:
		return v, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidVersion, token)
}
