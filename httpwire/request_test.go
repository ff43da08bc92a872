package httpwire

import (
	"bufio"
	"errors"
	"strings"
	"testing"
)

func reader(raw string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(raw))
}

func TestReadRequestWithBody(t *testing.T) {
	raw := "POST /RPC2 HTTP/1.1\r\n" +
		"Content-Type: text/xml\r\n" +
		"Content-Length: 5\r\n" +
		"\r\n" +
		"hello"
	req, err := ReadRequest(reader(raw), nil)
	if err != nil {
		t.Fatalf("read request: %v", err)
	}
	if req.Method != MethodPost || req.Path != "/RPC2" || req.Version != Version11 {
		t.Fatalf("request line mismatch: %+v", req)
	}
	if len(req.Headers) != 2 {
		t.Fatalf("expected 2 headers, got %v", req.Headers)
	}
	if string(req.Body) != "hello" || req.BodyLength != 5 {
		t.Fatalf("body mismatch: %q length %d", req.Body, req.BodyLength)
	}
}

func TestReadRequestWithoutBody(t *testing.T) {
	req, err := ReadRequest(reader("GET / HTTP/1.0\r\n\r\n"), nil)
	if err != nil {
		t.Fatalf("read request: %v", err)
	}
	if req.Body != nil || req.BodyLength != 0 {
		t.Fatalf("expected no body, got %q length %d", req.Body, req.BodyLength)
	}
}

func TestReadRequestAcceptsTheFullVocabulary(t *testing.T) {
	methods := []Method{
		MethodGet, MethodHead, MethodPost, MethodPut, MethodDelete,
		MethodConnect, MethodOptions, MethodTrace, MethodPatch,
	}
	versions := []Version{Version09, Version10, Version11, Version20, Version30}
	for _, m := range methods {
		for _, v := range versions {
			raw := string(m) + " /x " + string(v) + "\r\n\r\n"
			req, err := ReadRequest(reader(raw), nil)
			if err != nil {
				t.Fatalf("%s %s: %v", m, v, err)
			}
			if req.Method != m || req.Version != v {
				t.Fatalf("parsed %+v from %q", req, raw)
			}
		}
	}
}

func TestReadRequestLineTokenCount(t *testing.T) {
	for _, raw := range []string{
		"GET /\r\n\r\n",
		"GET / HTTP/1.1 extra\r\n\r\n",
		"\r\n\r\n",
	} {
		_, err := ReadRequest(reader(raw), nil)
		if !errors.Is(err, ErrMalformedRequestLine) {
			t.Fatalf("%q: expected ErrMalformedRequestLine, got %v", raw, err)
		}
	}
}

func TestReadRequestRejectsUnknownMethod(t *testing.T) {
	_, err := ReadRequest(reader("FETCH / HTTP/1.1\r\n\r\n"), nil)
	if !errors.Is(err, ErrInvalidMethod) {
		t.Fatalf("expected ErrInvalidMethod, got %v", err)
	}
}

func TestReadRequestRejectsUnknownVersion(t *testing.T) {
	_, err := ReadRequest(reader("GET / HTTP/9.9\r\n\r\n"), nil)
	if !errors.Is(err, ErrInvalidVersion) {
		t.Fatalf("expected ErrInvalidVersion, got %v", err)
	}
}

func TestHeaderSplitsAtFirstColon(t *testing.T) {
	raw := "GET / HTTP/1.1\r\n" +
		"X-Time:  12:30:00 \r\n" +
		"\r\n"
	req, err := ReadRequest(reader(raw), nil)
	if err != nil {
		t.Fatalf("read request: %v", err)
	}
	if len(req.Headers) != 1 || req.Headers[0].Field != "X-Time" || req.Headers[0].Value != "12:30:00" {
		t.Fatalf("header mismatch: %+v", req.Headers)
	}
}

func TestHeaderLookupIsCaseInsensitive(t *testing.T) {
	raw := "GET / HTTP/1.1\r\nHost: example\r\n\r\n"
	req, err := ReadRequest(reader(raw), nil)
	if err != nil {
		t.Fatalf("read request: %v", err)
	}
	v, ok := req.Header("hOsT")
	if !ok || v != "example" {
		t.Fatalf("lookup mismatch: %q %v", v, ok)
	}
	if _, ok := req.Header("absent"); ok {
		t.Fatal("expected miss for absent header")
	}
}

func TestHeaderWithoutColonIsRejected(t *testing.T) {
	_, err := ReadRequest(reader("GET / HTTP/1.1\r\nbroken header\r\n\r\n"), nil)
	if !errors.Is(err, ErrMalformedHeader) {
		t.Fatalf("expected ErrMalformedHeader, got %v", err)
	}
}

func TestHeaderRejectsNonASCII(t *testing.T) {
	_, err := ReadRequest(reader("GET / HTTP/1.1\r\nX-Bad: caf\xc3\xa9\r\n\r\n"), nil)
	if !errors.Is(err, ErrHeaderNotASCII) {
		t.Fatalf("expected ErrHeaderNotASCII, got %v", err)
	}
}

func TestEOFIsDistinctFromProtocolViolations(t *testing.T) {
	for _, raw := range []string{
		"",
		"GET / HT",
		"GET / HTTP/1.1\r\nHost: x",
	} {
		_, err := ReadRequest(reader(raw), nil)
		if !errors.Is(err, ErrUnexpectedEOF) {
			t.Fatalf("%q: expected ErrUnexpectedEOF, got %v", raw, err)
		}
		if errors.Is(err, ErrMalformedRequestLine) {
			t.Fatalf("%q: EOF misreported as malformed line", raw)
		}
	}
}

func TestBodyShorterThanContentLength(t *testing.T) {
	raw := "POST / HTTP/1.1\r\nContent-Length: 10\r\n\r\nabc"
	_, err := ReadRequest(reader(raw), nil)
	if !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestContentLengthGovernsBodyBytes(t *testing.T) {
	raw := "POST / HTTP/1.1\r\nContent-Length: 5\r\n\r\n" +
		"01234" +
		"GET /next HTTP/1.0\r\n\r\n"
	br := reader(raw)
	first, err := ReadRequest(br, nil)
	if err != nil {
		t.Fatalf("first request: %v", err)
	}
	if string(first.Body) != "01234" {
		t.Fatalf("body mismatch: %q", first.Body)
	}
	second, err := ReadRequest(br, nil)
	if err != nil {
		t.Fatalf("second request: %v", err)
	}
	if second.Method != MethodGet || second.Path != "/next" {
		t.Fatalf("second request mismatch: %+v", second)
	}
}

func TestInvalidContentLength(t *testing.T) {
	for _, cl := range []string{"abc", "-5", "4.2"} {
		raw := "POST / HTTP/1.1\r\nContent-Length: " + cl + "\r\n\r\n"
		_, err := ReadRequest(reader(raw), nil)
		if !errors.Is(err, ErrInvalidContentLength) {
			t.Fatalf("%q: expected ErrInvalidContentLength, got %v", cl, err)
		}
	}
}

func TestZeroContentLengthMeansNoBody(t *testing.T) {
	req, err := ReadRequest(reader("POST / HTTP/1.1\r\nContent-Length: 0\r\n\r\n"), nil)
	if err != nil {
		t.Fatalf("read request: %v", err)
	}
	if req.Body != nil || req.BodyLength != 0 {
		t.Fatalf("expected empty body, got %q length %d", req.Body, req.BodyLength)
	}
}

func TestBareLFDoesNotTerminateLine(t *testing.T) {
	raw := "GET / HTTP/1.1\r\nX-A: 1\nX-B: 2\r\n\r\n"
	req, err := ReadRequest(reader(raw), nil)
	if err != nil {
		t.Fatalf("read request: %v", err)
	}
	if len(req.Headers) != 1 || req.Headers[0].Field != "X-A" {
		t.Fatalf("expected lone LF kept as content, got %+v", req.Headers)
	}
}
