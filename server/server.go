package server

import (
	"bytes"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/danmuck/xrpc/httpwire"
	"github.com/danmuck/xrpc/internal/observability"
	"github.com/danmuck/xrpc/xmlrpc"
)

// HandlerFunc answers one call: ordered params in, protocol response out.
type HandlerFunc func(params []xmlrpc.Value) xmlrpc.Response

// HookFunc turns a typed-bridge failure into the response the peer sees.
type HookFunc func(err error) xmlrpc.Response

// OnDecodeFail is the default hook for call params that do not fit a
// typed handler's request shape.
func OnDecodeFail(err error) xmlrpc.Response {
	return xmlrpc.FaultResponse(400, fmt.Sprintf("Failed to decode request: %v", err))
}

// OnEncodeFail is the default hook for typed handler results the wire
// format cannot represent.
func OnEncodeFail(err error) xmlrpc.Response {
	return xmlrpc.FaultResponse(500, fmt.Sprintf("Failed to encode response: %v", err))
}

func onMissingMethod(_ []xmlrpc.Value) xmlrpc.Response {
	return xmlrpc.FaultResponse(404, "Requested method does not exist")
}

// Server collects handler registrations ahead of binding. Registration
// is not safe for concurrent use; register everything, then Bind.
type Server struct {
	handlers  map[string]HandlerFunc
	onMissing HandlerFunc
}

// New returns an empty registry with the default missing-method
// fallback.
func New() *Server {
	return &Server{
		handlers:  make(map[string]HandlerFunc),
		onMissing: onMissingMethod,
	}
}

// RegisterValue installs a raw handler under name, replacing any
// previous registration with that name.
func (s *Server) RegisterValue(name string, handler HandlerFunc) {
	s.handlers[name] = handler
}

// SetOnMissing replaces the fallback invoked when a call names no
// registered method. The fallback receives the call's params.
func (s *Server) SetOnMissing(handler HandlerFunc) {
	s.onMissing = handler
}

// dispatcher is the immutable view of a Server taken at bind time and
// shared read-only across connections.
type dispatcher struct {
	handlers    map[string]HandlerFunc
	onMissing   HandlerFunc
	serverIdent string
	log         zerolog.Logger
}

func (d *dispatcher) handle(call xmlrpc.Call) xmlrpc.Response {
	handler, ok := d.handlers[call.Name]
	if !ok {
		handler = d.onMissing
	}
	return d.invoke(call.Name, handler, call.Params)
}

// invoke runs one handler behind a recovery boundary. A panicking
// handler becomes a 500 fault instead of tearing down its connection.
func (d *dispatcher) invoke(name string, handler HandlerFunc, params []xmlrpc.Value) (resp xmlrpc.Response) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().
				Str("method", name).
				Interface("panic", r).
				Msg("handler panicked")
			resp = xmlrpc.FaultResponse(500, fmt.Sprintf("Handler failed: %v", r))
		}
	}()
	return handler(params)
}

// handleRequest maps one framed request to one framed response. A
// missing body or an undecodable call gets a bare 400; every dispatched
// call gets a 200 carrying the XML response text, fault or not.
func (d *dispatcher) handleRequest(transport string, req *httpwire.Request) *httpwire.Response {
	resp := d.respond(transport, req)
	if d.serverIdent != "" {
		resp.AddHeader("Server", d.serverIdent)
	}
	return resp
}

func (d *dispatcher) respond(transport string, req *httpwire.Request) *httpwire.Response {
	if req.Body == nil {
		observability.RecordRejected(transport)
		return httpwire.Empty400()
	}
	call, err := xmlrpc.ParseCall(bytes.NewReader(req.Body))
	if err != nil {
		d.log.Debug().Err(err).Msg("call decode failed")
		observability.RecordRejected(transport)
		return httpwire.Empty400()
	}
	start := time.Now()
	resp := d.handle(call)
	observability.RecordCall(call.Name, transport, resp.Faulted(), time.Since(start))

	var buf bytes.Buffer
	if err := xmlrpc.EncodeResponse(&buf, resp); err != nil {
		d.log.Error().
			Str("method", call.Name).
			Err(err).
			Msg("response encode failed")
		buf.Reset()
		fallback := xmlrpc.FaultResponse(500, fmt.Sprintf("Failed to encode response: %v", err))
		// A fault of two scalars always encodes.
		_ = xmlrpc.EncodeResponse(&buf, fallback)
	}
	return httpwire.FromData("text/xml", buf.Bytes())
}
