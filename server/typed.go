package server

import (
	"errors"

	"github.com/danmuck/xrpc/xmlrpc"
)

// Register installs a typed handler under name with the default decode
// and encode failure hooks.
func Register[Req, Res any](s *Server, name string, handler func(Req) (Res, *xmlrpc.Fault)) {
	RegisterHooked(s, name, handler, OnEncodeFail, OnDecodeFail)
}

// RegisterHooked installs a typed handler. Call params are bridged into
// Req; a bridge failure answers through decodeFail without reaching the
// handler. A fault from the handler is returned as-is. The result is
// bridged back into params; a result the wire format cannot carry
// answers through encodeFail.
func RegisterHooked[Req, Res any](s *Server, name string, handler func(Req) (Res, *xmlrpc.Fault), encodeFail, decodeFail HookFunc) {
	s.RegisterValue(name, func(params []xmlrpc.Value) xmlrpc.Response {
		var req Req
		if err := xmlrpc.FromParams(params, &req); err != nil {
			return decodeFail(err)
		}
		res, fault := handler(req)
		if fault != nil {
			return xmlrpc.Response{Fault: fault}
		}
		out, err := xmlrpc.IntoParams(res)
		if err != nil {
			return encodeFail(err)
		}
		return xmlrpc.Success(out...)
	})
}

// RegisterSimple installs a typed handler that reports failure as a
// plain error. An error that unwraps to a *xmlrpc.Fault keeps its code;
// anything else becomes a 500 fault carrying the error text.
func RegisterSimple[Req, Res any](s *Server, name string, handler func(Req) (Res, error)) {
	Register(s, name, func(req Req) (Res, *xmlrpc.Fault) {
		res, err := handler(req)
		if err != nil {
			var fault *xmlrpc.Fault
			if errors.As(err, &fault) {
				return res, fault
			}
			return res, xmlrpc.NewFault(500, err.Error())
		}
		return res, nil
	})
}
