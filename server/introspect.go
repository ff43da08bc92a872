package server

import (
	"sort"

	"github.com/danmuck/xrpc/xmlrpc"
)

// listMethodsHandler answers system.listMethods with the sorted method
// names in the bound snapshot, itself included.
func listMethodsHandler(d *dispatcher) HandlerFunc {
	return func(_ []xmlrpc.Value) xmlrpc.Response {
		names := make([]string, 0, len(d.handlers))
		for name := range d.handlers {
			names = append(names, name)
		}
		sort.Strings(names)
		arr := make(xmlrpc.Array, 0, len(names))
		for _, name := range names {
			arr = append(arr, xmlrpc.String(name))
		}
		return xmlrpc.Success(arr)
	}
}
