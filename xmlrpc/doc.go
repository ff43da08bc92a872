// Package xmlrpc owns the wire value model and the XML codec.
//
// Ownership boundary:
// - value tree primitives
// - call and response documents
// - typed parameter bridge
package xmlrpc
