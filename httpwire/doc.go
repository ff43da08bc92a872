// Package httpwire owns the byte-level HTTP framing for the RPC endpoint.
//
// Ownership boundary:
//   - request line, header block, and body parsing from a buffered stream
//   - response assembly and its one-shot serialization to a writer
//   - the error split between peer disconnect and protocol violation
//
// The package never touches sockets. Transports hand it readers and
// writers, decide when to flush, and interpret the errors it returns.
package httpwire
