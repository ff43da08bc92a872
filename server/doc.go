// Package server ties the method registry to its transports.
//
// Ownership boundary:
//   - handler registration, raw and typed, plus the failure hooks
//   - dispatch from a framed request to a framed response
//   - the TCP accept/serve loops and the single-threaded UDP receive loop
//
// The registry is snapshotted when Bind is called and shared read-only
// by every connection afterward; there is no post-bind registration.
package server
