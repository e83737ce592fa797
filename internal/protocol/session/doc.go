// Package session is the dispatch layer for one game connection.
//
// A Session owns the connection's reassembler. Inbound bytes are turned
// into frames, frames into typed messages through the injected
// schema.Registry, and messages are published to the registered observers in
// arrival order. Outbound messages go the other way and are queued for a
// single writer goroutine.
//
// Only reassembly overflow, zero-length frames and transport failures end a
// connection. Every per-message failure is reported as a *DispatchError and
// the next frame is processed normally.
package session
