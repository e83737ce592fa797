// Package protocol owns the wire contract of the legacy game link.
//
// Ownership boundary:
// - packet: bit-addressable cursor over one frame body
// - frame: short/extended header codec
// - stream: per-connection reassembly of frames from partial reads
// - chat, username: legacy compression codecs
// - schema: opcode/name registry contract consumed by dispatch
// - session: dispatch between transport, registry and subscribers
//
// This package holds the error taxonomy shared by all of the above.
package protocol
