// Package messages is the catalogue of game messages: opcode tables, typed
// bodies, and the codecs each side of a connection uses.
package messages

import "github.com/danmuck/rscwire/internal/protocol/schema"

var (
	clientTable = schema.NewTable(clientOpcodes)
	serverTable = schema.NewTable(serverOpcodes)
)

// ServerRegistry decodes what clients send and encodes what servers send.
func ServerRegistry() *schema.Registry {
	return &schema.Registry{
		Inbound:  clientTable,
		Outbound: serverTable,
		Decoders: serverDecoders,
		Encoders: serverEncoders,
	}
}

// ClientRegistry is the mirror of ServerRegistry for client connections.
func ClientRegistry() *schema.Registry {
	return &schema.Registry{
		Inbound:  serverTable,
		Outbound: clientTable,
		Decoders: clientDecoders,
		Encoders: clientEncoders,
	}
}
