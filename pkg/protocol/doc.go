// Package protocol implements the binary wire format ripple streams to
// remote mirrors of a rendered tree.
//
// The server renders into an in-memory host and forwards every host
// operation to connected clients. A client applies the operations to its
// own copy of the tree and ends up with the same nodes in the same order.
//
// # Wire Format
//
// All messages are framed with a 5-byte header:
//
//	┌─────────────┬───────────────────────────────┐
//	│ Frame Type  │ Payload Length                │
//	│ (1 byte)    │ (4 bytes, big-endian)         │
//	└─────────────┴───────────────────────────────┘
//
// # Frame Types
//
//   - FrameInit (0x00): current HTML, root node ID and next sequence number
//   - FrameOps (0x02): host operations produced by one scheduler flush
//   - FrameControl (0x03): ping, pong and close
//
// # Encoding
//
//   - Varint: compact encoding for small integers (protobuf-style)
//   - ZigZag: signed integers encoded as unsigned varints
//   - Length-prefixed: strings prefixed with a varint length
//   - Big-endian: fixed-width integers and float64 bits
//
// # Operations
//
// Each op is its code, the target node ID, then code-specific data:
//
//	[Code: 0x08][Node: varint][Parent: varint][Anchor: varint]
//
// Node IDs are assigned by the server's mirror and never reused, so a
// client keeps a map from ID to node.
//
// # Errors
//
// Decoding failures are coded: E301 for truncated input, E302 for an
// unknown op code and E303 for payloads or counts over the limits.
package protocol
