// Package protocol implements the binary wire format used to stream host
// mutations from a reconciling server to remote mirrors.
//
// Every host adapter call that changes the tree is recorded as an Op that
// names nodes by numeric ID. Ops are batched into frames and sent over a
// WebSocket; the receiver replays them against its own adapter.
//
// # Wire Format
//
// All messages are framed with a 4-byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (2 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// # Frame Types
//
//   - FrameOps (0x02): a batch of host mutations
//   - FrameError (0x05): a coded error, e.g. a rejected tree
//
// A batch larger than one frame is split; FlagFinal marks its last frame.
// FlagSnapshot marks a batch that builds a tree from scratch.
//
// # Encoding
//
//   - Varint: node IDs, sequence numbers and counts (protobuf-style)
//   - Length-prefixed: strings prefixed with their varint length
//
// An ops payload is:
//
//	[Seq: varint][Count: varint][Op]...
//
// and each op starts with its code byte:
//
//	CreateElement  [0x01][ID][NS][Tag]
//	CreateText     [0x02][ID][Text]
//	CreateComment  [0x03][ID][Text]
//	InsertBefore   [0x04][Parent][ID][Ref]   Ref 0 appends
//	RemoveChild    [0x05][Parent][ID]
//	AppendChild    [0x06][Parent][ID]
//	SetText        [0x07][ID][Text]
//	SetAttr        [0x08][ID][Name][Value]
//	RemoveAttr     [0x09][ID][Name]
//
// # Usage Example
//
//	frames, err := protocol.OpsFrames(seq, ops, 0)
//	for _, f := range frames {
//	    conn.WriteMessage(websocket.BinaryMessage, f.Encode())
//	}
//
//	// receiver
//	f, _ := protocol.DecodeFrame(msg)
//	batch, err := protocol.DecodeOps(f.Payload)
package protocol
