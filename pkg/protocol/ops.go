package protocol

import (
	"errors"
	"fmt"
)

// OpCode is the type of a host mutation.
type OpCode uint8

// Op codes, one per mutating host adapter call.
const (
	OpCreateElement OpCode = 0x01
	OpCreateText    OpCode = 0x02
	OpCreateComment OpCode = 0x03
	OpInsertBefore  OpCode = 0x04
	OpRemoveChild   OpCode = 0x05
	OpAppendChild   OpCode = 0x06
	OpSetText       OpCode = 0x07
	OpSetAttr       OpCode = 0x08
	OpRemoveAttr    OpCode = 0x09
)

// ErrUnknownOp is returned when a payload contains an op code this
// version cannot decode. Ops carry no length, so the rest of the batch
// cannot be skipped.
var ErrUnknownOp = errors.New("protocol: unknown op code")

// String returns the string representation of the op code.
func (c OpCode) String() string {
	switch c {
	case OpCreateElement:
		return "CreateElement"
	case OpCreateText:
		return "CreateText"
	case OpCreateComment:
		return "CreateComment"
	case OpInsertBefore:
		return "InsertBefore"
	case OpRemoveChild:
		return "RemoveChild"
	case OpAppendChild:
		return "AppendChild"
	case OpSetText:
		return "SetText"
	case OpSetAttr:
		return "SetAttr"
	case OpRemoveAttr:
		return "RemoveAttr"
	default:
		return fmt.Sprintf("Op(0x%02x)", uint8(c))
	}
}

// Op is one host mutation. Nodes are named by IDs assigned by the sender;
// 0 means no node. Only the fields used by Code are encoded.
type Op struct {
	Code   OpCode
	ID     uint64 // Created or affected node
	Parent uint64 // InsertBefore, RemoveChild, AppendChild
	Ref    uint64 // InsertBefore; 0 appends
	NS     string // CreateElement
	Tag    string // CreateElement
	Text   string // CreateText, CreateComment, SetText
	Name   string // SetAttr, RemoveAttr
	Value  string // SetAttr
}

// String renders the op for logs and CLI output.
func (op Op) String() string {
	switch op.Code {
	case OpCreateElement:
		if op.NS != "" {
			return fmt.Sprintf("%s %d <%s> ns=%s", op.Code, op.ID, op.Tag, op.NS)
		}
		return fmt.Sprintf("%s %d <%s>", op.Code, op.ID, op.Tag)
	case OpCreateText, OpCreateComment, OpSetText:
		return fmt.Sprintf("%s %d %q", op.Code, op.ID, op.Text)
	case OpInsertBefore:
		return fmt.Sprintf("%s %d into %d before %d", op.Code, op.ID, op.Parent, op.Ref)
	case OpRemoveChild, OpAppendChild:
		return fmt.Sprintf("%s %d parent %d", op.Code, op.ID, op.Parent)
	case OpSetAttr:
		return fmt.Sprintf("%s %d %s=%q", op.Code, op.ID, op.Name, op.Value)
	case OpRemoveAttr:
		return fmt.Sprintf("%s %d %s", op.Code, op.ID, op.Name)
	default:
		return op.Code.String()
	}
}

// OpsFrame is a sequenced batch of ops.
type OpsFrame struct {
	Seq uint64
	Ops []Op
}

// EncodeOps encodes a batch payload.
func EncodeOps(of *OpsFrame) []byte {
	e := NewEncoder()
	EncodeOpsTo(e, of)
	return e.Bytes()
}

// EncodeOpsTo encodes a batch payload using e.
func EncodeOpsTo(e *Encoder, of *OpsFrame) {
	e.WriteUvarint(of.Seq)
	e.WriteUvarint(uint64(len(of.Ops)))
	for i := range of.Ops {
		encodeOp(e, &of.Ops[i])
	}
}

func encodeOp(e *Encoder, op *Op) {
	e.WriteByte(byte(op.Code))
	switch op.Code {
	case OpCreateElement:
		e.WriteUvarint(op.ID)
		e.WriteString(op.NS)
		e.WriteString(op.Tag)
	case OpCreateText, OpCreateComment, OpSetText:
		e.WriteUvarint(op.ID)
		e.WriteString(op.Text)
	case OpInsertBefore:
		e.WriteUvarint(op.Parent)
		e.WriteUvarint(op.ID)
		e.WriteUvarint(op.Ref)
	case OpRemoveChild, OpAppendChild:
		e.WriteUvarint(op.Parent)
		e.WriteUvarint(op.ID)
	case OpSetAttr:
		e.WriteUvarint(op.ID)
		e.WriteString(op.Name)
		e.WriteString(op.Value)
	case OpRemoveAttr:
		e.WriteUvarint(op.ID)
		e.WriteString(op.Name)
	}
}

// DecodeOps decodes a batch payload.
func DecodeOps(data []byte) (*OpsFrame, error) {
	return DecodeOpsFrom(NewDecoder(data))
}

// DecodeOpsFrom decodes a batch payload from d.
func DecodeOpsFrom(d *Decoder) (*OpsFrame, error) {
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	ops := make([]Op, count)
	for i := range ops {
		if err := decodeOp(d, &ops[i]); err != nil {
			return nil, fmt.Errorf("op %d: %w", i, err)
		}
	}
	return &OpsFrame{Seq: seq, Ops: ops}, nil
}

func decodeOp(d *Decoder, op *Op) error {
	code, err := d.ReadByte()
	if err != nil {
		return err
	}
	op.Code = OpCode(code)

	switch op.Code {
	case OpCreateElement:
		if op.ID, err = d.ReadUvarint(); err != nil {
			return err
		}
		if op.NS, err = d.ReadString(); err != nil {
			return err
		}
		op.Tag, err = d.ReadString()

	case OpCreateText, OpCreateComment, OpSetText:
		if op.ID, err = d.ReadUvarint(); err != nil {
			return err
		}
		op.Text, err = d.ReadString()

	case OpInsertBefore:
		if op.Parent, err = d.ReadUvarint(); err != nil {
			return err
		}
		if op.ID, err = d.ReadUvarint(); err != nil {
			return err
		}
		op.Ref, err = d.ReadUvarint()

	case OpRemoveChild, OpAppendChild:
		if op.Parent, err = d.ReadUvarint(); err != nil {
			return err
		}
		op.ID, err = d.ReadUvarint()

	case OpSetAttr:
		if op.ID, err = d.ReadUvarint(); err != nil {
			return err
		}
		if op.Name, err = d.ReadString(); err != nil {
			return err
		}
		op.Value, err = d.ReadString()

	case OpRemoveAttr:
		if op.ID, err = d.ReadUvarint(); err != nil {
			return err
		}
		op.Name, err = d.ReadString()

	default:
		return fmt.Errorf("%w 0x%02x", ErrUnknownOp, code)
	}
	return err
}

// OpsFrames encodes ops as one or more FrameOps frames sharing seq, each
// payload fitting MaxPayloadSize. The last frame carries FlagFinal; every
// frame carries the extra flags. An empty batch still yields one frame.
func OpsFrames(seq uint64, ops []Op, flags FrameFlags) ([]*Frame, error) {
	// Room for the seq and a count no larger than len(ops).
	header := UvarintLen(seq) + UvarintLen(uint64(len(ops)))

	var (
		frames []*Frame
		body   = NewEncoder()
		one    = NewEncoder()
		start  int
	)
	flush := func(end int) {
		payload := NewEncoderWithCap(header + body.Len())
		payload.WriteUvarint(seq)
		payload.WriteUvarint(uint64(end - start))
		payload.WriteBytes(body.Bytes())
		frames = append(frames, NewFrame(FrameOps, flags, payload.Bytes()))
		body.Reset()
		start = end
	}

	for i := range ops {
		one.Reset()
		encodeOp(one, &ops[i])
		if header+one.Len() > MaxPayloadSize {
			return nil, fmt.Errorf("%w: op %d (%s) needs %d bytes", ErrFrameTooLarge, i, ops[i].Code, one.Len())
		}
		if header+body.Len()+one.Len() > MaxPayloadSize {
			flush(i)
		}
		body.WriteBytes(one.Bytes())
	}
	flush(len(ops))

	frames[len(frames)-1].Flags |= FlagFinal
	return frames, nil
}
