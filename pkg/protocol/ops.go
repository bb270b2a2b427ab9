package protocol

import (
	stderrors "errors"
	"fmt"
	"io"

	"github.com/vango-dev/ripple/internal/errors"
)

// OpCode is the type of a host operation.
type OpCode uint8

// Host operation constants. Node, parent and anchor references are node
// IDs assigned by the server-side mirror; 0 means none.
const (
	OpCreateElement  OpCode = 0x01 // Create element Node with Tag
	OpCreateText     OpCode = 0x02 // Create text Node with Text
	OpCreateComment  OpCode = 0x03 // Create comment Node with Text
	OpSetElementText OpCode = 0x04 // Replace Node's children with Text
	OpSetText        OpCode = 0x05 // Update text Node
	OpSetProp        OpCode = 0x06 // Set property Key to Value
	OpRemoveProp     OpCode = 0x07 // Remove property Key
	OpInsert         OpCode = 0x08 // Insert Node into Parent before Anchor
	OpRemove         OpCode = 0x09 // Detach Node
)

// String returns the string representation of the op code.
func (op OpCode) String() string {
	switch op {
	case OpCreateElement:
		return "CreateElement"
	case OpCreateText:
		return "CreateText"
	case OpCreateComment:
		return "CreateComment"
	case OpSetElementText:
		return "SetElementText"
	case OpSetText:
		return "SetText"
	case OpSetProp:
		return "SetProp"
	case OpRemoveProp:
		return "RemoveProp"
	case OpInsert:
		return "Insert"
	case OpRemove:
		return "Remove"
	default:
		return "Unknown"
	}
}

// ValueKind tags an encoded property value.
type ValueKind uint8

const (
	ValueString ValueKind = 0x01
	ValueBool   ValueKind = 0x02
	ValueInt    ValueKind = 0x03
	ValueFloat  ValueKind = 0x04
)

// Value is a property value on the wire.
type Value struct {
	Kind  ValueKind
	Str   string
	Bool  bool
	Int   int64
	Float float64
}

// ValueOf converts a property value. Integers of any width become
// ValueInt, floats become ValueFloat, and anything else not a string or
// bool is sent in its fmt form.
func ValueOf(v any) Value {
	switch x := v.(type) {
	case string:
		return Value{Kind: ValueString, Str: x}
	case bool:
		return Value{Kind: ValueBool, Bool: x}
	case int:
		return Value{Kind: ValueInt, Int: int64(x)}
	case int8:
		return Value{Kind: ValueInt, Int: int64(x)}
	case int16:
		return Value{Kind: ValueInt, Int: int64(x)}
	case int32:
		return Value{Kind: ValueInt, Int: int64(x)}
	case int64:
		return Value{Kind: ValueInt, Int: x}
	case uint8:
		return Value{Kind: ValueInt, Int: int64(x)}
	case uint16:
		return Value{Kind: ValueInt, Int: int64(x)}
	case uint32:
		return Value{Kind: ValueInt, Int: int64(x)}
	case float32:
		return Value{Kind: ValueFloat, Float: float64(x)}
	case float64:
		return Value{Kind: ValueFloat, Float: x}
	case fmt.Stringer:
		return Value{Kind: ValueString, Str: x.String()}
	default:
		return Value{Kind: ValueString, Str: fmt.Sprint(v)}
	}
}

// Any returns the value as a Go value: string, bool, int64 or float64.
func (v Value) Any() any {
	switch v.Kind {
	case ValueBool:
		return v.Bool
	case ValueInt:
		return v.Int
	case ValueFloat:
		return v.Float
	default:
		return v.Str
	}
}

// Op is one host operation.
type Op struct {
	Code   OpCode
	Node   uint64
	Parent uint64 // For Insert
	Anchor uint64 // For Insert, 0 appends
	Tag    string // For CreateElement
	Text   string // For CreateText, CreateComment, SetText, SetElementText
	Key    string // For SetProp, RemoveProp
	Value  Value  // For SetProp
}

// OpsFrame is the batch of host operations produced by one flush.
type OpsFrame struct {
	Seq uint64
	Ops []Op
}

// EncodeOps encodes an ops frame payload.
func EncodeOps(f *OpsFrame) []byte {
	e := NewEncoder()
	EncodeOpsTo(e, f)
	return e.Bytes()
}

// EncodeOpsTo encodes an ops frame payload using the provided encoder.
func EncodeOpsTo(e *Encoder, f *OpsFrame) {
	e.WriteUvarint(f.Seq)
	e.WriteUvarint(uint64(len(f.Ops)))
	for i := range f.Ops {
		encodeOp(e, &f.Ops[i])
	}
}

func encodeOp(e *Encoder, op *Op) {
	e.WriteByte(byte(op.Code))
	e.WriteUvarint(op.Node)

	switch op.Code {
	case OpCreateElement:
		e.WriteString(op.Tag)

	case OpCreateText, OpCreateComment, OpSetElementText, OpSetText:
		e.WriteString(op.Text)

	case OpSetProp:
		e.WriteString(op.Key)
		encodeValue(e, op.Value)

	case OpRemoveProp:
		e.WriteString(op.Key)

	case OpInsert:
		e.WriteUvarint(op.Parent)
		e.WriteUvarint(op.Anchor)

	case OpRemove:
		// No additional data (Node is sufficient)
	}
}

func encodeValue(e *Encoder, v Value) {
	e.WriteByte(byte(v.Kind))
	switch v.Kind {
	case ValueBool:
		e.WriteBool(v.Bool)
	case ValueInt:
		e.WriteSvarint(v.Int)
	case ValueFloat:
		e.WriteFloat64(v.Float)
	default:
		e.WriteString(v.Str)
	}
}

// DecodeOps decodes an ops frame payload. Truncated input fails with
// E301, an unknown op code with E302 and an oversized op count with E303.
func DecodeOps(data []byte) (*OpsFrame, error) {
	d := NewDecoder(data)

	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, decodeError(err)
	}
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, decodeError(err)
	}

	ops := make([]Op, count)
	for i := range ops {
		if err := decodeOp(d, &ops[i]); err != nil {
			return nil, err
		}
	}
	return &OpsFrame{Seq: seq, Ops: ops}, nil
}

func decodeOp(d *Decoder, op *Op) error {
	code, err := d.ReadByte()
	if err != nil {
		return decodeError(err)
	}
	op.Code = OpCode(code)

	if op.Node, err = d.ReadUvarint(); err != nil {
		return decodeError(err)
	}

	switch op.Code {
	case OpCreateElement:
		op.Tag, err = d.ReadString()

	case OpCreateText, OpCreateComment, OpSetElementText, OpSetText:
		op.Text, err = d.ReadString()

	case OpSetProp:
		if op.Key, err = d.ReadString(); err != nil {
			return decodeError(err)
		}
		op.Value, err = decodeValue(d)

	case OpRemoveProp:
		op.Key, err = d.ReadString()

	case OpInsert:
		if op.Parent, err = d.ReadUvarint(); err != nil {
			return decodeError(err)
		}
		op.Anchor, err = d.ReadUvarint()

	case OpRemove:
		// No additional data

	default:
		// Ops carry no length prefix, so an unknown one cannot be skipped.
		return errors.New(errors.ErrUnknownOp).WithDetail(fmt.Sprintf("op 0x%02x", code))
	}

	if err != nil {
		return decodeError(err)
	}
	return nil
}

func decodeValue(d *Decoder) (Value, error) {
	kind, err := d.ReadByte()
	if err != nil {
		return Value{}, err
	}
	v := Value{Kind: ValueKind(kind)}
	switch v.Kind {
	case ValueBool:
		v.Bool, err = d.ReadBool()
	case ValueInt:
		v.Int, err = d.ReadSvarint()
	case ValueFloat:
		v.Float, err = d.ReadFloat64()
	case ValueString:
		v.Str, err = d.ReadString()
	default:
		return Value{}, errors.New(errors.ErrUnknownOp).WithDetail(fmt.Sprintf("value kind 0x%02x", kind))
	}
	return v, err
}

// decodeError maps a low-level decoding failure to a coded error.
func decodeError(err error) error {
	var re *errors.RippleError
	switch {
	case stderrors.As(err, &re):
		return err
	case stderrors.Is(err, ErrCollectionTooLarge), stderrors.Is(err, ErrAllocationTooLarge):
		return errors.New(errors.ErrFrameTooLarge).Wrap(err)
	case stderrors.Is(err, io.ErrUnexpectedEOF), stderrors.Is(err, ErrVarintOverflow):
		return truncated(err)
	default:
		return err
	}
}
