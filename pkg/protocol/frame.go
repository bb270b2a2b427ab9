package protocol

import (
	"fmt"
	"io"

	"github.com/vango-dev/ripple/internal/errors"
)

// Frame constants.
const (
	// FrameHeaderSize is the size of the frame header in bytes.
	FrameHeaderSize = 5

	// MaxPayloadSize is the largest payload a frame may carry (16MB).
	MaxPayloadSize = 16 * 1024 * 1024
)

// FrameType identifies the type of frame.
type FrameType uint8

const (
	FrameInit    FrameType = 0x00 // Server → Client current tree
	FrameOps     FrameType = 0x02 // Server → Client host operations
	FrameControl FrameType = 0x03 // Control messages (ping, close)
)

// String returns the string representation of the frame type.
func (ft FrameType) String() string {
	switch ft {
	case FrameInit:
		return "Init"
	case FrameOps:
		return "Ops"
	case FrameControl:
		return "Control"
	default:
		return "Unknown"
	}
}

// Frame is a protocol frame.
//
// Wire format (5 bytes header + variable payload):
//
//	┌─────────────┬───────────────────────────────┐
//	│ Frame Type  │ Payload Length                │
//	│ (1 byte)    │ (4 bytes, big-endian)         │
//	└─────────────┴───────────────────────────────┘
//	│  Payload (variable length)                  │
//	└─────────────────────────────────────────────┘
type Frame struct {
	Type    FrameType
	Payload []byte
}

// NewFrame creates a frame with the given type and payload.
func NewFrame(ft FrameType, payload []byte) *Frame {
	return &Frame{Type: ft, Payload: payload}
}

// Encode encodes the frame to bytes including the header. It fails with
// E303 when the payload exceeds MaxPayloadSize.
func (f *Frame) Encode() ([]byte, error) {
	length := len(f.Payload)
	if length > MaxPayloadSize {
		return nil, tooLarge(length)
	}
	buf := make([]byte, FrameHeaderSize+length)
	buf[0] = byte(f.Type)
	buf[1] = byte(length >> 24)
	buf[2] = byte(length >> 16)
	buf[3] = byte(length >> 8)
	buf[4] = byte(length)
	copy(buf[FrameHeaderSize:], f.Payload)
	return buf, nil
}

// DecodeFrame decodes a frame from bytes. The input must contain the
// header and the full payload.
func DecodeFrame(data []byte) (*Frame, error) {
	if len(data) < FrameHeaderSize {
		return nil, truncated(io.ErrUnexpectedEOF)
	}

	ft := FrameType(data[0])
	length := int(data[1])<<24 | int(data[2])<<16 | int(data[3])<<8 | int(data[4])
	if length > MaxPayloadSize {
		return nil, tooLarge(length)
	}
	if len(data) < FrameHeaderSize+length {
		return nil, truncated(io.ErrUnexpectedEOF)
	}

	payload := make([]byte, length)
	copy(payload, data[FrameHeaderSize:FrameHeaderSize+length])
	return &Frame{Type: ft, Payload: payload}, nil
}

// ReadFrame reads a complete frame from r.
func ReadFrame(r io.Reader) (*Frame, error) {
	header := make([]byte, FrameHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	ft := FrameType(header[0])
	length := int(header[1])<<24 | int(header[2])<<16 | int(header[3])<<8 | int(header[4])
	if length > MaxPayloadSize {
		return nil, tooLarge(length)
	}

	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, truncated(err)
		}
	}
	return &Frame{Type: ft, Payload: payload}, nil
}

// WriteFrame writes a complete frame to w.
func WriteFrame(w io.Writer, f *Frame) error {
	data, err := f.Encode()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func truncated(err error) error {
	return errors.New(errors.ErrFrameTruncated).Wrap(err)
}

func tooLarge(n int) error {
	return errors.New(errors.ErrFrameTooLarge).WithDetail(fmt.Sprintf("%d bytes", n))
}
