package atx

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// FrameSize is the number of bytes in a command frame.
const FrameSize = 4

// Code is the 32-bit command word decoded from a frame.
type Code uint32

// AckToken is written back by the actuator once a command is processed.
// It carries no success or failure distinction.
const AckToken Code = 0xEE

// Recognized command codes.
const (
	S1RS Code = 'S'<<24 | '1'<<16 | 'R'<<8 | 'S'
	S1PS Code = 'S'<<24 | '1'<<16 | 'P'<<8 | 'S'
	S1PL Code = 'S'<<24 | '1'<<16 | 'P'<<8 | 'L'
	S2RS Code = 'S'<<24 | '2'<<16 | 'R'<<8 | 'S'
	S2PS Code = 'S'<<24 | '2'<<16 | 'P'<<8 | 'S'
	S2PL Code = 'S'<<24 | '2'<<16 | 'P'<<8 | 'L'
	S3RS Code = 'S'<<24 | '3'<<16 | 'R'<<8 | 'S'
	S3PS Code = 'S'<<24 | '3'<<16 | 'P'<<8 | 'S'
	S3PL Code = 'S'<<24 | '3'<<16 | 'P'<<8 | 'L'
	S4RS Code = 'S'<<24 | '4'<<16 | 'R'<<8 | 'S'
	S4PS Code = 'S'<<24 | '4'<<16 | 'P'<<8 | 'S'
	S4PL Code = 'S'<<24 | '4'<<16 | 'P'<<8 | 'L'
)

// ErrInvalidTag indicates a tag is not exactly FrameSize bytes.
var ErrInvalidTag = errors.New("command tag must be 4 bytes")

// DecodeFrame decodes an already normalized frame. ok is false unless
// the frame has exactly FrameSize bytes.
func DecodeFrame(frame []byte) (code Code, ok bool) {
	if len(frame) != FrameSize {
		return 0, false
	}
	return Code(binary.BigEndian.Uint32(frame)), true
}

// Normalize uppercases ASCII letters in place.
func Normalize(p []byte) {
	for i, b := range p {
		if b >= 'a' && b <= 'z' {
			p[i] = b - 'a' + 'A'
		}
	}
}

// ParseTag converts a tag like "s1rs" into its Code.
func ParseTag(tag string) (Code, error) {
	frame := []byte(tag)
	Normalize(frame)
	code, ok := DecodeFrame(frame)
	if !ok {
		return 0, fmt.Errorf("%q: %w", tag, ErrInvalidTag)
	}
	return code, nil
}

// CodeOf builds the code for an action on a target.
func CodeOf(target Target, kind Kind) Code {
	suffix := kind.suffix()
	return Code('S')<<24 | Code('0'+byte(target))<<16 | Code(suffix[0])<<8 | Code(suffix[1])
}

// Bytes encodes the code as a frame.
func (c Code) Bytes() []byte {
	b := make([]byte, FrameSize)
	binary.BigEndian.PutUint32(b, uint32(c))
	return b
}

// String returns the tag when printable, otherwise the hex value.
func (c Code) String() string {
	b := c.Bytes()
	for _, ch := range b {
		if ch < 0x20 || ch > 0x7e {
			return fmt.Sprintf("0x%08x", uint32(c))
		}
	}
	return string(b)
}
