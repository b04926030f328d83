package beacon

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// Manufacturer-specific advertisement data:
// 16-bit company id, 8-bit packet tag, 32-bit value.
const (
	// CompanyID is the Bluetooth SIG id reserved for internal use/testing.
	CompanyID uint16 = 0xffff

	// PacketTag tells our packets apart from anything else using CompanyID.
	PacketTag byte = 0x55

	PayloadLen = 7

	headerLen = 3
)

// Payload is the exact byte sequence broadcast each cycle.
type Payload [PayloadLen]byte

var payloadHeader = []byte{byte(CompanyID & 0xff), byte(CompanyID >> 8), PacketTag}

// Encode lays out the advertisement bytes for v. The value field is always
// 4 bytes, little-endian, whatever the format.
func Encode(v Value) Payload {
	var p Payload
	copy(p[:headerLen], payloadHeader)
	binary.LittleEndian.PutUint32(p[headerLen:], v.bits)
	return p
}

// Decode reads back a payload produced by Encode. The format is not carried
// on the wire, so the caller has to know it.
func Decode(b []byte, format Format) (Value, error) {
	if len(b) != PayloadLen {
		return Value{}, errors.Errorf("payload is %d bytes, want %d", len(b), PayloadLen)
	}
	if !IsPayload(b) {
		return Value{}, errors.New("payload header mismatch")
	}
	return Value{Format: format, bits: binary.LittleEndian.Uint32(b[headerLen:])}, nil
}

// IsPayload reports whether b has the length and header of a beacon payload.
func IsPayload(b []byte) bool {
	return len(b) == PayloadLen && bytes.Equal(b[:headerLen], payloadHeader)
}

// CompanyID returns the little-endian company id from the first two bytes.
func (p Payload) CompanyID() uint16 {
	return binary.LittleEndian.Uint16(p[:2])
}

// Data returns what follows the company id, as radios taking the id
// separately expect it.
func (p Payload) Data() []byte {
	b := make([]byte, PayloadLen-2)
	copy(b, p[2:])
	return b
}

func (p Payload) String() string {
	return fmt.Sprintf("% X", p[:])
}
