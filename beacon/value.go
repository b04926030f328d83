package beacon

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// Format selects how the 4-byte value field of a payload is interpreted.
type Format int

const (
	FormatUint32 Format = iota
	FormatFloat32
)

func (f Format) String() string {
	switch f {
	case FormatUint32:
		return "uint32"
	case FormatFloat32:
		return "float32"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// ParseFormat is the inverse of Format.String.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "uint32":
		return FormatUint32, nil
	case "float32":
		return FormatFloat32, nil
	default:
		return 0, errors.Errorf("unknown value format %q", s)
	}
}

// Value is a reported value as it travels over the air: 32 bits plus the
// format needed to read them back.
type Value struct {
	Format Format
	bits   uint32
}

func Uint32Value(v uint32) Value {
	return Value{Format: FormatUint32, bits: v}
}

func Float32Value(v float32) Value {
	return Value{Format: FormatFloat32, bits: math.Float32bits(v)}
}

func (v Value) Bits() uint32 {
	return v.bits
}

func (v Value) Uint32() uint32 {
	return v.bits
}

func (v Value) Float32() float32 {
	return math.Float32frombits(v.bits)
}

// Float64 returns the value as a float regardless of format, for logging and metrics.
func (v Value) Float64() float64 {
	if v.Format == FormatFloat32 {
		return float64(v.Float32())
	}
	return float64(v.bits)
}

func (v Value) String() string {
	if v.Format == FormatFloat32 {
		return fmt.Sprintf("%g", v.Float32())
	}
	return fmt.Sprint(v.bits)
}
