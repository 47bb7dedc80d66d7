package wire

import (
	"encoding/binary"

	"github.com/wippyai/structwire/errors"
)

// Order returns order, or big-endian when order is nil.
func Order(order binary.ByteOrder) binary.ByteOrder {
	if order == nil {
		return binary.BigEndian
	}
	return order
}

// Unpack splits data into one raw value per token of f. The buffer length
// must equal f.ByteLength exactly. Sized values are copied out of data.
func Unpack(f Format, order binary.ByteOrder, data []byte) ([]Value, error) {
	return UnpackInto(make([]Value, 0, f.values), f, order, data)
}

// UnpackInto is Unpack appending to dst.
func UnpackInto(dst []Value, f Format, order binary.ByteOrder, data []byte) ([]Value, error) {
	if len(data) != f.size {
		return dst, errors.LengthMismatch(errors.PhaseDecode, nil, len(data), f.size)
	}
	order = Order(order)

	off := 0
	for _, g := range f.groups {
		for n := 0; n < g.Count; n++ {
			b := data[off : off+g.Token.Size]
			var v Value
			switch g.Token.Code {
			case CodeU8, CodeI8:
				v.Bits = uint64(b[0])
			case CodeU16, CodeI16:
				v.Bits = uint64(order.Uint16(b))
			case CodeU32, CodeI32, CodeF32:
				v.Bits = uint64(order.Uint32(b))
			case CodeU64, CodeI64, CodeF64:
				v.Bits = order.Uint64(b)
			case CodeBytes, CodeString:
				v.Bytes = append([]byte(nil), b...)
			}
			dst = append(dst, v)
			off += g.Token.Size
		}
	}
	return dst, nil
}

// Pack writes one raw value per token of f. Values must already be lowered
// for their token; sized values longer than the token are a range error.
func Pack(f Format, order binary.ByteOrder, values []Value) ([]byte, error) {
	out := make([]byte, f.size)
	if err := PackInto(out, f, order, values); err != nil {
		return nil, err
	}
	return out, nil
}

// PackInto is Pack writing into dst, which must be exactly f.ByteLength long.
func PackInto(dst []byte, f Format, order binary.ByteOrder, values []Value) error {
	if len(values) != f.values {
		return errors.New(errors.PhaseEncode, errors.KindLengthMismatch).
			Detail("format %s packs %d values, got %d", f, f.values, len(values)).
			Build()
	}
	if len(dst) != f.size {
		return errors.LengthMismatch(errors.PhaseEncode, nil, len(dst), f.size)
	}
	order = Order(order)

	off, idx := 0, 0
	for _, g := range f.groups {
		for n := 0; n < g.Count; n++ {
			b := dst[off : off+g.Token.Size]
			v := values[idx]
			switch g.Token.Code {
			case CodeU8, CodeI8:
				b[0] = uint8(v.Bits)
			case CodeU16, CodeI16:
				order.PutUint16(b, uint16(v.Bits))
			case CodeU32, CodeI32, CodeF32:
				order.PutUint32(b, uint32(v.Bits))
			case CodeU64, CodeI64, CodeF64:
				order.PutUint64(b, v.Bits)
			case CodeBytes, CodeString:
				if len(v.Bytes) > g.Token.Size {
					return errors.ValueRange(nil, len(v.Bytes), g.Token.Name())
				}
				clear(b)
				copy(b, v.Bytes)
			}
			off += g.Token.Size
			idx++
		}
	}
	return nil
}

// ExpandBits returns width*8 booleans where bit i is (raw >> i) & 1, bit 0
// being the least significant.
func ExpandBits(raw uint64, width int) []bool {
	bits := make([]bool, width*8)
	for i := range bits {
		bits[i] = (raw>>uint(i))&1 == 1
	}
	return bits
}

// CompactBits is the inverse of ExpandBits: raw = Σ bit[i] << i.
func CompactBits(bits []bool) uint64 {
	var raw uint64
	for i, b := range bits {
		if b && i < 64 {
			raw |= 1 << uint(i)
		}
	}
	return raw
}
