package wire

import (
	"bytes"
	"math"
	"reflect"

	"github.com/wippyai/structwire/errors"
)

// Value is one raw wire value. Numeric tokens use Bits (two's complement for
// signed, IEEE 754 bits for floats); sized tokens use Bytes.
type Value struct {
	Bytes []byte
	Bits  uint64
}

// Lift converts a raw value into the canonical Go value for the token:
// uint8..uint64, int8..int64, float32, float64, []byte or string.
// Strings have trailing NUL padding removed.
func Lift(t Token, v Value) any {
	switch t.Code {
	case CodeU8:
		return uint8(v.Bits)
	case CodeU16:
		return uint16(v.Bits)
	case CodeU32:
		return uint32(v.Bits)
	case CodeU64:
		return v.Bits
	case CodeI8:
		return int8(v.Bits)
	case CodeI16:
		return int16(v.Bits)
	case CodeI32:
		return int32(v.Bits)
	case CodeI64:
		return int64(v.Bits)
	case CodeF32:
		return math.Float32frombits(uint32(v.Bits))
	case CodeF64:
		return math.Float64frombits(v.Bits)
	case CodeBytes:
		out := make([]byte, len(v.Bytes))
		copy(out, v.Bytes)
		return out
	case CodeString:
		return string(bytes.TrimRight(v.Bytes, "\x00"))
	default:
		return nil
	}
}

// Lower converts a Go value into a raw value for the token, checking that it
// fits the token's numeric range. Any Go integer or float kind is accepted for
// numeric tokens (floats only when integral for integer tokens); named types
// are handled through their underlying kind.
func Lower(t Token, x any) (Value, error) {
	switch {
	case t.IsUnsigned():
		return lowerUnsigned(t, x)
	case t.IsSigned():
		return lowerSigned(t, x)
	case t.IsFloat():
		return lowerFloat(t, x)
	case t.Code == CodeBytes || t.Code == CodeString:
		return lowerSized(t, x)
	default:
		return Value{}, errors.Unsupported(errors.PhaseEncode, "wire token "+t.String())
	}
}

func lowerUnsigned(t Token, x any) (Value, error) {
	n, ok := classify(x)
	if !ok || !n.integral {
		return Value{}, errors.TypeMismatch(errors.PhaseEncode, nil, TypeName(x), t.Name())
	}
	if n.negative || n.overflow {
		return Value{}, errors.ValueRange(nil, x, t.Name())
	}
	if t.Size < 8 && n.u > uint64(1)<<(8*t.Size)-1 {
		return Value{}, errors.ValueRange(nil, x, t.Name())
	}
	return Value{Bits: n.u}, nil
}

func lowerSigned(t Token, x any) (Value, error) {
	n, ok := classify(x)
	if !ok || !n.integral {
		return Value{}, errors.TypeMismatch(errors.PhaseEncode, nil, TypeName(x), t.Name())
	}
	if n.overflow || (!n.negative && n.u > math.MaxInt64) {
		return Value{}, errors.ValueRange(nil, x, t.Name())
	}
	i := n.i
	if !n.negative {
		i = int64(n.u)
	}
	bits := uint(8 * t.Size)
	if bits < 64 {
		lo, hi := -(int64(1) << (bits - 1)), int64(1)<<(bits-1)-1
		if i < lo || i > hi {
			return Value{}, errors.ValueRange(nil, x, t.Name())
		}
	}
	return Value{Bits: uint64(i) & mask(t.Size)}, nil
}

func lowerFloat(t Token, x any) (Value, error) {
	n, ok := classify(x)
	if !ok {
		return Value{}, errors.TypeMismatch(errors.PhaseEncode, nil, TypeName(x), t.Name())
	}
	f := n.f
	if t.Code == CodeF64 {
		return Value{Bits: math.Float64bits(f)}, nil
	}
	if !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) > math.MaxFloat32 {
		return Value{}, errors.ValueRange(nil, x, t.Name())
	}
	return Value{Bits: uint64(math.Float32bits(float32(f)))}, nil
}

func lowerSized(t Token, x any) (Value, error) {
	var raw []byte
	switch v := x.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case []any:
		raw = make([]byte, len(v))
		for i, e := range v {
			n, ok := classify(e)
			if !ok || !n.integral || n.negative || n.overflow || n.u > math.MaxUint8 {
				return Value{}, errors.TypeMismatch(errors.PhaseEncode, nil, TypeName(e), "byte")
			}
			raw[i] = byte(n.u)
		}
	default:
		rv := reflect.ValueOf(x)
		switch {
		case rv.Kind() == reflect.String:
			raw = []byte(rv.String())
		case (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Type().Elem().Kind() == reflect.Uint8:
			raw = make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(raw), rv)
		default:
			return Value{}, errors.TypeMismatch(errors.PhaseEncode, nil, TypeName(x), t.Name())
		}
	}
	if len(raw) > t.Size {
		return Value{}, errors.New(errors.PhaseEncode, errors.KindValueRange).
			WireType(t.Name()).
			Value(len(raw)).
			Detail("%d bytes do not fit %s", len(raw), t.Name()).
			Build()
	}
	out := make([]byte, t.Size)
	copy(out, raw)
	return Value{Bytes: out}, nil
}

type number struct {
	i        int64
	u        uint64
	f        float64
	negative bool
	integral bool
	overflow bool // integral float outside the 64-bit integer range
}

// classify handles JSON/YAML decoded numbers (float64, int) and every Go
// numeric kind, including named types.
func classify(x any) (number, bool) {
	switch v := x.(type) {
	case uint8:
		return unsignedNumber(uint64(v)), true
	case uint16:
		return unsignedNumber(uint64(v)), true
	case uint32:
		return unsignedNumber(uint64(v)), true
	case uint64:
		return unsignedNumber(v), true
	case uint:
		return unsignedNumber(uint64(v)), true
	case int8:
		return signedNumber(int64(v)), true
	case int16:
		return signedNumber(int64(v)), true
	case int32:
		return signedNumber(int64(v)), true
	case int64:
		return signedNumber(v), true
	case int:
		return signedNumber(int64(v)), true
	case float32:
		return floatNumber(float64(v)), true
	case float64:
		return floatNumber(v), true
	case nil:
		return number{}, false
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint, reflect.Uintptr:
		return unsignedNumber(rv.Uint()), true
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		return signedNumber(rv.Int()), true
	case reflect.Float32, reflect.Float64:
		return floatNumber(rv.Float()), true
	}
	return number{}, false
}

func unsignedNumber(u uint64) number {
	return number{u: u, f: float64(u), integral: true}
}

func signedNumber(i int64) number {
	if i < 0 {
		return number{i: i, f: float64(i), negative: true, integral: true}
	}
	return number{u: uint64(i), f: float64(i), integral: true}
}

func floatNumber(f float64) number {
	n := number{f: f}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return n
	}
	n.integral = true
	switch {
	case f < math.MinInt64:
		n.negative, n.overflow = true, true
	case f < 0:
		n.i, n.negative = int64(f), true
	case f >= 1<<64:
		n.overflow = true
	default:
		n.u = uint64(f)
	}
	return n
}

func mask(size int) uint64 {
	if size >= 8 {
		return math.MaxUint64
	}
	return uint64(1)<<(8*size) - 1
}

// TypeName returns "nil" for nil values, avoiding reflect.TypeOf(nil) panic.
func TypeName(value any) string {
	if value == nil {
		return "nil"
	}
	return reflect.TypeOf(value).String()
}
