package codec

import (
	"encoding/binary"
	"reflect"
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/structwire/errors"
	"github.com/wippyai/structwire/schema"
	"github.com/wippyai/structwire/wire"
)

// Decode fills v from data. v is a non-nil pointer to a struct with wire
// tags, or a *Record. A nil order selects big-endian. The buffer length must
// equal the schema's ByteLength; on any error v is left unchanged.
func Decode(data []byte, v any, order binary.ByteOrder) error {
	s, dst, err := bind(v, true)
	if err != nil {
		return err
	}
	return decode(s, dst, data, order)
}

// Encode packs v, a struct, a pointer to one, or a *Record.
func Encode(v any, order binary.ByteOrder) ([]byte, error) {
	s, src, err := bind(v, false)
	if err != nil {
		return nil, err
	}
	return encode(s, src, order)
}

// ByteLength returns the encoded size of v's type.
func ByteLength(v any) (int, error) {
	if r, ok := v.(*Record); ok && r != nil {
		return r.ByteLength(), nil
	}
	s, err := schema.Of(v)
	if err != nil {
		return 0, err
	}
	return s.ByteLength(), nil
}

func bind(v any, writable bool) (*schema.Schema, slots, error) {
	if r, ok := v.(*Record); ok {
		if r == nil {
			return nil, nil, errors.NilPointer(phaseOf(writable), nil, "*codec.Record")
		}
		return r.schema, recordSlots{r: r}, nil
	}
	if v == nil {
		return nil, nil, errors.NilPointer(phaseOf(writable), nil, "nil")
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil, errors.NilPointer(phaseOf(writable), nil, rv.Type().String())
		}
		rv = rv.Elem()
	} else if writable {
		return nil, nil, errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
			GoType(rv.Type().String()).
			Detail("decode target must be a pointer").
			Build()
	}
	if rv.Kind() != reflect.Struct {
		return nil, nil, errors.TypeMismatch(phaseOf(writable), nil, rv.Type().String(), "struct")
	}

	s, err := schema.Resolve(rv.Type())
	if err != nil {
		return nil, nil, err
	}
	return s, structSlots{v: rv}, nil
}

func phaseOf(writable bool) errors.Phase {
	if writable {
		return errors.PhaseDecode
	}
	return errors.PhaseEncode
}

func decode(s *schema.Schema, dst slots, data []byte, order binary.ByteOrder) error {
	f := s.Format()
	if len(data) != f.ByteLength() {
		return errors.LengthMismatch(errors.PhaseDecode, nil, len(data), f.ByteLength())
	}

	buf := getValues()
	defer putValues(buf)

	vals, err := wire.UnpackInto((*buf)[:0], f, order, data)
	*buf = vals
	if err != nil {
		return err
	}
	if len(vals) != s.ValueCount() {
		return errors.InsufficientData(nil, s.ValueCount(), len(vals))
	}

	if err := assign(s, dst, vals); err != nil {
		return err
	}

	if ce := Logger().Check(zap.DebugLevel, "decoded"); ce != nil {
		ce.Write(
			zap.String("type", s.Name),
			zap.Int("bytes", len(data)),
			zap.Bool("little_endian", wire.Order(order) == binary.LittleEndian),
		)
	}
	return nil
}

// assign walks the schema consuming already-unpacked values in order.
// Composite fields hand the next nested.ValueCount values to the nested
// schema.
func assign(s *schema.Schema, dst slots, vals []wire.Value) error {
	if s.Bits != nil {
		splitBits(s.Bits, vals[0].Bits, dst)
		return nil
	}

	pos := 0
	for i := range s.Fields {
		f := &s.Fields[i]
		switch f.Kind {
		case schema.KindScalar:
			if !f.Sequence {
				dst.store(f, -1, vals[pos])
				pos++
				continue
			}
			for n := 0; n < f.Count; n++ {
				dst.store(f, n, vals[pos])
				pos++
			}
		case schema.KindComposite, schema.KindCompositeList:
			width := f.Nested.ValueCount()
			for n := 0; n < f.Count; n++ {
				if pos+width > len(vals) {
					return errors.InsufficientData([]string{elemName(f, n)}, width, len(vals)-pos)
				}
				idx := n
				if !f.Sequence {
					idx = -1
				}
				if err := assign(f.Nested, dst.storeNested(f, idx), vals[pos:pos+width]); err != nil {
					return errors.WithPath(err, elemName(f, n))
				}
				pos += width
			}
		case schema.KindOpaque:
		}
	}
	return nil
}

func encode(s *schema.Schema, src slots, order binary.ByteOrder) ([]byte, error) {
	buf := getValues()
	defer putValues(buf)

	vals, err := flatten(s, src, (*buf)[:0])
	*buf = vals
	if err != nil {
		return nil, err
	}

	out, err := wire.Pack(s.Format(), order, vals)
	if err != nil {
		return nil, err
	}

	if ce := Logger().Check(zap.DebugLevel, "encoded"); ce != nil {
		ce.Write(
			zap.String("type", s.Name),
			zap.Int("bytes", len(out)),
			zap.Bool("little_endian", wire.Order(order) == binary.LittleEndian),
		)
	}
	return out, nil
}

// flatten appends every wire value of src in schema order, lowering each
// through its token with range checks.
func flatten(s *schema.Schema, src slots, out []wire.Value) ([]wire.Value, error) {
	if s.Bits != nil {
		raw, err := joinBits(s.Bits, src)
		if err != nil {
			return out, err
		}
		return append(out, wire.Value{Bits: raw}), nil
	}

	for i := range s.Fields {
		f := &s.Fields[i]
		switch f.Kind {
		case schema.KindScalar:
			if !f.Sequence {
				v, err := lower(src, f, -1)
				if err != nil {
					return out, err
				}
				out = append(out, v)
				continue
			}
			for n := 0; n < f.Count; n++ {
				v, err := lower(src, f, n)
				if err != nil {
					return out, err
				}
				out = append(out, v)
			}
		case schema.KindComposite, schema.KindCompositeList:
			for n := 0; n < f.Count; n++ {
				idx := n
				if !f.Sequence {
					idx = -1
				}
				child, err := src.loadNested(f, idx)
				if err != nil {
					return out, err
				}
				out, err = flatten(f.Nested, child, out)
				if err != nil {
					return out, errors.WithPath(err, elemName(f, n))
				}
			}
		case schema.KindOpaque:
		}
	}
	return out, nil
}

func lower(src slots, f *schema.Field, i int) (wire.Value, error) {
	x, err := src.load(f, i)
	if err != nil {
		return wire.Value{}, err
	}
	v, err := wire.Lower(f.Token, x)
	if err != nil {
		return wire.Value{}, errors.WithPath(err, elemName(f, i))
	}
	return v, nil
}

func elemName(f *schema.Field, i int) string {
	if !f.Sequence || i < 0 {
		return f.Name
	}
	return f.Name + "[" + strconv.Itoa(i) + "]"
}
