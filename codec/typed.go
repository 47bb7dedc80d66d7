package codec

import (
	"encoding/binary"
	"reflect"

	"github.com/wippyai/structwire/errors"
	"github.com/wippyai/structwire/schema"
)

// Codec encodes and decodes one struct type. It holds only the shared schema
// and is safe for concurrent use on distinct values.
type Codec[T any] struct {
	schema *schema.Schema
}

// For resolves T's schema. T must be a struct type.
func For[T any]() (*Codec[T], error) {
	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Struct {
		return nil, errors.TypeMismatch(errors.PhaseSchema, nil, t.String(), "struct")
	}
	s, err := schema.Resolve(t)
	if err != nil {
		return nil, err
	}
	return &Codec[T]{schema: s}, nil
}

// MustFor is For that panics on schema errors, which are configuration bugs.
func MustFor[T any]() *Codec[T] {
	c, err := For[T]()
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Codec[T]) Schema() *schema.Schema {
	return c.schema
}

func (c *Codec[T]) ByteLength() int {
	return c.schema.ByteLength()
}

// Decode fills dst from data; dst is unchanged on error.
func (c *Codec[T]) Decode(data []byte, dst *T, order binary.ByteOrder) error {
	if dst == nil {
		return errors.NilPointer(errors.PhaseDecode, nil, reflect.TypeFor[*T]().String())
	}
	return decode(c.schema, structSlots{v: reflect.ValueOf(dst).Elem()}, data, order)
}

func (c *Codec[T]) Encode(src *T, order binary.ByteOrder) ([]byte, error) {
	if src == nil {
		return nil, errors.NilPointer(errors.PhaseEncode, nil, reflect.TypeFor[*T]().String())
	}
	return encode(c.schema, structSlots{v: reflect.ValueOf(src).Elem()}, order)
}

// New returns a T with default= values applied and every slice sized to its
// declared count, ready to encode.
func (c *Codec[T]) New() T {
	var v T
	applyDefaults(c.schema, reflect.ValueOf(&v).Elem())
	return v
}

func applyDefaults(s *schema.Schema, v reflect.Value) {
	if s.Bits != nil {
		for _, e := range s.Bits.Entries {
			fv := v.Field(e.Slot)
			if fv.Kind() == reflect.Slice {
				fv.Set(reflect.MakeSlice(fv.Type(), len(e.Indices), len(e.Indices)))
			}
		}
		return
	}

	for i := range s.Fields {
		f := &s.Fields[i]
		fv := v.Field(f.Index)
		switch f.Kind {
		case schema.KindScalar:
			if !f.Sequence {
				if f.Default != nil {
					setLifted(fv, f.Default)
				}
				continue
			}
			if fv.Kind() == reflect.Slice {
				fv.Set(reflect.MakeSlice(fv.Type(), f.Count, f.Count))
			}
			if f.Default != nil {
				for n := 0; n < f.Count; n++ {
					setLifted(fv.Index(n), f.Default)
				}
			}
		case schema.KindComposite:
			applyDefaults(f.Nested, fv)
		case schema.KindCompositeList:
			if fv.Kind() == reflect.Slice {
				fv.Set(reflect.MakeSlice(fv.Type(), f.Count, f.Count))
			}
			for n := 0; n < f.Count; n++ {
				applyDefaults(f.Nested, fv.Index(n))
			}
		case schema.KindOpaque:
		}
	}
}
