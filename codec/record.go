package codec

import (
	"encoding/binary"
	"reflect"
	"sort"

	"github.com/wippyai/structwire/errors"
	"github.com/wippyai/structwire/schema"
	"github.com/wippyai/structwire/wire"
)

// Record is a structure instance for schemas built at runtime. Values are
// held in canonical form (see wire.Lift): scalars as uint8..float64, []byte
// or string; scalar lists as []any; composites as *Record; composite lists
// as []*Record; bit sub-fields as bool or []bool. Opaque fields hold
// anything. A Record is not safe for concurrent mutation.
type Record struct {
	schema *schema.Schema
	values map[string]any
}

// NewRecord returns an instance with defaults applied and every list and
// nested record allocated.
func NewRecord(s *schema.Schema) *Record {
	r := &Record{schema: s, values: make(map[string]any, s.Slots())}
	if s.Bits != nil {
		for _, e := range s.Bits.Entries {
			if e.Multi {
				r.values[e.Name] = make([]bool, len(e.Indices))
			} else {
				r.values[e.Name] = false
			}
		}
	}

	for i := range s.Fields {
		f := &s.Fields[i]
		switch f.Kind {
		case schema.KindScalar:
			if s.Bits != nil {
				continue
			}
			def := f.Default
			if def == nil {
				def = wire.Lift(f.Token, zeroValue(f.Token))
			}
			if !f.Sequence {
				r.values[f.Name] = def
				continue
			}
			list := make([]any, f.Count)
			for n := range list {
				list[n] = def
			}
			r.values[f.Name] = list
		case schema.KindComposite:
			r.values[f.Name] = NewRecord(f.Nested)
		case schema.KindCompositeList:
			list := make([]*Record, f.Count)
			for n := range list {
				list[n] = NewRecord(f.Nested)
			}
			r.values[f.Name] = list
		case schema.KindOpaque:
			r.values[f.Name] = nil
		}
	}
	return r
}

func zeroValue(tok wire.Token) wire.Value {
	if tok.Code.Sized() {
		return wire.Value{Bytes: make([]byte, tok.Size)}
	}
	return wire.Value{}
}

func (r *Record) Schema() *schema.Schema {
	return r.schema
}

func (r *Record) ByteLength() int {
	return r.schema.ByteLength()
}

// Decode fills the record from data. On error the record is unchanged.
func (r *Record) Decode(data []byte, order binary.ByteOrder) error {
	return decode(r.schema, recordSlots{r: r}, data, order)
}

func (r *Record) Encode(order binary.ByteOrder) ([]byte, error) {
	return encode(r.schema, recordSlots{r: r}, order)
}

// Get returns the value of a field or bit sub-field. Lists are copies, so
// changes go through Set. Nested records are the parent's own.
func (r *Record) Get(name string) (any, error) {
	v, ok := r.values[name]
	if !ok {
		return nil, errors.FieldUnknown(errors.PhaseSchema, nil, name)
	}
	switch x := v.(type) {
	case *Record:
		return x, nil
	case []*Record:
		return append([]*Record(nil), x...), nil
	}
	return cloneValue(v), nil
}

// Field returns a nested composite record.
func (r *Record) Field(name string) (*Record, error) {
	v, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	rec, ok := v.(*Record)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseSchema, []string{name}, wire.TypeName(v), "*codec.Record")
	}
	return rec, nil
}

// Elem returns the i-th record of a composite list.
func (r *Record) Elem(name string, i int) (*Record, error) {
	v, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	list, ok := v.([]*Record)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseSchema, []string{name}, wire.TypeName(v), "[]*codec.Record")
	}
	if i < 0 || i >= len(list) {
		return nil, errors.OutOfBounds(errors.PhaseSchema, []string{name}, i, len(list))
	}
	return list[i], nil
}

// Set validates v against the field's declaration and stores it in
// canonical form. Scalars are range checked as Encode would. Nested records
// are copied, so the parent never shares them with the caller.
func (r *Record) Set(name string, v any) error {
	if r.schema.Bits != nil {
		if e, ok := r.schema.Bits.Entry(name); ok {
			return r.setBits(e, v)
		}
	}
	f, ok := r.schema.Lookup(name)
	if !ok || (r.schema.Bits != nil && f.Kind == schema.KindScalar) {
		return errors.FieldUnknown(errors.PhaseSchema, nil, name)
	}

	switch f.Kind {
	case schema.KindScalar:
		if !f.Sequence {
			c, err := canonical(f.Token, v)
			if err != nil {
				return errors.WithPath(err, name)
			}
			r.values[name] = c
			return nil
		}
		rv := reflect.ValueOf(v)
		if v == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
			return errors.TypeMismatch(errors.PhaseEncode, []string{name}, wire.TypeName(v), "list")
		}
		if rv.Len() != f.Count {
			return errors.LengthMismatch(errors.PhaseEncode, []string{name}, rv.Len(), f.Count)
		}
		list := make([]any, f.Count)
		for n := range list {
			c, err := canonical(f.Token, rv.Index(n).Interface())
			if err != nil {
				return errors.WithPath(err, elemName(f, n))
			}
			list[n] = c
		}
		r.values[name] = list
	case schema.KindComposite:
		rec, ok := v.(*Record)
		if !ok || rec == nil || rec.schema != f.Nested {
			return errors.TypeMismatch(errors.PhaseEncode, []string{name}, wire.TypeName(v), f.Nested.Name)
		}
		r.values[name] = rec.clone()
	case schema.KindCompositeList:
		list, ok := v.([]*Record)
		if !ok {
			return errors.TypeMismatch(errors.PhaseEncode, []string{name}, wire.TypeName(v), "[]*codec.Record")
		}
		if len(list) != f.Count {
			return errors.LengthMismatch(errors.PhaseEncode, []string{name}, len(list), f.Count)
		}
		for n, rec := range list {
			if rec == nil || rec.schema != f.Nested {
				return errors.TypeMismatch(errors.PhaseEncode, []string{elemName(f, n)}, wire.TypeName(rec), f.Nested.Name)
			}
		}
		owned := make([]*Record, len(list))
		for n, rec := range list {
			owned[n] = rec.clone()
		}
		r.values[name] = owned
	case schema.KindOpaque:
		r.values[name] = v
	}
	return nil
}

func (r *Record) setBits(e *schema.BitEntry, v any) error {
	switch x := v.(type) {
	case bool:
		if e.Multi {
			return errors.TypeMismatch(errors.PhaseEncode, []string{e.Name}, "bool", "[]bool")
		}
		r.values[e.Name] = x
	case []bool:
		if !e.Multi {
			return errors.TypeMismatch(errors.PhaseEncode, []string{e.Name}, "[]bool", "bool")
		}
		if len(x) != len(e.Indices) {
			return errors.LengthMismatch(errors.PhaseEncode, []string{e.Name}, len(x), len(e.Indices))
		}
		r.values[e.Name] = append([]bool(nil), x...)
	default:
		return errors.TypeMismatch(errors.PhaseEncode, []string{e.Name}, wire.TypeName(v), "bool")
	}
	return nil
}

// clone deep-copies r. The copy shares no nested record or list with r.
func (r *Record) clone() *Record {
	c := &Record{schema: r.schema, values: make(map[string]any, len(r.values))}
	for k, v := range r.values {
		c.values[k] = cloneValue(v)
	}
	return c
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case *Record:
		if x == nil {
			return x
		}
		return x.clone()
	case []*Record:
		out := make([]*Record, len(x))
		for n, rec := range x {
			if rec != nil {
				out[n] = rec.clone()
			}
		}
		return out
	case []any:
		out := make([]any, len(x))
		for n, e := range x {
			out[n] = cloneValue(e)
		}
		return out
	case []bool:
		return append([]bool(nil), x...)
	case []byte:
		return append([]byte(nil), x...)
	default:
		return v
	}
}

func canonical(tok wire.Token, v any) (any, error) {
	raw, err := wire.Lower(tok, v)
	if err != nil {
		return nil, err
	}
	return wire.Lift(tok, raw), nil
}

// Map returns a plain snapshot for printing or serialization: nested
// records become maps and lists become []any.
func (r *Record) Map() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		switch x := v.(type) {
		case *Record:
			out[k] = x.Map()
		case []*Record:
			list := make([]any, len(x))
			for n, rec := range x {
				list[n] = rec.Map()
			}
			out[k] = list
		case []any:
			out[k] = append([]any(nil), x...)
		case []bool:
			out[k] = append([]bool(nil), x...)
		default:
			out[k] = v
		}
	}
	return out
}

// Fill sets fields from a plain map such as one returned by Map or decoded
// from YAML or JSON. Nested maps fill the nested records in place and
// fields absent from m keep their values. Fill stops at the first error;
// fields already filled stay set.
func (r *Record) Fill(m map[string]any) error {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := r.fill(name, m[name]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Record) fill(name string, v any) error {
	if r.schema.Bits != nil {
		if e, ok := r.schema.Bits.Entry(name); ok {
			list, ok := v.([]any)
			if !ok {
				return r.setBits(e, v)
			}
			bits := make([]bool, len(list))
			for i, x := range list {
				b, ok := x.(bool)
				if !ok {
					return errors.TypeMismatch(errors.PhaseEncode, []string{e.Name}, wire.TypeName(x), "bool")
				}
				bits[i] = b
			}
			return r.setBits(e, bits)
		}
	}

	f, ok := r.schema.Lookup(name)
	if !ok {
		return errors.FieldUnknown(errors.PhaseSchema, nil, name)
	}
	switch f.Kind {
	case schema.KindComposite:
		sub, ok := v.(map[string]any)
		if !ok {
			return r.Set(name, v)
		}
		nested, err := r.Field(name)
		if err != nil {
			return err
		}
		return errors.WithPath(nested.Fill(sub), name)
	case schema.KindCompositeList:
		list, ok := v.([]any)
		if !ok {
			return r.Set(name, v)
		}
		if len(list) != f.Count {
			return errors.LengthMismatch(errors.PhaseEncode, []string{name}, len(list), f.Count)
		}
		recs, ok := r.values[name].([]*Record)
		if !ok || len(recs) != f.Count {
			return errors.TypeMismatch(errors.PhaseEncode, []string{name}, wire.TypeName(r.values[name]), "[]*codec.Record")
		}
		for i, x := range list {
			sub, ok := x.(map[string]any)
			if !ok {
				return errors.TypeMismatch(errors.PhaseEncode, []string{elemName(f, i)}, wire.TypeName(x), "map")
			}
			if err := recs[i].Fill(sub); err != nil {
				return errors.WithPath(err, elemName(f, i))
			}
		}
		return nil
	default:
		return r.Set(name, v)
	}
}
