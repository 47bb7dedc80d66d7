package codec

import (
	"reflect"

	"github.com/wippyai/structwire/errors"
	"github.com/wippyai/structwire/schema"
	"github.com/wippyai/structwire/wire"
)

// slots is the storage view the traversal reads from and writes into. The
// element index i is -1 for single values. Writers never fail: shapes are
// validated when the schema is built, and readers report anything a caller
// could have put there by hand.
type slots interface {
	load(f *schema.Field, i int) (any, error)
	store(f *schema.Field, i int, v wire.Value)
	loadNested(f *schema.Field, i int) (slots, error)
	storeNested(f *schema.Field, i int) slots
	loadBits(e *schema.BitEntry) ([]bool, error)
	storeBits(e *schema.BitEntry, bits []bool)
}

// structSlots stores into an addressable Go struct value.
type structSlots struct {
	v reflect.Value
}

func (s structSlots) element(f *schema.Field, i int) (reflect.Value, error) {
	fv := s.v.Field(f.Index)
	if i < 0 {
		return fv, nil
	}
	if fv.Kind() == reflect.Slice && fv.Len() != f.Count {
		return reflect.Value{}, errors.LengthMismatch(errors.PhaseEncode, []string{f.Name}, fv.Len(), f.Count)
	}
	return fv.Index(i), nil
}

func (s structSlots) sized(f *schema.Field, i int) reflect.Value {
	fv := s.v.Field(f.Index)
	if i < 0 {
		return fv
	}
	if fv.Kind() == reflect.Slice && fv.Len() != f.Count {
		fv.Set(reflect.MakeSlice(fv.Type(), f.Count, f.Count))
	}
	return fv.Index(i)
}

func (s structSlots) load(f *schema.Field, i int) (any, error) {
	fv, err := s.element(f, i)
	if err != nil {
		return nil, err
	}
	return goValue(fv), nil
}

func (s structSlots) store(f *schema.Field, i int, v wire.Value) {
	setLifted(s.sized(f, i), wire.Lift(f.Token, v))
}

func (s structSlots) loadNested(f *schema.Field, i int) (slots, error) {
	fv, err := s.element(f, i)
	if err != nil {
		return nil, err
	}
	return structSlots{v: fv}, nil
}

func (s structSlots) storeNested(f *schema.Field, i int) slots {
	return structSlots{v: s.sized(f, i)}
}

func (s structSlots) loadBits(e *schema.BitEntry) ([]bool, error) {
	fv := s.v.Field(e.Slot)
	if !e.Multi {
		return []bool{fv.Bool()}, nil
	}
	out := make([]bool, fv.Len())
	for k := range out {
		out[k] = fv.Index(k).Bool()
	}
	return out, nil
}

func (s structSlots) storeBits(e *schema.BitEntry, bits []bool) {
	fv := s.v.Field(e.Slot)
	if !e.Multi {
		fv.SetBool(bits[0])
		return
	}
	if fv.Kind() == reflect.Slice && fv.Len() != len(bits) {
		fv.Set(reflect.MakeSlice(fv.Type(), len(bits), len(bits)))
	}
	for k, b := range bits {
		fv.Index(k).SetBool(b)
	}
}

// goValue reads a scalar in a form wire.Lower accepts.
func goValue(fv reflect.Value) any {
	switch fv.Kind() {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint, reflect.Uintptr:
		return fv.Uint()
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		return fv.Int()
	case reflect.Float32, reflect.Float64:
		return fv.Float()
	case reflect.String:
		return fv.String()
	case reflect.Slice:
		return fv.Bytes()
	default:
		return fv.Interface()
	}
}

// setLifted assigns a canonical value produced by wire.Lift. The schema
// guarantees the destination kind can hold it.
func setLifted(fv reflect.Value, v any) {
	rv := reflect.ValueOf(v)
	switch fv.Kind() {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint, reflect.Uintptr:
		fv.SetUint(rv.Uint())
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		if rv.CanInt() {
			fv.SetInt(rv.Int())
		} else {
			fv.SetInt(int64(rv.Uint()))
		}
	case reflect.Float32, reflect.Float64:
		fv.SetFloat(rv.Float())
	case reflect.String:
		fv.SetString(string(rawBytes(v)))
	case reflect.Slice:
		fv.SetBytes(rawBytes(v))
	case reflect.Array:
		zero := reflect.Zero(fv.Type())
		fv.Set(zero)
		reflect.Copy(fv, reflect.ValueOf(rawBytes(v)))
	}
}

func rawBytes(v any) []byte {
	switch x := v.(type) {
	case []byte:
		return x
	case string:
		return []byte(x)
	}
	return nil
}

// recordSlots stores into a dynamic Record.
type recordSlots struct {
	r *Record
}

func (s recordSlots) load(f *schema.Field, i int) (any, error) {
	v := s.r.values[f.Name]
	if i < 0 {
		return v, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseEncode, []string{f.Name}, wire.TypeName(v), "[]any")
	}
	if len(list) != f.Count {
		return nil, errors.LengthMismatch(errors.PhaseEncode, []string{f.Name}, len(list), f.Count)
	}
	return list[i], nil
}

func (s recordSlots) store(f *schema.Field, i int, v wire.Value) {
	lifted := wire.Lift(f.Token, v)
	if i < 0 {
		s.r.values[f.Name] = lifted
		return
	}
	list, ok := s.r.values[f.Name].([]any)
	if !ok || len(list) != f.Count {
		list = make([]any, f.Count)
		s.r.values[f.Name] = list
	}
	list[i] = lifted
}

func (s recordSlots) loadNested(f *schema.Field, i int) (slots, error) {
	v := s.r.values[f.Name]
	var rec *Record
	if i < 0 {
		rec, _ = v.(*Record)
	} else {
		list, ok := v.([]*Record)
		if !ok {
			return nil, errors.TypeMismatch(errors.PhaseEncode, []string{f.Name}, wire.TypeName(v), "[]*Record")
		}
		if len(list) != f.Count {
			return nil, errors.LengthMismatch(errors.PhaseEncode, []string{f.Name}, len(list), f.Count)
		}
		rec = list[i]
	}
	if rec == nil || rec.schema != f.Nested {
		return nil, errors.TypeMismatch(errors.PhaseEncode, []string{f.Name}, wire.TypeName(rec), f.Nested.Name)
	}
	return recordSlots{r: rec}, nil
}

func (s recordSlots) storeNested(f *schema.Field, i int) slots {
	v := s.r.values[f.Name]
	if i < 0 {
		rec, ok := v.(*Record)
		if !ok || rec == nil || rec.schema != f.Nested {
			rec = NewRecord(f.Nested)
			s.r.values[f.Name] = rec
		}
		return recordSlots{r: rec}
	}

	list, ok := v.([]*Record)
	if !ok || len(list) != f.Count {
		list = make([]*Record, f.Count)
		s.r.values[f.Name] = list
	}
	if list[i] == nil || list[i].schema != f.Nested {
		list[i] = NewRecord(f.Nested)
	}
	return recordSlots{r: list[i]}
}

func (s recordSlots) loadBits(e *schema.BitEntry) ([]bool, error) {
	switch v := s.r.values[e.Name].(type) {
	case bool:
		return []bool{v}, nil
	case []bool:
		return v, nil
	default:
		return nil, errors.TypeMismatch(errors.PhaseEncode, []string{e.Name}, wire.TypeName(v), "bool")
	}
}

func (s recordSlots) storeBits(e *schema.BitEntry, bits []bool) {
	if !e.Multi {
		s.r.values[e.Name] = bits[0]
		return
	}
	s.r.values[e.Name] = append([]bool(nil), bits...)
}
