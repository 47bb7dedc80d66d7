package schema

import (
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/wippyai/structwire/errors"
	"github.com/wippyai/structwire/wire"
)

var cache sync.Map // reflect.Type -> *Schema

// Resolve returns the schema of a struct type, reading its `wire` and `bit`
// tags on first use. Pointer types are dereferenced. Results are cached per
// type and shared by every caller.
func Resolve(t reflect.Type) (*Schema, error) {
	if t == nil {
		return nil, errors.NilPointer(errors.PhaseSchema, nil, "nil")
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if cached, ok := cache.Load(t); ok {
		return cached.(*Schema), nil
	}

	r := &resolver{active: make(map[reflect.Type]bool)}
	return r.resolve(t, nil)
}

// For resolves the schema of T.
func For[T any]() (*Schema, error) {
	return Resolve(reflect.TypeFor[T]())
}

// Of resolves the schema of v's dynamic type.
func Of(v any) (*Schema, error) {
	if v == nil {
		return nil, errors.NilPointer(errors.PhaseSchema, nil, "nil")
	}
	return Resolve(reflect.TypeOf(v))
}

type resolver struct {
	active map[reflect.Type]bool
}

func (r *resolver) resolve(t reflect.Type, path []string) (*Schema, error) {
	if cached, ok := cache.Load(t); ok {
		return cached.(*Schema), nil
	}
	if t.Kind() != reflect.Struct {
		return nil, errors.TypeMismatch(errors.PhaseSchema, path, t.String(), "struct")
	}
	if r.active[t] {
		return nil, errors.New(errors.PhaseSchema, errors.KindUnsupported).
			Path(path...).
			GoType(t.String()).
			Detail("recursive layout").
			Build()
	}
	r.active[t] = true
	defer delete(r.active, t)

	var s *Schema
	var err error
	if idx, tag, ok := findBitsMarker(t); ok {
		s, err = r.resolveBits(t, idx, tag, path)
	} else {
		s, err = r.resolveStruct(t, path)
	}
	if err != nil {
		return nil, err
	}

	actual, loaded := cache.LoadOrStore(t, s)
	if !loaded {
		logResolved(s)
	}
	return actual.(*Schema), nil
}

func (r *resolver) resolveStruct(t reflect.Type, path []string) (*Schema, error) {
	s := &Schema{Name: t.Name(), GoType: t}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		f, err := r.resolveField(sf, join(path, sf.Name))
		if err != nil {
			return nil, err
		}
		f.Index = i
		s.Fields = append(s.Fields, f)
	}
	return s, nil
}

func (r *resolver) resolveField(sf reflect.StructField, path []string) (Field, error) {
	opaque := Field{Name: sf.Name, Kind: KindOpaque, GoType: sf.Type}

	if _, ok := sf.Tag.Lookup("bit"); ok {
		return Field{}, errors.New(errors.PhaseSchema, errors.KindUnsupported).
			Path(path...).
			Detail("bit tag requires an embedded schema.Bits marker").
			Build()
	}

	tag, hasTag := sf.Tag.Lookup("wire")
	if !sf.IsExported() {
		if hasTag && tag != "-" {
			return Field{}, errors.New(errors.PhaseSchema, errors.KindUnsupported).
				Path(path...).
				Detail("unexported field cannot carry wire metadata").
				Build()
		}
		return opaque, nil
	}

	if !hasTag {
		switch {
		case declaresLayout(sf.Type, nil):
			return r.resolveComposite(sf, tagInfo{}, path)
		case sf.Type.Kind() == reflect.Array && declaresLayout(sf.Type.Elem(), nil):
			return r.resolveComposite(sf, tagInfo{}, path)
		case sf.Type.Kind() == reflect.Slice && declaresLayout(sf.Type.Elem(), nil):
			return Field{}, errors.ListMismatch(path, sf.Type.String(), 0, `slice of structures requires wire:"struct,count=N"`)
		}
		return opaque, nil
	}

	info, err := parseTag(tag, path)
	if err != nil {
		return Field{}, err
	}
	switch {
	case info.skip:
		return opaque, nil
	case info.composite:
		if info.hasDefault {
			return Field{}, errors.New(errors.PhaseSchema, errors.KindUnsupported).
				Path(path...).
				Detail("default applies only to scalar fields").
				Build()
		}
		return r.resolveComposite(sf, info, path)
	case info.hasToken:
		return resolveScalar(sf, info, path)
	default:
		return Field{}, errors.MissingWireInfo(path, sf.Type.String())
	}
}

func (r *resolver) resolveComposite(sf reflect.StructField, info tagInfo, path []string) (Field, error) {
	t := sf.Type
	elem, count, seq, err := storage(t, info, path)
	if err != nil {
		return Field{}, err
	}
	if elem.Kind() != reflect.Struct {
		return Field{}, errors.TypeMismatch(errors.PhaseSchema, path, elem.String(), "struct")
	}

	nested, err := r.resolve(elem, path)
	if err != nil {
		return Field{}, err
	}

	kind := KindComposite
	if seq {
		kind = KindCompositeList
	}
	return Field{
		Name:     sf.Name,
		Kind:     kind,
		Nested:   nested,
		Count:    count,
		Sequence: seq,
		GoType:   t,
	}, nil
}

func resolveScalar(sf reflect.StructField, info tagInfo, path []string) (Field, error) {
	t := sf.Type
	f := Field{Name: sf.Name, Kind: KindScalar, Token: info.token, GoType: t, Count: 1}

	if compatible(t, info.token) {
		if info.hasCount && info.count != 1 {
			return Field{}, errors.ListMismatch(path, t.String(), info.count, "repeat count requires array or slice storage")
		}
	} else {
		elem, count, seq, err := storage(t, info, path)
		if err != nil {
			return Field{}, err
		}
		if !seq || !compatible(elem, info.token) {
			return Field{}, errors.TypeMismatch(errors.PhaseSchema, path, elem.String(), info.token.Name())
		}
		f.Count, f.Sequence = count, true
	}

	if info.hasDefault {
		def, err := parseDefault(info.token, info.def)
		if err != nil {
			return Field{}, errors.WithPath(err, path...)
		}
		f.Default = def
	}
	return f, nil
}

// storage reports the element type and repeat count implied by a field's Go
// type. Arrays carry their own length; slices need an explicit count.
func storage(t reflect.Type, info tagInfo, path []string) (reflect.Type, int, bool, error) {
	switch t.Kind() {
	case reflect.Array:
		if info.hasCount && info.count != t.Len() {
			return nil, 0, false, errors.ListMismatch(path, t.String(), info.count, "count disagrees with array length")
		}
		if t.Len() < 1 {
			return nil, 0, false, errors.ListMismatch(path, t.String(), 0, "zero length array")
		}
		return t.Elem(), t.Len(), true, nil
	case reflect.Slice:
		if !info.hasCount {
			return nil, 0, false, errors.ListMismatch(path, t.String(), 0, "slice storage requires count=N")
		}
		return t.Elem(), info.count, true, nil
	default:
		if info.hasCount && info.count != 1 {
			return nil, 0, false, errors.ListMismatch(path, t.String(), info.count, "repeat count requires array or slice storage")
		}
		return t, 1, false, nil
	}
}

// compatible reports whether a Go type can hold every value of tok.
func compatible(t reflect.Type, tok wire.Token) bool {
	switch {
	case tok.IsInteger():
		bits := tok.Size * 8
		switch t.Kind() {
		case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint, reflect.Uintptr:
			return tok.IsUnsigned() && t.Bits() >= bits
		case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
			if tok.IsSigned() {
				return t.Bits() >= bits
			}
			return t.Bits() > bits
		}
		return false
	case tok.Code == wire.CodeF32:
		return t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64
	case tok.Code == wire.CodeF64:
		return t.Kind() == reflect.Float64
	case tok.Code.Sized():
		switch t.Kind() {
		case reflect.String:
			return true
		case reflect.Slice:
			return t.Elem().Kind() == reflect.Uint8
		case reflect.Array:
			return t.Elem().Kind() == reflect.Uint8 && t.Len() == tok.Size
		}
	}
	return false
}

// declaresLayout reports whether t is a struct carrying wire metadata,
// directly or through untagged nested structures.
func declaresLayout(t reflect.Type, seen map[reflect.Type]bool) bool {
	if t.Kind() != reflect.Struct {
		return false
	}
	if seen[t] {
		return false
	}
	if _, ok := cache.Load(t); ok {
		return true
	}
	if seen == nil {
		seen = make(map[reflect.Type]bool)
	}
	seen[t] = true

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous && sf.Type == bitsType {
			return true
		}
		if tag, ok := sf.Tag.Lookup("wire"); ok && tag != "-" {
			return true
		}
		ft := sf.Type
		if ft.Kind() == reflect.Array {
			ft = ft.Elem()
		}
		if declaresLayout(ft, seen) {
			return true
		}
	}
	return false
}

func findBitsMarker(t reflect.Type) (int, string, bool) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous && sf.Type == bitsType {
			return i, sf.Tag.Get("wire"), true
		}
	}
	return 0, "", false
}

func (r *resolver) resolveBits(t reflect.Type, marker int, tag string, path []string) (*Schema, error) {
	if tag == "" {
		return nil, errors.MissingWireInfo(join(path, "Bits"), t.String())
	}
	info, err := parseTag(tag, path)
	if err != nil {
		return nil, err
	}
	if !info.hasToken || info.hasCount || info.hasDefault {
		return nil, errors.New(errors.PhaseSchema, errors.KindUnsupported).
			Path(path...).
			GoType(t.String()).
			Detail("bitfield marker takes a single raw token").
			Build()
	}

	m := &BitMap{Raw: info.token}
	var opaque []Field
	for i := 0; i < t.NumField(); i++ {
		if i == marker {
			continue
		}
		sf := t.Field(i)
		fieldPath := join(path, sf.Name)

		bitTag, ok := sf.Tag.Lookup("bit")
		if !ok {
			if wt, has := sf.Tag.Lookup("wire"); has && wt != "-" {
				return nil, errors.New(errors.PhaseSchema, errors.KindUnsupported).
					Path(fieldPath...).
					Detail("bitfield types carry only bit sub-fields").
					Build()
			}
			opaque = append(opaque, Field{Name: sf.Name, Kind: KindOpaque, Index: i, GoType: sf.Type})
			continue
		}
		if !sf.IsExported() {
			return nil, errors.New(errors.PhaseSchema, errors.KindUnsupported).
				Path(fieldPath...).
				Detail("unexported field cannot carry a bit index").
				Build()
		}

		indices, err := parseBitIndices(bitTag, fieldPath)
		if err != nil {
			return nil, err
		}
		entry := BitEntry{Name: sf.Name, Indices: indices, Slot: i}
		switch sf.Type.Kind() {
		case reflect.Bool:
		case reflect.Array:
			if sf.Type.Elem().Kind() != reflect.Bool {
				return nil, errors.TypeMismatch(errors.PhaseSchema, fieldPath, sf.Type.String(), "[N]bool")
			}
			if sf.Type.Len() != len(indices) {
				return nil, errors.ListMismatch(fieldPath, sf.Type.String(), len(indices), "array length must equal the number of bit indices")
			}
			entry.Multi = true
		case reflect.Slice:
			if sf.Type.Elem().Kind() != reflect.Bool {
				return nil, errors.TypeMismatch(errors.PhaseSchema, fieldPath, sf.Type.String(), "[]bool")
			}
			entry.Multi = true
		default:
			return nil, errors.TypeMismatch(errors.PhaseSchema, fieldPath, sf.Type.String(), "bool")
		}
		m.Entries = append(m.Entries, entry)
	}

	if err := m.Validate(path); err != nil {
		return nil, err
	}
	return bitSchema(t.Name(), t, m, marker, opaque), nil
}

func parseBitIndices(tag string, path []string) ([]int, error) {
	parts := strings.Split(tag, ",")
	indices := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, errors.New(errors.PhaseSchema, errors.KindInvalidData).
				Path(path...).
				Value(tag).
				Detail("invalid bit index %q", p).
				Cause(err).
				Build()
		}
		indices = append(indices, n)
	}
	return indices, nil
}

type tagInfo struct {
	def        string
	token      wire.Token
	count      int
	hasToken   bool
	hasCount   bool
	hasDefault bool
	composite  bool
	skip       bool
}

// parseTag reads `wire:"<token|struct>[,count=N][,default=V]"`. default
// consumes the rest of the tag so string defaults may contain commas.
func parseTag(tag string, path []string) (tagInfo, error) {
	var info tagInfo
	if strings.TrimSpace(tag) == "-" {
		info.skip = true
		return info, nil
	}

	head, rest, _ := strings.Cut(tag, ",")
	switch head = strings.TrimSpace(head); head {
	case "":
	case "struct":
		info.composite = true
	default:
		tok, err := wire.ParseToken(head)
		if err != nil {
			return info, errors.New(errors.PhaseSchema, errors.KindUnsupported).
				Path(path...).
				Value(tag).
				Detail("invalid wire tag %q", tag).
				Cause(err).
				Build()
		}
		info.token, info.hasToken = tok, true
	}

	for rest != "" {
		rest = strings.TrimLeft(rest, " ")
		if def, ok := strings.CutPrefix(rest, "default="); ok {
			info.def, info.hasDefault = def, true
			break
		}

		var opt string
		opt, rest, _ = strings.Cut(rest, ",")
		key, val, _ := strings.Cut(strings.TrimSpace(opt), "=")
		switch key {
		case "count":
			n, err := strconv.Atoi(val)
			if err != nil || n < 1 {
				return info, errors.ListMismatch(path, "", n, "invalid count "+strconv.Quote(val))
			}
			info.count, info.hasCount = n, true
		default:
			return info, errors.New(errors.PhaseSchema, errors.KindUnsupported).
				Path(path...).
				Value(tag).
				Detail("unknown wire tag option %q", key).
				Build()
		}
	}
	return info, nil
}
