package schema

import (
	"github.com/wippyai/structwire/errors"
	"github.com/wippyai/structwire/wire"
)

// Builder declares a schema field by field. The first error is kept and
// returned by Build; later calls are ignored.
type Builder struct {
	err    error
	names  map[string]struct{}
	name   string
	fields []Field
}

// NewBuilder starts a schema with the given type name.
func NewBuilder(name string) *Builder {
	return &Builder{name: name, names: make(map[string]struct{})}
}

// Scalar appends a single scalar field.
func (b *Builder) Scalar(name string, tok wire.Token) *Builder {
	return b.scalar(name, tok, 1, false)
}

// List appends count scalars stored as a sequence.
func (b *Builder) List(name string, tok wire.Token, count int) *Builder {
	return b.scalar(name, tok, count, true)
}

func (b *Builder) scalar(name string, tok wire.Token, count int, seq bool) *Builder {
	if !b.declare(name) {
		return b
	}
	if !tok.Valid() {
		b.err = errors.New(errors.PhaseSchema, errors.KindUnsupported).
			Path(b.name, name).
			WireType(tok.String()).
			Detail("invalid wire token").
			Build()
		return b
	}
	if count < 1 {
		b.err = errors.ListMismatch([]string{b.name, name}, "list", count, "repeat count must be at least 1")
		return b
	}
	b.fields = append(b.fields, Field{
		Name:     name,
		Kind:     KindScalar,
		Token:    tok,
		Count:    count,
		Sequence: seq,
		Index:    len(b.fields),
	})
	return b
}

// Struct appends a nested composite.
func (b *Builder) Struct(name string, nested *Schema) *Builder {
	return b.composite(name, nested, 1, false)
}

// StructList appends count nested composites stored as a sequence.
func (b *Builder) StructList(name string, nested *Schema, count int) *Builder {
	return b.composite(name, nested, count, true)
}

func (b *Builder) composite(name string, nested *Schema, count int, seq bool) *Builder {
	if !b.declare(name) {
		return b
	}
	if nested == nil {
		b.err = errors.MissingWireInfo([]string{b.name, name}, "struct")
		return b
	}
	if count < 1 {
		b.err = errors.ListMismatch([]string{b.name, name}, nested.Name, count, "repeat count must be at least 1")
		return b
	}
	kind := KindComposite
	if seq {
		kind = KindCompositeList
	}
	b.fields = append(b.fields, Field{
		Name:     name,
		Kind:     kind,
		Nested:   nested,
		Count:    count,
		Sequence: seq,
		Index:    len(b.fields),
	})
	return b
}

// Opaque appends an auxiliary field that never reaches the wire.
func (b *Builder) Opaque(name string) *Builder {
	if !b.declare(name) {
		return b
	}
	b.fields = append(b.fields, Field{
		Name:  name,
		Kind:  KindOpaque,
		Index: len(b.fields),
	})
	return b
}

// Default sets the default of the most recently added scalar field. The
// value is range checked against the field's token.
func (b *Builder) Default(v any) *Builder {
	if b.err != nil {
		return b
	}
	if len(b.fields) == 0 || b.fields[len(b.fields)-1].Kind != KindScalar {
		b.err = errors.New(errors.PhaseSchema, errors.KindUnsupported).
			Path(b.name).
			Detail("default applies only to a preceding scalar field").
			Build()
		return b
	}
	f := &b.fields[len(b.fields)-1]
	def, err := canonicalDefault(f.Token, v)
	if err != nil {
		b.err = errors.WithPath(err, b.name, f.Name)
		return b
	}
	f.Default = def
	return b
}

func (b *Builder) declare(name string) bool {
	if b.err != nil {
		return false
	}
	if _, dup := b.names[name]; dup || name == "" {
		b.err = errors.InvalidData(errors.PhaseSchema, []string{b.name, name}, "field names must be unique and non-empty")
		return false
	}
	b.names[name] = struct{}{}
	return true
}

// Build returns the schema or the first declaration error.
func (b *Builder) Build() (*Schema, error) {
	if b.err != nil {
		return nil, b.err
	}
	s := &Schema{Name: b.name, Fields: append([]Field(nil), b.fields...)}
	logResolved(s)
	return s, nil
}

// MustBuild is Build that panics on error.
func (b *Builder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

// BitsBuilder declares a bitfield schema.
type BitsBuilder struct {
	name string
	m    BitMap
}

// NewBits starts a bitfield over a raw unsigned integer token.
func NewBits(name string, raw wire.Token) *BitsBuilder {
	return &BitsBuilder{name: name, m: BitMap{Raw: raw}}
}

// Flag maps a boolean sub-field to one bit.
func (b *BitsBuilder) Flag(name string, index int) *BitsBuilder {
	b.m.Entries = append(b.m.Entries, BitEntry{
		Name:    name,
		Indices: []int{index},
		Slot:    len(b.m.Entries),
	})
	return b
}

// Flags maps a boolean list sub-field to bits in the given order.
func (b *BitsBuilder) Flags(name string, indices ...int) *BitsBuilder {
	b.m.Entries = append(b.m.Entries, BitEntry{
		Name:    name,
		Indices: append([]int(nil), indices...),
		Slot:    len(b.m.Entries),
		Multi:   true,
	})
	return b
}

// Build validates the bit map.
func (b *BitsBuilder) Build() (*Schema, error) {
	m := b.m
	m.Entries = append([]BitEntry(nil), b.m.Entries...)
	if err := m.Validate([]string{b.name}); err != nil {
		return nil, err
	}
	s := bitSchema(b.name, nil, &m, -1, nil)
	logResolved(s)
	return s, nil
}

// MustBuild is Build that panics on error.
func (b *BitsBuilder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}
