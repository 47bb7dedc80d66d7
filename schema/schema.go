package schema

import (
	"reflect"
	"sync"

	"github.com/wippyai/structwire/wire"
)

// Kind classifies how a field participates in the wire layout.
type Kind uint8

const (
	KindScalar Kind = iota
	KindComposite
	KindCompositeList
	KindOpaque
)

var kindNames = [...]string{
	KindScalar:        "scalar",
	KindComposite:     "composite",
	KindCompositeList: "composite_list",
	KindOpaque:        "opaque",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// OnWire reports whether fields of this kind contribute to the layout.
func (k Kind) OnWire() bool {
	return k != KindOpaque
}

// Field describes one declared field. It is immutable once its Schema is built.
type Field struct {
	// Default is the canonical Go value (see wire.Lift) used by New and
	// NewRecord; nil means the token's zero value.
	Default any
	Nested  *Schema
	GoType  reflect.Type
	Name    string
	Token   wire.Token
	// Index is the storage slot: the Go struct field index for resolved
	// types, the declaration position for built schemas.
	Index int
	Count int
	Kind  Kind
	// Sequence is set when storage is a list, including lists of length 1.
	Sequence bool
}

// ByteSize is the packed size of the field including repetition.
func (f *Field) ByteSize() int {
	switch f.Kind {
	case KindScalar:
		return f.Token.Size * f.Count
	case KindComposite, KindCompositeList:
		return f.Nested.ByteLength() * f.Count
	default:
		return 0
	}
}

// ValueCount is the number of raw wire values the field consumes.
func (f *Field) ValueCount() int {
	switch f.Kind {
	case KindScalar:
		return f.Count
	case KindComposite, KindCompositeList:
		return f.Nested.ValueCount() * f.Count
	default:
		return 0
	}
}

// Schema is the ordered field list of one structured type. Field order is
// both the storage order and the wire order. A Schema is shared read-only by
// every instance of its type.
type Schema struct {
	GoType reflect.Type
	// Bits is set for bitfield types. Such a schema has exactly one Scalar
	// field holding the raw integer.
	Bits   *BitMap
	Name   string
	Fields []Field

	formatOnce sync.Once
	format     wire.Format
}

// Format returns the normalized wire format, computed once.
func (s *Schema) Format() wire.Format {
	s.formatOnce.Do(func() {
		s.format = compileFormat(s)
	})
	return s.format
}

func compileFormat(s *Schema) wire.Format {
	var groups []wire.Group
	for i := range s.Fields {
		f := &s.Fields[i]
		switch f.Kind {
		case KindScalar:
			groups = append(groups, wire.Group{Token: f.Token, Count: f.Count})
		case KindComposite, KindCompositeList:
			nested := f.Nested.Format().Groups()
			for n := 0; n < f.Count; n++ {
				groups = append(groups, nested...)
			}
		case KindOpaque:
		}
	}
	return wire.Normalize(groups...)
}

// ByteLength is the exact encoded size of one instance.
func (s *Schema) ByteLength() int {
	return s.Format().ByteLength()
}

// ValueCount is the number of raw values one instance packs.
func (s *Schema) ValueCount() int {
	return s.Format().ValueCount()
}

// IsBitfield reports whether the schema overlays named bits on a raw integer.
func (s *Schema) IsBitfield() bool {
	return s.Bits != nil
}

// Lookup finds a field by name.
func (s *Schema) Lookup(name string) (*Field, bool) {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i], true
		}
	}
	return nil, false
}

// Slots is the number of storage slots a dynamic record needs: one per
// field, or one per bit entry for bitfields.
func (s *Schema) Slots() int {
	if s.Bits != nil {
		return len(s.Bits.Entries)
	}
	return len(s.Fields)
}

func (s *Schema) String() string {
	name := s.Name
	if name == "" {
		name = "<anonymous>"
	}
	return name + " " + s.Format().String()
}

func join(path []string, elem string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, elem)
}
