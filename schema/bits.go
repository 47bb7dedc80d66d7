package schema

import (
	"reflect"

	"github.com/wippyai/structwire/errors"
	"github.com/wippyai/structwire/wire"
)

// Bits marks a struct as a bitfield. Embed it tagged with the raw unsigned
// token and tag each sub-field with its bit index or indices:
//
//	type Status struct {
//		schema.Bits `wire:"u8"`
//		Ready bool    `bit:"0"`
//		Mode  [3]bool `bit:"1,2,3"`
//	}
//
// Multi-bit fields are gathered in declared index order, not ascending bit
// order, so `bit:"3,1"` yields [bit3, bit1].
type Bits struct{}

var bitsType = reflect.TypeOf(Bits{})

// BitEntry maps one named sub-field onto bit positions of the raw integer.
type BitEntry struct {
	Name    string
	Indices []int
	// Slot is the Go struct field index, or the entry position for built
	// schemas.
	Slot int
	// Multi is set when the sub-field is a boolean list, even of length 1.
	Multi bool
}

// BitMap overlays named boolean sub-fields onto one raw integer.
type BitMap struct {
	Entries []BitEntry
	Raw     wire.Token
}

// Width is the number of addressable bits.
func (m *BitMap) Width() int {
	return m.Raw.Size * 8
}

// Entry finds a sub-field by name.
func (m *BitMap) Entry(name string) (*BitEntry, bool) {
	for i := range m.Entries {
		if m.Entries[i].Name == name {
			return &m.Entries[i], true
		}
	}
	return nil, false
}

// Validate checks the raw token and that every index is unique and within
// [0, Width).
func (m *BitMap) Validate(path []string) error {
	if !m.Raw.IsUnsigned() {
		return errors.New(errors.PhaseSchema, errors.KindUnsupported).
			Path(path...).
			WireType(m.Raw.Name()).
			Detail("bitfield raw value must be an unsigned integer token").
			Build()
	}

	width := m.Width()
	owners := make(map[int]string, width)
	names := make(map[string]struct{}, len(m.Entries))
	for _, e := range m.Entries {
		entryPath := join(path, e.Name)
		if _, dup := names[e.Name]; dup {
			return errors.InvalidData(errors.PhaseSchema, entryPath, "duplicate bit field name")
		}
		names[e.Name] = struct{}{}

		if len(e.Indices) == 0 {
			return errors.New(errors.PhaseSchema, errors.KindMissingWireInfo).
				Path(entryPath...).
				Detail("bit field declares no indices").
				Build()
		}
		if !e.Multi && len(e.Indices) != 1 {
			return errors.ListMismatch(entryPath, "bool", len(e.Indices), "single flag mapped to several bits")
		}
		for _, bit := range e.Indices {
			if bit < 0 || bit >= width {
				return errors.BitIndexRange(entryPath, bit, width)
			}
			if owner, taken := owners[bit]; taken {
				return errors.OverlappingBitIndex(entryPath, bit, owner)
			}
			owners[bit] = e.Name
		}
	}
	return nil
}

// bitSchema wraps a validated map into a schema with the single raw field.
func bitSchema(name string, goType reflect.Type, m *BitMap, rawIndex int, opaque []Field) *Schema {
	fields := make([]Field, 0, 1+len(opaque))
	fields = append(fields, Field{
		Name:  "raw",
		Kind:  KindScalar,
		Token: m.Raw,
		Count: 1,
		Index: rawIndex,
	})
	fields = append(fields, opaque...)
	return &Schema{
		Name:   name,
		GoType: goType,
		Fields: fields,
		Bits:   m,
	}
}
