package schema

import (
	"strconv"
	"strings"
	"unicode"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/structwire/wire"
)

// WIT describes the schema as a Component Model type definition. Structures
// become records and bitfields become flags, with one flag per bit for
// multi-bit sub-fields. Repeated fields become list<T>, fixed bytes become
// list<u8> and fixed strings become string. Opaque fields are omitted.
func (s *Schema) WIT(name string) *wit.TypeDef {
	if name == "" {
		name = s.Name
	}
	td := &wit.TypeDef{}
	if name != "" {
		n := kebab(name)
		td.Name = &n
	}

	if s.Bits != nil {
		flags := &wit.Flags{}
		for _, e := range s.Bits.Entries {
			if !e.Multi {
				flags.Flags = append(flags.Flags, wit.Flag{Name: kebab(e.Name)})
				continue
			}
			for i := range e.Indices {
				flags.Flags = append(flags.Flags, wit.Flag{Name: kebab(e.Name) + "-" + strconv.Itoa(i)})
			}
		}
		td.Kind = flags
		return td
	}

	rec := &wit.Record{}
	for i := range s.Fields {
		f := &s.Fields[i]
		var t wit.Type
		switch f.Kind {
		case KindScalar:
			t = witToken(f.Token)
		case KindComposite, KindCompositeList:
			nestedName := f.Nested.Name
			if nestedName == "" {
				nestedName = f.Name
			}
			t = f.Nested.WIT(nestedName)
		case KindOpaque:
			continue
		}
		if f.Sequence {
			t = &wit.TypeDef{Kind: &wit.List{Type: t}}
		}
		rec.Fields = append(rec.Fields, wit.Field{Name: kebab(f.Name), Type: t})
	}
	td.Kind = rec
	return td
}

func witToken(tok wire.Token) wit.Type {
	switch tok.Code {
	case wire.CodeU8:
		return wit.U8{}
	case wire.CodeU16:
		return wit.U16{}
	case wire.CodeU32:
		return wit.U32{}
	case wire.CodeU64:
		return wit.U64{}
	case wire.CodeI8:
		return wit.S8{}
	case wire.CodeI16:
		return wit.S16{}
	case wire.CodeI32:
		return wit.S32{}
	case wire.CodeI64:
		return wit.S64{}
	case wire.CodeF32:
		return wit.F32{}
	case wire.CodeF64:
		return wit.F64{}
	case wire.CodeString:
		return wit.String{}
	default:
		return &wit.TypeDef{Kind: &wit.List{Type: wit.U8{}}}
	}
}

// WITText renders the schema as WIT source, nested declarations first.
// Identifiers that collide with WIT keywords are escaped with '%'.
func (s *Schema) WITText(name string) string {
	var b strings.Builder
	writeWIT(&b, s.WIT(name), make(map[string]bool))
	return b.String()
}

func writeWIT(b *strings.Builder, td *wit.TypeDef, seen map[string]bool) {
	if td.Name == nil || seen[*td.Name] {
		return
	}
	seen[*td.Name] = true

	if rec, ok := td.Kind.(*wit.Record); ok {
		for _, f := range rec.Fields {
			if dep := namedDef(f.Type); dep != nil {
				writeWIT(b, dep, seen)
			}
		}
	}
	b.WriteString(td.Kind.WIT(nil, *td.Name))
	b.WriteString("\n\n")
}

// namedDef returns the named definition a field type refers to, looking
// through list<T>.
func namedDef(t wit.Type) *wit.TypeDef {
	td, ok := t.(*wit.TypeDef)
	if !ok {
		return nil
	}
	if td.Name != nil {
		return td
	}
	if l, ok := td.Kind.(*wit.List); ok {
		return namedDef(l.Type)
	}
	return nil
}

// kebab converts Go identifiers to WIT names: "SMXConfig" -> "smx-config",
// "lo_byte" -> "lo-byte".
func kebab(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if r == '_' || r == ' ' {
			if b.Len() > 0 {
				b.WriteByte('-')
			}
			continue
		}
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('-')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
