package schema

import (
	"bytes"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/structwire/errors"
	"github.com/wippyai/structwire/wire"
)

// Definition is the document form of a set of schemas. JSON documents are
// accepted as well since they are valid YAML.
//
//	types:
//	  - name: Pair
//	    fields:
//	      - {name: lo, type: u8}
//	      - {name: hi, type: u8, default: 0xF0}
//	  - name: Status
//	    bits: u8
//	    flags:
//	      - {name: ready, bit: 0}
//	      - {name: mode, bits: [1, 2, 3]}
//	  - name: Frame
//	    fields:
//	      - {name: pairs, struct: Pair, count: 2}
//	      - {name: status, struct: Status}
//
// Types may only reference types declared before them.
type Definition struct {
	Types []TypeDefinition `yaml:"types" json:"types"`
}

// TypeDefinition declares either a structure (Fields) or a bitfield
// (Bits plus Flags).
type TypeDefinition struct {
	Name   string            `yaml:"name" json:"name"`
	Bits   string            `yaml:"bits,omitempty" json:"bits,omitempty"`
	Fields []FieldDefinition `yaml:"fields,omitempty" json:"fields,omitempty"`
	Flags  []FlagDefinition  `yaml:"flags,omitempty" json:"flags,omitempty"`
}

type FieldDefinition struct {
	Default any    `yaml:"default,omitempty" json:"default,omitempty"`
	Name    string `yaml:"name" json:"name"`
	Type    string `yaml:"type,omitempty" json:"type,omitempty"`
	Struct  string `yaml:"struct,omitempty" json:"struct,omitempty"`
	Count   int    `yaml:"count,omitempty" json:"count,omitempty"`
	// List forces sequence storage when Count is 1.
	List   bool `yaml:"list,omitempty" json:"list,omitempty"`
	Opaque bool `yaml:"opaque,omitempty" json:"opaque,omitempty"`
}

type FlagDefinition struct {
	Bit  *int   `yaml:"bit,omitempty" json:"bit,omitempty"`
	Name string `yaml:"name" json:"name"`
	Bits []int  `yaml:"bits,omitempty" json:"bits,omitempty"`
}

// Definitions holds the schemas built from a Definition, in declaration
// order.
type Definitions struct {
	schemas map[string]*Schema
	order   []string
}

// Lookup returns the schema declared under name.
func (d *Definitions) Lookup(name string) (*Schema, bool) {
	s, ok := d.schemas[name]
	return s, ok
}

// Names lists declared type names in order.
func (d *Definitions) Names() []string {
	return append([]string(nil), d.order...)
}

// Last returns the final declared type, conventionally the top-level record.
func (d *Definitions) Last() *Schema {
	if len(d.order) == 0 {
		return nil
	}
	return d.schemas[d.order[len(d.order)-1]]
}

// LoadDefinitionFile reads a YAML or JSON definition file.
func LoadDefinitionFile(path string) (*Definitions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ParseFailed("definition file "+path, err)
	}
	return ParseDefinition(data)
}

// LoadDefinition reads a YAML or JSON definition document.
func LoadDefinition(r io.Reader) (*Definitions, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.ParseFailed("definition", err)
	}
	return ParseDefinition(data)
}

// ParseDefinition decodes a document and builds every type it declares.
// Unknown keys are rejected.
func ParseDefinition(data []byte) (*Definitions, error) {
	var def Definition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil && err != io.EOF {
		return nil, errors.ParseFailed("definition", err)
	}
	return def.Build()
}

// Build turns the document into schemas.
func (def *Definition) Build() (*Definitions, error) {
	out := &Definitions{schemas: make(map[string]*Schema, len(def.Types))}
	for _, td := range def.Types {
		if td.Name == "" {
			return nil, errors.InvalidData(errors.PhaseSchema, nil, "type definition without a name")
		}
		if _, dup := out.schemas[td.Name]; dup {
			return nil, errors.InvalidData(errors.PhaseSchema, []string{td.Name}, "type declared twice")
		}

		var s *Schema
		var err error
		if td.Bits != "" {
			s, err = buildBits(td)
		} else {
			s, err = buildStruct(td, out)
		}
		if err != nil {
			return nil, err
		}
		out.schemas[td.Name] = s
		out.order = append(out.order, td.Name)
	}
	return out, nil
}

func buildBits(td TypeDefinition) (*Schema, error) {
	if len(td.Fields) > 0 {
		return nil, errors.New(errors.PhaseSchema, errors.KindUnsupported).
			Path(td.Name).
			Detail("bitfield types declare flags, not fields").
			Build()
	}
	raw, err := wire.ParseToken(td.Bits)
	if err != nil {
		return nil, errors.WithPath(err, td.Name)
	}

	b := NewBits(td.Name, raw)
	for _, f := range td.Flags {
		switch {
		case f.Bit != nil && f.Bits == nil:
			b.Flag(f.Name, *f.Bit)
		case f.Bit == nil && f.Bits != nil:
			b.Flags(f.Name, f.Bits...)
		default:
			return nil, errors.InvalidData(errors.PhaseSchema, []string{td.Name, f.Name}, "flag needs exactly one of bit or bits")
		}
	}
	return b.Build()
}

func buildStruct(td TypeDefinition, known *Definitions) (*Schema, error) {
	if len(td.Flags) > 0 {
		return nil, errors.New(errors.PhaseSchema, errors.KindUnsupported).
			Path(td.Name).
			Detail("flags require bits: <token>").
			Build()
	}

	b := NewBuilder(td.Name)
	for _, f := range td.Fields {
		path := []string{td.Name, f.Name}
		count := f.Count
		if count < 0 {
			return nil, errors.ListMismatch(path, "", count, "repeat count must be at least 1")
		}
		if count == 0 {
			count = 1
		}
		seq := f.List || f.Count > 1

		switch {
		case f.Opaque:
			b.Opaque(f.Name)
		case f.Type != "" && f.Struct != "":
			return nil, errors.InvalidData(errors.PhaseSchema, path, "field declares both type and struct")
		case f.Type != "":
			tok, err := wire.ParseToken(f.Type)
			if err != nil {
				return nil, errors.WithPath(err, path...)
			}
			if seq {
				b.List(f.Name, tok, count)
			} else {
				b.Scalar(f.Name, tok)
			}
			if f.Default != nil {
				b.Default(f.Default)
			}
		case f.Struct != "":
			nested, ok := known.Lookup(f.Struct)
			if !ok {
				return nil, errors.NotFound(errors.PhaseSchema, "type", f.Struct)
			}
			if seq {
				b.StructList(f.Name, nested, count)
			} else {
				b.Struct(f.Name, nested)
			}
		default:
			return nil, errors.MissingWireInfo(path, "")
		}
	}
	return b.Build()
}
