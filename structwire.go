package structwire

import (
	"encoding/binary"

	"github.com/wippyai/structwire/codec"
	"github.com/wippyai/structwire/errors"
	"github.com/wippyai/structwire/schema"
	"github.com/wippyai/structwire/wire"
)

// Bits marks a struct as a bitfield. Embed it with the raw integer token:
//
//	type Flags struct {
//		structwire.Bits `wire:"u8"`
//		A               bool `bit:"0"`
//	}
type Bits = schema.Bits

type (
	Schema = schema.Schema
	Token  = wire.Token
	Format = wire.Format
	Record = codec.Record
	Error  = errors.Error
)

// Codec is a typed codec for one struct type.
type Codec[T any] = codec.Codec[T]

// Wire tokens.
var (
	U8  = wire.U8
	U16 = wire.U16
	U32 = wire.U32
	U64 = wire.U64
	I8  = wire.I8
	I16 = wire.I16
	I32 = wire.I32
	I64 = wire.I64
	F32 = wire.F32
	F64 = wire.F64
)

// Byte orders accepted by Decode and Encode. A nil order is big-endian.
var (
	BigEndian    binary.ByteOrder = binary.BigEndian
	LittleEndian binary.ByteOrder = binary.LittleEndian
)

// Decode fills v, a pointer to a tagged struct or a *Record, from data.
// v is unchanged on error.
func Decode(data []byte, v any, order binary.ByteOrder) error {
	return codec.Decode(data, v, order)
}

// Encode packs v, a tagged struct, a pointer to one, or a *Record.
func Encode(v any, order binary.ByteOrder) ([]byte, error) {
	return codec.Encode(v, order)
}

// ByteLength returns the encoded size of v's layout.
func ByteLength(v any) (int, error) {
	return codec.ByteLength(v)
}

// For returns the typed codec for T, resolving its layout on first use.
func For[T any]() (*Codec[T], error) {
	return codec.For[T]()
}

func MustFor[T any]() *Codec[T] {
	return codec.MustFor[T]()
}

// SchemaOf returns the resolved layout of v's type.
func SchemaOf(v any) (*Schema, error) {
	return schema.Of(v)
}

// NewRecord returns a dynamic instance of s with defaults applied.
func NewRecord(s *Schema) *Record {
	return codec.NewRecord(s)
}

// ParseFormat parses a format string such as "4BHB3H".
func ParseFormat(s string) (Format, error) {
	return wire.ParseFormat(s)
}
