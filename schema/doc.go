// Package schema describes fixed binary layouts.
//
// A Schema is the ordered field list of one structured type. Each Field is a
// Scalar (one wire token, optionally repeated), a Composite or CompositeList
// (a nested Schema, optionally repeated) or Opaque (never on the wire). The
// normalized wire.Format of a Schema is computed once and cached.
//
// Schemas come from three places:
//
//   - Resolve / For: Go struct types annotated with `wire` tags, resolved
//     once per type and cached.
//   - Builder / BitsBuilder: explicit, ordered field declarations.
//   - ParseDefinition: YAML or JSON documents turned into Builder calls.
//
// # Struct Tags
//
//	Hdr    uint16      `wire:"u16"`
//	Vals   [4]uint8    `wire:"u8"`            // count from the array
//	More   []int32     `wire:"i32,count=3"`   // slices need count
//	Name   string      `wire:"string:8"`      // NUL padded
//	Raw    [4]byte     `wire:"bytes:4"`       // one 4-byte value
//	Ver    uint8       `wire:"u8,default=2"`
//	Pairs  [2]Pair                            // composite list
//	Extra  []Pair      `wire:"struct,count=2"`
//	Note   string                             // opaque
//	Cache  []byte      `wire:"-"`             // opaque
//
// A repeat count on non-sequence storage, or a count that disagrees with an
// array's length, is a ListMismatch schema error. A count with no base token
// is MissingWireInfo.
//
// # Bitfields
//
// Embedding Bits marks a bitfield type whose single raw integer is split into
// named booleans; see Bits. Bit indices must be unique and lie within the raw
// token's width, otherwise schema resolution fails with OverlappingBitIndex
// or BitIndexRange.
package schema
