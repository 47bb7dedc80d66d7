// Package structwire maps Go structs onto fixed-layout binary records.
//
// A record layout is declared with struct tags (or built at runtime with
// schema.NewBuilder) and resolved once into an immutable Schema: an ordered
// list of scalar, list, composite and bitfield fields. The Schema compiles
// to a normalized wire format ("H3B2i", "4BHB3H") with a fixed byte length,
// and the codec packs and unpacks instances against it with an explicit
// byte order.
//
// # Architecture Overview
//
//	structwire/          Root facade: Decode, Encode, ByteLength, For
//	├── wire/            Wire tokens, format normalization, Pack/Unpack
//	├── schema/          Schema model, tag resolver, Builder, WIT export,
//	│                    YAML/JSON definition files
//	├── codec/           Struct and bitfield codecs, Codec[T], Record,
//	│                    wazero linear-memory adapter
//	├── errors/          Structured error types for debugging
//	└── cmd/structwire/  CLI and interactive decoder
//
// # Quick Start
//
//	type Reading struct {
//		ID     uint16     `wire:"u16"`
//		Temps  [3]int8    `wire:"i8"`
//		Gain   float32    `wire:"f32,default=1.5"`
//		Label  string     `wire:"string:8"`
//		Status Status
//	}
//
//	type Status struct {
//		structwire.Bits `wire:"u8"`
//		Ready           bool    `bit:"0"`
//		Mode            [2]bool `bit:"2,1"`
//	}
//
//	var r Reading
//	if err := structwire.Decode(buf, &r, binary.LittleEndian); err != nil {
//	    log.Fatal(err)
//	}
//	out, err := structwire.Encode(&r, binary.LittleEndian)
//
// # Tags
//
// The wire tag names a token (u8..u64, i8..i64, f32, f64, bytes:N,
// string:N) followed by options: count=N for slices, default=V for
// defaults. Arrays take their count from the array length. Untagged struct
// fields and arrays of structs are composites; other untagged fields are
// opaque and never touch the wire.
//
// # Errors
//
// Layout errors are reported when a type is first resolved; decode and
// encode errors are returned per call. All errors are *errors.Error values
// matchable with the standard errors.Is against the package sentinels.
//
// # Thread Safety
//
// Schemas and Codecs are immutable after construction and safe for
// concurrent use. Decode writes only to the destination it is given.
package structwire
