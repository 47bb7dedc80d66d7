// Package codec decodes byte buffers into structure instances and encodes
// them back, following a schema.Schema.
//
// # Usage
//
// Typed front end, for Go structs with wire tags:
//
//	type Header struct {
//		Magic   uint16   `wire:"u16,default=0xCAFE"`
//		Version uint8    `wire:"u8"`
//		Flags   Status
//		Ports   [2]uint16 `wire:"u16"`
//	}
//
//	c := codec.MustFor[Header]()
//	var h Header
//	err := c.Decode(buf, &h, binary.LittleEndian)
//	out, err := c.Encode(&h, nil) // nil order is big-endian
//
// Dynamic front end, for schemas built at runtime:
//
//	rec := codec.NewRecord(s)
//	err := rec.Decode(buf, nil)
//	v, _ := rec.Get("version")
//
// # Decode
//
// The buffer length must equal the schema's ByteLength exactly. The buffer is
// unpacked into one flat value sequence, then fields are assigned in schema
// order; composites consume the next nested.ValueCount values. All checks run
// before any assignment, so a failed decode leaves the instance unchanged.
//
// # Encode
//
// Field values are flattened in schema order, lowered through their wire
// token with range checks (ValueRange) and packed.
//
// # Bitfields
//
// For bitfield schemas the raw integer is expanded least significant bit
// first. Multi-bit sub-fields read and write their bits in declared index
// order.
//
// # Linear Memory
//
// DecodeFromMemory and EncodeToMemory read and write structures in a wazero
// guest's linear memory.
package codec
