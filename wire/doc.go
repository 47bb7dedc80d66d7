// Package wire defines wire tokens, normalized formats and the packing
// primitive.
//
// A Token identifies one scalar's binary representation and width. A Format
// is the normalized token sequence of a whole structure: runs of identical
// consecutive tokens collapsed into counted groups.
//
// # Token Table
//
//	Code  Name       Width
//	──────────────────────
//	B     u8         1
//	H     u16        2
//	I     u32        4
//	Q     u64        8
//	b     i8         1
//	h     i16        2
//	i     i32        4
//	q     i64        8
//	f     f32        4
//	d     f64        8
//	s(N)  bytes:N    N
//	z(N)  string:N   N (NUL padded)
//
// # Text Form
//
// Formats render as [count]code[(width)] groups, count omitted when 1:
//
//	B2H3s(4)   u8, u16, u16, then three 4-byte blobs
//
// ParseFormat accepts the same text and always returns a normalized Format,
// so ParseFormat(f.String()) equals f.
//
// # Packing
//
// Packing is tight: no padding and no alignment. ByteLength is the sum of
// each token's width times its multiplicity. Unpack and Pack take an
// encoding/binary.ByteOrder; nil selects big-endian.
package wire
