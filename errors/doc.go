// Package errors defines the structured error returned by every structwire
// package.
//
// An Error records the Phase that failed (schema, decode, encode, parse,
// memory) and a Kind naming the failure, plus the dotted field path and the
// Go and wire type names involved.
//
// Schema errors are configuration bugs surfaced when a layout is resolved.
// Decode and encode errors are ordinary results returned per call.
//
// Errors with extra context are assembled with a Builder:
//
//	err := errors.New(errors.PhaseEncode, errors.KindValueRange).
//		Path("header", "length").
//		GoType("int").
//		WireType("u8").
//		Detail("value 300 does not fit u8").
//		Build()
//
// The common failures have direct constructors:
//
//	err := errors.LengthMismatch(errors.PhaseDecode, nil, 6, 7)
//	err := errors.OverlappingBitIndex(path, 3, "ready")
//
// The exported sentinels (ErrLengthMismatch, ErrValueRange, ...) match any
// error with the same Phase and Kind through errors.Is.
package errors
