package wire

import (
	"strconv"
	"strings"

	"github.com/wippyai/structwire/errors"
)

// Code identifies a scalar's binary representation.
type Code byte

const (
	CodeU8     Code = 'B'
	CodeU16    Code = 'H'
	CodeU32    Code = 'I'
	CodeU64    Code = 'Q'
	CodeI8     Code = 'b'
	CodeI16    Code = 'h'
	CodeI32    Code = 'i'
	CodeI64    Code = 'q'
	CodeF32    Code = 'f'
	CodeF64    Code = 'd'
	CodeBytes  Code = 's'
	CodeString Code = 'z'
)

var codeWidths = map[Code]int{
	CodeU8:  1,
	CodeU16: 2,
	CodeU32: 4,
	CodeU64: 8,
	CodeI8:  1,
	CodeI16: 2,
	CodeI32: 4,
	CodeI64: 8,
	CodeF32: 4,
	CodeF64: 8,
}

var codeNames = map[Code]string{
	CodeU8:     "u8",
	CodeU16:    "u16",
	CodeU32:    "u32",
	CodeU64:    "u64",
	CodeI8:     "i8",
	CodeI16:    "i16",
	CodeI32:    "i32",
	CodeI64:    "i64",
	CodeF32:    "f32",
	CodeF64:    "f64",
	CodeBytes:  "bytes",
	CodeString: "string",
}

// Sized reports whether the code carries its width in the token.
func (c Code) Sized() bool {
	return c == CodeBytes || c == CodeString
}

// Known reports whether c is part of the token table.
func (c Code) Known() bool {
	_, ok := codeNames[c]
	return ok
}

// Token is a single wire element: a code plus its fixed byte width.
type Token struct {
	Code Code
	Size int
}

var (
	U8  = Token{Code: CodeU8, Size: 1}
	U16 = Token{Code: CodeU16, Size: 2}
	U32 = Token{Code: CodeU32, Size: 4}
	U64 = Token{Code: CodeU64, Size: 8}
	I8  = Token{Code: CodeI8, Size: 1}
	I16 = Token{Code: CodeI16, Size: 2}
	I32 = Token{Code: CodeI32, Size: 4}
	I64 = Token{Code: CodeI64, Size: 8}
	F32 = Token{Code: CodeF32, Size: 4}
	F64 = Token{Code: CodeF64, Size: 8}
)

// Bytes returns a fixed-width byte blob token.
func Bytes(n int) Token {
	return Token{Code: CodeBytes, Size: n}
}

// String returns a fixed-width NUL-padded string token.
func String(n int) Token {
	return Token{Code: CodeString, Size: n}
}

// Width returns the token's byte width.
func (t Token) Width() int {
	return t.Size
}

// IsUnsigned reports whether t is one of u8, u16, u32 or u64.
func (t Token) IsUnsigned() bool {
	switch t.Code {
	case CodeU8, CodeU16, CodeU32, CodeU64:
		return true
	}
	return false
}

// IsSigned reports whether t is one of i8, i16, i32 or i64.
func (t Token) IsSigned() bool {
	switch t.Code {
	case CodeI8, CodeI16, CodeI32, CodeI64:
		return true
	}
	return false
}

// IsInteger reports whether t is a signed or unsigned integer token.
func (t Token) IsInteger() bool {
	return t.IsUnsigned() || t.IsSigned()
}

// IsFloat reports whether t is f32 or f64.
func (t Token) IsFloat() bool {
	return t.Code == CodeF32 || t.Code == CodeF64
}

// Valid reports whether the token is known and its width is consistent.
func (t Token) Valid() bool {
	if t.Code.Sized() {
		return t.Size > 0
	}
	w, ok := codeWidths[t.Code]
	return ok && w == t.Size
}

// Name returns the declaration name, e.g. "u16" or "bytes:4".
func (t Token) Name() string {
	name, ok := codeNames[t.Code]
	if !ok {
		return "unknown"
	}
	if t.Code.Sized() {
		return name + ":" + strconv.Itoa(t.Size)
	}
	return name
}

// String returns the format text form, e.g. "H" or "s(4)".
func (t Token) String() string {
	if t.Code.Sized() {
		return string(t.Code) + "(" + strconv.Itoa(t.Size) + ")"
	}
	return string(t.Code)
}

// ParseToken parses a declaration name such as "u8", "f64" or "string:16".
func ParseToken(name string) (Token, error) {
	base, size, sized := strings.Cut(strings.TrimSpace(name), ":")
	for code, n := range codeNames {
		if n != base {
			continue
		}
		if !code.Sized() {
			if sized {
				return Token{}, errors.InvalidData(errors.PhaseParse, nil, "token "+base+" does not take a width")
			}
			return Token{Code: code, Size: codeWidths[code]}, nil
		}
		if !sized {
			return Token{}, errors.InvalidData(errors.PhaseParse, nil, "token "+base+" requires a width, e.g. "+base+":8")
		}
		n, err := strconv.Atoi(size)
		if err != nil || n <= 0 {
			return Token{}, errors.New(errors.PhaseParse, errors.KindInvalidData).
				Detail("invalid width %q for %s", size, base).
				Cause(err).
				Build()
		}
		return Token{Code: code, Size: n}, nil
	}
	return Token{}, errors.New(errors.PhaseParse, errors.KindUnsupported).
		Detail("unknown wire token %q", name).
		Build()
}
