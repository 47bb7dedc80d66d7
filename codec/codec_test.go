package codec

import (
	"bytes"
	"encoding/binary"
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/wippyai/structwire/errors"
)

type scalars struct {
	Foo8  uint8  `wire:"u8"`
	Foo16 uint16 `wire:"u16"`
	Foo32 uint32 `wire:"u32"`
}

type unsigned struct {
	Foo8  uint8  `wire:"u8"`
	Foo16 uint16 `wire:"u16"`
	Foo32 uint32 `wire:"u32"`
	Foo64 uint64 `wire:"u64"`
}

type signed struct {
	Foo8  int8  `wire:"i8"`
	Foo16 int16 `wire:"i16"`
	Foo32 int32 `wire:"i32"`
	Foo64 int64 `wire:"i64"`
}

type floats struct {
	Foo float32 `wire:"f32"`
	Bar float64 `wire:"f64"`
}

type pair struct {
	Lo uint8 `wire:"u8"`
	Hi uint8 `wire:"u8"`
}

type pairList struct {
	Pairs [2]pair
}

type framed struct {
	Head  uint8 `wire:"u8"`
	Pairs [2]pair
	Tail  uint8 `wire:"u8"`
}

type mixed struct {
	ID    uint16    `wire:"u16"`
	Temps [3]int8   `wire:"i8"`
	Gains []float32 `wire:"f32,count=2"`
	Name  string    `wire:"string:4"`
	Raw   [2]byte   `wire:"bytes:2"`
	One   pair
	Pairs []pair `wire:"struct,count=2"`
	Note  string
}

type wide struct {
	A int `wire:"u8"`
}

func repeat(b byte, n int) []byte {
	return bytes.Repeat([]byte{b}, n)
}

func TestDecodeScalars(t *testing.T) {
	data := repeat(254, 7)

	var s scalars
	if err := Decode(data, &s, nil); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := scalars{Foo8: 254, Foo16: 65278, Foo32: 4278124286}
	if s != want {
		t.Errorf("got %+v, want %+v", s, want)
	}

	out, err := Encode(&s, nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Errorf("Encode = %v, want %v", out, data)
	}
}

func TestDecodeIntegers(t *testing.T) {
	data := repeat(254, 15)

	var u unsigned
	if err := Decode(data, &u, binary.BigEndian); err != nil {
		t.Fatalf("Decode unsigned: %v", err)
	}
	wantU := unsigned{Foo8: 254, Foo16: 65_278, Foo32: 4_278_124_286, Foo64: 18_374_403_900_871_474_942}
	if u != wantU {
		t.Errorf("unsigned = %+v, want %+v", u, wantU)
	}

	var s signed
	if err := Decode(data, &s, binary.BigEndian); err != nil {
		t.Fatalf("Decode signed: %v", err)
	}
	wantS := signed{Foo8: -2, Foo16: -258, Foo32: -16_843_010, Foo64: -72_340_172_838_076_674}
	if s != wantS {
		t.Errorf("signed = %+v, want %+v", s, wantS)
	}

	for name, v := range map[string]any{"unsigned": &u, "signed": &s} {
		out, err := Encode(v, binary.BigEndian)
		if err != nil {
			t.Fatalf("Encode %s: %v", name, err)
		}
		if !bytes.Equal(out, data) {
			t.Errorf("Encode %s = %v", name, out)
		}
	}
}

func TestDecodeFloats(t *testing.T) {
	data := []byte{68, 154, 82, 43, 65, 157, 111, 52, 87, 243, 91, 168}

	var f floats
	if err := Decode(data, &f, nil); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if f.Foo != 1234.5677490234375 {
		t.Errorf("Foo = %v", f.Foo)
	}
	if f.Bar != 123456789.987654321 {
		t.Errorf("Bar = %v", f.Bar)
	}

	out, err := Encode(f, nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Errorf("Encode = %v, want %v", out, data)
	}
}

func TestDecodeByteOrder(t *testing.T) {
	data := []byte{1, 2, 0, 3, 0, 0, 0}

	tests := []struct {
		order binary.ByteOrder
		name  string
		want  scalars
	}{
		{binary.LittleEndian, "little", scalars{Foo8: 1, Foo16: 2, Foo32: 3}},
		{binary.BigEndian, "big", scalars{Foo8: 1, Foo16: 0x0200, Foo32: 0x03000000}},
		{nil, "default", scalars{Foo8: 1, Foo16: 0x0200, Foo32: 0x03000000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s scalars
			if err := Decode(data, &s, tt.order); err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if s != tt.want {
				t.Errorf("got %+v, want %+v", s, tt.want)
			}
		})
	}
}

func TestDecodeCompositeList(t *testing.T) {
	var p pairList
	if err := Decode([]byte{0x0F, 0xF0, 0xFF, 0xFF}, &p, binary.LittleEndian); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := [2]pair{{Lo: 0x0F, Hi: 0xF0}, {Lo: 0xFF, Hi: 0xFF}}
	if p.Pairs != want {
		t.Errorf("Pairs = %+v, want %+v", p.Pairs, want)
	}
}

func TestDecodeCompositeOffsets(t *testing.T) {
	var f framed
	if err := Decode([]byte{1, 2, 3, 4, 5, 6}, &f, nil); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := framed{Head: 1, Pairs: [2]pair{{2, 3}, {4, 5}}, Tail: 6}
	if f != want {
		t.Errorf("got %+v, want %+v", f, want)
	}
}

func TestRoundTripMixed(t *testing.T) {
	in := mixed{
		ID:    0xBEEF,
		Temps: [3]int8{-40, 0, 85},
		Gains: []float32{0.5, -2.25},
		Name:  "abc",
		Raw:   [2]byte{0xDE, 0xAD},
		One:   pair{Lo: 1, Hi: 2},
		Pairs: []pair{{3, 4}, {5, 6}},
		Note:  "not on the wire",
	}

	for _, order := range []binary.ByteOrder{binary.BigEndian, binary.LittleEndian} {
		data, err := Encode(&in, order)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		if len(data) != 2+3+8+4+2+2+4 {
			t.Fatalf("encoded %d bytes", len(data))
		}

		var out mixed
		if err := Decode(data, &out, order); err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if out.Note != "" {
			t.Errorf("opaque field was decoded: %q", out.Note)
		}
		out.Note = in.Note
		if !reflect.DeepEqual(out, in) {
			t.Errorf("%v round trip:\n got %+v\nwant %+v", order, out, in)
		}
	}
}

func TestDecodeLengthMismatch(t *testing.T) {
	orig := scalars{Foo8: 1, Foo16: 2, Foo32: 3}

	for _, n := range []int{0, 6, 8} {
		s := orig
		err := Decode(repeat(0xAA, n), &s, nil)
		if !stderrors.Is(err, errors.ErrLengthMismatch) {
			t.Errorf("len %d: want ErrLengthMismatch, got %v", n, err)
		}
		if s != orig {
			t.Errorf("len %d: instance modified to %+v", n, s)
		}
	}
}

func TestEncodeValueRange(t *testing.T) {
	tests := []struct {
		name  string
		value int
		fails bool
	}{
		{"max", 255, false},
		{"zero", 0, false},
		{"overflow", 256, true},
		{"negative", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(wide{A: tt.value}, nil)
			if !tt.fails {
				if err != nil {
					t.Fatalf("Encode: %v", err)
				}
				return
			}
			if !stderrors.Is(err, errors.ErrValueRange) {
				t.Fatalf("want ErrValueRange, got %v", err)
			}
			var e *errors.Error
			stderrors.As(err, &e)
			if !reflect.DeepEqual(e.Path, []string{"A"}) {
				t.Errorf("path = %v", e.Path)
			}
		})
	}
}

func TestEncodeErrors(t *testing.T) {
	m := mixed{Gains: []float32{1}, Pairs: make([]pair, 2)}
	_, err := Encode(&m, nil)
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindLengthMismatch || e.Phase != errors.PhaseEncode {
		t.Errorf("short slice: got %v", err)
	}

	m = mixed{Gains: make([]float32, 2), Pairs: []pair{{1, 2}, {3, 4}}}
	if _, err := Encode(&m, nil); err != nil {
		t.Errorf("sized slices should encode: %v", err)
	}

	if _, err := Encode(nil, nil); err == nil {
		t.Error("Encode(nil) should fail")
	}
	if _, err := Encode(42, nil); err == nil {
		t.Error("Encode(int) should fail")
	}
}

func TestDecodeTargets(t *testing.T) {
	data := repeat(0, 7)

	err := Decode(data, scalars{}, nil)
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindTypeMismatch {
		t.Errorf("non-pointer target: got %v", err)
	}

	var nilPtr *scalars
	err = Decode(data, nilPtr, nil)
	if !stderrors.As(err, &e) || e.Kind != errors.KindNilPointer {
		t.Errorf("nil pointer target: got %v", err)
	}

	var nilRec *Record
	if err := Decode(data, nilRec, nil); err == nil {
		t.Error("nil record should fail")
	}
}

func TestDecodeSizesSlices(t *testing.T) {
	in := mixed{Gains: []float32{1, 2}, Pairs: []pair{{1, 1}, {2, 2}}}
	data, err := Encode(&in, nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var out mixed
	if err := Decode(data, &out, nil); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(out.Gains) != 2 || len(out.Pairs) != 2 {
		t.Errorf("slices not sized: %d gains, %d pairs", len(out.Gains), len(out.Pairs))
	}
	if out.Pairs[1] != (pair{2, 2}) {
		t.Errorf("Pairs[1] = %+v", out.Pairs[1])
	}
}

func TestByteLength(t *testing.T) {
	n, err := ByteLength(&scalars{})
	if err != nil || n != 7 {
		t.Errorf("ByteLength(*scalars) = %d, %v", n, err)
	}
	n, err = ByteLength(mixed{})
	if err != nil || n != 25 {
		t.Errorf("ByteLength(mixed) = %d, %v", n, err)
	}
	if _, err := ByteLength("nope"); err == nil {
		t.Error("ByteLength(string) should fail")
	}
}
