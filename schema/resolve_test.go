package schema

import (
	stderrors "errors"
	"reflect"
	"sync"
	"testing"

	"github.com/wippyai/structwire/errors"
	"github.com/wippyai/structwire/wire"
)

type scalars struct {
	Foo8  uint8  `wire:"u8"`
	Foo16 uint16 `wire:"u16"`
	Foo32 uint32 `wire:"u32"`
}

type pair struct {
	Lo uint8 `wire:"u8"`
	Hi uint8 `wire:"u8"`
}

type mixed struct {
	Head   uint16   `wire:"u16"`
	Vals   [3]uint8 `wire:"u8"`
	More   []int32  `wire:"i32,count=2"`
	Name   string   `wire:"string:4"`
	Raw    [2]byte  `wire:"bytes:2"`
	One    pair
	Pairs  [2]pair
	Extra  []pair `wire:"struct,count=1"`
	Note   string
	Cache  []byte `wire:"-"`
	hidden int
}

type status struct {
	Bits  `wire:"u8"`
	Ready bool    `bit:"0"`
	Mode  [3]bool `bit:"3,1,2"`
	Label string
}

type withDefaults struct {
	Version uint8   `wire:"u8,default=2"`
	Magic   uint16  `wire:"u16,default=0xCAFE"`
	Gain    float32 `wire:"f32,default=1.5"`
	Offset  int16   `wire:"i16,default=-3"`
	Tag     string  `wire:"string:6,default=a,b"`
}

func TestResolveScalars(t *testing.T) {
	s, err := For[scalars]()
	if err != nil {
		t.Fatalf("For: %v", err)
	}

	if got := s.Format().String(); got != "BHI" {
		t.Errorf("format = %q, want BHI", got)
	}
	if s.ByteLength() != 7 {
		t.Errorf("ByteLength = %d, want 7", s.ByteLength())
	}
	if len(s.Fields) != 3 {
		t.Fatalf("fields = %d, want 3", len(s.Fields))
	}
	for i, want := range []wire.Token{wire.U8, wire.U16, wire.U32} {
		f := s.Fields[i]
		if f.Kind != KindScalar || f.Token != want || f.Count != 1 || f.Sequence {
			t.Errorf("field %d = %+v", i, f)
		}
		if f.Index != i {
			t.Errorf("field %d index = %d", i, f.Index)
		}
	}
}

func TestResolveFieldKinds(t *testing.T) {
	s, err := For[mixed]()
	if err != nil {
		t.Fatalf("For: %v", err)
	}

	if got := s.Format().String(); got != "H3B2iz(4)s(2)8B" {
		t.Errorf("format = %q", got)
	}
	if s.ByteLength() != 27 {
		t.Errorf("ByteLength = %d, want 27", s.ByteLength())
	}
	if s.ValueCount() != 16 {
		t.Errorf("ValueCount = %d, want 16", s.ValueCount())
	}

	tests := []struct {
		name  string
		kind  Kind
		count int
		seq   bool
		size  int
	}{
		{"Head", KindScalar, 1, false, 2},
		{"Vals", KindScalar, 3, true, 3},
		{"More", KindScalar, 2, true, 8},
		{"Name", KindScalar, 1, false, 4},
		{"Raw", KindScalar, 1, false, 2},
		{"One", KindComposite, 1, false, 2},
		{"Pairs", KindCompositeList, 2, true, 4},
		{"Extra", KindCompositeList, 1, true, 2},
		{"Note", KindOpaque, 0, false, 0},
		{"Cache", KindOpaque, 0, false, 0},
		{"hidden", KindOpaque, 0, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := s.Lookup(tt.name)
			if !ok {
				t.Fatalf("field %s not found", tt.name)
			}
			if f.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", f.Kind, tt.kind)
			}
			if f.Count != tt.count {
				t.Errorf("count = %d, want %d", f.Count, tt.count)
			}
			if f.Sequence != tt.seq {
				t.Errorf("sequence = %v, want %v", f.Sequence, tt.seq)
			}
			if f.ByteSize() != tt.size {
				t.Errorf("ByteSize = %d, want %d", f.ByteSize(), tt.size)
			}
		})
	}

	one, _ := s.Lookup("One")
	pairSchema, _ := For[pair]()
	if one.Nested != pairSchema {
		t.Error("nested schema should be the cached schema of pair")
	}
}

func TestResolveBits(t *testing.T) {
	s, err := For[status]()
	if err != nil {
		t.Fatalf("For: %v", err)
	}
	if !s.IsBitfield() {
		t.Fatal("expected bitfield schema")
	}
	if got := s.Format().String(); got != "B" {
		t.Errorf("format = %q, want B", got)
	}
	if s.Bits.Width() != 8 {
		t.Errorf("width = %d, want 8", s.Bits.Width())
	}

	ready, ok := s.Bits.Entry("Ready")
	if !ok || ready.Multi || !reflect.DeepEqual(ready.Indices, []int{0}) {
		t.Errorf("Ready = %+v", ready)
	}
	mode, ok := s.Bits.Entry("Mode")
	if !ok || !mode.Multi || !reflect.DeepEqual(mode.Indices, []int{3, 1, 2}) {
		t.Errorf("Mode = %+v", mode)
	}

	label, ok := s.Lookup("Label")
	if !ok || label.Kind != KindOpaque {
		t.Errorf("Label should be opaque, got %+v", label)
	}
}

func TestResolveDefaults(t *testing.T) {
	s, err := For[withDefaults]()
	if err != nil {
		t.Fatalf("For: %v", err)
	}

	want := map[string]any{
		"Version": uint8(2),
		"Magic":   uint16(0xCAFE),
		"Gain":    float32(1.5),
		"Offset":  int16(-3),
		"Tag":     "a,b",
	}
	for name, def := range want {
		f, _ := s.Lookup(name)
		if f.Default != def {
			t.Errorf("%s default = %v (%T), want %v", name, f.Default, f.Default, def)
		}
	}
}

func TestResolveCaching(t *testing.T) {
	var wg sync.WaitGroup
	results := make([]*Schema, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := Resolve(reflect.TypeOf(&pair{}))
			if err != nil {
				t.Errorf("Resolve: %v", err)
				return
			}
			results[i] = s
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(results); i++ {
		if results[i] != results[0] {
			t.Fatal("concurrent resolution returned different schemas")
		}
	}
}

type (
	countOnScalar struct {
		A uint8 `wire:"u8,count=2"`
	}
	sliceWithoutCount struct {
		A []uint8 `wire:"u8"`
	}
	arrayCountDisagrees struct {
		A [3]uint8 `wire:"u8,count=2"`
	}
	listWithoutToken struct {
		A [3]uint8 `wire:",count=3"`
	}
	narrowStorage struct {
		A uint8 `wire:"u16"`
	}
	stringForInteger struct {
		A string `wire:"u8"`
	}
	unknownToken struct {
		A uint8 `wire:"u7"`
	}
	defaultOutOfRange struct {
		A uint8 `wire:"u8,default=300"`
	}
	untaggedPairSlice struct {
		A []pair
	}
	recursive struct {
		Kids []recursive `wire:"struct,count=1"`
	}
	overlappingBits struct {
		Bits `wire:"u8"`
		A    bool    `bit:"1"`
		B    [2]bool `bit:"2,1"`
	}
	duplicateBit struct {
		Bits `wire:"u8"`
		A    [2]bool `bit:"4,4"`
	}
	bitOutOfRange struct {
		Bits `wire:"u8"`
		A    bool `bit:"8"`
	}
	signedBits struct {
		Bits `wire:"i8"`
		A    bool `bit:"0"`
	}
	bitArrayLength struct {
		Bits `wire:"u16"`
		A    [2]bool `bit:"1,2,3"`
	}
	bitWithoutMarker struct {
		A bool `bit:"0"`
	}
)

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		typ  reflect.Type
		name string
		kind errors.Kind
	}{
		{reflect.TypeOf(countOnScalar{}), "count on scalar storage", errors.KindListMismatch},
		{reflect.TypeOf(sliceWithoutCount{}), "slice without count", errors.KindListMismatch},
		{reflect.TypeOf(arrayCountDisagrees{}), "array count disagrees", errors.KindListMismatch},
		{reflect.TypeOf(listWithoutToken{}), "list without token", errors.KindMissingWireInfo},
		{reflect.TypeOf(narrowStorage{}), "narrow storage", errors.KindTypeMismatch},
		{reflect.TypeOf(stringForInteger{}), "string for integer", errors.KindTypeMismatch},
		{reflect.TypeOf(unknownToken{}), "unknown token", errors.KindUnsupported},
		{reflect.TypeOf(defaultOutOfRange{}), "default out of range", errors.KindValueRange},
		{reflect.TypeOf(untaggedPairSlice{}), "untagged composite slice", errors.KindListMismatch},
		{reflect.TypeOf(recursive{}), "recursive layout", errors.KindUnsupported},
		{reflect.TypeOf(overlappingBits{}), "overlapping bits", errors.KindOverlappingBitIndex},
		{reflect.TypeOf(duplicateBit{}), "duplicate bit", errors.KindOverlappingBitIndex},
		{reflect.TypeOf(bitOutOfRange{}), "bit out of range", errors.KindBitIndexRange},
		{reflect.TypeOf(signedBits{}), "signed raw token", errors.KindUnsupported},
		{reflect.TypeOf(bitArrayLength{}), "bit array length", errors.KindListMismatch},
		{reflect.TypeOf(bitWithoutMarker{}), "bit without marker", errors.KindUnsupported},
		{reflect.TypeOf(0), "not a struct", errors.KindTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.typ)
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("Resolve(%s) = %v, want structured error", tt.typ, err)
			}
			if e.Kind != tt.kind {
				t.Errorf("kind = %s, want %s (%v)", e.Kind, tt.kind, err)
			}
		})
	}
}

func TestResolveSchemaSentinels(t *testing.T) {
	_, err := Resolve(reflect.TypeOf(sliceWithoutCount{}))
	if !stderrors.Is(err, errors.ErrListMismatch) {
		t.Errorf("want ErrListMismatch, got %v", err)
	}
	_, err = Resolve(reflect.TypeOf(listWithoutToken{}))
	if !stderrors.Is(err, errors.ErrMissingWireInfo) {
		t.Errorf("want ErrMissingWireInfo, got %v", err)
	}
	_, err = Resolve(reflect.TypeOf(overlappingBits{}))
	if !stderrors.Is(err, errors.ErrOverlappingBitIndex) {
		t.Errorf("want ErrOverlappingBitIndex, got %v", err)
	}
	_, err = Resolve(reflect.TypeOf(bitOutOfRange{}))
	if !stderrors.Is(err, errors.ErrBitIndexRange) {
		t.Errorf("want ErrBitIndexRange, got %v", err)
	}
}

func TestResolveErrorPath(t *testing.T) {
	type inner struct {
		A []uint8 `wire:"u8"`
	}
	type outer struct {
		In inner `wire:"struct"`
	}

	_, err := Resolve(reflect.TypeOf(outer{}))
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("want structured error, got %v", err)
	}
	if !reflect.DeepEqual(e.Path, []string{"In", "A"}) {
		t.Errorf("path = %v, want [In A]", e.Path)
	}
}

func TestOf(t *testing.T) {
	s, err := Of(&scalars{})
	if err != nil {
		t.Fatalf("Of: %v", err)
	}
	if s.ByteLength() != 7 {
		t.Errorf("ByteLength = %d", s.ByteLength())
	}
	if _, err := Of(nil); err == nil {
		t.Error("Of(nil) should fail")
	}
}
