package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:    PhaseEncode,
				Kind:     KindValueRange,
				Path:     []string{"header", "flags", "raw"},
				GoType:   "int",
				WireType: "u8",
				Detail:   "value 300 does not fit u8",
			},
			contains: []string{"[encode]", "value_range", "header.flags.raw", "int", "u8", "300"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindLengthMismatch,
			},
			contains: []string{"[decode]", "length_mismatch"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseParse,
				Kind:   KindInvalidData,
				Detail: "parse definition",
				Cause:  errors.New("yaml: line 3"),
			},
			contains: []string{"[parse]", "invalid_data", "parse definition", "caused by", "yaml: line 3"},
		},
		{
			name: "wire type only",
			err: &Error{
				Phase:    PhaseSchema,
				Kind:     KindTypeMismatch,
				WireType: "f32",
			},
			contains: []string{"[schema]", "wire type f32"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseMemory,
		Kind:  KindOutOfBounds,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := LengthMismatch(PhaseDecode, []string{"config"}, 6, 7)

	if !errors.Is(err, ErrLengthMismatch) {
		t.Error("errors.Is should match sentinel with same phase and kind")
	}
	if errors.Is(err, ErrInsufficientData) {
		t.Error("errors.Is should not match different kind")
	}
	if err.Is(&Error{Phase: PhaseEncode, Kind: KindLengthMismatch}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(errors.New("length_mismatch")) {
		t.Error("Is should not match plain errors")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseEncode, KindTypeMismatch).
		Path("pairs", "[1]", "lo").
		GoType("string").
		WireType("u8").
		Value("x").
		Cause(cause).
		Detail("expected %s, got %s", "integer", "string").
		Build()

	if err.Phase != PhaseEncode {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseEncode)
	}
	if err.Kind != KindTypeMismatch {
		t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
	}
	if len(err.Path) != 3 || err.Path[2] != "lo" {
		t.Errorf("Path = %v, want [pairs [1] lo]", err.Path)
	}
	if err.GoType != "string" || err.WireType != "u8" {
		t.Errorf("GoType=%v WireType=%v", err.GoType, err.WireType)
	}
	if err.Value != "x" {
		t.Errorf("Value = %v, want x", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected integer, got string" {
		t.Errorf("Detail = %q", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		err   *Error
		name  string
		phase Phase
		kind  Kind
	}{
		{MissingWireInfo([]string{"a"}, "[]int"), "MissingWireInfo", PhaseSchema, KindMissingWireInfo},
		{ListMismatch([]string{"a"}, "uint8", 2, "not a sequence"), "ListMismatch", PhaseSchema, KindListMismatch},
		{OverlappingBitIndex([]string{"b"}, 3, "a"), "OverlappingBitIndex", PhaseSchema, KindOverlappingBitIndex},
		{BitIndexRange([]string{"b"}, 9, 8), "BitIndexRange", PhaseSchema, KindBitIndexRange},
		{TypeMismatch(PhaseSchema, nil, "string", "u8"), "TypeMismatch", PhaseSchema, KindTypeMismatch},
		{LengthMismatch(PhaseDecode, nil, 3, 4), "LengthMismatch", PhaseDecode, KindLengthMismatch},
		{InsufficientData(nil, 4, 2), "InsufficientData", PhaseDecode, KindInsufficientData},
		{ValueRange(nil, 300, "u8"), "ValueRange", PhaseEncode, KindValueRange},
		{Unsupported(PhaseSchema, "maps"), "Unsupported", PhaseSchema, KindUnsupported},
		{OutOfBounds(PhaseMemory, nil, 70000, 65536), "OutOfBounds", PhaseMemory, KindOutOfBounds},
		{NilPointer(PhaseEncode, nil, "*Config"), "NilPointer", PhaseEncode, KindNilPointer},
		{FieldUnknown(PhaseEncode, nil, "extra"), "FieldUnknown", PhaseEncode, KindFieldUnknown},
		{NotFound(PhaseSchema, "type", "Pair"), "NotFound", PhaseSchema, KindNotFound},
		{InvalidData(PhaseParse, nil, "bad"), "InvalidData", PhaseParse, KindInvalidData},
		{ParseFailed("format", errors.New("x")), "ParseFailed", PhaseParse, KindInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Phase != tt.phase {
				t.Errorf("Phase = %v, want %v", tt.err.Phase, tt.phase)
			}
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.err.Kind, tt.kind)
			}
		})
	}

	t.Run("ValueRange carries value", func(t *testing.T) {
		err := ValueRange([]string{"len"}, 300, "u8")
		if err.Value != 300 {
			t.Errorf("Value = %v, want 300", err.Value)
		}
		if !strings.Contains(err.Detail, "u8") {
			t.Errorf("Detail = %q, should name the token", err.Detail)
		}
	})
}

func TestWithPath(t *testing.T) {
	inner := ValueRange([]string{"lo"}, 256, "u8")
	err := WithPath(inner, "pairs", "[1]")

	var e *Error
	if !errors.As(err, &e) {
		t.Fatal("expected *Error")
	}
	if got := strings.Join(e.Path, "."); got != "pairs.[1].lo" {
		t.Errorf("Path = %q, want pairs.[1].lo", got)
	}
	if len(inner.Path) != 1 {
		t.Error("WithPath must not mutate the original error")
	}

	plain := errors.New("plain")
	if WithPath(plain, "x") != plain {
		t.Error("plain errors should pass through unchanged")
	}
}
