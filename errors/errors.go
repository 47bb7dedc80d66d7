package errors

import (
	"fmt"
	"strings"
)

// Phase names the stage that produced an error.
type Phase string

const (
	PhaseSchema Phase = "schema" // type resolution, fatal
	PhaseEncode Phase = "encode" // values to bytes
	PhaseDecode Phase = "decode" // bytes to values
	PhaseParse  Phase = "parse"  // format text, definition files
	PhaseMemory Phase = "memory" // guest linear memory access
)

// Kind is the failure category within a phase.
type Kind string

const (
	KindMissingWireInfo     Kind = "missing_wire_info"
	KindListMismatch        Kind = "list_mismatch"
	KindOverlappingBitIndex Kind = "overlapping_bit_index"
	KindBitIndexRange       Kind = "bit_index_range"
	KindLengthMismatch      Kind = "length_mismatch"
	KindInsufficientData    Kind = "insufficient_data"
	KindValueRange          Kind = "value_range"
	KindTypeMismatch        Kind = "type_mismatch"
	KindOutOfBounds         Kind = "out_of_bounds"
	KindInvalidData         Kind = "invalid_data"
	KindUnsupported         Kind = "unsupported"
	KindNilPointer          Kind = "nil_pointer"
	KindFieldUnknown        Kind = "field_unknown"
	KindNotFound            Kind = "not_found"
)

// Sentinels for use with errors.Is. Matching compares Phase and Kind only.
var (
	ErrMissingWireInfo     = &Error{Phase: PhaseSchema, Kind: KindMissingWireInfo}
	ErrListMismatch        = &Error{Phase: PhaseSchema, Kind: KindListMismatch}
	ErrOverlappingBitIndex = &Error{Phase: PhaseSchema, Kind: KindOverlappingBitIndex}
	ErrBitIndexRange       = &Error{Phase: PhaseSchema, Kind: KindBitIndexRange}
	ErrLengthMismatch      = &Error{Phase: PhaseDecode, Kind: KindLengthMismatch}
	ErrInsufficientData    = &Error{Phase: PhaseDecode, Kind: KindInsufficientData}
	ErrValueRange          = &Error{Phase: PhaseEncode, Kind: KindValueRange}
)

// Error carries the phase, kind and field path of a failure. Every
// package in the module returns *Error for structured failures.
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	GoType   string
	WireType string
	Detail   string
	Path     []string
}

func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.WireType != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.WireType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", wire type ")
			b.WriteString(e.WireType)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("wire type ")
			b.WriteString(e.WireType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.WireType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on Phase and Kind so the package sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder assembles an Error field by field.
type Builder struct {
	err Error
}

// New starts a Builder for the given phase and kind.
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

func (b *Builder) WireType(t string) *Builder {
	b.err.WireType = t
	return b
}

func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail formats msg with args when any are given.
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

func (b *Builder) Build() *Error {
	return &b.err
}

// MissingWireInfo reports a list field with no token or nested layout
func MissingWireInfo(path []string, goType string) *Error {
	return &Error{
		Phase:  PhaseSchema,
		Kind:   KindMissingWireInfo,
		Path:   path,
		GoType: goType,
		Detail: "repeated field declares neither a wire token nor a nested layout",
	}
}

// ListMismatch reports a repeat count that disagrees with the field storage
func ListMismatch(path []string, goType string, count int, detail string) *Error {
	return &Error{
		Phase:  PhaseSchema,
		Kind:   KindListMismatch,
		Path:   path,
		GoType: goType,
		Detail: fmt.Sprintf("count %d: %s", count, detail),
		Value:  count,
	}
}

// OverlappingBitIndex reports a bit claimed by two sub-fields
func OverlappingBitIndex(path []string, bit int, owner string) *Error {
	return &Error{
		Phase:  PhaseSchema,
		Kind:   KindOverlappingBitIndex,
		Path:   path,
		Detail: fmt.Sprintf("bit %d already assigned to %q", bit, owner),
		Value:  bit,
	}
}

// BitIndexRange reports a bit index outside the raw scalar
func BitIndexRange(path []string, bit, bits int) *Error {
	return &Error{
		Phase:  PhaseSchema,
		Kind:   KindBitIndexRange,
		Path:   path,
		Detail: fmt.Sprintf("bit %d outside [0, %d)", bit, bits),
		Value:  bit,
	}
}

// TypeMismatch reports a Go value that cannot be stored as wireType.
func TypeMismatch(phase Phase, path []string, goType, wireType string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindTypeMismatch,
		Path:     path,
		GoType:   goType,
		WireType: wireType,
	}
}

// LengthMismatch reports a buffer whose size differs from the compiled layout
func LengthMismatch(phase Phase, path []string, got, want int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindLengthMismatch,
		Path:   path,
		Detail: fmt.Sprintf("got %d, want %d", got, want),
		Value:  got,
	}
}

// InsufficientData reports a nested slice running past the decoded values
func InsufficientData(path []string, need, have int) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindInsufficientData,
		Path:   path,
		Detail: fmt.Sprintf("need %d values, have %d", need, have),
	}
}

// ValueRange reports a value outside the range of its wire token.
func ValueRange(path []string, value any, wireType string) *Error {
	return &Error{
		Phase:    PhaseEncode,
		Kind:     KindValueRange,
		Path:     path,
		WireType: wireType,
		Detail:   fmt.Sprintf("value %v does not fit %s", value, wireType),
		Value:    value,
	}
}

// Unsupported reports a Go shape the codec cannot lay out.
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// OutOfBounds reports an index or memory offset past the end.
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// NilPointer reports a nil target or value where storage is required.
func NilPointer(phase Phase, path []string, goType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Path:   path,
		GoType: goType,
		Detail: "nil pointer",
	}
}

// FieldUnknown reports a name that is not a field of the record.
func FieldUnknown(phase Phase, path []string, fieldName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFieldUnknown,
		Path:   path,
		Detail: fmt.Sprintf("unknown field %q", fieldName),
	}
}

func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidData reports malformed input such as a bad tag option.
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// ParseFailed wraps a failure reading a format string or definition.
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}

// WithPath returns a copy of err with prefix prepended to its path.
// Non-structured errors are returned unchanged.
func WithPath(err error, prefix ...string) error {
	e, ok := err.(*Error)
	if !ok || len(prefix) == 0 {
		return err
	}
	cp := *e
	cp.Path = append(append(make([]string, 0, len(prefix)+len(e.Path)), prefix...), e.Path...)
	return &cp
}
