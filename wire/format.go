package wire

import (
	"strconv"
	"strings"

	"github.com/wippyai/structwire/errors"
)

// Group is a run of Count identical tokens.
type Group struct {
	Token Token
	Count int
}

func (g Group) String() string {
	if g.Count == 1 {
		return g.Token.String()
	}
	return strconv.Itoa(g.Count) + g.Token.String()
}

// Format is a normalized token sequence: maximal runs of identical
// consecutive tokens collapsed into counted groups. The zero Format is empty.
type Format struct {
	groups []Group
	size   int
	values int
}

// Normalize expands every group into literal tokens and re-collapses maximal
// runs. Groups with a non-positive count contribute nothing. Normalizing the
// groups of an already normalized Format returns an equal Format.
func Normalize(groups ...Group) Format {
	var f Format
	for _, g := range groups {
		for i := 0; i < g.Count; i++ {
			f.push(g.Token)
		}
	}
	return f
}

// Compile normalizes a literal token sequence.
func Compile(tokens ...Token) Format {
	var f Format
	for _, t := range tokens {
		f.push(t)
	}
	return f
}

func (f *Format) push(t Token) {
	if n := len(f.groups); n > 0 && f.groups[n-1].Token == t {
		f.groups[n-1].Count++
	} else {
		f.groups = append(f.groups, Group{Token: t, Count: 1})
	}
	f.size += t.Size
	f.values++
}

// Groups returns a copy of the normalized groups.
func (f Format) Groups() []Group {
	out := make([]Group, len(f.groups))
	copy(out, f.groups)
	return out
}

// Tokens returns the expanded token sequence.
func (f Format) Tokens() []Token {
	out := make([]Token, 0, f.values)
	for _, g := range f.groups {
		for i := 0; i < g.Count; i++ {
			out = append(out, g.Token)
		}
	}
	return out
}

// ByteLength is the exact packed size: no padding, no alignment.
func (f Format) ByteLength() int {
	return f.size
}

// ValueCount is the number of raw values the format packs.
func (f Format) ValueCount() int {
	return f.values
}

func (f Format) IsEmpty() bool {
	return f.values == 0
}

// Equal compares normalized group sequences.
func (f Format) Equal(other Format) bool {
	if len(f.groups) != len(other.groups) {
		return false
	}
	for i := range f.groups {
		if f.groups[i] != other.groups[i] {
			return false
		}
	}
	return true
}

// String renders the text form, e.g. "B2H3s(4)".
func (f Format) String() string {
	var b strings.Builder
	for _, g := range f.groups {
		b.WriteString(g.String())
	}
	return b.String()
}

// ParseFormat parses the text form produced by Format.String. Whitespace is
// ignored. The result is normalized, so "BB2B" parses to "4B".
func ParseFormat(s string) (Format, error) {
	var groups []Group
	i := 0
	for i < len(s) {
		if s[i] == ' ' || s[i] == '\t' || s[i] == '\n' {
			i++
			continue
		}

		count := 1
		if start := i; isDigit(s[i]) {
			for i < len(s) && isDigit(s[i]) {
				i++
			}
			n, err := strconv.Atoi(s[start:i])
			if err != nil || n <= 0 {
				return Format{}, formatError(s, start, "invalid repeat count")
			}
			count = n
		}
		if i >= len(s) {
			return Format{}, formatError(s, i, "count without token")
		}

		code := Code(s[i])
		if !code.Known() {
			return Format{}, formatError(s, i, "unknown token "+strconv.QuoteRune(rune(s[i])))
		}
		i++

		tok := Token{Code: code, Size: codeWidths[code]}
		if code.Sized() {
			if i >= len(s) || s[i] != '(' {
				return Format{}, formatError(s, i, "sized token requires (width)")
			}
			end := strings.IndexByte(s[i:], ')')
			if end < 0 {
				return Format{}, formatError(s, i, "unterminated width")
			}
			n, err := strconv.Atoi(s[i+1 : i+end])
			if err != nil || n <= 0 {
				return Format{}, formatError(s, i, "invalid width")
			}
			tok.Size = n
			i += end + 1
		}
		groups = append(groups, Group{Token: tok, Count: count})
	}
	return Normalize(groups...), nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func formatError(s string, pos int, detail string) error {
	return errors.New(errors.PhaseParse, errors.KindInvalidData).
		Value(s).
		Detail("format %q at offset %d: %s", s, pos, detail).
		Build()
}
