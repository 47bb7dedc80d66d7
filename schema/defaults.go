package schema

import (
	"strconv"

	"github.com/wippyai/structwire/errors"
	"github.com/wippyai/structwire/wire"
)

// canonicalDefault range checks v against tok and returns the value the
// codec would produce when decoding it.
func canonicalDefault(tok wire.Token, v any) (any, error) {
	raw, err := wire.Lower(tok, v)
	if err != nil {
		return nil, err
	}
	return wire.Lift(tok, raw), nil
}

// parseDefault reads a default= tag value. Integers accept any base prefix
// understood by strconv (0x, 0o, 0b).
func parseDefault(tok wire.Token, text string) (any, error) {
	var v any
	var err error
	switch {
	case tok.IsUnsigned():
		v, err = strconv.ParseUint(text, 0, 64)
	case tok.IsSigned():
		v, err = strconv.ParseInt(text, 0, 64)
	case tok.IsFloat():
		v, err = strconv.ParseFloat(text, 64)
	default:
		v = text
	}
	if err != nil {
		return nil, errors.New(errors.PhaseSchema, errors.KindInvalidData).
			WireType(tok.Name()).
			Value(text).
			Detail("invalid default %q", text).
			Cause(err).
			Build()
	}
	return canonicalDefault(tok, v)
}
