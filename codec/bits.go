package codec

import (
	"github.com/wippyai/structwire/errors"
	"github.com/wippyai/structwire/schema"
	"github.com/wippyai/structwire/wire"
)

// splitBits expands raw least significant bit first and hands each entry its
// bits in declared index order.
func splitBits(m *schema.BitMap, raw uint64, dst slots) {
	bits := wire.ExpandBits(raw, m.Raw.Size)
	for i := range m.Entries {
		e := &m.Entries[i]
		vals := make([]bool, len(e.Indices))
		for k, bit := range e.Indices {
			vals[k] = bits[bit]
		}
		dst.storeBits(e, vals)
	}
}

// joinBits writes each entry's booleans at their declared positions over a
// zeroed bit sequence and compacts it: raw = sum of bit[i] << i.
func joinBits(m *schema.BitMap, src slots) (uint64, error) {
	bits := make([]bool, m.Width())
	for i := range m.Entries {
		e := &m.Entries[i]
		vals, err := src.loadBits(e)
		if err != nil {
			return 0, err
		}
		if len(vals) != len(e.Indices) {
			return 0, errors.LengthMismatch(errors.PhaseEncode, []string{e.Name}, len(vals), len(e.Indices))
		}
		for k, bit := range e.Indices {
			bits[bit] = vals[k]
		}
	}
	return wire.CompactBits(bits), nil
}
