package codec

import (
	"encoding/binary"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/structwire/errors"
)

// DecodeFromMemory decodes the structure stored at offset in a guest's
// linear memory into v (see Decode).
func DecodeFromMemory(mem api.Memory, offset uint32, v any, order binary.ByteOrder) error {
	if mem == nil {
		return errors.NilPointer(errors.PhaseMemory, nil, "api.Memory")
	}
	s, dst, err := bind(v, true)
	if err != nil {
		return err
	}

	n := s.ByteLength()
	data, ok := mem.Read(offset, uint32(n))
	if !ok {
		return errors.OutOfBounds(errors.PhaseMemory, nil, int(offset)+n, int(mem.Size()))
	}
	// data aliases guest memory; Unpack copies sized values out of it
	return decode(s, dst, data, order)
}

// EncodeToMemory encodes v and writes it at offset in a guest's linear
// memory. Nothing is written if encoding fails.
func EncodeToMemory(mem api.Memory, offset uint32, v any, order binary.ByteOrder) error {
	if mem == nil {
		return errors.NilPointer(errors.PhaseMemory, nil, "api.Memory")
	}
	data, err := Encode(v, order)
	if err != nil {
		return err
	}
	if !mem.Write(offset, data) {
		return errors.OutOfBounds(errors.PhaseMemory, nil, int(offset)+len(data), int(mem.Size()))
	}
	return nil
}
