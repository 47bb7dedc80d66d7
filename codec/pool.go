package codec

import (
	"sync"

	"github.com/wippyai/structwire/wire"
)

const (
	// Pool limits to prevent memory bloat
	poolMaxValues  = 1024
	poolInitValues = 32
)

// flat value buffer pool shared by decode and encode
var valuesPool = sync.Pool{
	New: func() any {
		buf := make([]wire.Value, 0, poolInitValues)
		return &buf
	},
}

func getValues() *[]wire.Value {
	return valuesPool.Get().(*[]wire.Value)
}

func putValues(buf *[]wire.Value) {
	if buf == nil || cap(*buf) > poolMaxValues {
		return // reject oversized
	}
	clear(*buf) // drop references to sized payloads
	*buf = (*buf)[:0]
	valuesPool.Put(buf)
}
