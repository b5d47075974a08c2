package codec

import (
	"bytes"
	"sync"
)

// bytesBufPool reuses buffers for payloads received from a stream.
// This reduces GC pressure by avoiding frequent allocations. We pool *bytes.Buffer
// because they are easily reset and resized.
var bytesBufPool = sync.Pool{
	New: func() any {
		// A 4KB default is chosen to avoid re-allocations for common packet sizes.
		return bytes.NewBuffer(make([]byte, 0, 4096))
	},
}
