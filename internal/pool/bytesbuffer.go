package pool

import (
	"bytes"
	"sync"

	"github.com/linetap/linetap/internal/constants"
)

// BytesBuffer is there to optimize memory allocations. Splitting a busy byte
// stream into lines otherwise allocates one buffer per line.
var BytesBuffer = sync.Pool{
	New: func() interface{} {
		b := bytes.Buffer{}
		// Most lines fit well below 4KB; growing up front avoids
		// reallocations while a partial line accumulates.
		b.Grow(constants.LineBufferInitialCapacity)
		return &b
	},
}

// GetBytesBuffer returns an empty buffer from the pool.
func GetBytesBuffer() *bytes.Buffer {
	return BytesBuffer.Get().(*bytes.Buffer)
}

// RecycleBytesBuffer recycles the buffer again.
func RecycleBytesBuffer(b *bytes.Buffer) {
	b.Reset()
	BytesBuffer.Put(b)
}
