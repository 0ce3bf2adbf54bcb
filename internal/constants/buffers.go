package constants

// Buffer size constants in bytes
const (
	// LineBufferInitialCapacity is the initial capacity for line buffers (4KB)
	LineBufferInitialCapacity = 4096

	// DefaultChunkSize is the default chunk size for reading (64KB)
	DefaultChunkSize = 64 * 1024
)
