package stream

import "sync/atomic"

var idCounter uint64

// NextID returns a process-wide unique, monotonically increasing ID.
// Stores and listeners share this sequence.
func NextID() uint64 {
	return atomic.AddUint64(&idCounter, 1)
}
