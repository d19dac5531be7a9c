package embed

// ChunkState is the terminal embedding state of a chunk within one
// orchestrator run.
type ChunkState int

const (
	// StateEmbedded means a new vector was generated and stored.
	StateEmbedded ChunkState = iota + 1

	// StateReused means an existing vector was found, either in storage
	// or produced by a concurrent request for identical content.
	StateReused

	// StateSkipped means the circuit breaker rejected the chunk without
	// calling the provider.
	StateSkipped

	// StateFailed means every attempt for the chunk failed.
	StateFailed
)

// String returns the state name.
func (s ChunkState) String() string {
	switch s {
	case StateEmbedded:
		return "embedded"
	case StateReused:
		return "reused"
	case StateSkipped:
		return "skipped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
