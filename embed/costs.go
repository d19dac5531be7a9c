package embed

import (
	"sync"
	"time"
)

// UsageEvent records the token consumption of one successful provider
// call.
type UsageEvent struct {
	Model        string
	Texts        int
	PromptTokens int
	TotalTokens  int
	At           time.Time
}

// CostRecorder receives usage events from the orchestrator.
// Implementations must be safe for concurrent use.
type CostRecorder interface {
	RecordUsage(event UsageEvent)
}

// MemoryCostRecorder aggregates usage events in memory.
type MemoryCostRecorder struct {
	mu           sync.Mutex
	events       []UsageEvent
	promptTokens int
	totalTokens  int
}

var _ CostRecorder = (*MemoryCostRecorder)(nil)

// NewMemoryCostRecorder creates an empty in-memory recorder.
func NewMemoryCostRecorder() *MemoryCostRecorder {
	return &MemoryCostRecorder{}
}

// RecordUsage appends an event and updates the running totals.
func (r *MemoryCostRecorder) RecordUsage(event UsageEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	r.promptTokens += event.PromptTokens
	r.totalTokens += event.TotalTokens
}

// PromptTokens returns the accumulated prompt token count.
func (r *MemoryCostRecorder) PromptTokens() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.promptTokens
}

// TotalTokens returns the accumulated total token count.
func (r *MemoryCostRecorder) TotalTokens() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.totalTokens
}

// Events returns a copy of the recorded events in order.
func (r *MemoryCostRecorder) Events() []UsageEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]UsageEvent, len(r.events))
	copy(out, r.events)
	return out
}
