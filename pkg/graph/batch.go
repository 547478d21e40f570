package graph

// DefaultFlushThreshold is the operation count past which an accumulated
// batch should be published. Large enough to amortize publication
// overhead, small enough to bound the edit payload.
const DefaultFlushThreshold = 6750

// Batch accumulates graph operations produced across entity
// materializations until the publication gate drains it. It never drops
// an operation: overflow past the threshold only signals a flush.
type Batch struct {
	ops       []Op
	threshold int
}

// NewBatch creates an empty batch. A threshold <= 0 selects
// DefaultFlushThreshold.
func NewBatch(threshold int) *Batch {
	if threshold <= 0 {
		threshold = DefaultFlushThreshold
	}
	return &Batch{threshold: threshold}
}

// Append adds operations in the exact order generated.
func (b *Batch) Append(ops ...Op) {
	b.ops = append(b.ops, ops...)
}

// Len returns the number of accumulated operations.
func (b *Batch) Len() int {
	return len(b.ops)
}

// ShouldFlush reports whether the accumulated count exceeds the
// threshold. The check happens at record granularity: a single record's
// operations are always appended whole before the gate looks.
func (b *Batch) ShouldFlush() bool {
	return len(b.ops) > b.threshold
}

// Drain returns all accumulated operations and resets the buffer. Call
// only immediately around a publish.
func (b *Batch) Drain() []Op {
	ops := b.ops
	b.ops = nil
	return ops
}
