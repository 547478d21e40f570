package graph

import (
	"fmt"
	"testing"
)

func TestBatchFlushThreshold(t *testing.T) {
	b := NewBatch(6750)

	for i := 0; i < 6750; i++ {
		b.Append(MakeText(fmt.Sprintf("e%d", i), "a", "v"))
		if b.ShouldFlush() {
			t.Fatalf("ShouldFlush true at %d ops, threshold not exceeded", b.Len())
		}
	}

	b.Append(MakeText("e", "a", "v"))
	if !b.ShouldFlush() {
		t.Fatalf("ShouldFlush false at %d ops", b.Len())
	}

	drained := b.Drain()
	if len(drained) != 6751 {
		t.Fatalf("Drain returned %d ops, want 6751", len(drained))
	}
	if b.Len() != 0 {
		t.Fatalf("batch not reset after drain, len = %d", b.Len())
	}
	if b.ShouldFlush() {
		t.Fatal("empty batch must not request a flush")
	}
}

func TestBatchDefaultThreshold(t *testing.T) {
	b := NewBatch(0)
	if b.threshold != DefaultFlushThreshold {
		t.Fatalf("threshold = %d, want %d", b.threshold, DefaultFlushThreshold)
	}
}

func TestBatchAppendKeepsOrder(t *testing.T) {
	b := NewBatch(10)
	b.Append(MakeText("e1", "a", "v"), MakeText("e2", "a", "v"))
	b.Append(MakeText("e3", "a", "v"))

	ops := b.Drain()
	want := []string{"e1", "e2", "e3"}
	for i, id := range want {
		if ops[i].Triple.EntityID != id {
			t.Fatalf("op %d entity = %q, want %q", i, ops[i].Triple.EntityID, id)
		}
	}
}
