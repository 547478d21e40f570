package graph

import "testing"

func TestBetween(t *testing.T) {
	tests := []struct {
		name  string
		lower string
		upper string
	}{
		{name: "unbounded both sides", lower: "", upper: ""},
		{name: "append after mid key", lower: "U", upper: ""},
		{name: "append after high key", lower: "z", upper: ""},
		{name: "between adjacent digits", lower: "U", upper: "V"},
		{name: "between distant keys", lower: "5", upper: "x"},
		{name: "shared prefix", lower: "UU", upper: "UX"},
		{name: "insert before generated key", lower: "", upper: "U"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Between(tt.lower, tt.upper)
			if got <= tt.lower {
				t.Fatalf("Between(%q, %q) = %q, not above lower bound", tt.lower, tt.upper, got)
			}
			if tt.upper != "" && got >= tt.upper {
				t.Fatalf("Between(%q, %q) = %q, not below upper bound", tt.lower, tt.upper, got)
			}
		})
	}
}

func TestPositionStreamMonotonic(t *testing.T) {
	var s PositionStream
	prev := ""
	for i := 0; i < 500; i++ {
		key := s.Next()
		if key <= prev {
			t.Fatalf("key %d %q not greater than previous %q", i, key, prev)
		}
		prev = key
	}
}

func TestBetweenSupportsLaterInsertion(t *testing.T) {
	var s PositionStream
	a := s.Next()
	b := s.Next()

	mid := Between(a, b)
	if mid <= a || mid >= b {
		t.Fatalf("Between(%q, %q) = %q, not strictly inside", a, b, mid)
	}
}
