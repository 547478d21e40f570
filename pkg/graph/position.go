package graph

// Ordering keys for content blocks. Keys are fractional indexes over the
// id alphabet (which is byte-ascending, so plain string comparison orders
// them): a key strictly between any two existing keys can always be
// produced without renumbering neighbours.

// Between returns a key k with lower < k, and k < upper when upper is
// non-empty. An empty lower means "before everything", an empty upper
// means "after everything". Generated keys never end on the smallest
// alphabet digit, so there is always room to insert in front of them.
func Between(lower, upper string) string {
	return midpoint(lower, upper)
}

func midpoint(a, b string) string {
	if b != "" {
		i := 0
		for i < len(a) && i < len(b) && a[i] == b[i] {
			i++
		}
		if i > 0 {
			return b[:i] + midpoint(a[i:], b[i:])
		}
	}

	da := 0
	if a != "" {
		da = digitIndex(a[0])
	}
	db := len(idAlphabet)
	if b != "" {
		db = digitIndex(b[0])
	}

	if db-da > 1 {
		return string(idAlphabet[(da+db)/2])
	}

	// Consecutive leading digits: keep the lower digit and recurse into
	// the unbounded remainder of the lower key.
	rest := ""
	if a != "" {
		rest = a[1:]
	}
	return string(idAlphabet[da]) + midpoint(rest, "")
}

func digitIndex(c byte) int {
	for i := 0; i < len(idAlphabet); i++ {
		if idAlphabet[i] == c {
			return i
		}
	}
	return 0
}

// PositionStream yields a strictly increasing sequence of ordering keys.
// The zero value is ready to use.
type PositionStream struct {
	last string
}

// Next returns a key greater than every key the stream has produced.
func (s *PositionStream) Next() string {
	s.last = Between(s.last, "")
	return s.last
}
