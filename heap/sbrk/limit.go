package sbrk

import "fmt"

// Limited wraps an Extender and refuses to let its region grow past max bytes.
type Limited struct {
	Extender
	max      int
	refusals int
}

// Limit caps ext at limit bytes.
func Limit(ext Extender, limit int) *Limited {
	return &Limited{Extender: ext, max: limit}
}

// Extend implements Extender.
func (l *Limited) Extend(n int) (int, error) {
	if n < 0 {
		return 0, ErrNegative
	}
	cur := len(l.Extender.Bytes())
	if !fits(cur, n, int64(l.max)) {
		l.refusals++
		return 0, fmt.Errorf("%w: limit %d reached (brk=%d incr=%d)", ErrExhausted, l.max, cur, n)
	}
	return l.Extender.Extend(n)
}

// Refusals returns how many requests were rejected by the limit.
func (l *Limited) Refusals() int { return l.refusals }
