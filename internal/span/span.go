// Package span models character-offset intervals over document text.
//
// Node spans produced by tokenization are half-open: [Start, End).
// Mention head and extent spans coming from annotation are closed:
// [Start, End]. Both use the same value type; the helpers below say
// which convention they assume.
package span

import "fmt"

// Span is a character interval. Start <= End.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// New returns a span, swapping the bounds if they are inverted.
func New(start, end int) Span {
	if end < start {
		start, end = end, start
	}
	return Span{Start: start, End: end}
}

// Len returns End - Start.
func (s Span) Len() int {
	return s.End - s.Start
}

// Contains reports whether o lies within s.
func (s Span) Contains(o Span) bool {
	return s.Start <= o.Start && o.End <= s.End
}

// Overlaps reports whether the closed intervals s and o share a point.
func (s Span) Overlaps(o Span) bool {
	return s.Start <= o.End && o.Start <= s.End
}

// Hull returns the smallest span covering both s and o.
func (s Span) Hull(o Span) Span {
	return Span{Start: min(s.Start, o.Start), End: max(s.End, o.End)}
}

// Closed converts a half-open node span into the closed form used by
// mention annotation: [Start, End-1].
func (s Span) Closed() Span {
	return Span{Start: s.Start, End: s.End - 1}
}

// HullOf returns the hull of all spans. ok is false for an empty list.
func HullOf(spans ...Span) (h Span, ok bool) {
	for i, s := range spans {
		if i == 0 {
			h = s
			continue
		}
		h = h.Hull(s)
	}
	return h, len(spans) > 0
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d]", s.Start, s.End)
}
