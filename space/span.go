package space

// Span is a half-open [Start, End) region of a space. Negative bounds count
// from the end of the space, mirroring the selector syntax.
type Span struct {
	Start int
	End   int
}

// Norm resolves negative bounds against a space of length n and clamps the
// result to [0, n], so spans reaching past either end select what is
// actually there.
func (s Span) Norm(n int) Span {
	if s.Start < 0 {
		s.Start = n + s.Start
	}
	if s.End < 0 {
		s.End = n + s.End
	}
	if s.Start < 0 {
		s.Start = 0
	}
	if s.Start > n {
		s.Start = n
	}
	if s.End > n {
		s.End = n
	}
	if s.End < s.Start {
		s.End = s.Start
	}
	return s
}

// Len returns the width of the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Overlaps reports whether two normalized spans intersect anywhere other
// than their endpoints.
func (s Span) Overlaps(o Span) bool {
	return (s.Start < o.Start && o.Start < s.End) ||
		(s.Start < o.End && o.End < s.End) ||
		(o.Start < s.Start && s.Start < o.End) ||
		(o.Start < s.End && s.End < o.End)
}

// Offset shifts both bounds by d.
func (s Span) Offset(d int) Span {
	return Span{Start: s.Start + d, End: s.End + d}
}
