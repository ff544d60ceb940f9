package alphabet

import (
	"sort"
	"strings"
)

// Interval is a closed range of symbols [Lo, Hi].
type Interval struct {
	Lo, Hi rune
}

// Contains reports whether r falls inside the interval.
func (iv Interval) Contains(r rune) bool {
	return r >= iv.Lo && r <= iv.Hi
}

// Single returns an interval holding exactly one symbol.
func Single(r rune) Interval {
	return Interval{Lo: r, Hi: r}
}

// Set is a character set: a sorted list of non-overlapping, non-adjacent
// closed intervals over an alphabet.
//
// The zero value is the empty set. Sets are immutable; all operations return
// new sets.
type Set struct {
	intervals []Interval
}

// NewSet builds a set from arbitrary intervals, normalizing them for the
// given alphabet: intervals are sorted by low bound and overlapping or
// adjacent intervals are merged.
func NewSet(a Alphabet, intervals ...Interval) Set {
	ivs := make([]Interval, 0, len(intervals))
	for _, iv := range intervals {
		if iv.Lo > iv.Hi {
			continue
		}
		ivs = append(ivs, iv)
	}
	sort.Slice(ivs, func(i, j int) bool {
		if ivs[i].Lo != ivs[j].Lo {
			return ivs[i].Lo < ivs[j].Lo
		}
		return ivs[i].Hi < ivs[j].Hi
	})
	merged := make([]Interval, 0, len(ivs))
	for _, iv := range ivs {
		if n := len(merged); n > 0 {
			last := &merged[n-1]
			// Merge overlapping intervals, and adjacent ones
			// ([a,b][b+1,c] collapses to [a,c]).
			if iv.Lo <= last.Hi || (last.Hi < a.Max() && iv.Lo <= a.After(last.Hi)) {
				if iv.Hi > last.Hi {
					last.Hi = iv.Hi
				}
				continue
			}
		}
		merged = append(merged, iv)
	}
	return Set{intervals: merged}
}

// Singleton returns the set holding exactly the symbol r.
func Singleton(a Alphabet, r rune) Set {
	return NewSet(a, Single(r))
}

// Intervals returns the normalized intervals of the set, sorted by low bound.
// The returned slice must not be modified.
func (s Set) Intervals() []Interval {
	return s.intervals
}

// IsEmpty reports whether the set holds no symbols.
func (s Set) IsEmpty() bool {
	return len(s.intervals) == 0
}

// Contains reports whether r is a member of the set.
func (s Set) Contains(r rune) bool {
	// Binary search for the first interval with Hi >= r.
	i := sort.Search(len(s.intervals), func(i int) bool {
		return s.intervals[i].Hi >= r
	})
	return i < len(s.intervals) && s.intervals[i].Contains(r)
}

// Union returns the set of symbols in s or t.
func (s Set) Union(a Alphabet, t Set) Set {
	ivs := make([]Interval, 0, len(s.intervals)+len(t.intervals))
	ivs = append(ivs, s.intervals...)
	ivs = append(ivs, t.intervals...)
	return NewSet(a, ivs...)
}

// Intersect returns the set of symbols in both s and t.
func (s Set) Intersect(a Alphabet, t Set) Set {
	var out []Interval
	i, j := 0, 0
	for i < len(s.intervals) && j < len(t.intervals) {
		x, y := s.intervals[i], t.intervals[j]
		lo, hi := x.Lo, x.Hi
		if y.Lo > lo {
			lo = y.Lo
		}
		if y.Hi < hi {
			hi = y.Hi
		}
		if lo <= hi {
			out = append(out, Interval{Lo: lo, Hi: hi})
		}
		if x.Hi < y.Hi {
			i++
		} else {
			j++
		}
	}
	return NewSet(a, out...)
}

// Invert returns the complement of s within the alphabet a.
func (s Set) Invert(a Alphabet) Set {
	var out []Interval
	next := a.Min()
	for _, iv := range s.intervals {
		if iv.Lo > next {
			out = append(out, Interval{Lo: next, Hi: a.Before(iv.Lo)})
		}
		if iv.Hi >= a.Max() {
			return NewSet(a, out...)
		}
		next = a.After(iv.Hi)
	}
	out = append(out, Interval{Lo: next, Hi: a.Max()})
	return NewSet(a, out...)
}

// String returns a compact class-like rendering, e.g. "[a-z0-9]".
func (s Set) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for _, iv := range s.intervals {
		if iv.Lo == iv.Hi {
			b.WriteRune(iv.Lo)
		} else {
			b.WriteRune(iv.Lo)
			b.WriteByte('-')
			b.WriteRune(iv.Hi)
		}
	}
	b.WriteByte(']')
	return b.String()
}
