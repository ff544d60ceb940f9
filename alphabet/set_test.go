package alphabet

import "testing"

// TestSet_Normalize tests interval merging and sorting
func TestSet_Normalize(t *testing.T) {
	tests := []struct {
		name      string
		intervals []Interval
		want      []Interval
	}{
		{
			name:      "disjoint stay separate",
			intervals: []Interval{{Lo: 'a', Hi: 'c'}, {Lo: 'x', Hi: 'z'}},
			want:      []Interval{{Lo: 'a', Hi: 'c'}, {Lo: 'x', Hi: 'z'}},
		},
		{
			name:      "unsorted input is sorted",
			intervals: []Interval{{Lo: 'x', Hi: 'z'}, {Lo: 'a', Hi: 'c'}},
			want:      []Interval{{Lo: 'a', Hi: 'c'}, {Lo: 'x', Hi: 'z'}},
		},
		{
			name:      "overlapping merge",
			intervals: []Interval{{Lo: 'a', Hi: 'm'}, {Lo: 'g', Hi: 'z'}},
			want:      []Interval{{Lo: 'a', Hi: 'z'}},
		},
		{
			name:      "adjacent merge",
			intervals: []Interval{{Lo: 'a', Hi: 'm'}, {Lo: 'n', Hi: 'z'}},
			want:      []Interval{{Lo: 'a', Hi: 'z'}},
		},
		{
			name:      "contained collapse",
			intervals: []Interval{{Lo: 'a', Hi: 'z'}, {Lo: 'g', Hi: 'm'}},
			want:      []Interval{{Lo: 'a', Hi: 'z'}},
		},
		{
			name:      "inverted interval dropped",
			intervals: []Interval{{Lo: 'z', Hi: 'a'}, {Lo: 'b', Hi: 'b'}},
			want:      []Interval{{Lo: 'b', Hi: 'b'}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewSet(Unicode, tt.intervals...).Intervals()
			if len(got) != len(tt.want) {
				t.Fatalf("got %d intervals, want %d: %v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("interval %d: got %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// TestSet_Contains tests membership via binary search
func TestSet_Contains(t *testing.T) {
	set := NewSet(Unicode, Interval{Lo: 'a', Hi: 'f'}, Interval{Lo: '0', Hi: '9'})
	for _, r := range "abcdef0459" {
		if !set.Contains(r) {
			t.Errorf("Contains(%q) = false, want true", r)
		}
	}
	for _, r := range "gzA !." {
		if set.Contains(r) {
			t.Errorf("Contains(%q) = true, want false", r)
		}
	}
}

// TestSet_Union_Intersect tests the binary set operations
func TestSet_Union_Intersect(t *testing.T) {
	a := NewSet(Unicode, Interval{Lo: 'a', Hi: 'm'})
	b := NewSet(Unicode, Interval{Lo: 'g', Hi: 'z'})

	union := a.Union(Unicode, b)
	if got := union.Intervals(); len(got) != 1 || got[0] != (Interval{Lo: 'a', Hi: 'z'}) {
		t.Errorf("union = %v, want [a-z]", got)
	}

	inter := a.Intersect(Unicode, b)
	if got := inter.Intervals(); len(got) != 1 || got[0] != (Interval{Lo: 'g', Hi: 'm'}) {
		t.Errorf("intersection = %v, want [g-m]", got)
	}

	empty := a.Intersect(Unicode, NewSet(Unicode, Interval{Lo: '0', Hi: '9'}))
	if !empty.IsEmpty() {
		t.Errorf("disjoint intersection = %v, want empty", empty.Intervals())
	}
}

// TestSet_Invert tests complement within an alphabet
func TestSet_Invert(t *testing.T) {
	set := NewSet(Unicode, Interval{Lo: 'b', Hi: 'y'})
	inv := set.Invert(Unicode)
	for _, r := range "by" {
		if inv.Contains(r) {
			t.Errorf("inverted set contains %q", r)
		}
	}
	if !inv.Contains('a') || !inv.Contains('z') || !inv.Contains(0) {
		t.Error("inverted set missing boundary symbols")
	}

	// Inverting twice returns the original membership.
	double := inv.Invert(Unicode)
	for _, r := range "bgy" {
		if !double.Contains(r) {
			t.Errorf("double inversion lost %q", r)
		}
	}
}

// TestBinaryAlphabet tests the two-symbol alphabet
func TestBinaryAlphabet(t *testing.T) {
	if Binary.Min() != '0' || Binary.Max() != '1' {
		t.Fatalf("binary bounds = [%q, %q]", Binary.Min(), Binary.Max())
	}
	if !Binary.Contains('0') || !Binary.Contains('1') || Binary.Contains('2') {
		t.Error("binary membership incorrect")
	}
	if Binary.After('0') != '1' || Binary.Before('1') != '0' {
		t.Error("binary successor/predecessor incorrect")
	}

	full := NewSet(Binary, Interval{Lo: '0', Hi: '0'})
	inv := full.Invert(Binary)
	if got := inv.Intervals(); len(got) != 1 || got[0] != (Interval{Lo: '1', Hi: '1'}) {
		t.Errorf("binary inversion of [0] = %v, want [1]", got)
	}
}
