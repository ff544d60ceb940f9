package stream

import (
	"io"
	"os"
	"sort"
)

// textSource is the shared backing store of every Text cursor into one input.
type textSource struct {
	runes []rune
	name  string
	// lineStarts holds the rune offset of the first symbol of each line,
	// in ascending order, starting with 0.
	lineStarts []int
}

// Text is an immutable cursor over the runes of a string.
type Text struct {
	src *textSource
	off int
}

// FromString returns a cursor at the start of s. The name labels the source
// in positions and error messages; it may be empty.
func FromString(s, name string) Text {
	runes := []rune(s)
	starts := []int{0}
	for i, r := range runes {
		if r == '\n' {
			starts = append(starts, i+1)
		}
	}
	return Text{src: &textSource{runes: runes, name: name, lineStarts: starts}}
}

// FromRunes returns a cursor over an existing rune slice.
// The slice must not be modified afterwards.
func FromRunes(runes []rune, name string) Text {
	starts := []int{0}
	for i, r := range runes {
		if r == '\n' {
			starts = append(starts, i+1)
		}
	}
	return Text{src: &textSource{runes: runes, name: name, lineStarts: starts}}
}

// FromReader reads r to the end and returns a cursor over its contents.
// The input length must be known up front; there is no incremental reading.
func FromReader(r io.Reader, name string) (Text, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Text{}, err
	}
	return FromString(string(data), name), nil
}

// FromFile reads the file at path and returns a cursor over its contents,
// using the path as the source name.
func FromFile(path string) (Text, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Text{}, err
	}
	return FromString(string(data), path), nil
}

// Peek returns the rune at the cursor, or false at end of input.
func (t Text) Peek() (any, bool) {
	if t.off >= len(t.src.runes) {
		return nil, false
	}
	return t.src.runes[t.off], true
}

// Advance returns a cursor n runes further on, clamped to end of input.
func (t Text) Advance(n int) Cursor {
	off := t.off + n
	if off > len(t.src.runes) {
		off = len(t.src.runes)
	}
	return Text{src: t.src, off: off}
}

// Slice returns the next n runes as symbols.
func (t Text) Slice(n int) []any {
	end := t.off + n
	if end > len(t.src.runes) {
		end = len(t.src.runes)
	}
	out := make([]any, 0, end-t.off)
	for _, r := range t.src.runes[t.off:end] {
		out = append(out, r)
	}
	return out
}

// Runes returns the remaining input as a rune slice.
func (t Text) Runes() []rune {
	return t.src.runes[t.off:]
}

// Remaining returns the number of runes left.
func (t Text) Remaining() int {
	return len(t.src.runes) - t.off
}

// AtEnd reports whether the cursor is at end of input.
func (t Text) AtEnd() bool {
	return t.off >= len(t.src.runes)
}

// Position returns the 1-based line/column position of the cursor.
func (t Text) Position() Position {
	// Find the last line start <= off.
	i := sort.Search(len(t.src.lineStarts), func(i int) bool {
		return t.src.lineStarts[i] > t.off
	}) - 1
	return Position{
		Offset: t.off,
		Line:   i + 1,
		Col:    t.off - t.src.lineStarts[i] + 1,
		Source: t.src.name,
	}
}

// Key returns the memoization key for this position.
func (t Text) Key() Key {
	return Key{Source: t.src, Offset: t.off}
}
