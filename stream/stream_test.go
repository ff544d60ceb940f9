package stream

import "testing"

// TestText_Positions tests line/column tracking
func TestText_Positions(t *testing.T) {
	c := FromString("ab\ncd\ne", "input.txt")

	tests := []struct {
		advance int
		line    int
		col     int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{2, 1, 3}, // the newline itself
		{3, 2, 1},
		{5, 2, 3},
		{6, 3, 1},
		{7, 3, 2}, // end of input
	}
	for _, tt := range tests {
		pos := c.Advance(tt.advance).Position()
		if pos.Line != tt.line || pos.Col != tt.col {
			t.Errorf("offset %d: got %d:%d, want %d:%d", tt.advance, pos.Line, pos.Col, tt.line, tt.col)
		}
		if pos.Source != "input.txt" {
			t.Errorf("offset %d: source = %q", tt.advance, pos.Source)
		}
	}
}

// TestText_Restartable tests that advancing produces a new cursor and leaves
// the old one valid
func TestText_Restartable(t *testing.T) {
	c := FromString("abc", "")
	d := c.Advance(2)

	if sym, ok := c.Peek(); !ok || sym.(rune) != 'a' {
		t.Errorf("original cursor moved: peek = %v", sym)
	}
	if sym, ok := d.Peek(); !ok || sym.(rune) != 'c' {
		t.Errorf("advanced cursor: peek = %v, want 'c'", sym)
	}
	if c.Remaining() != 3 || d.Remaining() != 1 {
		t.Errorf("remaining = %d, %d; want 3, 1", c.Remaining(), d.Remaining())
	}
	if d.AtEnd() {
		t.Error("cursor with one symbol left reports AtEnd")
	}
	if !d.Advance(5).AtEnd() {
		t.Error("over-advanced cursor does not report AtEnd")
	}
}

// TestText_Keys tests memoization key identity
func TestText_Keys(t *testing.T) {
	c := FromString("abc", "")
	same := c.Advance(2)
	back := c.Advance(3).Advance(0)

	if c.Advance(2).Key() != same.Key() {
		t.Error("same position produced different keys")
	}
	if c.Key() == same.Key() {
		t.Error("different positions produced equal keys")
	}
	_ = back

	other := FromString("abc", "")
	if c.Key() == other.Key() {
		t.Error("cursors over different sources share keys")
	}
}

// TestText_Runes tests the scanning fast path
func TestText_Runes(t *testing.T) {
	c := FromString("héllo", "")
	if got := string(c.Runes()); got != "héllo" {
		t.Errorf("Runes() = %q", got)
	}
	if got := string(c.Advance(2).(Text).Runes()); got != "llo" {
		t.Errorf("advanced Runes() = %q", got)
	}
	if c.Remaining() != 5 {
		t.Errorf("Remaining() = %d, want 5 (runes, not bytes)", c.Remaining())
	}
}

// TestValues_Cursor tests generic value streams
func TestValues_Cursor(t *testing.T) {
	c := FromValues([]any{1, "two", 3.0}, "vals")
	if sym, ok := c.Peek(); !ok || sym != 1 {
		t.Errorf("peek = %v, want 1", sym)
	}
	got := c.Slice(3)
	if len(got) != 3 || got[1] != "two" {
		t.Errorf("slice = %v", got)
	}
	if !c.Advance(3).AtEnd() {
		t.Error("exhausted cursor does not report AtEnd")
	}
}

// TestTokens_Cursor tests token streams and pass-through positions
func TestTokens_Cursor(t *testing.T) {
	toks := []Token{
		{IDs: []string{"A"}, Lexeme: "x", Start: Position{Offset: 0, Line: 1, Col: 1}},
		{IDs: []string{"A", "B"}, Lexeme: "y", Start: Position{Offset: 2, Line: 1, Col: 3}},
	}
	end := Position{Offset: 3, Line: 1, Col: 4}
	c := FromTokens(toks, "src", end)

	sym, ok := c.Peek()
	if !ok {
		t.Fatal("peek failed")
	}
	tok := sym.(Token)
	if tok.Lexeme != "x" || !tok.Has("A") || tok.Has("B") {
		t.Errorf("first token = %v", tok)
	}

	if pos := c.Advance(1).Position(); pos.Col != 3 {
		t.Errorf("second token position = %v, want col 3", pos)
	}
	if pos := c.Advance(2).Position(); pos != end {
		t.Errorf("end position = %v, want %v", pos, end)
	}
	if c.Key() == c.Advance(1).Key() {
		t.Error("token positions share keys")
	}
}
