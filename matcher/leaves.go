package matcher

import (
	"fmt"

	"github.com/coregx/parco/alphabet"
	"github.com/coregx/parco/stream"
	"github.com/coregx/parco/transform"
)

// Literal matches a fixed symbol sequence and yields a single value for it.
type Literal struct {
	base
	value any    // value yielded on success
	seq   []any  // symbols to consume
	text  []rune // non-nil fast path when the literal is a string
}

// NewLiteral matches the runes of text against a character stream and yields
// text as its single result value.
func NewLiteral(text string) *Literal {
	runes := []rune(text)
	seq := make([]any, len(runes))
	for i, r := range runes {
		seq[i] = r
	}
	return &Literal{value: text, seq: seq, text: runes}
}

// NewLiteralValue matches the single symbol v (compared with ==) and yields
// it. Use it over generic value streams.
func NewLiteralValue(v any) *Literal {
	return &Literal{value: v, seq: []any{v}}
}

// Value returns the value the literal yields on success.
func (m *Literal) Value() any {
	return m.value
}

// Children implements Matcher.
func (m *Literal) Children() []Matcher { return nil }

// Rebuild implements Matcher.
func (m *Literal) Rebuild(_ []Matcher, fn transform.Func) Matcher {
	c := *m
	c.fn = fn
	return &c
}

// Describe implements Matcher.
func (m *Literal) Describe() string {
	return m.describe(fmt.Sprintf("Literal(%v)", m.value))
}

// Match implements Matcher.
func (m *Literal) Match(_ *Context, c stream.Cursor) Generator {
	return m.wrap(&literalGen{m: m, c: c})
}

type literalGen struct {
	m      *Literal
	c      stream.Cursor
	closed bool
}

func (g *literalGen) Step(Reply) (Step, error) {
	if g.closed {
		return done()
	}
	g.closed = true
	m := g.m
	if g.c.Remaining() < len(m.seq) {
		return done()
	}
	if m.text != nil {
		if rt, ok := g.c.(stream.RuneText); ok {
			runes := rt.Runes()
			for i, r := range m.text {
				if runes[i] != r {
					return done()
				}
			}
			return yield([]any{m.value}, g.c.Advance(len(m.text)))
		}
	}
	ahead := g.c.Slice(len(m.seq))
	for i, want := range m.seq {
		if ahead[i] != want {
			return done()
		}
	}
	return yield([]any{m.value}, g.c.Advance(len(m.seq)))
}

func (g *literalGen) Close() { g.closed = true }

// Any matches one symbol, optionally restricted to a character set, and
// yields it (runes are yielded as one-character strings).
type Any struct {
	base
	set        alphabet.Set
	restricted bool
}

// NewAny matches any single symbol.
func NewAny() *Any {
	return &Any{}
}

// NewAnyOf matches one symbol from the given character set.
func NewAnyOf(set alphabet.Set) *Any {
	return &Any{set: set, restricted: true}
}

// Set returns the character set and whether the matcher is restricted to it.
func (m *Any) Set() (alphabet.Set, bool) {
	return m.set, m.restricted
}

// Children implements Matcher.
func (m *Any) Children() []Matcher { return nil }

// Rebuild implements Matcher.
func (m *Any) Rebuild(_ []Matcher, fn transform.Func) Matcher {
	c := *m
	c.fn = fn
	return &c
}

// Describe implements Matcher.
func (m *Any) Describe() string {
	if m.restricted {
		return m.describe(fmt.Sprintf("Any(%s)", m.set))
	}
	return m.describe("Any()")
}

// Match implements Matcher.
func (m *Any) Match(_ *Context, c stream.Cursor) Generator {
	return m.wrap(&anyGen{m: m, c: c})
}

type anyGen struct {
	m      *Any
	c      stream.Cursor
	closed bool
}

func (g *anyGen) Step(Reply) (Step, error) {
	if g.closed {
		return done()
	}
	g.closed = true
	sym, ok := g.c.Peek()
	if !ok {
		return done()
	}
	if r, isRune := sym.(rune); isRune {
		if g.m.restricted && !g.m.set.Contains(r) {
			return done()
		}
		return yield([]any{string(r)}, g.c.Advance(1))
	}
	if g.m.restricted {
		return done()
	}
	return yield([]any{sym}, g.c.Advance(1))
}

func (g *anyGen) Close() { g.closed = true }

// Eos matches only at end of stream, consuming nothing.
type Eos struct {
	base
}

// NewEos matches end of stream.
func NewEos() *Eos {
	return &Eos{}
}

// Children implements Matcher.
func (m *Eos) Children() []Matcher { return nil }

// Rebuild implements Matcher.
func (m *Eos) Rebuild(_ []Matcher, fn transform.Func) Matcher {
	c := *m
	c.fn = fn
	return &c
}

// Describe implements Matcher.
func (m *Eos) Describe() string {
	return m.describe("Eos()")
}

// Match implements Matcher.
func (m *Eos) Match(_ *Context, c stream.Cursor) Generator {
	return m.wrap(&eosGen{c: c})
}

type eosGen struct {
	c      stream.Cursor
	closed bool
}

func (g *eosGen) Step(Reply) (Step, error) {
	if g.closed {
		return done()
	}
	g.closed = true
	if !g.c.AtEnd() {
		return done()
	}
	return yield(nil, g.c)
}

func (g *eosGen) Close() { g.closed = true }
