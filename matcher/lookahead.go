package matcher

import (
	"fmt"

	"github.com/coregx/parco/stream"
	"github.com/coregx/parco/transform"
)

// Lookahead is a zero-width assertion: it succeeds (yielding no values and
// consuming nothing) iff its child can match at the cursor. With positive
// false the sense is inverted.
type Lookahead struct {
	base
	child    Matcher
	positive bool
}

// NewLookahead asserts that child matches at the cursor without consuming
// input.
func NewLookahead(child Matcher) *Lookahead {
	return &Lookahead{child: child, positive: true}
}

// NewNot asserts that child does not match at the cursor.
func NewNot(child Matcher) *Lookahead {
	return &Lookahead{child: child, positive: false}
}

// Positive reports the sense of the assertion.
func (m *Lookahead) Positive() bool {
	return m.positive
}

// Children implements Matcher.
func (m *Lookahead) Children() []Matcher { return []Matcher{m.child} }

// Rebuild implements Matcher.
func (m *Lookahead) Rebuild(children []Matcher, fn transform.Func) Matcher {
	c := *m
	c.child = children[0]
	c.fn = fn
	return &c
}

// Describe implements Matcher.
func (m *Lookahead) Describe() string {
	if m.positive {
		return m.describe("Lookahead(+)")
	}
	return m.describe("Lookahead(-)")
}

// Match implements Matcher.
func (m *Lookahead) Match(ctx *Context, c stream.Cursor) Generator {
	return m.wrap(&lookaheadGen{ctx: ctx, m: m, start: c})
}

type lookaheadGen struct {
	ctx   *Context
	m     *Lookahead
	start stream.Cursor

	child    Generator
	awaiting bool
	closed   bool
}

func (g *lookaheadGen) Step(reply Reply) (Step, error) {
	if g.closed {
		return done()
	}
	if !g.awaiting {
		g.child = g.m.child.Match(g.ctx, g.start)
		g.awaiting = true
		return call(g.child)
	}
	g.closed = true
	g.child.Close()
	if reply.OK == g.m.positive {
		return yield(nil, g.start)
	}
	return done()
}

func (g *lookaheadGen) Close() {
	if g.closed {
		return
	}
	g.closed = true
	if g.child != nil {
		g.child.Close()
	}
}

// Delayed is a forward reference: a placeholder that is bound to a real
// matcher after construction, enabling recursive grammars. Every cycle in a
// matcher graph must pass through a Delayed node.
type Delayed struct {
	base
	bound Matcher
}

// NewDelayed creates an unbound placeholder.
func NewDelayed() *Delayed {
	return &Delayed{}
}

// Bind points the placeholder at its real matcher. A Delayed may be bound
// only once.
func (m *Delayed) Bind(target Matcher) error {
	if m.bound != nil {
		return fmt.Errorf("Delayed already bound to %s", m.bound.Describe())
	}
	m.bound = target
	return nil
}

// Bound returns the bound matcher, or nil.
func (m *Delayed) Bound() Matcher {
	return m.bound
}

// Children implements Matcher.
func (m *Delayed) Children() []Matcher {
	if m.bound == nil {
		return nil
	}
	return []Matcher{m.bound}
}

// Rebuild implements Matcher. The rewriters' clone primitive handles cycles
// itself and patches clones of Delayed nodes explicitly; Rebuild covers the
// straightforward acyclic case.
func (m *Delayed) Rebuild(children []Matcher, fn transform.Func) Matcher {
	c := &Delayed{base: m.base}
	c.fn = fn
	if len(children) > 0 {
		c.bound = children[0]
	}
	return c
}

// Describe implements Matcher.
func (m *Delayed) Describe() string {
	if m.bound == nil {
		return m.describe("Delayed(unbound)")
	}
	return m.describe("Delayed")
}

// Match implements Matcher. Matching an unbound Delayed is a structural
// error.
func (m *Delayed) Match(ctx *Context, c stream.Cursor) Generator {
	if m.bound == nil {
		return &failGen{err: &TypeError{Node: m, Err: ErrUnboundDelayed}}
	}
	return m.bound.Match(ctx, c)
}
