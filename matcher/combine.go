package matcher

import (
	"fmt"

	"github.com/coregx/parco/stream"
	"github.com/coregx/parco/transform"
)

// And matches its children in sequence, yielding the concatenation of their
// values for every combination of child results. Backtracking advances the
// rightmost child first.
type And struct {
	base
	children []Matcher
}

// NewAnd matches children in sequence.
func NewAnd(children ...Matcher) *And {
	return &And{children: children}
}

// Children implements Matcher.
func (m *And) Children() []Matcher { return m.children }

// Rebuild implements Matcher.
func (m *And) Rebuild(children []Matcher, fn transform.Func) Matcher {
	c := *m
	c.children = children
	c.fn = fn
	return &c
}

// Describe implements Matcher.
func (m *And) Describe() string {
	return m.describe(fmt.Sprintf("And(%d)", len(m.children)))
}

// Match implements Matcher.
func (m *And) Match(ctx *Context, c stream.Cursor) Generator {
	return m.wrap(&andGen{ctx: ctx, children: m.children, start: c})
}

type andGen struct {
	ctx      *Context
	children []Matcher
	start    stream.Cursor

	gens     []Generator // active child generators, one per started child
	results  []Result    // current result of each active child
	awaiting bool        // the last Step issued a Call
	started  bool
	closed   bool
}

func (g *andGen) Step(reply Reply) (Step, error) {
	if g.closed {
		return done()
	}
	if !g.awaiting {
		if !g.started {
			g.started = true
			if len(g.children) == 0 {
				// An empty sequence matches once, consuming nothing.
				g.closed = true
				return yield(nil, g.start)
			}
			return g.callChild(0, g.start)
		}
		// Resumed after a yield: pull the next result of the rightmost
		// child (standard backtracking order).
		g.awaiting = true
		return call(g.gens[len(g.gens)-1])
	}

	g.awaiting = false
	k := len(g.gens) - 1
	if reply.OK {
		g.results[k] = reply.Result
		if k == len(g.children)-1 {
			return yield(g.concat(), reply.Result.Rest)
		}
		return g.callChild(k+1, reply.Result.Rest)
	}

	// Child k is exhausted: drop it and backtrack into child k-1.
	g.gens[k].Close()
	g.gens = g.gens[:k]
	g.results = g.results[:k]
	if k == 0 {
		g.closed = true
		return done()
	}
	g.awaiting = true
	return call(g.gens[k-1])
}

func (g *andGen) callChild(i int, c stream.Cursor) (Step, error) {
	child := g.children[i].Match(g.ctx, c)
	g.gens = append(g.gens, child)
	g.results = append(g.results, Result{})
	g.awaiting = true
	return call(child)
}

func (g *andGen) concat() []any {
	n := 0
	for _, r := range g.results {
		n += len(r.Values)
	}
	out := make([]any, 0, n)
	for _, r := range g.results {
		out = append(out, r.Values...)
	}
	return out
}

func (g *andGen) Close() {
	if g.closed {
		return
	}
	g.closed = true
	for _, child := range g.gens {
		child.Close()
	}
}

// Or matches its children as alternatives: every result of every child is
// yielded, in child declaration order, with no deduplication.
type Or struct {
	base
	children []Matcher
}

// NewOr matches any of children, trying all of them.
func NewOr(children ...Matcher) *Or {
	return &Or{children: children}
}

// Children implements Matcher.
func (m *Or) Children() []Matcher { return m.children }

// Rebuild implements Matcher.
func (m *Or) Rebuild(children []Matcher, fn transform.Func) Matcher {
	c := *m
	c.children = children
	c.fn = fn
	return &c
}

// Describe implements Matcher.
func (m *Or) Describe() string {
	return m.describe(fmt.Sprintf("Or(%d)", len(m.children)))
}

// Match implements Matcher.
func (m *Or) Match(ctx *Context, c stream.Cursor) Generator {
	return m.wrap(&orGen{ctx: ctx, children: m.children, start: c})
}

type orGen struct {
	ctx      *Context
	children []Matcher
	start    stream.Cursor

	idx      int
	cur      Generator
	awaiting bool
	closed   bool
}

func (g *orGen) Step(reply Reply) (Step, error) {
	if g.closed {
		return done()
	}
	if g.awaiting {
		g.awaiting = false
		if reply.OK {
			return yieldResult(reply.Result)
		}
		g.cur.Close()
		g.cur = nil
		g.idx++
	}
	if g.cur == nil {
		if g.idx >= len(g.children) {
			g.closed = true
			return done()
		}
		g.cur = g.children[g.idx].Match(g.ctx, g.start)
	}
	g.awaiting = true
	return call(g.cur)
}

func (g *orGen) Close() {
	if g.closed {
		return
	}
	g.closed = true
	if g.cur != nil {
		g.cur.Close()
	}
}

// First is committed alternation: it yields all results of the first child
// that produces at least one result, and nothing else. Once a child has
// produced a result there is no fall-through to later children.
type First struct {
	base
	children []Matcher
}

// NewFirst matches the first of children that succeeds, committing to it.
func NewFirst(children ...Matcher) *First {
	return &First{children: children}
}

// Children implements Matcher.
func (m *First) Children() []Matcher { return m.children }

// Rebuild implements Matcher.
func (m *First) Rebuild(children []Matcher, fn transform.Func) Matcher {
	c := *m
	c.children = children
	c.fn = fn
	return &c
}

// Describe implements Matcher.
func (m *First) Describe() string {
	return m.describe(fmt.Sprintf("First(%d)", len(m.children)))
}

// Match implements Matcher.
func (m *First) Match(ctx *Context, c stream.Cursor) Generator {
	return m.wrap(&firstGen{ctx: ctx, children: m.children, start: c})
}

type firstGen struct {
	ctx      *Context
	children []Matcher
	start    stream.Cursor

	idx       int
	cur       Generator
	committed bool
	awaiting  bool
	closed    bool
}

func (g *firstGen) Step(reply Reply) (Step, error) {
	if g.closed {
		return done()
	}
	if g.awaiting {
		g.awaiting = false
		if reply.OK {
			g.committed = true
			return yieldResult(reply.Result)
		}
		g.cur.Close()
		g.cur = nil
		if g.committed {
			// The committed child is exhausted; no fall-through.
			g.closed = true
			return done()
		}
		g.idx++
	}
	if g.cur == nil {
		if g.idx >= len(g.children) {
			g.closed = true
			return done()
		}
		g.cur = g.children[g.idx].Match(g.ctx, g.start)
	}
	g.awaiting = true
	return call(g.cur)
}

func (g *firstGen) Close() {
	if g.closed {
		return
	}
	g.closed = true
	if g.cur != nil {
		g.cur.Close()
	}
}
