package matcher

import (
	"github.com/coregx/parco/stream"
	"github.com/coregx/parco/transform"
)

// MemoKind selects the memoization strategy of a Memo node.
type MemoKind uint8

const (
	// MemoRight is plain memoization: results at a position are computed
	// once and shared. It cannot evaluate left-recursive grammars; a
	// re-entrant call at the same position raises LeftRecursionError.
	MemoRight MemoKind = iota

	// MemoLeft is left-recursion-safe memoization with curtailment:
	// re-entrant calls deeper than the remaining input length yield
	// nothing, which bounds the recursion, and completed result sets are
	// cached for later calls at the same position.
	MemoLeft
)

// String returns "LMemo" or "RMemo".
func (k MemoKind) String() string {
	if k == MemoLeft {
		return "LMemo"
	}
	return "RMemo"
}

// Memo wraps a matcher in a memoizer keyed by input position. Memo tables
// live in the parse Context, so each invocation starts fresh and the graph
// can be shared between invocations.
type Memo struct {
	base
	child Matcher
	kind  MemoKind
}

// NewLMemo wraps child in a left-recursion-safe memoizer.
func NewLMemo(child Matcher) *Memo {
	return &Memo{child: child, kind: MemoLeft}
}

// NewRMemo wraps child in a plain memoizer.
func NewRMemo(child Matcher) *Memo {
	return &Memo{child: child, kind: MemoRight}
}

// Kind returns the memoization strategy.
func (m *Memo) Kind() MemoKind {
	return m.kind
}

// Children implements Matcher.
func (m *Memo) Children() []Matcher { return []Matcher{m.child} }

// Rebuild implements Matcher.
func (m *Memo) Rebuild(children []Matcher, fn transform.Func) Matcher {
	c := *m
	c.child = children[0]
	c.fn = fn
	return &c
}

// Describe implements Matcher.
func (m *Memo) Describe() string {
	return m.describe(m.kind.String() + "(" + m.child.Describe() + ")")
}

// Match implements Matcher.
func (m *Memo) Match(ctx *Context, c stream.Cursor) Generator {
	key := memoKey{node: m, pos: c.Key()}
	if m.kind == MemoRight {
		e, ok := ctx.rmemo[key]
		if !ok {
			e = &rmemoEntry{src: m.child.Match(ctx, c)}
			ctx.rmemo[key] = e
		}
		return m.wrap(&rmemoGen{m: m, e: e})
	}

	e, ok := ctx.lmemo[key]
	if !ok {
		e = &lmemoEntry{}
		ctx.lmemo[key] = e
	}
	if e.complete {
		return m.wrap(&replayGen{results: e.results})
	}
	// Curtailment: no useful parse can re-enter the same position more
	// times than there are symbols left to consume.
	if e.depth >= c.Remaining()+1 {
		return m.wrap(emptyGen{})
	}
	recording := e.depth == 0
	e.depth++
	return m.wrap(&lmemoGen{e: e, child: m.child.Match(ctx, c), recording: recording})
}

// rmemoEntry is the shared cache for one (matcher, position) pair: the
// results produced so far and the single child generator they are pulled
// from.
type rmemoEntry struct {
	results   []Result
	src       Generator
	exhausted bool
	active    bool // src is being pulled; re-entry means left recursion
}

type rmemoGen struct {
	m *Memo
	e *rmemoEntry

	i        int
	awaiting bool
	closed   bool
}

func (g *rmemoGen) Step(reply Reply) (Step, error) {
	if g.closed {
		return done()
	}
	if g.awaiting {
		g.awaiting = false
		g.e.active = false
		if !reply.OK {
			g.e.exhausted = true
			g.closed = true
			return done()
		}
		g.e.results = append(g.e.results, reply.Result)
		g.i++
		return yieldResult(reply.Result)
	}
	if g.i < len(g.e.results) {
		r := g.e.results[g.i]
		g.i++
		return yieldResult(r)
	}
	if g.e.exhausted {
		g.closed = true
		return done()
	}
	if g.e.active {
		// A second reader needs more results while the shared child is
		// already suspended inside this very computation: the grammar
		// recursed at a fixed position through a plain memoizer.
		g.closed = true
		return Step{}, &LeftRecursionError{Node: g.m}
	}
	g.e.active = true
	g.awaiting = true
	return call(g.e.src)
}

func (g *rmemoGen) Close() { g.closed = true }

// lmemoEntry tracks the re-entrancy depth at one (matcher, position) pair
// and caches the full result set once the outermost call completes.
type lmemoEntry struct {
	depth    int
	results  []Result
	complete bool
}

type lmemoGen struct {
	e         *lmemoEntry
	child     Generator
	recording bool
	recorded  []Result
	awaiting  bool
	closed    bool
}

func (g *lmemoGen) Step(reply Reply) (Step, error) {
	if g.closed {
		return done()
	}
	if g.awaiting {
		g.awaiting = false
		if !reply.OK {
			if g.recording {
				g.e.results = g.recorded
				g.e.complete = true
			}
			g.e.depth--
			g.closed = true
			return done()
		}
		if g.recording {
			g.recorded = append(g.recorded, reply.Result)
		}
		return yieldResult(reply.Result)
	}
	g.awaiting = true
	return call(g.child)
}

func (g *lmemoGen) Close() {
	if g.closed {
		return
	}
	g.closed = true
	g.e.depth--
	g.child.Close()
}
