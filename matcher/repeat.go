package matcher

import (
	"fmt"

	"github.com/coregx/parco/stream"
	"github.com/coregx/parco/transform"
)

// Unbounded marks a repetition with no upper limit.
const Unbounded = -1

// Repeat matches its child between low and high times (high == Unbounded for
// no limit), optionally weaving a separator between consecutive matches.
//
// With greedy true, higher match counts are enumerated first (longest match
// order); with greedy false, counts are enumerated from low upwards. An empty
// child match combined with an unbounded high terminates: iterations that
// consume nothing are not extended further.
type Repeat struct {
	base
	child  Matcher
	sep    Matcher // optional separator, nil when absent
	rest   Matcher // matcher for iterations after the first
	low    int
	high   int
	greedy bool
}

// NewRepeat matches child between low and high times.
func NewRepeat(child Matcher, low, high int, greedy bool, sep Matcher) *Repeat {
	m := &Repeat{child: child, sep: sep, low: low, high: high, greedy: greedy}
	m.rest = child
	if sep != nil {
		m.rest = NewAnd(sep, child)
	}
	return m
}

// Bounds returns the repetition bounds; high is Unbounded when unlimited.
func (m *Repeat) Bounds() (low, high int) {
	return m.low, m.high
}

// Greedy reports whether longer matches are enumerated first.
func (m *Repeat) Greedy() bool {
	return m.greedy
}

// Separator returns the separator matcher, or nil.
func (m *Repeat) Separator() Matcher {
	return m.sep
}

// Children implements Matcher.
func (m *Repeat) Children() []Matcher {
	if m.sep != nil {
		return []Matcher{m.child, m.sep}
	}
	return []Matcher{m.child}
}

// Rebuild implements Matcher.
func (m *Repeat) Rebuild(children []Matcher, fn transform.Func) Matcher {
	var sep Matcher
	if len(children) > 1 {
		sep = children[1]
	}
	c := NewRepeat(children[0], m.low, m.high, m.greedy, sep)
	c.base = m.base
	c.fn = fn
	return c
}

// Describe implements Matcher.
func (m *Repeat) Describe() string {
	if m.high == Unbounded {
		return m.describe(fmt.Sprintf("Repeat(%d..)", m.low))
	}
	return m.describe(fmt.Sprintf("Repeat(%d..%d)", m.low, m.high))
}

// Match implements Matcher.
func (m *Repeat) Match(ctx *Context, c stream.Cursor) Generator {
	if m.greedy {
		return m.wrap(&repeatDFSGen{ctx: ctx, m: m, start: c})
	}
	return m.wrap(&repeatBFSGen{ctx: ctx, m: m, start: c, level: []Result{{Rest: c}}})
}

// slot returns the matcher for iteration i: the plain child first, then the
// separator-weaving rest matcher.
func (m *Repeat) slot(i int) Matcher {
	if i == 0 {
		return m.child
	}
	return m.rest
}

// repeatDFSGen enumerates match counts depth-first, longest first. It holds
// one active child generator per committed iteration and backtracks the
// deepest one, yielding a combination only once every longer extension of it
// has been exhausted.
type repeatDFSGen struct {
	ctx   *Context
	m     *Repeat
	start stream.Cursor

	gens     []Generator
	results  []Result
	starts   []stream.Cursor
	awaiting bool
	started  bool
	closed   bool
}

func (g *repeatDFSGen) Step(reply Reply) (Step, error) {
	if g.closed {
		return done()
	}
	if !g.awaiting {
		if !g.started {
			g.started = true
			if g.m.high == 0 {
				g.closed = true
				if g.m.low == 0 {
					return yield(nil, g.start)
				}
				return done()
			}
			return g.open(0, g.start)
		}
		// Resumed after a yield.
		if len(g.gens) == 0 {
			g.closed = true
			return done()
		}
		g.awaiting = true
		return call(g.gens[len(g.gens)-1])
	}

	g.awaiting = false
	k := len(g.gens) - 1
	if reply.OK {
		g.results[k] = reply.Result
		n := k + 1
		switch {
		case g.m.high >= 0 && n == g.m.high:
			return yieldResult(Result{Values: g.concat(n), Rest: reply.Result.Rest})
		case g.m.high == Unbounded && reply.Result.Rest.Key() == g.starts[k].Key():
			// No progress: extending would loop forever on an empty
			// match. Yield this count if permitted, else backtrack.
			if n >= g.m.low {
				return yieldResult(Result{Values: g.concat(n), Rest: reply.Result.Rest})
			}
			g.awaiting = true
			return call(g.gens[k])
		default:
			return g.open(n, reply.Result.Rest)
		}
	}

	// Iteration k has no (more) results: every extension of the first k
	// results has been enumerated, so the k-count combination is next.
	g.gens[k].Close()
	g.gens = g.gens[:k]
	g.results = g.results[:k]
	g.starts = g.starts[:k]
	if k >= g.m.low {
		rest := g.start
		if k > 0 {
			rest = g.results[k-1].Rest
		}
		return yieldResult(Result{Values: g.concat(k), Rest: rest})
	}
	if k == 0 {
		g.closed = true
		return done()
	}
	g.awaiting = true
	return call(g.gens[k-1])
}

func (g *repeatDFSGen) open(i int, c stream.Cursor) (Step, error) {
	child := g.m.slot(i).Match(g.ctx, c)
	g.gens = append(g.gens, child)
	g.results = append(g.results, Result{})
	g.starts = append(g.starts, c)
	g.awaiting = true
	return call(child)
}

func (g *repeatDFSGen) concat(n int) []any {
	size := 0
	for _, r := range g.results[:n] {
		size += len(r.Values)
	}
	out := make([]any, 0, size)
	for _, r := range g.results[:n] {
		out = append(out, r.Values...)
	}
	return out
}

func (g *repeatDFSGen) Close() {
	if g.closed {
		return
	}
	g.closed = true
	for _, child := range g.gens {
		child.Close()
	}
}

// repeatBFSGen enumerates match counts breadth-first, lowest count first.
// Each level holds every way of matching exactly depth iterations; the next
// level is built by extending each entry with one more child match.
type repeatBFSGen struct {
	ctx   *Context
	m     *Repeat
	start stream.Cursor

	level     []Result
	depth     int
	emit      int
	emitting  bool
	buildSrc  int
	buildGen  Generator
	nextLevel []Result
	awaiting  bool
	started   bool
	closed    bool
}

func (g *repeatBFSGen) Step(reply Reply) (Step, error) {
	if g.closed {
		return done()
	}
	if !g.started {
		g.started = true
		g.emitting = true
	}

	for {
		if g.emitting {
			if g.depth >= g.m.low && g.emit < len(g.level) {
				r := g.level[g.emit]
				g.emit++
				return yieldResult(r)
			}
			if g.emit >= len(g.level) || g.depth < g.m.low {
				if g.m.high >= 0 && g.depth == g.m.high {
					g.closed = true
					return done()
				}
				g.emitting = false
				g.buildSrc = 0
				g.nextLevel = nil
			}
		}

		// Building the next level: expand each entry fully, in order.
		if g.awaiting {
			g.awaiting = false
			if reply.OK {
				entry := g.level[g.buildSrc]
				if !(g.m.high == Unbounded && reply.Result.Rest.Key() == entry.Rest.Key()) {
					values := make([]any, 0, len(entry.Values)+len(reply.Result.Values))
					values = append(values, entry.Values...)
					values = append(values, reply.Result.Values...)
					g.nextLevel = append(g.nextLevel, Result{Values: values, Rest: reply.Result.Rest})
				}
				g.awaiting = true
				return call(g.buildGen)
			}
			g.buildGen.Close()
			g.buildGen = nil
			g.buildSrc++
		}
		if g.buildGen == nil {
			if g.buildSrc >= len(g.level) {
				// Level complete.
				if len(g.nextLevel) == 0 {
					g.closed = true
					return done()
				}
				g.level = g.nextLevel
				g.depth++
				g.emit = 0
				g.emitting = true
				continue
			}
			g.buildGen = g.m.slot(g.depth).Match(g.ctx, g.level[g.buildSrc].Rest)
		}
		g.awaiting = true
		return call(g.buildGen)
	}
}

func (g *repeatBFSGen) Close() {
	if g.closed {
		return
	}
	g.closed = true
	if g.buildGen != nil {
		g.buildGen.Close()
	}
}
