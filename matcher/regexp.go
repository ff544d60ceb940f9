package matcher

import (
	"fmt"

	"github.com/coregx/parco/dfa"
	"github.com/coregx/parco/nfa"
	"github.com/coregx/parco/stream"
	"github.com/coregx/parco/transform"
)

// Scanner enumerates the accepting prefix lengths of an input, shortest
// first. A DFA-backed scanner reports only the longest accepting prefix; an
// NFA-backed scanner reports every accepting prefix, so the matcher can
// backtrack through shorter matches.
type Scanner interface {
	PrefixLens(input []rune) []int
}

// Regexp matches a regular expression at the cursor and yields the matched
// text. Matches are enumerated greedily: longest first.
//
// A Regexp node is built from a pattern string and must be compiled (given a
// Scanner) before parsing; the parser facade compiles every Regexp in the
// graph against the configured alphabet. The CompileRegexps rewriter also
// produces Regexp nodes when it collapses matcher subgraphs.
type Regexp struct {
	base
	pattern string
	scanner Scanner
}

// NewRegexp creates an uncompiled regexp matcher for pattern.
func NewRegexp(pattern string) *Regexp {
	return &Regexp{pattern: pattern}
}

// NewCompiledRegexp creates a regexp matcher with an explicit scanner. The
// pattern is only used for describe output.
func NewCompiledRegexp(pattern string, s Scanner) *Regexp {
	return &Regexp{pattern: pattern, scanner: s}
}

// Pattern returns the regexp source text.
func (m *Regexp) Pattern() string {
	return m.pattern
}

// Compiled reports whether a scanner has been attached.
func (m *Regexp) Compiled() bool {
	return m.scanner != nil
}

// SetScanner attaches the compiled scanner. The facade calls this once,
// before the first parse.
func (m *Regexp) SetScanner(s Scanner) {
	m.scanner = s
}

// Children implements Matcher.
func (m *Regexp) Children() []Matcher { return nil }

// Rebuild implements Matcher.
func (m *Regexp) Rebuild(_ []Matcher, fn transform.Func) Matcher {
	c := *m
	c.fn = fn
	return &c
}

// Describe implements Matcher.
func (m *Regexp) Describe() string {
	return m.describe(fmt.Sprintf("Regexp(%s)", m.pattern))
}

// Match implements Matcher.
func (m *Regexp) Match(_ *Context, c stream.Cursor) Generator {
	if m.scanner == nil {
		return &failGen{err: &TypeError{Node: m, Err: ErrNotCompiled}}
	}
	rt, ok := c.(stream.RuneText)
	if !ok {
		return &failGen{err: &TypeError{Node: m, Err: fmt.Errorf("regexp needs a character stream, got %T", c)}}
	}
	return m.wrap(&regexpGen{c: c, input: rt.Runes(), scanner: m.scanner})
}

type regexpGen struct {
	c       stream.Cursor
	input   []rune
	scanner Scanner
	lens    []int
	started bool
	next    int // index into lens, walked backwards
	closed  bool
}

func (g *regexpGen) Step(Reply) (Step, error) {
	if g.closed {
		return done()
	}
	if !g.started {
		g.started = true
		g.lens = g.scanner.PrefixLens(g.input)
		g.next = len(g.lens) - 1
	}
	if g.next < 0 {
		g.closed = true
		return done()
	}
	n := g.lens[g.next]
	g.next--
	return yield([]any{string(g.input[:n])}, g.c.Advance(n))
}

func (g *regexpGen) Close() { g.closed = true }

// nfaScanner adapts an NFA simulation to the Scanner interface; it reports
// every accepting prefix.
type nfaScanner struct {
	n *nfa.NFA
}

// NFAScanner returns a Scanner that enumerates all accepting prefixes of n.
func NFAScanner(n *nfa.NFA) Scanner {
	return nfaScanner{n: n}
}

func (s nfaScanner) PrefixLens(input []rune) []int {
	prefixes := s.n.Prefixes(input)
	lens := make([]int, len(prefixes))
	for i, p := range prefixes {
		lens[i] = p.Len
	}
	return lens
}

// dfaScanner adapts a DFA to the Scanner interface; it reports only the
// longest accepting prefix.
type dfaScanner struct {
	d *dfa.DFA
}

// DFAScanner returns a Scanner that reports the longest accepting prefix.
func DFAScanner(d *dfa.DFA) Scanner {
	return dfaScanner{d: d}
}

func (s dfaScanner) PrefixLens(input []rune) []int {
	n, _, ok := s.d.Longest(input)
	if !ok {
		return nil
	}
	return []int{n}
}
