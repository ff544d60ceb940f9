package matcher

import (
	"fmt"

	"github.com/coregx/parco/stream"
	"github.com/coregx/parco/transform"
)

// Token matches one element of a lexed token stream by token id. It yields
// the token's lexeme, or — when an inner matcher is attached — the inner
// matcher's results from parsing the lexeme text in full.
//
// The lexer compiles token patterns; a Token node must be marked compiled
// before the parser runs.
type Token struct {
	base
	id       string
	pattern  string
	inner    Matcher
	compiled bool
}

// NewToken matches tokens whose id set contains id and yields their lexemes.
// The pattern is the regexp the lexer compiles for this token.
func NewToken(id, pattern string) *Token {
	return &Token{id: id, pattern: pattern}
}

// NewTokenWith is NewToken with an inner matcher applied to the lexeme text.
// The inner matcher must consume the whole lexeme for the token to match.
func NewTokenWith(id, pattern string, inner Matcher) *Token {
	return &Token{id: id, pattern: pattern, inner: inner}
}

// ID returns the token id this matcher selects.
func (m *Token) ID() string { return m.id }

// Pattern returns the token's regexp source.
func (m *Token) Pattern() string { return m.pattern }

// Compiled reports whether the lexer has compiled this token's pattern.
func (m *Token) Compiled() bool { return m.compiled }

// MarkCompiled records that the lexer has compiled this token's pattern.
func (m *Token) MarkCompiled() { m.compiled = true }

// Children implements Matcher.
func (m *Token) Children() []Matcher {
	if m.inner == nil {
		return nil
	}
	return []Matcher{m.inner}
}

// Rebuild implements Matcher.
func (m *Token) Rebuild(children []Matcher, fn transform.Func) Matcher {
	c := *m
	if len(children) > 0 {
		c.inner = children[0]
	} else {
		c.inner = nil
	}
	c.fn = fn
	return &c
}

// Describe implements Matcher.
func (m *Token) Describe() string {
	return m.describe(fmt.Sprintf("Token(%s)", m.id))
}

// Match implements Matcher.
func (m *Token) Match(ctx *Context, c stream.Cursor) Generator {
	return m.wrap(&tokenGen{ctx: ctx, m: m, c: c})
}

type tokenGen struct {
	ctx *Context
	m   *Token
	c   stream.Cursor

	inner    Generator
	awaiting bool
	closed   bool
}

func (g *tokenGen) Step(reply Reply) (Step, error) {
	if g.closed {
		return done()
	}
	if !g.awaiting && g.inner == nil {
		if !g.m.compiled {
			g.closed = true
			return Step{}, &TypeError{Node: g.m, Err: ErrNotCompiled}
		}
		sym, ok := g.c.Peek()
		if !ok {
			g.closed = true
			return done()
		}
		tok, isTok := sym.(stream.Token)
		if !isTok {
			g.closed = true
			return Step{}, &TypeError{Node: g.m, Err: fmt.Errorf("token matcher needs a token stream, got %T symbol", sym)}
		}
		if !tok.Has(g.m.id) {
			g.closed = true
			return done()
		}
		if g.m.inner == nil {
			g.closed = true
			return yield([]any{tok.Lexeme}, g.c.Advance(1))
		}
		// Parse the lexeme with the inner matcher; only full matches of
		// the lexeme text count.
		g.inner = g.m.inner.Match(g.ctx, stream.FromString(tok.Lexeme, tok.Start.Source))
	}
	if g.awaiting {
		g.awaiting = false
		if !reply.OK {
			g.closed = true
			g.inner.Close()
			return done()
		}
		if reply.Result.Rest.AtEnd() {
			return yield(reply.Result.Values, g.c.Advance(1))
		}
		// Partial lexeme match: pull the next inner result.
	}
	g.awaiting = true
	return call(g.inner)
}

func (g *tokenGen) Close() {
	if g.closed {
		return
	}
	g.closed = true
	if g.inner != nil {
		g.inner.Close()
	}
}
