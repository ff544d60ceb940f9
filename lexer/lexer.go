// Package lexer compiles a set of named token patterns into a combined DFA
// and turns character streams into token streams.
//
// Every token pattern is compiled as a labelled NFA; the union of all of
// them, determinized, scans the input in longest-match mode. A scan that
// matches several patterns at the same length emits the whole label set: the
// lexer never pre-commits between, say, a keyword and an identifier, the
// matcher graph chooses. Input that neither matches a token nor the discard
// pattern is a fatal runtime error carrying the source position.
package lexer

import (
	"errors"
	"fmt"

	"github.com/coregx/parco/alphabet"
	"github.com/coregx/parco/dfa"
	"github.com/coregx/parco/matcher"
	"github.com/coregx/parco/nfa"
	"github.com/coregx/parco/stream"
)

// Spec names one token: an id and the regexp its lexemes match.
type Spec struct {
	ID      string
	Pattern string
}

// ErrNoTokens indicates a lexer was built with an empty token set.
var ErrNoTokens = errors.New("lexer needs at least one token")

// Error reports a lexer configuration problem (bad pattern, empty token
// set). It is fatal at build time.
type Error struct {
	Msg string
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("lexer: %s: %v", e.Msg, e.Err)
	}
	return "lexer: " + e.Msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// RuntimeError reports input that neither tokenizes nor matches the discard
// pattern. It carries the position of the offending input.
type RuntimeError struct {
	Pos stream.Position
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	return fmt.Sprintf("no token matches input at line %d, column %d", e.Pos.Line, e.Pos.Col)
}

// Lexer scans character streams into token streams with a combined
// longest-match DFA, silently skipping stretches of the discard pattern.
type Lexer struct {
	specs []Spec
	token *dfa.DFA
	skip  *dfa.DFA // nil when there is no discard pattern
}

// New compiles the token specs and the optional discard pattern (empty for
// none) over the alphabet a.
func New(specs []Spec, discard string, a alphabet.Alphabet) (*Lexer, error) {
	if len(specs) == 0 {
		return nil, &Error{Msg: "empty token set", Err: ErrNoTokens}
	}
	patterns := make([]string, len(specs))
	for i, s := range specs {
		patterns[i] = s.Pattern
	}
	tokenNFA, err := nfa.CompileSet(patterns, a)
	if err != nil {
		return nil, &Error{Msg: "compiling token patterns", Err: err}
	}
	tokenDFA, err := dfa.FromNFA(tokenNFA, a, dfa.DefaultMaxStates)
	if err != nil {
		return nil, &Error{Msg: "determinizing token patterns", Err: err}
	}
	l := &Lexer{specs: specs, token: tokenDFA}
	if discard != "" {
		skipNFA, err := nfa.Compile(discard, a)
		if err != nil {
			return nil, &Error{Msg: "compiling discard pattern", Err: err}
		}
		l.skip, err = dfa.FromNFA(skipNFA, a, dfa.DefaultMaxStates)
		if err != nil {
			return nil, &Error{Msg: "determinizing discard pattern", Err: err}
		}
	}
	return l, nil
}

// Specs returns the token specs in declaration order.
func (l *Lexer) Specs() []Spec {
	return l.specs
}

// Tokenize scans the whole input into a token stream. The cursor must be a
// character stream. The returned cursor reports positions in terms of the
// underlying characters.
func (l *Lexer) Tokenize(c stream.Cursor) (stream.Tokens, error) {
	rt, ok := c.(stream.RuneText)
	if !ok {
		return stream.Tokens{}, &Error{Msg: fmt.Sprintf("tokenizing needs a character stream, got %T", c)}
	}
	name := c.Position().Source
	var toks []stream.Token
	for !c.AtEnd() {
		runes := rt.Runes()
		if n, labels, ok := l.token.Longest(runes); ok && n > 0 {
			toks = append(toks, stream.Token{
				IDs:    l.ids(labels),
				Lexeme: string(runes[:n]),
				Start:  c.Position(),
			})
			c = c.Advance(n)
			rt = c.(stream.RuneText)
			continue
		}
		if l.skip != nil {
			if n, _, ok := l.skip.Longest(runes); ok && n > 0 {
				c = c.Advance(n)
				rt = c.(stream.RuneText)
				continue
			}
		}
		return stream.Tokens{}, &RuntimeError{Pos: c.Position()}
	}
	return stream.FromTokens(toks, name, c.Position()), nil
}

// ids maps accepted pattern labels to token ids, preserving declaration
// order and dropping duplicates (two specs may share an id).
func (l *Lexer) ids(labels []int) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]bool, len(labels))
	for _, label := range labels {
		id := l.specs[label].ID
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// Collect returns every Token matcher reachable from root, in pre-order.
func Collect(root matcher.Matcher) []*matcher.Token {
	var tokens []*matcher.Token
	seen := make(map[matcher.Matcher]bool)
	var walk func(matcher.Matcher)
	walk = func(m matcher.Matcher) {
		if seen[m] {
			return
		}
		seen[m] = true
		if t, ok := m.(*matcher.Token); ok {
			tokens = append(tokens, t)
		}
		for _, ch := range m.Children() {
			walk(ch)
		}
	}
	walk(root)
	return tokens
}

// ForGrammar builds the lexer for every Token matcher reachable from root
// and marks them compiled. It returns nil when the grammar uses no tokens.
func ForGrammar(root matcher.Matcher, discard string, a alphabet.Alphabet) (*Lexer, error) {
	tokens := Collect(root)
	if len(tokens) == 0 {
		return nil, nil
	}
	var specs []Spec
	seen := make(map[Spec]bool)
	for _, t := range tokens {
		s := Spec{ID: t.ID(), Pattern: t.Pattern()}
		if !seen[s] {
			seen[s] = true
			specs = append(specs, s)
		}
	}
	l, err := New(specs, discard, a)
	if err != nil {
		return nil, err
	}
	for _, t := range tokens {
		t.MarkCompiled()
	}
	return l, nil
}
