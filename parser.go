package parco

import (
	"fmt"
	"io"

	"github.com/coregx/parco/alphabet"
	"github.com/coregx/parco/lexer"
	"github.com/coregx/parco/matcher"
	"github.com/coregx/parco/rewrite"
	"github.com/coregx/parco/stream"
)

// Parser binds a rewritten matcher graph, an optional lexer and a
// configuration into a callable that parses raw input.
//
// The graph is rewritten once, when the parser is built; it is immutable
// afterwards and a single Parser may be used for any number of inputs. Each
// parse invocation owns its memo tables and trampoline stack.
type Parser struct {
	root      matcher.Matcher
	config    Config
	lex       *lexer.Lexer
	prefilter *prefilter
}

// NewParser applies the configured rewriters to the grammar and prepares the
// lexer (when the grammar contains Token matchers) and regexp scanners.
func NewParser(m matcher.Matcher, config Config) (*Parser, error) {
	if config.Alphabet == nil {
		config.Alphabet = alphabet.Unicode
	}
	rewriters := append(config.rewriters(), rewrite.CompileLeaves(config.Alphabet, config.UseDFA))
	root, err := rewrite.Apply(m, rewriters...)
	if err != nil {
		return nil, err
	}
	lex, err := lexer.ForGrammar(root, config.Discard, config.Alphabet)
	if err != nil {
		return nil, err
	}
	return &Parser{
		root:      root,
		config:    config,
		lex:       lex,
		prefilter: newPrefilter(root),
	}, nil
}

// Matcher returns the rewritten matcher graph the parser evaluates.
func (p *Parser) Matcher() matcher.Matcher {
	return p.root
}

// cursor coerces raw input into the cursor the matcher graph consumes,
// running the lexer when the grammar uses tokens.
func (p *Parser) cursor(input any) (stream.Cursor, error) {
	var c stream.Cursor
	switch v := input.(type) {
	case string:
		c = stream.FromString(v, "")
	case []rune:
		c = stream.FromRunes(v, "")
	case []byte:
		c = stream.FromString(string(v), "")
	case []any:
		c = stream.FromValues(v, "")
	case io.Reader:
		t, err := stream.FromReader(v, "")
		if err != nil {
			return nil, err
		}
		c = t
	case stream.Cursor:
		c = v
	default:
		return nil, fmt.Errorf("unsupported input type %T", input)
	}
	if p.lex != nil {
		return p.lex.Tokenize(c)
	}
	return c, nil
}

// matches starts one parse invocation at cursor c.
func (p *Parser) matches(c stream.Cursor) *matcher.Parses {
	t := matcher.NewTrampoline(p.config.monitors()...)
	return t.Parse(p.root, c)
}

// MatchAll returns the lazy sequence of every parse of input, as
// (values, remaining-cursor) pairs in depth-first left-to-right order.
func (p *Parser) MatchAll(input any) (*matcher.Parses, error) {
	c, err := p.cursor(input)
	if err != nil {
		return nil, err
	}
	return p.matches(c), nil
}

// Match returns the first parse of input, as a (values, remaining-cursor)
// pair. ok is false when the grammar does not match at all.
func (p *Parser) Match(input any) (r matcher.Result, ok bool, err error) {
	all, err := p.MatchAll(input)
	if err != nil {
		return matcher.Result{}, false, err
	}
	defer all.Close()
	r, ok = all.Next()
	if err := all.Err(); err != nil {
		return matcher.Result{}, false, err
	}
	return r, ok, nil
}

// ParseAll returns the lazy sequence of the value lists of every parse.
func (p *Parser) ParseAll(input any) (*Results, error) {
	all, err := p.MatchAll(input)
	if err != nil {
		return nil, err
	}
	return &Results{parses: all}, nil
}

// Parse returns the value list of the first parse, which must consume the
// whole input; otherwise a FullFirstMatchError reports where matching
// stopped.
func (p *Parser) Parse(input any) ([]any, error) {
	c, err := p.cursor(input)
	if err != nil {
		return nil, err
	}
	all := p.matches(c)
	defer all.Close()
	r, ok := all.Next()
	if err := all.Err(); err != nil {
		return nil, err
	}
	if !ok {
		return nil, fullFirstMatchError(c)
	}
	if !r.Rest.AtEnd() {
		return nil, fullFirstMatchError(r.Rest)
	}
	return r.Values, nil
}

// ParseFile parses the contents of the file at path, requiring a full match.
func (p *Parser) ParseFile(path string) ([]any, error) {
	c, err := stream.FromFile(path)
	if err != nil {
		return nil, err
	}
	return p.Parse(c)
}

// Results is a lazy sequence of parse value lists.
type Results struct {
	parses *matcher.Parses
}

// Next returns the next parse's values; false when exhausted (see Err).
func (r *Results) Next() ([]any, bool) {
	res, ok := r.parses.Next()
	if !ok {
		return nil, false
	}
	return res.Values, true
}

// Err returns the error that aborted the sequence, if any.
func (r *Results) Err() error {
	return r.parses.Err()
}

// Close abandons the evaluation.
func (r *Results) Close() {
	r.parses.Close()
}

// All drains the sequence into a slice of value lists.
func (r *Results) All() ([][]any, error) {
	var out [][]any
	for {
		values, ok := r.Next()
		if !ok {
			return out, r.Err()
		}
		out = append(out, values)
	}
}
