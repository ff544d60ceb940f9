// Package parco is a combinator-based parser construction library.
//
// Grammars are built by composing small matchers — literals, character
// classes, regular expressions, sequences, alternations, repetitions,
// forward references — into a matcher graph. A Parser evaluates that graph
// against an input and yields every parse (lazily) or the first one, with
// full backtracking. Left-recursive grammars work through memoization
// (AutoMemoize), semantic transforms reshape result lists into user
// structures, and an optional tokenization layer turns character input into
// token streams first.
//
// Basic usage:
//
//	word := parco.Join(parco.Plus(parco.AnyOf("abcdefghijklmnopqrstuvwxyz")))
//	parser, err := parco.NewParser(word, parco.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	values, err := parser.Parse("hello")
//	fmt.Println(values) // [hello]
//
// Recursive grammars use a Delayed placeholder:
//
//	expr := parco.Delayed()
//	factor := parco.Or(number, parco.Seq(parco.Literal("("), expr, parco.Literal(")")))
//	expr.Bind(parco.Or(parco.Seq(factor, parco.Literal("+"), expr), factor))
//
// The heavy lifting lives in the subpackages: matcher (graph and
// trampoline), rewrite (graph rewriters), nfa and dfa (the regexp core),
// lexer (tokenization), stream (cursors) and transform (result reshaping).
// This package binds them together and provides the construction surface.
package parco

import (
	"github.com/coregx/parco/alphabet"
	"github.com/coregx/parco/matcher"
	"github.com/coregx/parco/transform"
)

// Literal matches the given text and yields it as a single value.
func Literal(text string) matcher.Matcher {
	return matcher.NewLiteral(text)
}

// Value matches the single symbol v (compared with ==) on a generic value
// stream and yields it.
func Value(v any) matcher.Matcher {
	return matcher.NewLiteralValue(v)
}

// Any matches any single symbol.
func Any() matcher.Matcher {
	return matcher.NewAny()
}

// AnyOf matches one character out of chars.
func AnyOf(chars string) matcher.Matcher {
	ivs := make([]alphabet.Interval, 0, len(chars))
	for _, r := range chars {
		ivs = append(ivs, alphabet.Single(r))
	}
	return matcher.NewAnyOf(alphabet.NewSet(alphabet.Unicode, ivs...))
}

// NoneOf matches one character not in chars (within the Unicode alphabet).
func NoneOf(chars string) matcher.Matcher {
	ivs := make([]alphabet.Interval, 0, len(chars))
	for _, r := range chars {
		ivs = append(ivs, alphabet.Single(r))
	}
	set := alphabet.NewSet(alphabet.Unicode, ivs...).Invert(alphabet.Unicode)
	return matcher.NewAnyOf(set)
}

// InRange matches one character in [lo, hi].
func InRange(lo, hi rune) matcher.Matcher {
	return matcher.NewAnyOf(alphabet.NewSet(alphabet.Unicode, alphabet.Interval{Lo: lo, Hi: hi}))
}

// Chars matches one character from an explicit character set.
func Chars(set alphabet.Set) matcher.Matcher {
	return matcher.NewAnyOf(set)
}

// Regexp matches the regular expression pattern at the cursor, longest match
// first. The pattern is compiled against the configured alphabet when the
// parser is built.
func Regexp(pattern string) matcher.Matcher {
	return matcher.NewRegexp(pattern)
}

// Seq matches the given matchers in sequence.
func Seq(ms ...matcher.Matcher) matcher.Matcher {
	return matcher.NewAnd(ms...)
}

// Or matches any of the given alternatives, trying every one.
func Or(ms ...matcher.Matcher) matcher.Matcher {
	return matcher.NewOr(ms...)
}

// First matches the first alternative that succeeds and commits to it.
func First(ms ...matcher.Matcher) matcher.Matcher {
	return matcher.NewFirst(ms...)
}

// Repeat matches m between low and high times (high parco.Unbounded for no
// limit), optionally weaving sep between iterations. Greedy repetition
// yields longer matches first.
func Repeat(m matcher.Matcher, low, high int, greedy bool, sep matcher.Matcher) matcher.Matcher {
	return matcher.NewRepeat(m, low, high, greedy, sep)
}

// Unbounded marks a repetition with no upper limit.
const Unbounded = matcher.Unbounded

// Optional matches m zero or one time, preferring one.
func Optional(m matcher.Matcher) matcher.Matcher {
	return matcher.NewRepeat(m, 0, 1, true, nil)
}

// Star matches m any number of times, longest first.
func Star(m matcher.Matcher) matcher.Matcher {
	return matcher.NewRepeat(m, 0, Unbounded, true, nil)
}

// Plus matches m one or more times, longest first.
func Plus(m matcher.Matcher) matcher.Matcher {
	return matcher.NewRepeat(m, 1, Unbounded, true, nil)
}

// SepBy matches one or more m separated by sep.
func SepBy(m, sep matcher.Matcher) matcher.Matcher {
	return matcher.NewRepeat(m, 1, Unbounded, true, sep)
}

// Lookahead succeeds, consuming nothing, iff m matches at the cursor.
func Lookahead(m matcher.Matcher) matcher.Matcher {
	return matcher.NewLookahead(m)
}

// Not succeeds, consuming nothing, iff m does not match at the cursor.
func Not(m matcher.Matcher) matcher.Matcher {
	return matcher.NewNot(m)
}

// Delayed returns a forward-reference placeholder. Bind it to its real
// matcher once the recursive rule is built.
func Delayed() *matcher.Delayed {
	return matcher.NewDelayed()
}

// Eos matches only at end of stream.
func Eos() matcher.Matcher {
	return matcher.NewEos()
}

// Token matches lexed tokens carrying the given id and yields their lexemes.
// The lexer compiles pattern when the parser is built.
func Token(id, pattern string) matcher.Matcher {
	return matcher.NewToken(id, pattern)
}

// TokenWith is Token with an inner matcher parsing the lexeme text; the
// inner matcher must consume the whole lexeme.
func TokenWith(id, pattern string, inner matcher.Matcher) matcher.Matcher {
	return matcher.NewTokenWith(id, pattern, inner)
}

// Apply replaces m's result list with the single value f(values).
func Apply(m matcher.Matcher, f func(values []any) any) matcher.Matcher {
	return matcher.NewTransform(m, transform.Apply(f))
}

// ApplyRaw replaces m's result list with f(values) directly.
func ApplyRaw(m matcher.Matcher, f func(values []any) []any) matcher.Matcher {
	return matcher.NewTransform(m, transform.ApplyRaw(f))
}

// Map applies f to each element of m's result list.
func Map(m matcher.Matcher, f func(any) any) matcher.Matcher {
	return matcher.NewTransform(m, transform.Map(f))
}

// Drop discards m's results while still consuming its input.
func Drop(m matcher.Matcher) matcher.Matcher {
	return matcher.NewTransform(m, transform.Drop())
}

// KApply gathers the Named values of m's result list into a map and replaces
// the list with [f(args)].
func KApply(m matcher.Matcher, f func(args map[string]any) (any, error)) matcher.Matcher {
	return matcher.NewTransform(m, transform.KApply(f))
}

// Named wraps each of m's result values as a Named pair for KApply.
func Named(name string, m matcher.Matcher) matcher.Matcher {
	return matcher.NewTransform(m, transform.Map(func(v any) any {
		return transform.Named{Name: name, Value: v}
	}))
}

// Join concatenates m's result values into a single string.
func Join(m matcher.Matcher) matcher.Matcher {
	return matcher.NewTransform(m, transform.Join())
}

// PostCondition keeps m's results only when pred accepts their value list.
func PostCondition(m matcher.Matcher, pred func(values []any) bool) matcher.Matcher {
	return matcher.NewTransform(m, transform.PostCondition(pred))
}

// Raise converts any result of m into the fatal error built by reason,
// positioned at the match.
func Raise(m matcher.Matcher, reason func(values []any) error) matcher.Matcher {
	return matcher.NewTransform(m, transform.Raise(reason))
}

// Label names m in describe output and error messages.
func Label(m matcher.Matcher, label string) matcher.Matcher {
	if l, ok := m.(matcher.Labellable); ok {
		l.SetLabel(label)
	}
	return m
}
