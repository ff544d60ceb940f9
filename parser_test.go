package parco

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/parco/matcher"
)

// TestParse_FullMatch tests full-match enforcement and its error
func TestParse_FullMatch(t *testing.T) {
	p, err := NewParser(Literal("ab"), DefaultConfig())
	require.NoError(t, err)

	values, err := p.Parse("ab")
	require.NoError(t, err)
	assert.Equal(t, []any{"ab"}, values)

	_, err = p.Parse("abc")
	var ferr *FullFirstMatchError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, 2, ferr.Pos.Offset)
	assert.Equal(t, "c", ferr.Remaining)

	_, err = p.Parse("x")
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, 0, ferr.Pos.Offset)
}

// TestParseAll_Ambiguity tests deterministic enumeration of an ambiguous
// repetition: every decomposition of "aaa" into "a" and "aa" parts
func TestParseAll_Ambiguity(t *testing.T) {
	p, err := NewParser(Star(Or(Literal("a"), Literal("aa"))), DefaultConfig())
	require.NoError(t, err)

	results, err := p.ParseAll("aaa")
	require.NoError(t, err)
	all, err := results.All()
	require.NoError(t, err)
	// Compositions of 0..3 from parts {1, 2}: 1+1+2+3.
	assert.Len(t, all, 7)

	matches, err := p.MatchAll("aaa")
	require.NoError(t, err)
	full := 0
	for {
		r, ok := matches.Next()
		if !ok {
			break
		}
		if r.Rest.AtEnd() {
			full++
		}
	}
	require.NoError(t, matches.Err())
	assert.Equal(t, 3, full, "three decompositions of the whole input")
}

// TestParse_Structure tests transform-built result trees
func TestParse_Structure(t *testing.T) {
	digit := InRange('0', '9')
	number := Join(Plus(digit))

	expr := Delayed()
	term := Delayed()
	factor := Or(number, Seq(Literal("("), expr, Literal(")")))
	mkNode := func(name string) func([]any) any {
		return func(values []any) any {
			return append([]any{name}, values...)
		}
	}
	require.NoError(t, term.Bind(Or(
		Apply(Seq(factor, Or(Literal("*"), Literal("/")), term), mkNode("Term")),
		factor,
	)))
	require.NoError(t, expr.Bind(Or(
		Apply(Seq(term, Or(Literal("+"), Literal("-")), expr), mkNode("Expr")),
		term,
	)))

	p, err := NewParser(expr, DefaultConfig())
	require.NoError(t, err)

	values, err := p.Parse("1+2*3")
	require.NoError(t, err)
	want := []any{
		[]any{"Expr", "1", "+", []any{"Term", "2", "*", "3"}},
	}
	if !reflect.DeepEqual(values, want) {
		t.Errorf("got %v, want %v", values, want)
	}
}

// TestParse_TokenizedArithmetic tests the lexer pipeline end to end and the
// round-trip property: the leaves of the parse re-serialize to the input
func TestParse_TokenizedArithmetic(t *testing.T) {
	const numberPat = `[0-9]+(\.[0-9]+)?(e[0-9]+)?`
	const opPat = `[-+*/()]`

	number := Token("NUMBER", numberPat)
	sym := func(s string) matcher.Matcher {
		return TokenWith("OP", opPat, Literal(s))
	}

	expr := Delayed()
	term := Delayed()
	factor := Or(number, Seq(sym("("), expr, sym(")")))
	require.NoError(t, term.Bind(Or(
		Seq(factor, Or(sym("*"), sym("/")), term),
		factor,
	)))
	require.NoError(t, expr.Bind(Or(
		Seq(term, Or(sym("+"), sym("-")), expr),
		term,
	)))

	config := DefaultConfig()
	config.Discard = `[ \t]+`
	p, err := NewParser(expr, config)
	require.NoError(t, err)

	input := "1.23e4 + 2.34e5 * (3.45e6 + 4.56e7 - 5.67e8)"
	values, err := p.Parse(input)
	require.NoError(t, err)

	var b strings.Builder
	for _, v := range values {
		b.WriteString(v.(string))
	}
	assert.Equal(t, strings.ReplaceAll(input, " ", ""), b.String())
}

// TestParse_LeftRecursion tests the auto-memoized evaluation of the
// doubly-recursive rule a := a? (a | 'b' | 'c')
func TestParse_LeftRecursion(t *testing.T) {
	a := Delayed()
	require.NoError(t, a.Bind(Seq(Optional(a), Or(a, Literal("b"), Literal("c")))))

	config := DefaultConfig()
	config.AutoMemoize = true
	p, err := NewParser(a, config)
	require.NoError(t, err)

	matches, err := p.MatchAll("bcb")
	require.NoError(t, err)

	sawFull := false
	count := 0
	for {
		r, ok := matches.Next()
		if !ok {
			break
		}
		count++
		require.LessOrEqual(t, count, 100, "left recursion must stay bounded")
		off := r.Rest.Position().Offset
		assert.Equal(t, "bcb"[:off], joined(r.Values), "values spell the consumed prefix")
		if off == 3 {
			sawFull = true
		}
	}
	require.NoError(t, matches.Err())
	assert.Greater(t, count, 0)
	assert.True(t, sawFull, "the whole input is derivable")
}

func joined(values []any) string {
	var b strings.Builder
	for _, v := range values {
		b.WriteString(v.(string))
	}
	return b.String()
}

// TestParser_CompileRegexps tests the regexp rewriter end to end
func TestParser_CompileRegexps(t *testing.T) {
	g := Seq(Or(Literal("a"), Literal("b")), Star(AnyOf("ab")))

	config := DefaultConfig()
	config.CompileRegexps = true
	p, err := NewParser(g, config)
	require.NoError(t, err)

	// The whole grammar collapsed into a single regexp matcher yielding
	// the matched text.
	values, err := p.Parse("abba")
	require.NoError(t, err)
	assert.Equal(t, []any{"abba"}, values)

	_, err = p.Parse("xyz")
	assert.Error(t, err)
}

// TestParser_Monitors tests config-driven resource monitors
func TestParser_Monitors(t *testing.T) {
	config := DefaultConfig()
	config.MaxGenerators = 1000
	p, err := NewParser(Star(AnyOf("ab")), config)
	require.NoError(t, err)

	values, err := p.Parse("abab")
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b", "a", "b"}, values)
}

// TestParser_InputKinds tests input coercion
func TestParser_InputKinds(t *testing.T) {
	p, err := NewParser(Literal("hi"), DefaultConfig())
	require.NoError(t, err)

	for _, input := range []any{"hi", []rune("hi"), []byte("hi"), strings.NewReader("hi")} {
		values, err := p.Parse(input)
		require.NoError(t, err, "input %T", input)
		assert.Equal(t, []any{"hi"}, values)
	}

	_, err = p.Parse(42)
	assert.Error(t, err)
}

// TestParser_ValueStream tests parsing over generic value slices
func TestParser_ValueStream(t *testing.T) {
	g := Seq(Value(1), Value(2))
	p, err := NewParser(g, DefaultConfig())
	require.NoError(t, err)

	values, err := p.Parse([]any{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2}, values)

	_, err = p.Parse([]any{2, 1})
	var ferr *FullFirstMatchError
	assert.ErrorAs(t, err, &ferr)
}

// TestSearch_Prefilter tests offset search with the literal-prefix prefilter
func TestSearch_Prefilter(t *testing.T) {
	g := Join(Seq(Literal("ab"), Plus(InRange('0', '9'))))
	p, err := NewParser(g, DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, p.prefilter, "grammar with literal prefixes builds a prefilter")

	r, ok, err := p.Search("xx ab12 yy ab3")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []any{"ab12"}, r.Values)

	all, err := p.SearchAll("xx ab12 yy ab3")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, []any{"ab12"}, all[0].Values)
	assert.Equal(t, []any{"ab3"}, all[1].Values)

	_, ok, err = p.Search("nothing here")
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestSearch_NoPrefilter tests the fallback offset walk
func TestSearch_NoPrefilter(t *testing.T) {
	p, err := NewParser(Join(Plus(InRange('0', '9'))), DefaultConfig())
	require.NoError(t, err)
	assert.Nil(t, p.prefilter, "no literal prefix, no prefilter")

	r, ok, err := p.Search("abc 42 def")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []any{"42"}, r.Values)
}

// TestParser_DeadlineConfig tests deadline plumbing through the config
func TestParser_DeadlineConfig(t *testing.T) {
	config := DefaultConfig()
	config.Deadline = time.Now().Add(-time.Second)
	p, err := NewParser(Literal("x"), config)
	require.NoError(t, err)

	_, err = p.Parse("x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, matcher.ErrDeadlineExceeded))
}
