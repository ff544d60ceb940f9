package matcher

import (
	"fmt"
	"testing"

	"github.com/coregx/parco/stream"
	"github.com/coregx/parco/transform"
)

// probe counts how often a matcher is entered; used to observe memo sharing.
type probe struct {
	base
	inner Matcher
	calls int
}

func (p *probe) Children() []Matcher { return []Matcher{p.inner} }

func (p *probe) Rebuild(children []Matcher, fn transform.Func) Matcher {
	c := &probe{inner: children[0]}
	c.fn = fn
	return c
}

func (p *probe) Describe() string { return "probe(" + p.inner.Describe() + ")" }

func (p *probe) Match(ctx *Context, c stream.Cursor) Generator {
	p.calls++
	return p.inner.Match(ctx, c)
}

// TestRMemo_Shares tests that repeated evaluation at one position reuses the
// cached results
func TestRMemo_Shares(t *testing.T) {
	counted := &probe{inner: NewOr(NewLiteral("ab"), NewLiteral("a"))}
	memo := NewRMemo(counted)

	// The same memoized rule twice in an Or: both arms evaluate it at the
	// same position within one invocation.
	m := NewAnd(NewOr(memo, memo), NewLiteral("b"))
	results := drain(t, m, "ab")
	expect(t, results, "[a b]@2", "[a b]@2")
	if counted.calls != 1 {
		t.Errorf("inner matcher entered %d times, want 1", counted.calls)
	}

	// A fresh invocation starts a fresh memo table.
	drain(t, m, "ab")
	if counted.calls != 2 {
		t.Errorf("inner matcher entered %d times across invocations, want 2", counted.calls)
	}
}

// TestRMemo_LeftRecursion tests that plain memoization surfaces left
// recursion as an error rather than diverging
func TestRMemo_LeftRecursion(t *testing.T) {
	d := NewDelayed()
	body := NewRMemo(NewAnd(d, NewLiteral("a")))
	if err := d.Bind(body); err != nil {
		t.Fatalf("bind: %v", err)
	}

	ps := NewTrampoline().Parse(body, stream.FromString("aaa", ""))
	if _, ok := ps.Next(); ok {
		t.Fatal("left-recursive RMemo grammar yielded a result")
	}
	err := ps.Err()
	if err == nil {
		t.Fatal("left-recursive RMemo grammar produced no error")
	}
	if _, ok := err.(*LeftRecursionError); !ok {
		t.Fatalf("error type = %T, want *LeftRecursionError", err)
	}
}

// TestLMemo_LeftRecursion tests that curtailment makes a left-recursive
// grammar terminate with the expected parses
func TestLMemo_LeftRecursion(t *testing.T) {
	// expr := expr 'a' | 'a', with the base case first as OptimizeOr
	// would arrange it.
	d := NewDelayed()
	body := NewLMemo(NewOr(NewLiteral("a"), NewAnd(d, NewLiteral("a"))))
	if err := d.Bind(body); err != nil {
		t.Fatalf("bind: %v", err)
	}

	results := drain(t, body, "aaa")
	if len(results) == 0 {
		t.Fatal("no results")
	}
	seen := make(map[string]bool)
	for _, r := range results {
		seen[fmt.Sprint(r.Values)] = true
		if off := r.Rest.Position().Offset; off < 1 || off > 3 {
			t.Errorf("result consumed %d symbols", off)
		}
	}
	// The full input must be derivable.
	if !seen["[a a a]"] {
		t.Errorf("missing full parse in %v", rendered(results))
	}
}

// TestLMemo_Curtailment tests the recursion bound directly: the depth of
// re-entrant calls never exceeds the remaining input length plus one
func TestLMemo_Curtailment(t *testing.T) {
	d := NewDelayed()
	counted := &probe{inner: d}
	body := NewLMemo(NewOr(NewLiteral("b"), NewAnd(counted, NewLiteral("a"))))
	if err := d.Bind(body); err != nil {
		t.Fatalf("bind: %v", err)
	}

	input := "baa"
	results := drain(t, body, input)
	if len(results) == 0 {
		t.Fatal("no results")
	}
	expectAny(t, results, "[b a a]@3")
	// Every re-entry at offset 0 passes through the probe once, so its
	// call count is the deepest recursion reached there.
	if bound := len(input) + 1; counted.calls > bound {
		t.Errorf("re-entered %d times at offset 0, bound is %d", counted.calls, bound)
	}
}

func expectAny(t *testing.T, results []Result, want string) {
	t.Helper()
	for _, g := range rendered(results) {
		if g == want {
			return
		}
	}
	t.Errorf("missing %s in %v", want, rendered(results))
}

// TestLMemo_CompleteCache tests that a later call at the same position
// replays the cached result set
func TestLMemo_CompleteCache(t *testing.T) {
	counted := &probe{inner: NewLiteral("a")}
	memo := NewLMemo(counted)

	// Evaluate the memoized rule twice at the same position, sequentially.
	m := NewOr(NewAnd(memo, NewLiteral("x")), memo)
	results := drain(t, m, "a")
	expect(t, results, "[a]@1")
	if counted.calls != 1 {
		t.Errorf("inner matcher entered %d times, want 1", counted.calls)
	}
}
