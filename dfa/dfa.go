// Package dfa converts Thompson NFAs into deterministic automata and provides
// the longest-match scanner used by regexp matchers and the lexer.
//
// Construction is the classic subset construction: each DFA state is the
// epsilon closure of a set of NFA states, identified by the bitset of its
// members. Transitions are computed per symbol range rather than per symbol;
// outgoing NFA ranges are split at every breakpoint so that each DFA edge
// covers a maximal range with a consistent target.
//
// The DFA is not minimized, but duplicate states are collapsed by subset
// identity.
package dfa

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"github.com/bits-and-blooms/bitset"

	"github.com/coregx/parco/alphabet"
	"github.com/coregx/parco/nfa"
)

// DefaultMaxStates caps determinization. Patterns that need more states than
// this are rejected rather than allowed to blow up memory.
const DefaultMaxStates = 10000

// ErrTooManyStates indicates determinization exceeded the state limit.
var ErrTooManyStates = errors.New("DFA state limit exceeded")

// Transition is one DFA edge: symbols in [Lo, Hi] lead to state Next.
type Transition struct {
	Lo, Hi rune
	Next   int
}

// DFA is a deterministic automaton over symbol ranges. Missing edges are
// dead: scanning stops when no transition covers the next symbol.
type DFA struct {
	// transitions[s] holds the outgoing edges of state s, sorted by Lo,
	// non-overlapping.
	transitions [][]Transition

	// accepts[s] holds the labels accepted in state s, in pattern
	// declaration order. Empty for non-accepting states.
	accepts [][]int

	// start is the initial state.
	start int
}

// FromNFA determinizes n over the alphabet a. maxStates bounds the number of
// DFA states (use DefaultMaxStates when in doubt).
func FromNFA(n *nfa.NFA, a alphabet.Alphabet, maxStates int) (*DFA, error) {
	if maxStates <= 0 {
		maxStates = DefaultMaxStates
	}
	b := &builder{nfa: n, alpha: a, maxStates: maxStates, index: make(map[string]int)}
	if err := b.run(); err != nil {
		return nil, err
	}
	return &DFA{transitions: b.transitions, accepts: b.accepts, start: 0}, nil
}

// Start returns the initial state.
func (d *DFA) Start() int {
	return d.start
}

// States returns the number of DFA states.
func (d *DFA) States() int {
	return len(d.transitions)
}

// Accepts returns the labels accepted in state s, in declaration order.
// The returned slice must not be modified.
func (d *DFA) Accepts(s int) []int {
	return d.accepts[s]
}

// Step returns the successor of state s on symbol r, or -1 when the edge is
// dead.
func (d *DFA) Step(s int, r rune) int {
	ts := d.transitions[s]
	// First transition with Hi >= r; transitions are sorted and disjoint.
	i := sort.Search(len(ts), func(i int) bool { return ts[i].Hi >= r })
	if i < len(ts) && ts[i].Lo <= r {
		return ts[i].Next
	}
	return -1
}

// Longest scans input from the start state and returns the length of the
// longest accepting prefix together with its label set. ok is false when no
// prefix (not even the empty one) is accepted.
func (d *DFA) Longest(input []rune) (n int, labels []int, ok bool) {
	state := d.start
	n, ok = 0, false
	if acc := d.accepts[state]; len(acc) > 0 {
		n, labels, ok = 0, acc, true
	}
	for i, r := range input {
		state = d.Step(state, r)
		if state < 0 {
			break
		}
		if acc := d.accepts[state]; len(acc) > 0 {
			n, labels, ok = i+1, acc, true
		}
	}
	return n, labels, ok
}

// Matches reports whether the DFA accepts the entire input.
func (d *DFA) Matches(input []rune) bool {
	n, _, ok := d.Longest(input)
	return ok && n == len(input)
}

// String returns a human-readable summary.
func (d *DFA) String() string {
	return fmt.Sprintf("DFA{states: %d, start: %d}", len(d.transitions), d.start)
}

// builder holds the working state of one subset construction.
type builder struct {
	nfa       *nfa.NFA
	alpha     alphabet.Alphabet
	maxStates int

	sets        []*bitset.BitSet
	index       map[string]int
	transitions [][]Transition
	accepts     [][]int
}

func (b *builder) run() error {
	start := bitset.New(uint(b.nfa.States()))
	b.closure(start, b.nfa.Start())
	if _, err := b.intern(start); err != nil {
		return err
	}
	// b.sets grows while we iterate: plain worklist processing.
	for s := 0; s < len(b.sets); s++ {
		if err := b.expand(s); err != nil {
			return err
		}
	}
	return nil
}

// intern returns the index of the DFA state for set, creating it on first
// sight.
func (b *builder) intern(set *bitset.BitSet) (int, error) {
	k := key(set)
	if idx, ok := b.index[k]; ok {
		return idx, nil
	}
	if len(b.sets) >= b.maxStates {
		return 0, fmt.Errorf("%w (limit %d)", ErrTooManyStates, b.maxStates)
	}
	idx := len(b.sets)
	b.sets = append(b.sets, set)
	b.index[k] = idx
	b.transitions = append(b.transitions, nil)
	b.accepts = append(b.accepts, b.labels(set))
	return idx, nil
}

// expand computes the outgoing edges of DFA state s.
func (b *builder) expand(s int) error {
	set := b.sets[s]
	// Collect the symbol-range transitions of every member state.
	type edge struct {
		lo, hi rune
		next   nfa.StateID
	}
	var edges []edge
	for id, ok := set.NextSet(0); ok; id, ok = set.NextSet(id + 1) {
		st := b.nfa.State(nfa.StateID(id))
		if st.Kind() == nfa.StateRange {
			lo, hi, next := st.Range()
			edges = append(edges, edge{lo: lo, hi: hi, next: next})
		}
	}
	if len(edges) == 0 {
		return nil
	}

	// Split the covered symbol space at every breakpoint: each edge start,
	// and the symbol after each edge end.
	var starts []rune
	for _, e := range edges {
		starts = append(starts, e.lo)
		if e.hi < b.alpha.Max() {
			starts = append(starts, b.alpha.After(e.hi))
		}
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })
	starts = dedupRunes(starts)

	var ts []Transition
	for i, lo := range starts {
		hi := b.alpha.Max()
		if i+1 < len(starts) {
			hi = b.alpha.Before(starts[i+1])
		}
		target := bitset.New(uint(b.nfa.States()))
		covered := false
		for _, e := range edges {
			if e.lo <= lo && lo <= e.hi {
				b.closure(target, e.next)
				covered = true
			}
		}
		if !covered {
			continue
		}
		next, err := b.intern(target)
		if err != nil {
			return err
		}
		ts = append(ts, Transition{Lo: lo, Hi: hi, Next: next})
	}
	b.transitions[s] = ts
	return nil
}

// closure inserts id and everything epsilon-reachable from it into set.
func (b *builder) closure(set *bitset.BitSet, id nfa.StateID) {
	stack := []nfa.StateID{id}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if set.Test(uint(top)) {
			continue
		}
		set.Set(uint(top))
		st := b.nfa.State(top)
		switch st.Kind() {
		case nfa.StateSplit:
			left, right := st.Split()
			stack = append(stack, left, right)
		case nfa.StateEpsilon:
			stack = append(stack, st.Epsilon())
		}
	}
}

// labels returns the sorted, deduplicated pattern labels accepted by set.
func (b *builder) labels(set *bitset.BitSet) []int {
	var labels []int
	for id, ok := set.NextSet(0); ok; id, ok = set.NextSet(id + 1) {
		st := b.nfa.State(nfa.StateID(id))
		if st.IsMatch() {
			labels = append(labels, st.Label())
		}
	}
	if labels == nil {
		return nil
	}
	sort.Ints(labels)
	out := labels[:1]
	for _, l := range labels[1:] {
		if l != out[len(out)-1] {
			out = append(out, l)
		}
	}
	return out
}

// key renders the bitset's words as a map key identifying the subset.
func key(set *bitset.BitSet) string {
	words := set.Bytes()
	buf := make([]byte, 8*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint64(buf[8*i:], w)
	}
	// Trailing zero words would make equal sets key differently if
	// capacities ever diverged; all sets here share one capacity.
	return string(buf)
}

func dedupRunes(rs []rune) []rune {
	if len(rs) == 0 {
		return rs
	}
	out := rs[:1]
	for _, r := range rs[1:] {
		if r != out[len(out)-1] {
			out = append(out, r)
		}
	}
	return out
}
