package nfa

import (
	"sort"

	"github.com/coregx/parco/internal/conv"
	"github.com/coregx/parco/internal/sparse"
)

// Prefix records that the automaton accepts the first Len runes of the
// scanned input, with the labels of the accepting patterns in declaration
// order.
type Prefix struct {
	Len    int
	Labels []int
}

// Prefixes simulates the NFA over input and returns every accepting prefix,
// shortest first. The simulation advances one rune at a time, maintaining the
// epsilon-closed set of active states; it stops as soon as the set empties.
//
// A greedy regexp matcher walks the result backwards to enumerate longest
// matches first.
func (n *NFA) Prefixes(input []rune) []Prefix {
	capacity := conv.IntToUint32(len(n.states))
	cur := sparse.NewSet(capacity)
	next := sparse.NewSet(capacity)

	var prefixes []Prefix
	n.closure(cur, n.start)
	if labels := n.accepts(cur); labels != nil {
		prefixes = append(prefixes, Prefix{Len: 0, Labels: labels})
	}

	for i, r := range input {
		next.Clear()
		for _, id := range cur.Values() {
			s := &n.states[id]
			if s.kind == StateRange && r >= s.lo && r <= s.hi {
				n.closure(next, s.next)
			}
		}
		if next.IsEmpty() {
			break
		}
		cur, next = next, cur
		if labels := n.accepts(cur); labels != nil {
			prefixes = append(prefixes, Prefix{Len: i + 1, Labels: labels})
		}
	}
	return prefixes
}

// closure inserts id and everything reachable from it via epsilon transitions
// into set. Iterative with an explicit stack; the sparse set doubles as the
// visited marker.
func (n *NFA) closure(set *sparse.Set, id StateID) {
	stack := []StateID{id}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if set.Contains(uint32(top)) {
			continue
		}
		set.Insert(uint32(top))
		s := &n.states[top]
		switch s.kind {
		case StateSplit:
			stack = append(stack, s.left, s.right)
		case StateEpsilon:
			stack = append(stack, s.next)
		}
	}
}

// accepts returns the sorted labels of the accepting states in set, or nil
// when the set accepts nothing.
func (n *NFA) accepts(set *sparse.Set) []int {
	var labels []int
	for _, id := range set.Values() {
		s := &n.states[id]
		if s.kind == StateMatch {
			labels = append(labels, s.label)
		}
	}
	if labels == nil {
		return nil
	}
	sort.Ints(labels)
	// Dedup in place; several accept states may share a label.
	out := labels[:1]
	for _, l := range labels[1:] {
		if l != out[len(out)-1] {
			out = append(out, l)
		}
	}
	return out
}
