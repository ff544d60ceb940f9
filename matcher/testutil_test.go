package matcher

import (
	"github.com/coregx/parco/alphabet"
	"github.com/coregx/parco/dfa"
	"github.com/coregx/parco/nfa"
)

// testScanner compiles a pattern into a scanner for regexp matcher tests.
func testScanner(pattern string, useDFA bool) (Scanner, error) {
	n, err := nfa.Compile(pattern, alphabet.Unicode)
	if err != nil {
		return nil, err
	}
	if !useDFA {
		return NFAScanner(n), nil
	}
	d, err := dfa.FromNFA(n, alphabet.Unicode, dfa.DefaultMaxStates)
	if err != nil {
		return nil, err
	}
	return DFAScanner(d), nil
}
