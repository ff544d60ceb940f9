package parco

import (
	"time"

	"github.com/coregx/parco/alphabet"
	"github.com/coregx/parco/matcher"
	"github.com/coregx/parco/rewrite"
)

// Config controls how a Parser is built and evaluated.
//
// The zero value is usable but DefaultConfig is the intended starting point.
//
// Example:
//
//	config := parco.DefaultConfig()
//	config.AutoMemoize = true // enable left-recursive grammars
//	parser, err := parco.NewParser(grammar, config)
type Config struct {
	// Rewriters replaces the default rewriter pipeline when non-nil. The
	// default is Flatten and ComposeTransforms, plus AutoMemoize and
	// CompileRegexps when the corresponding flags are set.
	Rewriters []rewrite.Rewriter

	// Monitors observe every trampoline transition. MaxGenerators and
	// Deadline add their own monitors; these run in addition.
	Monitors []matcher.Monitor

	// Alphabet is the symbol universe for regexps and the lexer.
	// Default: alphabet.Unicode.
	Alphabet alphabet.Alphabet

	// Discard is the pattern for input the lexer skips between tokens
	// (whitespace, comments). Empty means nothing is skipped.
	// Only consulted when the grammar contains Token matchers.
	Discard string

	// UseDFA selects DFA-backed regexp scanners (longest match only) over
	// NFA-backed ones (all match lengths, longest first).
	// Default: true.
	UseDFA bool

	// AutoMemoize enables the left-recursion rewriter: Or alternatives on
	// recursive loops are reordered after their base cases and loop nodes
	// are wrapped in LMemo.
	AutoMemoize bool

	// FullMemoize additionally wraps every node outside recursive loops
	// in RMemo. Only meaningful with AutoMemoize.
	FullMemoize bool

	// ConservativeLoops selects the all-cycles loop detection algorithm
	// for AutoMemoize instead of the liberal leftmost-path walk.
	ConservativeLoops bool

	// CompileRegexps enables the regexp rewriter, which collapses
	// convertible matcher subgraphs into single compiled Regexp matchers.
	CompileRegexps bool

	// MaxGenerators bounds the number of live suspended generators during
	// a parse; the oldest off-path generator is closed when the bound is
	// exceeded. Zero disables the bound.
	MaxGenerators int

	// Deadline aborts parses running past this time. Zero disables it.
	Deadline time.Time
}

// DefaultConfig returns the default parser configuration: Unicode alphabet,
// DFA regexps, flatten and compose-transforms rewriting, no lexer discard
// pattern, no memoization.
func DefaultConfig() Config {
	return Config{
		Alphabet: alphabet.Unicode,
		UseDFA:   true,
	}
}

// rewriters returns the effective rewriter pipeline.
func (c Config) rewriters() []rewrite.Rewriter {
	if c.Rewriters != nil {
		return c.Rewriters
	}
	rs := []rewrite.Rewriter{rewrite.Flatten(), rewrite.ComposeTransforms()}
	if c.AutoMemoize {
		if c.ConservativeLoops {
			rs = append(rs, rewrite.AutoMemoizeWith(true, c.FullMemoize))
		} else {
			rs = append(rs, rewrite.AutoMemoize(c.FullMemoize))
		}
	}
	if c.CompileRegexps {
		rs = append(rs, rewrite.CompileRegexps(c.Alphabet, c.UseDFA))
	}
	return rs
}

// monitors returns the effective monitor list for one parse invocation.
func (c Config) monitors() []matcher.Monitor {
	ms := append([]matcher.Monitor{}, c.Monitors...)
	if c.MaxGenerators > 0 {
		ms = append(ms, matcher.NewGeneratorManager(c.MaxGenerators))
	}
	if !c.Deadline.IsZero() {
		ms = append(ms, matcher.NewDeadlineMonitor(c.Deadline))
	}
	return ms
}
