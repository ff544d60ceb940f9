package nfa

import (
	"fmt"
	"regexp/syntax"
	"unicode"

	"github.com/coregx/parco/alphabet"
	"github.com/coregx/parco/internal/conv"
)

// maxCompileDepth limits recursion during compilation to prevent stack
// overflow on pathological patterns.
const maxCompileDepth = 100

// hole is a dangling transition produced while building a fragment: a state
// whose target has not been connected yet. side selects which target field of
// the state is dangling.
type hole struct {
	state StateID
	side  uint8 // 0 = next/left, 1 = right
}

// frag is a partially built automaton: an entry state plus the dangling
// transitions that the next fragment (or an accepting state) must fill.
type frag struct {
	start StateID
	outs  []hole
}

// Compiler compiles regexp/syntax patterns into Thompson NFAs over a given
// alphabet. A single Compiler may compile several labelled patterns into one
// state arena; this is how the lexer builds its combined token automaton.
type Compiler struct {
	alpha  alphabet.Alphabet
	states []State
	depth  int
}

// NewCompiler creates a compiler for the given alphabet.
func NewCompiler(a alphabet.Alphabet) *Compiler {
	return &Compiler{alpha: a}
}

// Compile compiles a single pattern into an NFA whose accepting states carry
// label 0.
func Compile(pattern string, a alphabet.Alphabet) (*NFA, error) {
	return CompileSet([]string{pattern}, a)
}

// CompileSet compiles a set of patterns into a single NFA. The accepting
// states of pattern i carry label i; the patterns share one start state, so
// a subset-construction DFA over the result performs multi-pattern
// longest-match scanning.
func CompileSet(patterns []string, a alphabet.Alphabet) (*NFA, error) {
	c := NewCompiler(a)
	starts := make([]StateID, 0, len(patterns))
	for i, pattern := range patterns {
		re, err := syntax.Parse(pattern, syntax.Perl)
		if err != nil {
			return nil, &CompileError{Pattern: pattern, Err: fmt.Errorf("%w: %v", ErrInvalidPattern, err)}
		}
		f, err := c.compile(re.Simplify())
		if err != nil {
			return nil, &CompileError{Pattern: pattern, Err: err}
		}
		match := c.add(State{kind: StateMatch, label: i})
		c.patch(f.outs, match)
		starts = append(starts, f.start)
	}
	start := c.fanOut(starts)
	return &NFA{states: c.states, start: start, patternCount: len(patterns)}, nil
}

// add appends a state to the arena and returns its ID.
func (c *Compiler) add(s State) StateID {
	id := StateID(conv.IntToUint32(len(c.states)))
	s.id = id
	c.states = append(c.states, s)
	return id
}

// patch connects every dangling transition in outs to the target state.
func (c *Compiler) patch(outs []hole, to StateID) {
	for _, h := range outs {
		s := &c.states[h.state]
		switch s.kind {
		case StateSplit:
			if h.side == 0 {
				s.left = to
			} else {
				s.right = to
			}
		default:
			s.next = to
		}
	}
}

// fanOut builds a start state reaching each of the given states via epsilon
// splits. A single state is returned unchanged; an empty list yields a
// dead state.
func (c *Compiler) fanOut(starts []StateID) StateID {
	switch len(starts) {
	case 0:
		return c.add(State{kind: StateFail})
	case 1:
		return starts[0]
	}
	// Right-fold so earlier patterns sit higher in the split chain.
	cur := starts[len(starts)-1]
	for i := len(starts) - 2; i >= 0; i-- {
		cur = c.add(State{kind: StateSplit, left: starts[i], right: cur})
	}
	return cur
}

// compile translates one regexp/syntax node into a fragment.
func (c *Compiler) compile(re *syntax.Regexp) (frag, error) {
	c.depth++
	defer func() { c.depth-- }()
	if c.depth > maxCompileDepth {
		return frag{}, ErrTooComplex
	}

	switch re.Op {
	case syntax.OpNoMatch:
		return frag{start: c.add(State{kind: StateFail})}, nil

	case syntax.OpEmptyMatch:
		id := c.add(State{kind: StateEpsilon, next: InvalidState})
		return frag{start: id, outs: []hole{{state: id}}}, nil

	case syntax.OpLiteral:
		return c.compileLiteral(re.Rune, re.Flags&syntax.FoldCase != 0)

	case syntax.OpCharClass:
		return c.compileClass(runePairsToSet(c.alpha, re.Rune))

	case syntax.OpAnyChar:
		full := alphabet.NewSet(c.alpha, alphabet.Interval{Lo: c.alpha.Min(), Hi: c.alpha.Max()})
		return c.compileClass(full)

	case syntax.OpAnyCharNotNL:
		full := alphabet.NewSet(c.alpha, alphabet.Interval{Lo: c.alpha.Min(), Hi: c.alpha.Max()})
		nl := alphabet.Singleton(c.alpha, '\n')
		return c.compileClass(nl.Invert(c.alpha).Intersect(c.alpha, full))

	case syntax.OpConcat:
		return c.compileConcat(re.Sub)

	case syntax.OpAlternate:
		return c.compileAlternate(re.Sub)

	case syntax.OpStar:
		return c.compileStar(re.Sub[0])

	case syntax.OpPlus:
		f, err := c.compile(re.Sub[0])
		if err != nil {
			return frag{}, err
		}
		loop := c.add(State{kind: StateSplit, left: f.start, right: InvalidState})
		c.patch(f.outs, loop)
		return frag{start: f.start, outs: []hole{{state: loop, side: 1}}}, nil

	case syntax.OpQuest:
		f, err := c.compile(re.Sub[0])
		if err != nil {
			return frag{}, err
		}
		s := c.add(State{kind: StateSplit, left: f.start, right: InvalidState})
		outs := append(f.outs, hole{state: s, side: 1})
		return frag{start: s, outs: outs}, nil

	case syntax.OpRepeat:
		return c.compileRepeat(re.Sub[0], re.Min, re.Max)

	case syntax.OpCapture:
		// Groups exist only for precedence; the engine has no captures.
		return c.compile(re.Sub[0])

	default:
		return frag{}, fmt.Errorf("%w: %s", ErrUnsupported, re.Op)
	}
}

// compileLiteral chains one Range state per literal rune. With fold set, each
// rune becomes the class of its simple case folds.
func (c *Compiler) compileLiteral(runes []rune, fold bool) (frag, error) {
	if len(runes) == 0 {
		id := c.add(State{kind: StateEpsilon, next: InvalidState})
		return frag{start: id, outs: []hole{{state: id}}}, nil
	}
	var first frag
	var prev []hole
	for i, r := range runes {
		var f frag
		var err error
		if fold {
			f, err = c.compileClass(foldSet(c.alpha, r))
		} else {
			if !c.alpha.Contains(r) {
				return frag{}, fmt.Errorf("%w: literal %q", ErrAlphabet, r)
			}
			id := c.add(State{kind: StateRange, lo: r, hi: r, next: InvalidState})
			f = frag{start: id, outs: []hole{{state: id}}}
		}
		if err != nil {
			return frag{}, err
		}
		if i == 0 {
			first = f
		} else {
			c.patch(prev, f.start)
		}
		prev = f.outs
	}
	first.outs = prev
	return first, nil
}

// compileClass builds one Range state per interval, joined by a split chain.
// An empty class becomes a dead state.
func (c *Compiler) compileClass(set alphabet.Set) (frag, error) {
	ivs := set.Intervals()
	if len(ivs) == 0 {
		return frag{start: c.add(State{kind: StateFail})}, nil
	}
	var outs []hole
	ids := make([]StateID, 0, len(ivs))
	for _, iv := range ivs {
		id := c.add(State{kind: StateRange, lo: iv.Lo, hi: iv.Hi, next: InvalidState})
		ids = append(ids, id)
		outs = append(outs, hole{state: id})
	}
	return frag{start: c.fanOut(ids), outs: outs}, nil
}

func (c *Compiler) compileConcat(subs []*syntax.Regexp) (frag, error) {
	if len(subs) == 0 {
		id := c.add(State{kind: StateEpsilon, next: InvalidState})
		return frag{start: id, outs: []hole{{state: id}}}, nil
	}
	var first frag
	var prev []hole
	for i, sub := range subs {
		f, err := c.compile(sub)
		if err != nil {
			return frag{}, err
		}
		if i == 0 {
			first = f
		} else {
			c.patch(prev, f.start)
		}
		prev = f.outs
	}
	first.outs = prev
	return first, nil
}

func (c *Compiler) compileAlternate(subs []*syntax.Regexp) (frag, error) {
	starts := make([]StateID, 0, len(subs))
	var outs []hole
	for _, sub := range subs {
		f, err := c.compile(sub)
		if err != nil {
			return frag{}, err
		}
		starts = append(starts, f.start)
		outs = append(outs, f.outs...)
	}
	return frag{start: c.fanOut(starts), outs: outs}, nil
}

func (c *Compiler) compileStar(sub *syntax.Regexp) (frag, error) {
	f, err := c.compile(sub)
	if err != nil {
		return frag{}, err
	}
	s := c.add(State{kind: StateSplit, left: f.start, right: InvalidState})
	c.patch(f.outs, s)
	return frag{start: s, outs: []hole{{state: s, side: 1}}}, nil
}

// compileRepeat unrolls x{min,max}: min mandatory copies followed by either
// optional copies (finite max) or a star (max < 0).
func (c *Compiler) compileRepeat(sub *syntax.Regexp, min, max int) (frag, error) {
	var first frag
	var prev []hole
	started := false
	link := func(f frag) {
		if !started {
			first = f
			started = true
		} else {
			c.patch(prev, f.start)
		}
		prev = f.outs
	}
	for i := 0; i < min; i++ {
		f, err := c.compile(sub)
		if err != nil {
			return frag{}, err
		}
		link(f)
	}
	if max < 0 {
		f, err := c.compileStar(sub)
		if err != nil {
			return frag{}, err
		}
		link(f)
	} else {
		for i := min; i < max; i++ {
			f, err := c.compile(sub)
			if err != nil {
				return frag{}, err
			}
			s := c.add(State{kind: StateSplit, left: f.start, right: InvalidState})
			opt := frag{start: s, outs: append(f.outs, hole{state: s, side: 1})}
			link(opt)
		}
	}
	if !started {
		id := c.add(State{kind: StateEpsilon, next: InvalidState})
		return frag{start: id, outs: []hole{{state: id}}}, nil
	}
	first.outs = prev
	return first, nil
}

// runePairsToSet converts the [lo, hi, lo, hi, ...] rune pairs of a
// regexp/syntax character class into a Set clipped to the alphabet.
func runePairsToSet(a alphabet.Alphabet, pairs []rune) alphabet.Set {
	ivs := make([]alphabet.Interval, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		ivs = append(ivs, alphabet.Interval{Lo: pairs[i], Hi: pairs[i+1]})
	}
	full := alphabet.NewSet(a, alphabet.Interval{Lo: a.Min(), Hi: a.Max()})
	return alphabet.NewSet(a, ivs...).Intersect(a, full)
}

// foldSet returns the set of simple case folds of r, clipped to the alphabet.
func foldSet(a alphabet.Alphabet, r rune) alphabet.Set {
	set := alphabet.Singleton(a, r)
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		set = set.Union(a, alphabet.Singleton(a, f))
	}
	full := alphabet.NewSet(a, alphabet.Interval{Lo: a.Min(), Hi: a.Max()})
	return set.Intersect(a, full)
}
