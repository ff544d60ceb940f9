package matcher

import "github.com/coregx/parco/stream"

// Result is one parse produced by a matcher: the values it yielded and the
// cursor just past the consumed input.
type Result struct {
	Values []any
	Rest   stream.Cursor
}

// StepKind discriminates the outcome of one generator step.
type StepKind uint8

const (
	// StepYield delivers a Result to the caller and suspends the generator.
	StepYield StepKind = iota

	// StepCall asks the trampoline to evaluate a child generator; the next
	// Step call receives the child's outcome as its Reply.
	StepCall

	// StepDone signals the generator is exhausted.
	StepDone
)

// Step is the outcome of resuming a generator.
type Step struct {
	Kind   StepKind
	Result Result    // valid when Kind == StepYield
	Child  Generator // valid when Kind == StepCall
}

// Reply carries a child generator's outcome back into its parent: the child's
// result, or OK == false when the child is exhausted. The zero Reply is
// passed on a generator's first step and when it resumes after a yield.
type Reply struct {
	Result Result
	OK     bool
}

// Generator is a suspended matcher computation: a coroutine in explicit
// continuation form. The trampoline is the only caller of Step.
//
// A generator may be resumed after yielding to produce its next result, and
// the same child generator may be passed to StepCall repeatedly to pull
// successive results from it. Close releases any held resources; a closed
// generator reports StepDone forever.
type Generator interface {
	Step(reply Reply) (Step, error)
	Close()
}

// yield, call and done are Step constructors that keep the per-variant
// generator code compact.

func yield(values []any, rest stream.Cursor) (Step, error) {
	return Step{Kind: StepYield, Result: Result{Values: values, Rest: rest}}, nil
}

func yieldResult(r Result) (Step, error) {
	return Step{Kind: StepYield, Result: r}, nil
}

func call(g Generator) (Step, error) {
	return Step{Kind: StepCall, Child: g}, nil
}

func done() (Step, error) {
	return Step{Kind: StepDone}, nil
}

// emptyGen is a generator that is exhausted from the start.
type emptyGen struct{}

func (emptyGen) Step(Reply) (Step, error) { return done() }
func (emptyGen) Close()                   {}

// failGen is a generator that fails with a structural error on first step.
type failGen struct {
	err error
}

func (g *failGen) Step(Reply) (Step, error) { return Step{}, g.err }
func (g *failGen) Close()                   {}

// replayGen re-yields a recorded result sequence, used by memoizers.
type replayGen struct {
	results []Result
	i       int
	closed  bool
}

func (g *replayGen) Step(Reply) (Step, error) {
	if g.closed || g.i >= len(g.results) {
		g.closed = true
		return done()
	}
	r := g.results[g.i]
	g.i++
	return yieldResult(r)
}

func (g *replayGen) Close() { g.closed = true }
