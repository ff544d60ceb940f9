// Package matcher defines the matcher graph and the machinery that evaluates
// it: tagged combinator nodes, the generator protocol their evaluation
// suspends through, the trampoline that schedules generators without native
// recursion, and the memoizers that make left-recursive grammars terminate.
//
// A matcher's single operation is Match: given a run context and a cursor it
// returns a generator producing every parse at that position, lazily, in
// depth-first left-to-right order. Parse failure is an empty sequence, never
// an error; errors are reserved for structural misuse of the graph.
//
// Graphs may be cyclic, with every cycle passing through a Delayed
// placeholder. Rewriters (package rewrite) traverse graphs through Children
// and rebuild them through Rebuild.
package matcher

import (
	"errors"

	"github.com/coregx/parco/stream"
	"github.com/coregx/parco/transform"
)

// Matcher is one node of a matcher graph.
type Matcher interface {
	// Match starts an attempt at cursor c, returning a fresh generator.
	// Per-parse state (memo tables) lives in ctx.
	Match(ctx *Context, c stream.Cursor) Generator

	// Children returns the direct child matchers, for graph traversal.
	Children() []Matcher

	// Rebuild returns a node of the same kind and configuration with the
	// given children and result transform. Rewriters use it to reproduce
	// nodes; the describe label is preserved.
	Rebuild(children []Matcher, fn transform.Func) Matcher

	// Transform returns the composed result transform attached to this
	// node, or nil.
	Transform() transform.Func

	// Describe returns a short human-readable description of the node.
	Describe() string
}

// Labellable is implemented by nodes whose describe string can be replaced,
// typically to name a grammar production in error messages.
type Labellable interface {
	SetLabel(label string)
}

// base carries the auxiliary data shared by every node: an optional result
// transform and an optional describe label.
type base struct {
	fn    transform.Func
	label string
}

// Transform returns the node's result transform, or nil.
func (b *base) Transform() transform.Func {
	return b.fn
}

// SetLabel replaces the node's describe string.
func (b *base) SetLabel(label string) {
	b.label = label
}

// Label returns the describe label set on the node, or "".
func (b *base) Label() string {
	return b.label
}

func (b *base) describe(def string) string {
	if b.label != "" {
		return b.label
	}
	return def
}

// wrap attaches the node's transform to a raw generator. Generators yield raw
// child results; the transform runs once per yielded result.
func (b *base) wrap(g Generator) Generator {
	if b.fn == nil {
		return g
	}
	return &transformGen{fn: b.fn, child: g}
}

// transformGen applies a transform function to every result of child.
// Results rejected with transform.ErrFiltered are skipped; other transform
// errors become positioned fatal errors.
type transformGen struct {
	fn       transform.Func
	child    Generator
	awaiting bool
	closed   bool
}

func (g *transformGen) Step(reply Reply) (Step, error) {
	if g.closed {
		return done()
	}
	for {
		if !g.awaiting {
			g.awaiting = true
			return call(g.child)
		}
		g.awaiting = false
		if !reply.OK {
			g.closed = true
			return done()
		}
		values, err := g.fn(reply.Result.Values)
		if errors.Is(err, transform.ErrFiltered) {
			g.awaiting = true
			return call(g.child)
		}
		if err != nil {
			g.closed = true
			return Step{}, &FatalError{Pos: reply.Result.Rest.Position(), Err: err}
		}
		return yield(values, reply.Result.Rest)
	}
}

func (g *transformGen) Close() {
	if !g.closed {
		g.closed = true
		g.child.Close()
	}
}
