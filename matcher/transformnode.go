package matcher

import (
	"github.com/coregx/parco/stream"
	"github.com/coregx/parco/transform"
)

// Transform rewrites the result lists of its child with a transform function.
// The ComposeTransforms rewriter folds chains of Transform nodes into a
// single composed function pushed onto the wrapped matcher, so at parse time
// at most one transform runs per node.
type Transform struct {
	base
	child Matcher
}

// NewTransform applies fn to every result of child.
func NewTransform(child Matcher, fn transform.Func) *Transform {
	m := &Transform{child: child}
	m.fn = fn
	return m
}

// Children implements Matcher.
func (m *Transform) Children() []Matcher { return []Matcher{m.child} }

// Rebuild implements Matcher.
func (m *Transform) Rebuild(children []Matcher, fn transform.Func) Matcher {
	c := *m
	c.child = children[0]
	c.fn = fn
	return &c
}

// Describe implements Matcher.
func (m *Transform) Describe() string {
	return m.describe("Transform")
}

// Match implements Matcher. The node itself just relays its child's results;
// the transform runs in the generic transform wrapper.
func (m *Transform) Match(ctx *Context, c stream.Cursor) Generator {
	return m.wrap(&relayGen{child: m.child.Match(ctx, c)})
}

// relayGen passes its child's results through unchanged.
type relayGen struct {
	child    Generator
	awaiting bool
	closed   bool
}

func (g *relayGen) Step(reply Reply) (Step, error) {
	if g.closed {
		return done()
	}
	if g.awaiting {
		g.awaiting = false
		if !reply.OK {
			g.closed = true
			return done()
		}
		return yieldResult(reply.Result)
	}
	g.awaiting = true
	return call(g.child)
}

func (g *relayGen) Close() {
	if !g.closed {
		g.closed = true
		g.child.Close()
	}
}
