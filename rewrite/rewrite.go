// Package rewrite transforms matcher graphs before parsing: flattening
// nested sequences, composing transforms, compiling subgraphs to regular
// expressions, and inserting memoizers around (left-)recursive loops.
//
// All rewriters are pure graph-to-graph functions built on a shared
// delayed-clone primitive that reproduces a graph in post-order while
// handling cycles: the clone of a Delayed node is registered before its
// bound matcher is cloned, so back-edges resolve to the new placeholder and
// are patched when the clone completes.
package rewrite

import (
	"github.com/coregx/parco/matcher"
	"github.com/coregx/parco/transform"
)

// Rewriter is a pure graph-to-graph transform applied before parsing begins.
type Rewriter func(m matcher.Matcher) (matcher.Matcher, error)

// CloneFunc builds the clone of one node from the already-cloned children.
// Implementations normally call node.Rebuild, possibly reshaping the children
// or wrapping the result. CloneFunc is not invoked for Delayed nodes; the
// clone primitive reproduces those itself to keep cycle patching correct.
type CloneFunc func(node matcher.Matcher, children []matcher.Matcher) matcher.Matcher

// Clone reproduces the graph rooted at root in post-order, building each new
// node with f. Per-node auxiliary data (result transform, describe label) is
// preserved by Rebuild inside f.
func Clone(root matcher.Matcher, f CloneFunc) matcher.Matcher {
	c := &cloner{f: f, done: make(map[matcher.Matcher]matcher.Matcher)}
	return c.visit(root)
}

type cloner struct {
	f    CloneFunc
	done map[matcher.Matcher]matcher.Matcher
}

func (c *cloner) visit(m matcher.Matcher) matcher.Matcher {
	if out, ok := c.done[m]; ok {
		return out
	}
	if d, ok := m.(*matcher.Delayed); ok {
		// Register the placeholder before descending so that cycles back
		// to this node resolve to the clone, then patch it.
		nd := matcher.NewDelayed()
		if label := d.Label(); label != "" {
			nd.SetLabel(label)
		}
		c.done[d] = nd
		if bound := d.Bound(); bound != nil {
			// Bind cannot fail on a fresh placeholder.
			_ = nd.Bind(c.visit(bound))
		}
		return nd
	}
	children := m.Children()
	cloned := make([]matcher.Matcher, len(children))
	for i, ch := range children {
		cloned[i] = c.visit(ch)
	}
	out := c.f(m, cloned)
	c.done[m] = out
	return out
}

// Walk visits every node reachable from root exactly once, in pre-order.
// Cycles are safe; each node is visited once.
func Walk(root matcher.Matcher, visit func(matcher.Matcher)) {
	seen := make(map[matcher.Matcher]bool)
	var rec func(matcher.Matcher)
	rec = func(m matcher.Matcher) {
		if seen[m] {
			return
		}
		seen[m] = true
		visit(m)
		for _, ch := range m.Children() {
			rec(ch)
		}
	}
	rec(root)
}

// Apply runs rewriters left to right over m.
func Apply(m matcher.Matcher, rewriters ...Rewriter) (matcher.Matcher, error) {
	var err error
	for _, r := range rewriters {
		m, err = r(m)
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Flatten merges adjacent And/And and Or/Or pairs when neither parent nor
// child carries a transform. Flattening reduces trampoline depth without
// changing the yielded results.
func Flatten() Rewriter {
	return func(root matcher.Matcher) (matcher.Matcher, error) {
		out := Clone(root, func(node matcher.Matcher, children []matcher.Matcher) matcher.Matcher {
			switch node.(type) {
			case *matcher.And:
				if node.Transform() == nil {
					children = splice(children, func(m matcher.Matcher) bool {
						_, ok := m.(*matcher.And)
						return ok
					})
				}
			case *matcher.Or:
				if node.Transform() == nil {
					children = splice(children, func(m matcher.Matcher) bool {
						_, ok := m.(*matcher.Or)
						return ok
					})
				}
			}
			return node.Rebuild(children, node.Transform())
		})
		return out, nil
	}
}

// splice replaces each child matching sameKind and carrying no transform
// with that child's own children.
func splice(children []matcher.Matcher, sameKind func(matcher.Matcher) bool) []matcher.Matcher {
	out := make([]matcher.Matcher, 0, len(children))
	for _, ch := range children {
		if sameKind(ch) && ch.Transform() == nil {
			out = append(out, ch.Children()...)
			continue
		}
		out = append(out, ch)
	}
	return out
}

// ComposeTransforms folds Transform nodes into the matchers they wrap. After
// this rewriter no Transform node has a Transform child, and wherever the
// wrapped matcher supports direct composition the function is pushed into it,
// saving one generator per result at parse time.
func ComposeTransforms() Rewriter {
	return func(root matcher.Matcher) (matcher.Matcher, error) {
		out := Clone(root, func(node matcher.Matcher, children []matcher.Matcher) matcher.Matcher {
			rebuilt := node.Rebuild(children, node.Transform())
			t, ok := rebuilt.(*matcher.Transform)
			if !ok {
				return rebuilt
			}
			child := t.Children()[0]
			if !composable(child) {
				return rebuilt
			}
			return child.Rebuild(child.Children(), transform.Compose(child.Transform(), t.Transform()))
		})
		return out, nil
	}
}

// composable reports whether a matcher can absorb a transform function.
// Delayed proxies and memoizers keep their identity: pushing a transform into
// them would change what gets cached or hide the placeholder from rewriting.
func composable(m matcher.Matcher) bool {
	switch m.(type) {
	case *matcher.Delayed, *matcher.Memo:
		return false
	}
	return true
}

// SetArguments rebuilds every node for which replace returns a non-nil
// matcher, substituting the replacement into the graph. It is the generic
// hook for swapping combinators for specialized implementations (for
// example, replacing a generic node with a fast path once its children are
// known to be plain functions).
func SetArguments(replace func(matcher.Matcher) matcher.Matcher) Rewriter {
	return func(root matcher.Matcher) (matcher.Matcher, error) {
		out := Clone(root, func(node matcher.Matcher, children []matcher.Matcher) matcher.Matcher {
			rebuilt := node.Rebuild(children, node.Transform())
			if r := replace(rebuilt); r != nil {
				return r
			}
			return rebuilt
		})
		return out, nil
	}
}
