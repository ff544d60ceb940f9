package rewrite

import "github.com/coregx/parco/matcher"

// Memoize wraps every node in the graph with the memoizer built by factory
// (matcher.NewLMemo or matcher.NewRMemo). Delayed proxies are left bare:
// memoizing them would hide the placeholder from later rewriting, and their
// targets are wrapped anyway.
func Memoize(factory func(matcher.Matcher) matcher.Matcher) Rewriter {
	return func(root matcher.Matcher) (matcher.Matcher, error) {
		out := Clone(root, func(node matcher.Matcher, children []matcher.Matcher) matcher.Matcher {
			return factory(node.Rebuild(children, node.Transform()))
		})
		return out, nil
	}
}

// AutoMemoize rewrites the graph so that left-recursive grammars terminate:
// OptimizeOr moves recursive alternatives after their base cases, then
// ContextMemoize wraps every node on a left-recursive loop in LMemo. With
// full set, all remaining nodes get RMemo.
//
// Loop detection follows the liberal leftmost-path algorithm for Or
// reordering and the conservative all-cycles algorithm for memoizer
// placement. AutoMemoizeWith selects one algorithm for both phases.
func AutoMemoize(full bool) Rewriter {
	return func(root matcher.Matcher) (matcher.Matcher, error) {
		return Apply(root, OptimizeOr(false), ContextMemoize(true, full))
	}
}

// AutoMemoizeWith is AutoMemoize with the loop detection algorithm pinned
// for both phases: conservative walks every cycle, liberal walks only
// leftmost paths.
func AutoMemoizeWith(conservative, full bool) Rewriter {
	return func(root matcher.Matcher) (matcher.Matcher, error) {
		return Apply(root, OptimizeOr(conservative), ContextMemoize(conservative, full))
	}
}

// OptimizeOr reorders the children of Or nodes that sit on a recursive loop
// through a Delayed node, moving the loop edge after its siblings. The base
// case of a recursive rule is then tried before the rule re-enters itself,
// which keeps the recursion depth within the memoizer's curtailment bound.
//
// This rewriting may change the order in which results of an ambiguous
// grammar are returned.
func OptimizeOr(conservative bool) Rewriter {
	return func(root matcher.Matcher) (matcher.Matcher, error) {
		// For each Or node on a loop, the loop edges to demote, in
		// encounter order.
		demote := make(map[matcher.Matcher][]matcher.Matcher)
		Walk(root, func(m matcher.Matcher) {
			d, ok := m.(*matcher.Delayed)
			if !ok {
				return
			}
			for _, loop := range loops(d, conservative) {
				for i := 0; i+1 < len(loop); i++ {
					if _, isOr := loop[i].(*matcher.Or); isOr {
						demote[loop[i]] = append(demote[loop[i]], loop[i+1])
					}
				}
			}
		})
		if len(demote) == 0 {
			return root, nil
		}
		out := Clone(root, func(node matcher.Matcher, children []matcher.Matcher) matcher.Matcher {
			targets := demote[node]
			if len(targets) == 0 {
				return node.Rebuild(children, node.Transform())
			}
			// Apply the same permutation to the cloned children that
			// demoting the original targets implies.
			moved := make([]bool, len(children))
			orig := node.Children()
			for _, t := range targets {
				for i, ch := range orig {
					if ch == t {
						moved[i] = true
					}
				}
			}
			reordered := make([]matcher.Matcher, 0, len(children))
			for i, ch := range children {
				if !moved[i] {
					reordered = append(reordered, ch)
				}
			}
			for i, ch := range children {
				if moved[i] {
					reordered = append(reordered, ch)
				}
			}
			return node.Rebuild(reordered, node.Transform())
		})
		return out, nil
	}
}

// ContextMemoize wraps every node that sits on a recursive loop in LMemo.
// Remaining nodes get RMemo when full is set, otherwise they are left bare.
// Delayed proxies are never memoized.
func ContextMemoize(conservative, full bool) Rewriter {
	return func(root matcher.Matcher) (matcher.Matcher, error) {
		dangerous := make(map[matcher.Matcher]bool)
		Walk(root, func(m matcher.Matcher) {
			d, ok := m.(*matcher.Delayed)
			if !ok {
				return
			}
			for _, loop := range loops(d, conservative) {
				for _, node := range loop {
					dangerous[node] = true
				}
			}
		})
		out := Clone(root, func(node matcher.Matcher, children []matcher.Matcher) matcher.Matcher {
			rebuilt := node.Rebuild(children, node.Transform())
			switch {
			case dangerous[node]:
				return matcher.NewLMemo(rebuilt)
			case full:
				return matcher.NewRMemo(rebuilt)
			default:
				return rebuilt
			}
		})
		return out, nil
	}
}

// loops estimates the recursive loops that start and end at the given node.
// Each returned path starts and ends with node.
//
// With conservative set, every cycle through the node is walked. Otherwise
// only leftmost paths are considered: descend into the first child of each
// node, except that every branch of an Or is examined and a Lookahead child
// (which consumes nothing) lets the walk continue with the next sibling.
// A path that only descends leftward and returns to its origin re-enters the
// rule before consuming input, which is what makes it left-recursive.
func loops(node matcher.Matcher, conservative bool) [][]matcher.Matcher {
	var found [][]matcher.Matcher
	stack := [][]matcher.Matcher{{node}}
	known := map[matcher.Matcher]bool{node: true}
	for len(stack) > 0 {
		ancestors := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		parent := ancestors[len(ancestors)-1]
		_, parentIsOr := parent.(*matcher.Or)
		for _, child := range parent.Children() {
			family := append(append([]matcher.Matcher{}, ancestors...), child)
			if child == node {
				found = append(found, family)
			} else if !known[child] {
				stack = append(stack, family)
				known[child] = true
			}
			if conservative {
				continue
			}
			_, childIsLookahead := child.(*matcher.Lookahead)
			if !parentIsOr && !childIsLookahead {
				// Only the leftmost child can be reached before any
				// input is consumed.
				break
			}
		}
	}
	return found
}
