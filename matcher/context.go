package matcher

import "github.com/coregx/parco/stream"

// memoKey identifies a memo table entry: one matcher node at one input
// position.
type memoKey struct {
	node Matcher
	pos  stream.Key
}

// Context holds the per-invocation mutable state of a parse: the memo tables.
// The matcher graph itself is immutable after rewriting and may be shared
// between invocations; each invocation gets a fresh Context.
type Context struct {
	rmemo map[memoKey]*rmemoEntry
	lmemo map[memoKey]*lmemoEntry
}

// NewContext creates the state for one parse invocation.
func NewContext() *Context {
	return &Context{
		rmemo: make(map[memoKey]*rmemoEntry),
		lmemo: make(map[memoKey]*lmemoEntry),
	}
}
