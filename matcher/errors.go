package matcher

import (
	"errors"
	"fmt"

	"github.com/coregx/parco/stream"
)

// Common structural errors
var (
	// ErrUnboundDelayed indicates a Delayed placeholder was matched before
	// being bound to a real matcher.
	ErrUnboundDelayed = errors.New("unbound Delayed matcher")

	// ErrNotCompiled indicates a Regexp or Token matcher was used before
	// its pattern was compiled.
	ErrNotCompiled = errors.New("matcher pattern not compiled")

	// ErrDeadlineExceeded is returned through the trampoline when a
	// deadline monitor aborts the search.
	ErrDeadlineExceeded = errors.New("parse deadline exceeded")
)

// TypeError reports structural misuse of a matcher: matching a token matcher
// against a character stream, an unbound Delayed, and similar graph
// misconfigurations. It is fatal at parse time.
type TypeError struct {
	Node Matcher
	Err  error
}

// Error implements the error interface.
func (e *TypeError) Error() string {
	if e.Node != nil {
		return fmt.Sprintf("matcher type error in %s: %v", e.Node.Describe(), e.Err)
	}
	return fmt.Sprintf("matcher type error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *TypeError) Unwrap() error {
	return e.Err
}

// LeftRecursionError reports a left-recursive grammar evaluated through a
// memoizer that cannot curtail it. Wrap the recursive nodes in LMemo (the
// AutoMemoize rewriter does this) to parse such grammars.
type LeftRecursionError struct {
	Node Matcher
}

// Error implements the error interface.
func (e *LeftRecursionError) Error() string {
	if e.Node != nil {
		return fmt.Sprintf("left recursion detected at %s", e.Node.Describe())
	}
	return "left recursion detected"
}

// FatalError wraps an error raised by a transform (see transform.Raise) with
// the input position at which it fired.
type FatalError struct {
	Pos stream.Position
	Err error
}

// Error implements the error interface.
func (e *FatalError) Error() string {
	return fmt.Sprintf("%v at line %d, column %d", e.Err, e.Pos.Line, e.Pos.Col)
}

// Unwrap returns the underlying error.
func (e *FatalError) Unwrap() error {
	return e.Err
}
