package parco

import (
	"fmt"

	"github.com/coregx/parco/stream"
)

// maxRemainingPreview bounds the remaining-input excerpt carried by
// FullFirstMatchError.
const maxRemainingPreview = 32

// FullFirstMatchError reports that Parse required a match consuming the
// whole input but the first (best) match stopped early, or no match was
// found at all. It carries the position where matching stopped and a preview
// of the unconsumed input.
type FullFirstMatchError struct {
	Pos       stream.Position
	Remaining string
}

// Error implements the error interface.
func (e *FullFirstMatchError) Error() string {
	if e.Remaining != "" {
		return fmt.Sprintf("the match failed at line %d, column %d, before %q",
			e.Pos.Line, e.Pos.Col, e.Remaining)
	}
	return fmt.Sprintf("the match failed at line %d, column %d", e.Pos.Line, e.Pos.Col)
}

// fullFirstMatchError builds the error from the cursor matching stopped at.
func fullFirstMatchError(c stream.Cursor) *FullFirstMatchError {
	preview := ""
	if rt, ok := c.(stream.RuneText); ok {
		runes := rt.Runes()
		if len(runes) > maxRemainingPreview {
			runes = runes[:maxRemainingPreview]
		}
		preview = string(runes)
	}
	return &FullFirstMatchError{Pos: c.Position(), Remaining: preview}
}
