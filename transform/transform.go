// Package transform provides result-list post-processing for matchers.
//
// A matcher yields a list of values for each parse. Transforms reshape that
// list: mapping elements, folding the list into a single structure, dropping
// it, or turning it into a fatal error. Transforms are pure functions of the
// value list; they never see or modify the input cursor.
//
// Transforms compose: attaching several to one matcher runs them inner-first
// through Compose, so only a single function call happens per parse result.
package transform

import (
	"errors"
	"fmt"
	"strings"
)

// Func rewrites one result list. Returning ErrFiltered discards the result
// (the parse continues as if the child had not matched); any other error is
// fatal and aborts the parse.
type Func func(values []any) ([]any, error)

// ErrFiltered signals that a transform rejected the result. The matcher
// treats the rejection as a parse failure rather than an error.
var ErrFiltered = errors.New("result filtered")

// Compose returns a transform applying f then g. A nil transform acts as the
// identity, so Compose(nil, g) == g.
func Compose(f, g Func) Func {
	if f == nil {
		return g
	}
	if g == nil {
		return f
	}
	return func(values []any) ([]any, error) {
		mid, err := f(values)
		if err != nil {
			return nil, err
		}
		return g(mid)
	}
}

// Map applies f to each element of the result list.
func Map(f func(any) any) Func {
	return func(values []any) ([]any, error) {
		out := make([]any, len(values))
		for i, v := range values {
			out[i] = f(v)
		}
		return out, nil
	}
}

// Apply replaces the result list with the single value f(values).
func Apply(f func(values []any) any) Func {
	return func(values []any) ([]any, error) {
		return []any{f(values)}, nil
	}
}

// ApplyRaw replaces the result list with f(values) directly, without
// wrapping.
func ApplyRaw(f func(values []any) []any) Func {
	return func(values []any) ([]any, error) {
		return f(values), nil
	}
}

// Drop discards the result list, yielding an empty list.
func Drop() Func {
	return func([]any) ([]any, error) {
		return nil, nil
	}
}

// Named carries a name/value pair through a result list for KApply.
type Named struct {
	Name  string
	Value any
}

// KApply collects the Named values of the result list into a map and replaces
// the list with [f(args)]. Unnamed values are ignored.
func KApply(f func(args map[string]any) (any, error)) Func {
	return func(values []any) ([]any, error) {
		args := make(map[string]any)
		for _, v := range values {
			if n, ok := v.(Named); ok {
				args[n.Name] = n.Value
			}
		}
		out, err := f(args)
		if err != nil {
			return nil, err
		}
		return []any{out}, nil
	}
}

// Raise converts any result into the fatal error produced by reason. Use it
// to turn grammar productions into hard failures.
func Raise(reason func(values []any) error) Func {
	return func(values []any) ([]any, error) {
		return nil, reason(values)
	}
}

// PostCondition keeps the result list only when pred accepts it; otherwise
// the result is filtered out and the parse backtracks.
func PostCondition(pred func(values []any) bool) Func {
	return func(values []any) ([]any, error) {
		if !pred(values) {
			return nil, ErrFiltered
		}
		return values, nil
	}
}

// Join concatenates the string renderings of the result list into a single
// string value. Runes are rendered as characters, not code point numbers.
func Join() Func {
	return func(values []any) ([]any, error) {
		var b strings.Builder
		for _, v := range values {
			switch x := v.(type) {
			case string:
				b.WriteString(x)
			case rune:
				b.WriteRune(x)
			default:
				fmt.Fprint(&b, x)
			}
		}
		return []any{b.String()}, nil
	}
}
