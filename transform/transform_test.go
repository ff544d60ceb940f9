package transform

import (
	"errors"
	"fmt"
	"testing"
)

// TestMap tests element-wise mapping
func TestMap(t *testing.T) {
	f := Map(func(v any) any { return v.(int) * 2 })
	got, err := f([]any{1, 2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []any{2, 4, 6}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}

// TestApply tests folding into a single value
func TestApply(t *testing.T) {
	f := Apply(func(values []any) any { return len(values) })
	got, err := f([]any{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != 3 {
		t.Errorf("got %v, want [3]", got)
	}
}

// TestApplyRaw tests direct replacement without wrapping
func TestApplyRaw(t *testing.T) {
	f := ApplyRaw(func(values []any) []any { return values[1:] })
	got, err := f([]any{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "b" {
		t.Errorf("got %v, want [b c]", got)
	}
}

// TestDrop tests discarding results
func TestDrop(t *testing.T) {
	got, err := Drop()([]any{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}

// TestKApply tests named-argument collection
func TestKApply(t *testing.T) {
	f := KApply(func(args map[string]any) (any, error) {
		return fmt.Sprintf("%v-%v", args["x"], args["y"]), nil
	})
	got, err := f([]any{Named{Name: "x", Value: 1}, "ignored", Named{Name: "y", Value: 2}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != "1-2" {
		t.Errorf("got %v, want [1-2]", got)
	}
}

// TestCompose tests inner-first composition and nil identity
func TestCompose(t *testing.T) {
	inner := Map(func(v any) any { return v.(int) + 1 })
	outer := Apply(func(values []any) any { return values[0] })

	f := Compose(inner, outer)
	got, err := f([]any{10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != 11 {
		t.Errorf("got %v, want [11]", got)
	}

	if Compose(nil, outer) == nil || Compose(inner, nil) == nil {
		t.Error("composition with nil lost the surviving function")
	}
}

// TestPostCondition tests result filtering
func TestPostCondition(t *testing.T) {
	f := PostCondition(func(values []any) bool { return len(values) > 1 })

	if _, err := f([]any{"only"}); !errors.Is(err, ErrFiltered) {
		t.Errorf("rejected result error = %v, want ErrFiltered", err)
	}
	got, err := f([]any{"a", "b"})
	if err != nil || len(got) != 2 {
		t.Errorf("accepted result = (%v, %v)", got, err)
	}
}

// TestRaise tests conversion to fatal errors
func TestRaise(t *testing.T) {
	boom := errors.New("boom")
	f := Raise(func([]any) error { return boom })
	if _, err := f([]any{"x"}); !errors.Is(err, boom) {
		t.Errorf("error = %v, want boom", err)
	}
}

// TestJoin tests string concatenation of mixed values
func TestJoin(t *testing.T) {
	got, err := Join()([]any{"ab", 'c', 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != "abc7" {
		t.Errorf("got %v, want [abc7]", got)
	}
}
