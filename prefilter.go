package parco

import (
	"unicode/utf8"

	"github.com/coregx/ahocorasick"

	"github.com/coregx/parco/matcher"
	"github.com/coregx/parco/stream"
)

// maxPrefilterLiterals bounds the literal set the prefilter is built from.
// Beyond this the automaton stops paying for itself.
const maxPrefilterLiterals = 256

// prefilter accelerates Search over character input: when every parse must
// start with one of a finite set of literal prefixes, an Aho-Corasick
// automaton proposes candidate start offsets and everything between
// candidates is skipped. The matcher graph confirms candidates, so the
// prefilter never changes results.
type prefilter struct {
	auto *ahocorasick.Automaton
}

// newPrefilter extracts the grammar's literal prefixes and builds the
// automaton. It returns nil when no finite non-empty prefix set exists.
func newPrefilter(root matcher.Matcher) *prefilter {
	literals, ok := prefixLiterals(root, make(map[matcher.Matcher]bool))
	if !ok || len(literals) == 0 || len(literals) > maxPrefilterLiterals {
		return nil
	}
	builder := ahocorasick.NewBuilder()
	for _, lit := range literals {
		builder.AddPattern([]byte(lit))
	}
	auto, err := builder.Build()
	if err != nil {
		return nil
	}
	return &prefilter{auto: auto}
}

// candidates returns the ascending rune offsets in text at which a parse
// could start, according to the prefix literals.
func (p *prefilter) candidates(text []rune) []int {
	haystack := []byte(string(text))
	var out []int
	at := 0
	for {
		m := p.auto.Find(haystack, at)
		if m == nil {
			return out
		}
		out = append(out, utf8.RuneCount(haystack[:m.Start]))
		at = m.Start + 1
		if at >= len(haystack) {
			return out
		}
	}
}

// Search scans input for the first position where the grammar matches and
// returns that match. ok is false when no position matches.
func (p *Parser) Search(input any) (r matcher.Result, ok bool, err error) {
	base, err := p.cursor(input)
	if err != nil {
		return matcher.Result{}, false, err
	}
	offsets, err := p.searchOffsets(base)
	if err != nil {
		return matcher.Result{}, false, err
	}
	for _, off := range offsets {
		r, ok, err := p.tryAt(base, off)
		if err != nil {
			return matcher.Result{}, false, err
		}
		if ok {
			return r, true, nil
		}
	}
	return matcher.Result{}, false, nil
}

// SearchAll scans input for every non-overlapping match, leftmost first.
func (p *Parser) SearchAll(input any) ([]matcher.Result, error) {
	base, err := p.cursor(input)
	if err != nil {
		return nil, err
	}
	offsets, err := p.searchOffsets(base)
	if err != nil {
		return nil, err
	}
	var out []matcher.Result
	next := 0
	for _, off := range offsets {
		if off < next {
			continue
		}
		r, ok, err := p.tryAt(base, off)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, r)
		end := r.Rest.Position().Offset
		next = off + 1
		if end > next {
			next = end
		}
	}
	return out, nil
}

// searchOffsets enumerates the offsets Search attempts, ascending: the
// prefilter's candidates when available, every offset otherwise.
func (p *Parser) searchOffsets(base stream.Cursor) ([]int, error) {
	if p.prefilter != nil {
		if rt, ok := base.(stream.RuneText); ok {
			return p.prefilter.candidates(rt.Runes()), nil
		}
	}
	offsets := make([]int, base.Remaining()+1)
	for i := range offsets {
		offsets[i] = i
	}
	return offsets, nil
}

// tryAt returns the first match starting at the given offset of base.
func (p *Parser) tryAt(base stream.Cursor, off int) (matcher.Result, bool, error) {
	all := p.matches(base.Advance(off))
	defer all.Close()
	r, ok := all.Next()
	if err := all.Err(); err != nil {
		return matcher.Result{}, false, err
	}
	return r, ok, nil
}

// prefixLiterals computes a set of literal strings such that every parse of
// m must start with one of them. ok is false when no such finite set of
// non-empty literals exists. seen guards against cycles: a rule reached
// recursively before consuming input has no usable prefix.
func prefixLiterals(m matcher.Matcher, seen map[matcher.Matcher]bool) ([]string, bool) {
	if seen[m] {
		return nil, false
	}
	seen[m] = true
	defer delete(seen, m)

	switch n := m.(type) {
	case *matcher.Literal:
		text, ok := n.Value().(string)
		if !ok || text == "" {
			return nil, false
		}
		return []string{text}, true

	case *matcher.And:
		children := n.Children()
		if len(children) == 0 || canMatchEmpty(children[0], make(map[matcher.Matcher]bool)) {
			return nil, false
		}
		return prefixLiterals(children[0], seen)

	case *matcher.Or, *matcher.First:
		var out []string
		for _, ch := range m.Children() {
			lits, ok := prefixLiterals(ch, seen)
			if !ok {
				return nil, false
			}
			out = append(out, lits...)
		}
		return out, len(out) > 0

	case *matcher.Repeat:
		low, _ := n.Bounds()
		if low < 1 {
			return nil, false
		}
		return prefixLiterals(n.Children()[0], seen)

	case *matcher.Transform, *matcher.Memo:
		return prefixLiterals(m.Children()[0], seen)

	case *matcher.Delayed:
		if n.Bound() == nil {
			return nil, false
		}
		return prefixLiterals(n.Bound(), seen)

	default:
		return nil, false
	}
}

// canMatchEmpty conservatively reports whether m might succeed without
// consuming input. Unknown constructs report true.
func canMatchEmpty(m matcher.Matcher, seen map[matcher.Matcher]bool) bool {
	if seen[m] {
		return true
	}
	seen[m] = true

	switch n := m.(type) {
	case *matcher.Literal:
		text, ok := n.Value().(string)
		return ok && text == ""

	case *matcher.Any, *matcher.Token:
		return false

	case *matcher.And:
		for _, ch := range n.Children() {
			if !canMatchEmpty(ch, seen) {
				return false
			}
		}
		return true

	case *matcher.Or, *matcher.First:
		for _, ch := range m.Children() {
			if canMatchEmpty(ch, seen) {
				return true
			}
		}
		return false

	case *matcher.Repeat:
		low, _ := n.Bounds()
		if low == 0 {
			return true
		}
		return canMatchEmpty(n.Children()[0], seen)

	case *matcher.Transform, *matcher.Memo:
		return canMatchEmpty(m.Children()[0], seen)

	case *matcher.Delayed:
		if n.Bound() == nil {
			return true
		}
		return canMatchEmpty(n.Bound(), seen)

	default:
		// Regexp, Lookahead, Eos and anything unknown may match empty.
		return true
	}
}
