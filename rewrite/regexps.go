package rewrite

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/coregx/parco/alphabet"
	"github.com/coregx/parco/dfa"
	"github.com/coregx/parco/matcher"
	"github.com/coregx/parco/nfa"
)

// CompileRegexps compiles matcher subgraphs into single Regexp matchers.
//
// The rewriter walks the graph bottom-up, rendering convertible nodes as
// regular-expression fragments: Literal and Any leaves become literals and
// character classes; And, Or and greedy separator-free Repeat nodes compose
// into concatenation, alternation and quantifiers. A node stops the
// conversion when it carries a transform, or when it is a Delayed, Memo,
// First, Lookahead, Token or Eos (their semantics have no regular
// equivalent). Each maximal convertible subgraph is replaced by one Regexp
// matcher holding a DFA scanner (useDFA true, longest match only) or an NFA
// scanner (all match lengths, longest first).
//
// A compiled subgraph yields the matched text as a single string value in
// place of the separate values its nodes would have produced.
//
// Uncompiled Regexp leaves are compiled against the alphabet as part of the
// same pass.
func CompileRegexps(a alphabet.Alphabet, useDFA bool) Rewriter {
	return func(root matcher.Matcher) (matcher.Matcher, error) {
		patterns := make(map[matcher.Matcher]string)
		var buildErr error
		build := func(pattern string) matcher.Matcher {
			s, err := compileScanner(pattern, a, useDFA)
			if err != nil && buildErr == nil {
				buildErr = err
			}
			return matcher.NewCompiledRegexp(pattern, s)
		}
		out := Clone(root, func(node matcher.Matcher, children []matcher.Matcher) matcher.Matcher {
			if p, ok := pattern(node, patterns); ok {
				patterns[node] = p
				return build(p)
			}
			rebuilt := node.Rebuild(children, node.Transform())
			if re, ok := rebuilt.(*matcher.Regexp); ok && !re.Compiled() {
				s, err := compileScanner(re.Pattern(), a, useDFA)
				if err != nil && buildErr == nil {
					buildErr = err
				}
				re.SetScanner(s)
			}
			return rebuilt
		})
		if buildErr != nil {
			return nil, buildErr
		}
		return out, nil
	}
}

// CompileLeaves attaches scanners to uncompiled Regexp leaf matchers in
// place, without merging subgraphs. The parser facade runs it after the
// configured rewriters so that every Regexp is compiled before parsing,
// whether or not CompileRegexps is enabled.
func CompileLeaves(a alphabet.Alphabet, useDFA bool) Rewriter {
	return func(root matcher.Matcher) (matcher.Matcher, error) {
		var err error
		Walk(root, func(m matcher.Matcher) {
			re, ok := m.(*matcher.Regexp)
			if !ok || re.Compiled() {
				return
			}
			s, serr := compileScanner(re.Pattern(), a, useDFA)
			if serr != nil {
				if err == nil {
					err = serr
				}
				return
			}
			re.SetScanner(s)
		})
		if err != nil {
			return nil, err
		}
		return root, nil
	}
}

// compileScanner compiles a pattern into a DFA- or NFA-backed scanner.
func compileScanner(pattern string, a alphabet.Alphabet, useDFA bool) (matcher.Scanner, error) {
	n, err := nfa.Compile(pattern, a)
	if err != nil {
		return nil, err
	}
	if !useDFA {
		return matcher.NFAScanner(n), nil
	}
	d, err := dfa.FromNFA(n, a, dfa.DefaultMaxStates)
	if err != nil {
		return nil, err
	}
	return matcher.DFAScanner(d), nil
}

// pattern renders node as a regular-expression fragment, when possible.
// memo caches fragments of already-rendered nodes, keyed by the original
// node, so the walk stays linear on DAGs.
func pattern(node matcher.Matcher, memo map[matcher.Matcher]string) (string, bool) {
	if p, ok := memo[node]; ok {
		return p, true
	}
	if node.Transform() != nil {
		return "", false
	}
	switch m := node.(type) {
	case *matcher.Literal:
		text, ok := m.Value().(string)
		if !ok {
			return "", false
		}
		return regexp.QuoteMeta(text), true

	case *matcher.Any:
		set, restricted := m.Set()
		if !restricted {
			return "(?s:.)", true
		}
		return classPattern(set), true

	case *matcher.Regexp:
		return "(?:" + m.Pattern() + ")", true

	case *matcher.And:
		return joinPatterns(m.Children(), "", memo)

	case *matcher.Or:
		return joinPatterns(m.Children(), "|", memo)

	case *matcher.Repeat:
		if !m.Greedy() || m.Separator() != nil {
			return "", false
		}
		inner, ok := pattern(m.Children()[0], memo)
		if !ok {
			return "", false
		}
		low, high := m.Bounds()
		if high == matcher.Unbounded {
			return fmt.Sprintf("(?:%s){%d,}", inner, low), true
		}
		return fmt.Sprintf("(?:%s){%d,%d}", inner, low, high), true

	default:
		// Delayed, Memo, First, Lookahead, Token, Eos, Transform: these
		// have no regular-expression equivalent.
		return "", false
	}
}

func joinPatterns(children []matcher.Matcher, sep string, memo map[matcher.Matcher]string) (string, bool) {
	parts := make([]string, 0, len(children))
	for _, ch := range children {
		p, ok := pattern(ch, memo)
		if !ok {
			return "", false
		}
		parts = append(parts, "(?:"+p+")")
	}
	return strings.Join(parts, sep), true
}

// classPattern renders a character set as a regexp class.
func classPattern(set alphabet.Set) string {
	var b strings.Builder
	b.WriteByte('[')
	for _, iv := range set.Intervals() {
		b.WriteString(escapeClassRune(iv.Lo))
		if iv.Hi != iv.Lo {
			b.WriteByte('-')
			b.WriteString(escapeClassRune(iv.Hi))
		}
	}
	b.WriteByte(']')
	return b.String()
}

func escapeClassRune(r rune) string {
	switch r {
	case '\\', ']', '^', '-', '[':
		return "\\" + string(r)
	}
	return string(r)
}
