package parco

// Validation of email addresses following the practical subset of RFC 3696:
// dot-separated atoms or a quoted string for the local part (64 octets at
// most), LDH labels for the domain with at least one dot and a non-numeric
// top-level label. An end-to-end exercise of classes, repetition,
// alternation, separators and post-conditions.

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	asciiLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	asciiDigits  = "0123456789"
	atextExtra   = "!#$%&'*+-/=?^_`{|}~"
)

func emailValidator(t *testing.T) func(string) bool {
	t.Helper()

	atom := Join(Plus(AnyOf(asciiLetters + asciiDigits + atextExtra)))
	dotted := Join(SepBy(atom, Literal(".")))
	plainLocal := PostCondition(dotted, func(values []any) bool {
		return len(values[0].(string)) <= 64
	})
	quotedLocal := Join(Seq(Literal(`"`), Star(NoneOf(`"\`)), Literal(`"`)))
	local := Or(plainLocal, quotedLocal)

	label := PostCondition(Join(Plus(AnyOf(asciiLetters+asciiDigits+"-"))), func(values []any) bool {
		s := values[0].(string)
		return len(s) <= 63 && !strings.HasPrefix(s, "-") && !strings.HasSuffix(s, "-")
	})
	domain := PostCondition(SepBy(label, Literal(".")), func(values []any) bool {
		if len(values) < 3 {
			return false // a fully qualified name needs at least one dot
		}
		tld := values[len(values)-1].(string)
		return strings.ContainsAny(tld, asciiLetters)
	})

	email := Seq(local, Literal("@"), domain)
	p, err := NewParser(email, DefaultConfig())
	require.NoError(t, err)

	return func(address string) bool {
		_, err := p.Parse(address)
		return err == nil
	}
}

// TestEmail_RFC3696 tests the validator against the canonical accept and
// reject cases
func TestEmail_RFC3696(t *testing.T) {
	valid := emailValidator(t)

	accepts := []string{
		"local@example.com",
		"a.b.c@example.com",
		"user+tag@sub.example.org",
		`"a b"@example.com`,
		strings.Repeat("a", 64) + "@example.com",
	}
	rejects := []string{
		"a..b@example.com",                       // consecutive dots
		".a@example.com",                         // leading dot
		"a.@example.com",                         // trailing dot
		strings.Repeat("a", 65) + "@example.com", // local part too long
		"a@all-numeric.123",                      // numeric TLD
		"a@example",                              // no dot in domain
		"a@-bad.com",                             // label starts with hyphen
		"a@bad-.com",                             // label ends with hyphen
		"@example.com",                           // empty local part
		"a@",                                     // empty domain
	}

	for _, addr := range accepts {
		if !valid(addr) {
			t.Errorf("rejected valid address %q", addr)
		}
	}
	for _, addr := range rejects {
		if valid(addr) {
			t.Errorf("accepted invalid address %q", addr)
		}
	}
}
