package paths

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultMatchTimeout bounds a single pattern test so a pathological
// expression cannot stall a reply.
var DefaultMatchTimeout = 250 * time.Millisecond

// Pattern is a compiled path key.
// Keys are purely textual: two patterns with the same Key are the same entry.
type Pattern struct {
	source string
	flags  string
	re     *regexp2.Regexp
}

// Compile parses a pattern given either as a plain source string ("hello")
// or as a literal ("/hello/i"). Expressions follow ECMAScript semantics.
//
// Supported literal flags are i and m. The flags d, g, y and u are accepted and
// dropped since evaluation is a stateless search. Anything else is rejected.
func Compile(expr string) (*Pattern, error) {
	if expr == "" {
		return nil, fmt.Errorf("%w: empty pattern", ErrInvalidPattern)
	}

	source, flags, isLiteral := splitLiteral(expr)
	if !isLiteral {
		source, flags = expr, ""
	}
	if source == "" {
		return nil, fmt.Errorf("%w: empty pattern %q", ErrInvalidPattern, expr)
	}

	opts := regexp2.RegexOptions(regexp2.ECMAScript)
	kept := make([]string, 0, len(flags))
	seen := make(map[rune]bool)
	for _, f := range flags {
		if seen[f] {
			continue
		}
		seen[f] = true
		switch f {
		case 'i':
			opts |= regexp2.IgnoreCase
			kept = append(kept, "i")
		case 'm':
			opts |= regexp2.Multiline
			kept = append(kept, "m")
		case 'd', 'g', 'y', 'u':
			// stateless search, nothing to carry
		default:
			return nil, fmt.Errorf("%w: unsupported flag %q in %q", ErrInvalidPattern, f, expr)
		}
	}
	sort.Strings(kept)

	re, err := regexp2.Compile(source, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, expr, err)
	}
	re.MatchTimeout = DefaultMatchTimeout

	return &Pattern{
		source: source,
		flags:  strings.Join(kept, ""),
		re:     re,
	}, nil
}

// MustCompile is like Compile but panics on error. Intended for tests and
// package-level fixtures.
func MustCompile(expr string) *Pattern {
	p, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// Key returns the canonical string form used as the mapping key.
// A flagless source is its own key unless it reads as a literal itself,
// in which case it is wrapped so "//x/i/" and "/x/i" stay distinct.
func (p *Pattern) Key() string {
	if p.flags == "" {
		if _, _, literal := splitLiteral(p.source); !literal {
			return p.source
		}
	}
	return "/" + p.source + "/" + p.flags
}

func (p *Pattern) String() string {
	return p.Key()
}

// MatchString reports whether the pattern finds a match anywhere in s.
func (p *Pattern) MatchString(s string) (bool, error) {
	return p.re.MatchString(s)
}

// CanonicalKey returns the key a pattern expression is stored under.
// Expressions that do not compile are returned unchanged.
func CanonicalKey(expr string) string {
	p, err := Compile(expr)
	if err != nil {
		return expr
	}
	return p.Key()
}

// literalFlags is every flag a JavaScript RegExp literal may carry.
const literalFlags = "dgimsuy"

// splitLiteral recognizes the "/source/flags" form. The trailing segment
// must consist of RegExp flags only, otherwise the expression is a plain source
// (e.g. "/usr/bin" stays as is).
func splitLiteral(expr string) (source, flags string, ok bool) {
	if len(expr) < 2 || expr[0] != '/' {
		return "", "", false
	}
	end := strings.LastIndexByte(expr, '/')
	if end == 0 {
		return "", "", false
	}
	flags = expr[end+1:]
	for _, r := range flags {
		if !strings.ContainsRune(literalFlags, r) {
			return "", "", false
		}
	}
	return expr[1:end], flags, true
}
