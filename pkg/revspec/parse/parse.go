// Package parse reads git-style revision specs such as "main~2",
// "v1.0^{tree}" or "a1b2..HEAD" and reports what it finds to a Delegate.
// It knows nothing about repositories; deciding what a name or prefix
// refers to is the delegate's job.
package parse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/odvcencio/gotrev/pkg/object"
)

// ErrDelegate is returned when a delegate callback reports that it could
// not continue. The delegate holds the details.
var ErrDelegate = errors.New("revision delegate could not continue")

// SyntaxError reports malformed input. Done is never called for it.
type SyntaxError struct {
	Input  string
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("parse revision %q: %s at offset %d", e.Input, e.Msg, e.Offset)
}

type parser struct {
	input string
	d     Delegate
}

// Parse reads input and drives d through its callbacks, ending with a
// single call to d.Done on success.
func Parse(input string, d Delegate) error {
	p := &parser{input: input, d: d}
	if err := p.spec(); err != nil {
		return err
	}
	d.Done()
	return nil
}

func (p *parser) fail(offset int, format string, args ...any) error {
	return &SyntaxError{Input: p.input, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

func call(ok bool) error {
	if !ok {
		return ErrDelegate
	}
	return nil
}

func (p *parser) spec() error {
	in := p.input
	if strings.TrimSpace(in) == "" {
		return p.fail(0, "empty revision")
	}
	if in[0] == ':' {
		return p.indexOrFind(in[1:], 1)
	}

	if in[0] == '^' && !strings.HasPrefix(in, "^{") {
		if i, _ := rangeOperator(in); i >= 0 {
			return p.fail(i, "range operator after ^ negation")
		}
		if err := call(p.d.Kind(ExcludeReachable)); err != nil {
			return err
		}
		return p.revision(in[1:], 1)
	}

	if i, n := rangeOperator(in); i >= 0 {
		kind := RangeBetween
		if n == 3 {
			kind = ReachableToMergeBase
		}
		left, right := in[:i], in[i+n:]
		if left == "" && right == "" {
			return p.fail(i, "range needs at least one side")
		}
		if left == "" {
			left = "HEAD"
		}
		if right == "" {
			right = "HEAD"
		}
		if err := p.revision(left, 0); err != nil {
			return err
		}
		if err := call(p.d.Kind(kind)); err != nil {
			return err
		}
		return p.revision(right, i+n)
	}

	for _, pk := range parentKinds {
		if !strings.HasSuffix(in, pk.suffix) {
			continue
		}
		base := in[:len(in)-len(pk.suffix)]
		if base == "" {
			return p.fail(0, "missing revision before %s", pk.suffix)
		}
		if err := p.revision(base, 0); err != nil {
			return err
		}
		return call(p.d.Kind(pk.kind))
	}

	return p.revision(in, 0)
}

var parentKinds = []struct {
	suffix string
	kind   Kind
}{
	{"^@", IncludeReachableFromParents},
	{"^!", ExcludeReachableFromParents},
}

// rangeOperator finds the first ".." or "..." outside braces and before
// any ":path" part. It returns -1 when there is none.
func rangeOperator(s string) (int, int) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case ':':
			if depth == 0 {
				return -1, 0
			}
		case '.':
			if depth == 0 && i+1 < len(s) && s[i+1] == '.' {
				if i+2 < len(s) && s[i+2] == '.' {
					return i, 3
				}
				return i, 2
			}
		}
	}
	return -1, 0
}

func (p *parser) revision(s string, off int) error {
	i := baseEnd(s)
	name := s[:i]

	switch {
	case name == "" && strings.HasPrefix(s, "@{-"):
		end := strings.IndexByte(s, '}')
		if end < 0 {
			return p.fail(off, "unterminated @{")
		}
		n, err := strconv.Atoi(s[3:end])
		if err != nil || n < 1 {
			return p.fail(off+3, "invalid branch number %q", s[3:end])
		}
		if err := call(p.d.NthCheckedOutBranch(n)); err != nil {
			return err
		}
		i = end + 1
	case name == "" && strings.HasPrefix(s, "@{"):
		if err := call(p.d.FindRef("HEAD")); err != nil {
			return err
		}
	case name == "":
		return p.fail(off, "missing revision")
	default:
		if err := p.base(name); err != nil {
			return err
		}
	}
	return p.suffixes(s[i:], off+i)
}

// baseEnd returns where the suffixes of a revision begin.
func baseEnd(s string) int {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '^', '~', ':':
			return i
		case '@':
			if i+1 < len(s) && s[i+1] == '{' {
				return i
			}
		}
	}
	return len(s)
}

func (p *parser) base(name string) error {
	if name == "@" {
		name = "HEAD"
	}
	// Names like "cafe" are valid prefixes and valid branch names; a
	// prefix that finds nothing falls through to the reference lookup.
	if prefix, err := object.NewPrefix(name); err == nil {
		if p.d.DisambiguatePrefix(prefix, nil) {
			return nil
		}
	} else if hint, prefix, ok := describeOutput(name); ok {
		if p.d.DisambiguatePrefix(prefix, &hint) {
			return nil
		}
	}
	return call(p.d.FindRef(name))
}

// describeOutput recognizes "<tag>-<n>-g<hex>".
func describeOutput(name string) (PrefixHint, object.Prefix, bool) {
	idx := strings.LastIndex(name, "-g")
	if idx < 0 {
		return PrefixHint{}, object.Prefix{}, false
	}
	prefix, err := object.NewPrefix(name[idx+2:])
	if err != nil {
		return PrefixHint{}, object.Prefix{}, false
	}
	rest := name[:idx]
	dash := strings.LastIndexByte(rest, '-')
	if dash <= 0 {
		return PrefixHint{}, object.Prefix{}, false
	}
	gen, err := strconv.Atoi(rest[dash+1:])
	if err != nil || gen < 0 {
		return PrefixHint{}, object.Prefix{}, false
	}
	return PrefixHint{MustBeCommit: true, DescribeAnchor: rest[:dash], Generation: gen}, prefix, true
}

func (p *parser) suffixes(s string, off int) error {
	for len(s) > 0 {
		switch {
		case strings.HasPrefix(s, "^{"):
			end := strings.IndexByte(s, '}')
			if end < 0 {
				return p.fail(off, "unterminated ^{")
			}
			if err := p.peelBraces(s[2:end], off+2); err != nil {
				return err
			}
			s, off = s[end+1:], off+end+1
		case s[0] == '^' || s[0] == '~':
			digits := leadingDigits(s[1:])
			n := 1
			if digits > 0 {
				v, err := strconv.Atoi(s[1 : 1+digits])
				if err != nil {
					return p.fail(off+1, "number %q out of range", s[1:1+digits])
				}
				n = v
			}
			t := Traversal{Kind: NthParent, N: n}
			if s[0] == '~' {
				t.Kind = NthAncestor
			}
			if err := call(p.d.Traverse(t)); err != nil {
				return err
			}
			s, off = s[1+digits:], off+1+digits
		case strings.HasPrefix(s, "@{"):
			end := strings.IndexByte(s, '}')
			if end < 0 {
				return p.fail(off, "unterminated @{")
			}
			if err := p.atBraces(s[2:end], off+2); err != nil {
				return err
			}
			s, off = s[end+1:], off+end+1
		case s[0] == ':':
			return call(p.d.PeelUntil(PeelTo{Target: PeelPath, Path: s[1:]}))
		default:
			return p.fail(off, "unexpected %q", s[0])
		}
	}
	return nil
}

func (p *parser) peelBraces(content string, off int) error {
	switch content {
	case "":
		return call(p.d.PeelUntil(PeelTo{Target: PeelRecursiveTagObject}))
	case "object":
		return call(p.d.PeelUntil(PeelTo{Target: PeelValidObject}))
	case "commit", "tree", "blob", "tag":
		return call(p.d.PeelUntil(PeelTo{Target: PeelObjectKind, Kind: object.ObjectType(content)}))
	}
	if strings.HasPrefix(content, "/") {
		regex, negated, err := p.regex(content[1:], off+1)
		if err != nil {
			return err
		}
		return call(p.d.Find(regex, negated))
	}
	return p.fail(off, "unknown peel target %q", content)
}

// regex handles the "!-" (negate) and "!!" (literal !) prefixes of a
// message search.
func (p *parser) regex(s string, off int) (string, bool, error) {
	negated := false
	switch {
	case strings.HasPrefix(s, "!-"):
		s, negated = s[2:], true
	case strings.HasPrefix(s, "!!"):
		s = s[1:]
	case strings.HasPrefix(s, "!"):
		return "", false, p.fail(off, "unknown search modifier %q", s)
	}
	if s == "" {
		return "", false, p.fail(off, "empty search pattern")
	}
	return s, negated, nil
}

func (p *parser) atBraces(content string, off int) error {
	switch {
	case content == "":
		return p.fail(off, "empty @{}")
	case strings.HasPrefix(content, "-"):
		return p.fail(off, "@{-N} cannot follow a revision")
	case leadingDigits(content) == len(content):
		n, err := strconv.Atoi(content)
		if err != nil {
			return p.fail(off, "reflog entry %q out of range", content)
		}
		return call(p.d.Reflog(ReflogLookup{Entry: n}))
	}

	switch strings.ToLower(content) {
	case "upstream", "u":
		return call(p.d.SiblingBranch(Upstream))
	case "push":
		return call(p.d.SiblingBranch(Push))
	}
	if t, ok := parseDate(content); ok {
		return call(p.d.Reflog(ReflogLookup{Date: t, ByDate: true}))
	}
	return p.fail(off, "unknown @{%s}", content)
}

func (p *parser) indexOrFind(rest string, off int) error {
	if strings.HasPrefix(rest, "/") {
		regex, negated, err := p.regex(rest[1:], off+1)
		if err != nil {
			return err
		}
		return call(p.d.Find(regex, negated))
	}
	stage := 0
	if len(rest) >= 2 && rest[0] >= '0' && rest[0] <= '3' && rest[1] == ':' {
		stage = int(rest[0] - '0')
		rest, off = rest[2:], off+2
	}
	if rest == "" {
		return p.fail(off, "missing path")
	}
	return call(p.d.IndexLookup(rest, stage))
}

func leadingDigits(s string) int {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	return n
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
