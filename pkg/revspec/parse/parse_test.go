package parse

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/odvcencio/gotrev/pkg/object"
)

// recorder logs every callback as a short event string. A callback whose
// event name equals failOn returns false.
type recorder struct {
	events []string
	failOn string
}

func (r *recorder) record(name, format string, args ...any) bool {
	r.events = append(r.events, name+" "+fmt.Sprintf(format, args...))
	return name != r.failOn
}

func (r *recorder) FindRef(name string) bool { return r.record("find_ref", "%s", name) }

func (r *recorder) DisambiguatePrefix(prefix object.Prefix, hint *PrefixHint) bool {
	if hint != nil {
		return r.record("prefix", "%s commit=%t anchor=%s gen=%d", prefix, hint.MustBeCommit, hint.DescribeAnchor, hint.Generation)
	}
	return r.record("prefix", "%s", prefix)
}

func (r *recorder) Reflog(q ReflogLookup) bool {
	if q.ByDate {
		return r.record("reflog", "date=%s", q.Date.Format("2006-01-02T15:04:05"))
	}
	return r.record("reflog", "%d", q.Entry)
}

func (r *recorder) NthCheckedOutBranch(n int) bool { return r.record("nth_branch", "%d", n) }

func (r *recorder) SiblingBranch(kind SiblingBranch) bool { return r.record("sibling", "%s", kind) }

func (r *recorder) Traverse(t Traversal) bool { return r.record("traverse", "%s", t) }

func (r *recorder) PeelUntil(to PeelTo) bool { return r.record("peel", "%s", to) }

func (r *recorder) Find(regex string, negated bool) bool {
	return r.record("find", "%s negated=%t", regex, negated)
}

func (r *recorder) IndexLookup(path string, stage int) bool {
	return r.record("index", "%s stage=%d", path, stage)
}

func (r *recorder) Kind(k Kind) bool { return r.record("kind", "%s", k) }

func (r *recorder) Done() { r.events = append(r.events, "done") }

func TestParseEvents(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"main", []string{"find_ref main", "done"}},
		{"@", []string{"find_ref HEAD", "done"}},
		{"abcd", []string{"prefix abcd", "done"}},
		{"ABCDEF12", []string{"prefix abcdef12", "done"}},
		{"abc", []string{"find_ref abc", "done"}},
		{"v1.2-3-gdeadbeef", []string{"prefix deadbeef commit=true anchor=v1.2 gen=3", "done"}},
		{"main~2^{tree}", []string{"find_ref main", "traverse ~2", "peel ^{tree}", "done"}},
		{"main^", []string{"find_ref main", "traverse ^1", "done"}},
		{"main^0", []string{"find_ref main", "traverse ^0", "done"}},
		{"main~", []string{"find_ref main", "traverse ~1", "done"}},
		{"main^2~3", []string{"find_ref main", "traverse ^2", "traverse ~3", "done"}},
		{"v1^{}", []string{"find_ref v1", "peel ^{}", "done"}},
		{"main^{object}", []string{"find_ref main", "peel ^{object}", "done"}},
		{"v1^{tag}", []string{"find_ref v1", "peel ^{tag}", "done"}},
		{"main:src/a.go", []string{"find_ref main", "peel :src/a.go", "done"}},
		{"HEAD:", []string{"find_ref HEAD", "peel :", "done"}},
		{"HEAD:a..b", []string{"find_ref HEAD", "peel :a..b", "done"}},
		{"a..b", []string{"find_ref a", "kind range", "find_ref b", "done"}},
		{"a...b", []string{"find_ref a", "kind merge-base", "find_ref b", "done"}},
		{"..b", []string{"find_ref HEAD", "kind range", "find_ref b", "done"}},
		{"a..", []string{"find_ref a", "kind range", "find_ref HEAD", "done"}},
		{"abcd~1..main", []string{"prefix abcd", "traverse ~1", "kind range", "find_ref main", "done"}},
		{"^a", []string{"kind exclude", "find_ref a", "done"}},
		{"a^@", []string{"find_ref a", "kind include-parents", "done"}},
		{"a^!", []string{"find_ref a", "kind exclude-parents", "done"}},
		{"main@{1}", []string{"find_ref main", "reflog 1", "done"}},
		{"@{2}", []string{"find_ref HEAD", "reflog 2", "done"}},
		{"@{-1}", []string{"nth_branch 1", "done"}},
		{"@{-3}~1", []string{"nth_branch 3", "traverse ~1", "done"}},
		{"main@{upstream}", []string{"find_ref main", "sibling upstream", "done"}},
		{"main@{U}", []string{"find_ref main", "sibling upstream", "done"}},
		{"@{push}", []string{"find_ref HEAD", "sibling push", "done"}},
		{"main@{2024-01-02}", []string{"find_ref main", "reflog date=2024-01-02T00:00:00", "done"}},
		{"main^{/fix bug}", []string{"find_ref main", "find fix bug negated=false", "done"}},
		{"main^{/!-wip}", []string{"find_ref main", "find wip negated=true", "done"}},
		{"main^{/!!bang}", []string{"find_ref main", "find !bang negated=false", "done"}},
		{"HEAD^{/a..b}", []string{"find_ref HEAD", "find a..b negated=false", "done"}},
		{":/message", []string{"find message negated=false", "done"}},
		{":README", []string{"index README stage=0", "done"}},
		{":2:README", []string{"index README stage=2", "done"}},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			r := &recorder{}
			if err := Parse(tc.input, r); err != nil {
				t.Fatalf("Parse(%q): %v", tc.input, err)
			}
			if diff := cmp.Diff(tc.want, r.events); diff != "" {
				t.Fatalf("Parse(%q) events mismatch (-want +got):\n%s", tc.input, diff)
			}
		})
	}
}

func TestParseSyntaxErrors(t *testing.T) {
	for _, input := range []string{
		"",
		"  ",
		"..",
		"^",
		"^{commit}",
		"main^{bogus}",
		"main^{",
		"main@{",
		"main@{}",
		"main@{-1}",
		"main@{nonsense}",
		"^a..b",
		":/",
		":",
		":1:",
		"main~1x",
		"@{-x}",
		"@{-0}",
		"main^{/!x}",
	} {
		t.Run(input, func(t *testing.T) {
			r := &recorder{}
			err := Parse(input, r)
			var syn *SyntaxError
			if !errors.As(err, &syn) {
				t.Fatalf("Parse(%q) err = %v, want *SyntaxError", input, err)
			}
			if syn.Input != input {
				t.Fatalf("SyntaxError.Input = %q, want %q", syn.Input, input)
			}
			for _, ev := range r.events {
				if ev == "done" {
					t.Fatalf("Parse(%q) called Done on a syntax error", input)
				}
			}
		})
	}
}

func TestSyntaxErrorOffset(t *testing.T) {
	err := Parse("main~1x", &recorder{})
	var syn *SyntaxError
	if !errors.As(err, &syn) {
		t.Fatalf("err = %v, want *SyntaxError", err)
	}
	if syn.Offset != 6 {
		t.Fatalf("Offset = %d, want 6", syn.Offset)
	}
	if !strings.Contains(syn.Error(), `"main~1x"`) {
		t.Fatalf("Error() = %q, want it to quote the input", syn.Error())
	}
}

func TestParseDelegateAbort(t *testing.T) {
	tests := []struct {
		input  string
		failOn string
		want   []string
	}{
		{"main~2", "find_ref", []string{"find_ref main"}},
		{"a..b", "kind", []string{"find_ref a", "kind range"}},
		{"a~1^{tree}", "traverse", []string{"find_ref a", "traverse ~1"}},
		{"abcd^{commit}", "peel", []string{"prefix abcd", "peel ^{commit}"}},
		{"a^!", "kind", []string{"find_ref a", "kind exclude-parents"}},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			r := &recorder{failOn: tc.failOn}
			err := Parse(tc.input, r)
			if !errors.Is(err, ErrDelegate) {
				t.Fatalf("Parse(%q) err = %v, want ErrDelegate", tc.input, err)
			}
			if diff := cmp.Diff(tc.want, r.events); diff != "" {
				t.Fatalf("events mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseFailedPrefixFallsBackToReference(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"cafe", []string{"prefix cafe", "find_ref cafe", "done"}},
		{"main..beef~1", []string{"find_ref main", "kind range", "prefix beef", "find_ref beef", "traverse ~1", "done"}},
		{"v1-2-gdead", []string{"prefix dead commit=true anchor=v1 gen=2", "find_ref v1-2-gdead", "done"}},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			r := &recorder{failOn: "prefix"}
			if err := Parse(tc.input, r); err != nil {
				t.Fatalf("Parse(%q): %v", tc.input, err)
			}
			if diff := cmp.Diff(tc.want, r.events); diff != "" {
				t.Fatalf("Parse(%q) events mismatch (-want +got):\n%s", tc.input, diff)
			}
		})
	}
}

func FuzzParse(f *testing.F) {
	for _, seed := range []string{"main", "a..b", "abcd~2^{tree}", "v1-2-gabcd", ":1:x", "@{-1}", "^x", "HEAD^{/re}"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, input string) {
		r := &recorder{}
		err := Parse(input, r)
		done := 0
		for _, ev := range r.events {
			if ev == "done" {
				done++
			}
		}
		if err == nil {
			if done != 1 || r.events[len(r.events)-1] != "done" {
				t.Fatalf("Parse(%q) succeeded with events %v", input, r.events)
			}
			return
		}
		if done != 0 {
			t.Fatalf("Parse(%q) failed with %v but called Done", input, err)
		}
	})
}
