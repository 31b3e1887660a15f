package revspec

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/odvcencio/gotrev/pkg/object"
	"github.com/odvcencio/gotrev/pkg/revspec/parse"
)

// ErrUnsupported is matched by every *UnsupportedError.
var ErrUnsupported = errors.New("unsupported revision feature")

// UnsupportedError reports a revision feature this resolver does not
// implement, such as reflog lookups.
type UnsupportedError struct {
	Feature string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("revision %s is not supported", e.Feature)
}

func (e *UnsupportedError) Is(target error) bool { return target == ErrUnsupported }

// FindReferenceError wraps a failed reference lookup.
type FindReferenceError struct {
	Name string
	Err  error
}

func (e *FindReferenceError) Error() string {
	return fmt.Sprintf("find reference %q: %v", e.Name, e.Err)
}

func (e *FindReferenceError) Unwrap() error { return e.Err }

// FindObjectError wraps a failed object database access. Prefix is set
// for prefix lookups, ID for reads of a single object.
type FindObjectError struct {
	ID     object.Hash
	Prefix object.Prefix
	Err    error
}

func (e *FindObjectError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("lookup objects prefixed %s: %v", e.Prefix, e.Err)
	}
	return fmt.Sprintf("find object %s: %v", e.ID, e.Err)
}

func (e *FindObjectError) Unwrap() error { return e.Err }

// PrefixNotFoundError reports a prefix that matched no object.
type PrefixNotFoundError struct {
	Prefix object.Prefix
}

func (e *PrefixNotFoundError) Error() string {
	return fmt.Sprintf("an object prefixed %s could not be found", e.Prefix)
}

// ObjectKindError reports a candidate of the wrong kind under a strict
// kind hint.
type ObjectKindError struct {
	ID       object.Hash
	Actual   object.ObjectType
	Expected object.ObjectType
}

func (e *ObjectKindError) Error() string {
	return fmt.Sprintf("object %s was a %s, but needed it to be a %s", e.ID, e.Actual, e.Expected)
}

// TraversalError reports a parent or ancestor step that leaves the graph.
type TraversalError struct {
	ID        object.Hash
	Traversal parse.Traversal
	Parents   int
}

func (e *TraversalError) Error() string {
	if e.Traversal.Kind == parse.NthAncestor {
		return fmt.Sprintf("commit %s has no ancestor %s", e.ID, e.Traversal)
	}
	return fmt.Sprintf("commit %s has %d parents, cannot take %s", e.ID, e.Parents, e.Traversal)
}

// AmbiguousRefAndObjectError reports a prefix that names both a reference
// and at least one object.
type AmbiguousRefAndObjectError struct {
	Prefix    object.Prefix
	Reference string
}

func (e *AmbiguousRefAndObjectError) Error() string {
	return fmt.Sprintf("the short hash %s matched both the reference %s and at least one object", e.Prefix, e.Reference)
}

// CandidateInfo describes one object matching an ambiguous prefix.
type CandidateInfo struct {
	ID object.Hash
	// Err is set when the object could not be read; the other fields are
	// then empty.
	Err     error
	Type    object.ObjectType
	TagName string    // tags only
	Date    time.Time // commits only
	Subject string    // commits only
}

func (c CandidateInfo) String() string {
	switch {
	case c.Err != nil:
		return fmt.Sprintf("lookup failed: %v", c.Err)
	case c.Type == object.TypeTag:
		return fmt.Sprintf("tag %q", c.TagName)
	case c.Type == object.TypeCommit:
		return fmt.Sprintf("commit %s - %s", c.Date.Format("2006-01-02"), c.Subject)
	default:
		return string(c.Type)
	}
}

// AmbiguousPrefixError reports a prefix that still matches several objects
// after all narrowing. Candidates are sorted by ID.
type AmbiguousPrefixError struct {
	Prefix     object.Prefix
	Candidates []CandidateInfo
}

func (e *AmbiguousPrefixError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "short hash %s is ambiguous, found the following objects:", e.Prefix)
	for _, c := range e.Candidates {
		fmt.Fprintf(&b, "\n\t%s %s", c.ID.Short(12), c)
	}
	return b.String()
}

// MultiError holds every error recorded during one resolution, oldest
// first. Its message is that of the newest error; Next walks towards the
// oldest.
type MultiError struct {
	Errs []error
}

func (e *MultiError) Error() string { return e.Current().Error() }

// Current returns the newest error.
func (e *MultiError) Current() error { return e.Errs[len(e.Errs)-1] }

// Next returns the chain without its newest error, or nil at the end.
func (e *MultiError) Next() error {
	switch len(e.Errs) {
	case 0, 1:
		return nil
	case 2:
		return e.Errs[0]
	default:
		return &MultiError{Errs: e.Errs[:len(e.Errs)-1]}
	}
}

// Unwrap returns all errors newest first so errors.Is and errors.As see
// every cause.
func (e *MultiError) Unwrap() []error {
	out := make([]error, len(e.Errs))
	for i, err := range e.Errs {
		out[len(out)-1-i] = err
	}
	return out
}

// fromErrors folds errs (oldest first) into one error. A single error is
// returned unchanged.
func fromErrors(errs []error) error {
	switch len(errs) {
	case 0:
		panic("BUG: cannot create an error from nothing, must have recorded some errors")
	case 1:
		return errs[0]
	default:
		return &MultiError{Errs: append([]error(nil), errs...)}
	}
}
