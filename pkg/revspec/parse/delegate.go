package parse

import "github.com/odvcencio/gotrev/pkg/object"

// Revision resolves the base of a revision. Every method reports whether
// parsing may continue.
type Revision interface {
	FindRef(name string) bool
	DisambiguatePrefix(prefix object.Prefix, hint *PrefixHint) bool
	Reflog(query ReflogLookup) bool
	NthCheckedOutBranch(n int) bool
	SiblingBranch(kind SiblingBranch) bool
}

// Navigate moves from an already resolved revision to another object.
type Navigate interface {
	Traverse(t Traversal) bool
	PeelUntil(to PeelTo) bool
	Find(regex string, negated bool) bool
	IndexLookup(path string, stage int) bool
}

// Range receives the operator joining the two sides of a spec. For
// RangeBetween and ReachableToMergeBase the following calls apply to the
// second side.
type Range interface {
	Kind(k Kind) bool
}

// Delegate is driven by Parse. Done is called exactly once, after the last
// successful callback.
type Delegate interface {
	Revision
	Navigate
	Range
	Done()
}
