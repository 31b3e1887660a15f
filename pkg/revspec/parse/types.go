package parse

import (
	"fmt"
	"time"

	"github.com/odvcencio/gotrev/pkg/object"
)

// Kind is the operator connecting the two sides of a revision spec.
type Kind int

const (
	// IncludeReachable is a single revision, e.g. "main". It is the zero
	// value and is never passed to Range.Kind.
	IncludeReachable Kind = iota
	// ExcludeReachable is "^A": everything not reachable from A.
	ExcludeReachable
	// RangeBetween is "A..B".
	RangeBetween
	// ReachableToMergeBase is "A...B", the symmetric difference.
	ReachableToMergeBase
	// IncludeReachableFromParents is "A^@": all parents of A.
	IncludeReachableFromParents
	// ExcludeReachableFromParents is "A^!": A but none of its parents.
	ExcludeReachableFromParents
)

func (k Kind) String() string {
	switch k {
	case IncludeReachable:
		return "include"
	case ExcludeReachable:
		return "exclude"
	case RangeBetween:
		return "range"
	case ReachableToMergeBase:
		return "merge-base"
	case IncludeReachableFromParents:
		return "include-parents"
	case ExcludeReachableFromParents:
		return "exclude-parents"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// PeelTarget selects what a PeelTo asks for.
type PeelTarget int

const (
	// PeelValidObject is "^{object}": the object must exist.
	PeelValidObject PeelTarget = iota
	// PeelObjectKind is "^{commit}", "^{tree}", ...: peel to PeelTo.Kind.
	PeelObjectKind
	// PeelPath is "A:path": the entry at PeelTo.Path in A's tree.
	PeelPath
	// PeelRecursiveTagObject is "^{}": follow tags to the first non-tag.
	PeelRecursiveTagObject
)

// PeelTo describes one peel suffix.
type PeelTo struct {
	Target PeelTarget
	Kind   object.ObjectType // PeelObjectKind only
	Path   string            // PeelPath only
}

func (p PeelTo) String() string {
	switch p.Target {
	case PeelValidObject:
		return "^{object}"
	case PeelObjectKind:
		return "^{" + string(p.Kind) + "}"
	case PeelPath:
		return ":" + p.Path
	case PeelRecursiveTagObject:
		return "^{}"
	default:
		return fmt.Sprintf("PeelTo(%d)", int(p.Target))
	}
}

// TraversalKind selects a commit graph step.
type TraversalKind int

const (
	// NthParent is "^N"; N == 0 names the commit itself.
	NthParent TraversalKind = iota
	// NthAncestor is "~N", following first parents N times.
	NthAncestor
)

// Traversal is one "^N" or "~N" step.
type Traversal struct {
	Kind TraversalKind
	N    int
}

func (t Traversal) String() string {
	if t.Kind == NthAncestor {
		return fmt.Sprintf("~%d", t.N)
	}
	return fmt.Sprintf("^%d", t.N)
}

// ReflogLookup is "@{N}" or "@{date}".
type ReflogLookup struct {
	Entry  int
	Date   time.Time
	ByDate bool
}

// SiblingBranch is "@{upstream}" or "@{push}".
type SiblingBranch int

const (
	// Upstream is the branch a local branch tracks, "@{upstream}".
	Upstream SiblingBranch = iota
	// Push is the branch a local branch pushes to, "@{push}".
	Push
)

func (s SiblingBranch) String() string {
	if s == Push {
		return "push"
	}
	return "upstream"
}

// PrefixHint carries what the spec itself says about an abbreviated
// object name.
type PrefixHint struct {
	// MustBeCommit is set for describe output such as "v1.2-3-gabcd".
	MustBeCommit bool
	// DescribeAnchor and Generation hold the tag and distance of describe
	// output.
	DescribeAnchor string
	Generation     int
}
