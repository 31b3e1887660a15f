package revspec

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/odvcencio/gotrev/pkg/object"
	"github.com/odvcencio/gotrev/pkg/repo"
)

// RefsHint decides what happens when an abbreviated object name is also
// the name of a reference.
type RefsHint int

const (
	// PreferObjectOnFullLength keeps full-length hex names as objects and
	// uses a same-named reference for anything shorter. This is git's
	// default.
	PreferObjectOnFullLength RefsHint = iota
	// PreferObject never consults references for hex names.
	PreferObject
	// PreferRef uses a same-named reference whenever one exists.
	PreferRef
	// FailOnAmbiguity reports an error when both interpretations exist.
	FailOnAmbiguity
)

var refsHintNames = map[RefsHint]string{
	PreferObjectOnFullLength: "prefer-object-on-full-length",
	PreferObject:             "prefer-object",
	PreferRef:                "prefer-ref",
	FailOnAmbiguity:          "fail",
}

func (h RefsHint) String() string {
	if name, ok := refsHintNames[h]; ok {
		return name
	}
	return fmt.Sprintf("RefsHint(%d)", int(h))
}

// ParseRefsHint parses a refs hint as written in config or on the command
// line. The empty string selects the default.
func ParseRefsHint(s string) (RefsHint, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PreferObjectOnFullLength, nil
	}
	for h, name := range refsHintNames {
		if name == s {
			return h, nil
		}
	}
	return 0, fmt.Errorf("unknown refs hint %q", s)
}

// consultsReferences reports whether a prefix that matched objects must
// also be looked up as a reference name.
func (h RefsHint) consultsReferences(p object.Prefix) bool {
	switch h {
	case PreferObject:
		return false
	case PreferObjectOnFullLength:
		return !p.IsFullLength()
	default:
		return true
	}
}

// ObjectKindHint narrows an ambiguous prefix when the spec itself does not.
type ObjectKindHint int

const (
	// NoObjectKindHint applies no narrowing.
	NoObjectKindHint ObjectKindHint = iota
	// CommitHint keeps candidates that are commits.
	CommitHint
	// CommittishHint keeps candidates that peel to a commit.
	CommittishHint
	// TreeHint keeps candidates that are trees.
	TreeHint
	// TreeishHint keeps candidates that peel to a tree.
	TreeishHint
	// BlobHint keeps candidates that are blobs.
	BlobHint
)

var objectKindHintNames = map[ObjectKindHint]string{
	NoObjectKindHint: "",
	CommitHint:       "commit",
	CommittishHint:   "commit-ish",
	TreeHint:         "tree",
	TreeishHint:      "tree-ish",
	BlobHint:         "blob",
}

func (h ObjectKindHint) String() string {
	if name, ok := objectKindHintNames[h]; ok {
		if name == "" {
			return "none"
		}
		return name
	}
	return fmt.Sprintf("ObjectKindHint(%d)", int(h))
}

// ParseObjectKindHint parses an object kind hint. The empty string and
// "none" mean no hint.
func ParseObjectKindHint(s string) (ObjectKindHint, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "none" {
		return NoObjectKindHint, nil
	}
	for h, name := range objectKindHintNames {
		if name == s {
			return h, nil
		}
	}
	return 0, fmt.Errorf("unknown object kind hint %q", s)
}

// target returns the kind a hint selects and whether candidates may be
// peeled to reach it.
func (h ObjectKindHint) target() (kind object.ObjectType, peel bool) {
	switch h {
	case CommitHint:
		return object.TypeCommit, false
	case CommittishHint:
		return object.TypeCommit, true
	case TreeHint:
		return object.TypeTree, false
	case TreeishHint:
		return object.TypeTree, true
	case BlobHint:
		return object.TypeBlob, false
	}
	return "", false
}

// Options control how ambiguity is resolved.
type Options struct {
	RefsHint       RefsHint
	ObjectKindHint ObjectKindHint
	// Logger receives debug events. Nil disables logging.
	Logger *zap.Logger
}

// OptionsFromConfig reads the [revparse] table of a repository config.
func OptionsFromConfig(cfg *repo.Config) (Options, error) {
	var opts Options
	if cfg == nil {
		return opts, nil
	}
	refsHint, err := ParseRefsHint(cfg.RevParse.RefsHint)
	if err != nil {
		return opts, fmt.Errorf("revparse.refs-hint: %w", err)
	}
	kindHint, err := ParseObjectKindHint(cfg.RevParse.ObjectKindHint)
	if err != nil {
		return opts, fmt.Errorf("revparse.object-kind-hint: %w", err)
	}
	opts.RefsHint = refsHint
	opts.ObjectKindHint = kindHint
	return opts, nil
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}
