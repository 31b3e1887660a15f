package revspec

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/odvcencio/gotrev/pkg/object"
	"github.com/odvcencio/gotrev/pkg/repo"
)

// foldReferences gives every side that holds only a reference the object
// that reference points at. A side whose reference cannot be followed
// records the error once and keeps no objects.
func (d *delegate) foldReferences() {
	for i := range d.sides {
		s := &d.sides[i]
		if s.ref == nil || s.objs != nil || s.foldFailed {
			continue
		}
		id, err := d.followReference(s.ref)
		if err != nil {
			s.foldFailed = true
			d.log.Debug("reference fold failed", zap.Int("side", i), zap.String("ref", s.ref.Name), zap.Error(err))
			d.record(err)
			continue
		}
		s.setObjects(newCandidates(id))
		d.log.Debug("reference folded", zap.Int("side", i), zap.String("ref", s.ref.Name), zap.String("id", string(id)))
	}
}

// followReference mirrors repo.PeelReference over the References interface
// so that folding works against any reference store.
func (d *delegate) followReference(ref *repo.Reference) (object.Hash, error) {
	cur := ref
	for hops := 0; ; hops++ {
		if id, ok := cur.TargetID(); ok {
			return id, nil
		}
		if hops == repo.MaxSymbolicDepth {
			return "", fmt.Errorf("reference %q: symbolic chain longer than %d", ref.Name, repo.MaxSymbolicDepth)
		}
		next, err := d.refs.FindReference(cur.Symbolic)
		if err != nil {
			return "", &FindReferenceError{Name: cur.Symbolic, Err: err}
		}
		cur = next
	}
}

// disambiguateByFallbackHint narrows a side that nothing narrowed since
// its prefix lookup, using the configured object kind hint. A
// MustBeCommit hint from the spec stands in for a missing configured
// hint.
//
// Candidates failing the check are dropped with their errors kept as
// context. If every candidate fails, the errors are recorded and the side
// is left as it was. Under a peeling hint, several survivors that all
// peel to the same object collapse to that object.
func (d *delegate) disambiguateByFallbackHint(i int) {
	s := &d.sides[i]
	if !s.fromPrefix {
		return
	}
	s.fromPrefix = false
	if s.objs == nil {
		return
	}

	hint := d.opts.ObjectKindHint
	if hint == NoObjectKindHint && s.hint != nil && s.hint.MustBeCommit {
		hint = CommitHint
	}
	if hint == NoObjectKindHint {
		return
	}
	kind, peel := hint.target()

	survivors := candidates{}
	peeled := candidates{}
	var errs []error
	for _, id := range s.objs.sorted() {
		if peel {
			target, err := d.peel(id, kind)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			peeled[target] = struct{}{}
		} else if err := d.requireKind(id, kind); err != nil {
			errs = append(errs, err)
			continue
		}
		survivors[id] = struct{}{}
	}
	d.record(errs...)
	if len(survivors) == 0 {
		d.log.Debug("fallback hint rejected every candidate", zap.Int("side", i), zap.Stringer("hint", hint))
		return
	}
	if len(survivors) > 1 && len(peeled) == 1 {
		survivors = peeled
	}
	d.log.Debug("fallback hint applied",
		zap.Int("side", i),
		zap.Stringer("hint", hint),
		zap.Int("before", len(s.objs)),
		zap.Int("after", len(survivors)))
	s.objs = survivors
}
