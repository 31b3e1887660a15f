// Package revspec turns revision specs like "main~2", "v1.0^{tree}" or
// "a1b2..HEAD" into object ids, checking short hashes against both the
// reference store and the object database and resolving ambiguity as
// configured by Options.
package revspec

import (
	"errors"

	"go.uber.org/zap"

	"github.com/odvcencio/gotrev/pkg/object"
	"github.com/odvcencio/gotrev/pkg/repo"
	"github.com/odvcencio/gotrev/pkg/revspec/parse"
)

// Spec is a resolved revision spec. A side may carry a reference, an
// object, or both; the object of a side with a reference is what the
// reference led to after any navigation.
type Spec struct {
	FromRef *repo.Reference
	From    object.Hash
	ToRef   *repo.Reference
	To      object.Hash
	Kind    parse.Kind
}

// Single returns the object of a spec naming exactly one side.
func (s *Spec) Single() (object.Hash, bool) {
	if s.From == "" || s.To != "" {
		return "", false
	}
	return s.From, true
}

// Resolve parses spec and resolves it against refs and objs.
//
// When a short hash still matches several objects once all narrowing is
// done, the returned error is a *MultiError whose message is the
// *AmbiguousPrefixError and which also carries every error recorded along
// the way.
func Resolve(spec string, refs References, objs Objects, opts Options) (*Spec, error) {
	d := newDelegate(refs, objs, opts)
	if err := parse.Parse(spec, d); err != nil {
		if errors.Is(err, parse.ErrDelegate) {
			return nil, fromErrors(d.errs)
		}
		return nil, err
	}

	ids, err := d.reduce()
	if err != nil {
		return nil, err
	}
	out := &Spec{
		FromRef: d.sides[0].ref,
		From:    ids[0],
		ToRef:   d.sides[1].ref,
		To:      ids[1],
		Kind:    d.kind,
	}
	d.log.Debug("revision resolved",
		zap.String("spec", spec),
		zap.String("from", string(out.From)),
		zap.String("to", string(out.To)),
		zap.Stringer("kind", out.Kind))
	return out, nil
}

// ResolveRepo resolves spec against a repository.
func ResolveRepo(r *repo.Repo, spec string, opts Options) (*Spec, error) {
	return Resolve(spec, r, r, opts)
}

// reduce turns each side's candidates into at most one object.
func (d *delegate) reduce() ([2]object.Hash, error) {
	var out [2]object.Hash
	for i := range d.sides {
		s := &d.sides[i]
		switch {
		case s.objs == nil:
			if s.foldFailed {
				return out, fromErrors(d.errs)
			}
		case len(s.objs) == 0:
			panic("BUG: a side was left with an empty candidate set")
		case len(s.objs) == 1:
			out[i] = s.objs.sorted()[0]
		default:
			if s.prefix.IsZero() {
				panic("BUG: several candidates without the prefix that produced them")
			}
			d.log.Debug("ambiguous prefix", zap.Int("side", i), zap.Stringer("prefix", s.prefix), zap.Int("candidates", len(s.objs)))
			errs := append(append([]error(nil), d.errs...), d.ambiguous(s.objs, s.prefix))
			return out, fromErrors(errs)
		}
	}
	return out, nil
}
