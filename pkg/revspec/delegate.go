package revspec

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/odvcencio/gotrev/pkg/object"
	"github.com/odvcencio/gotrev/pkg/repo"
	"github.com/odvcencio/gotrev/pkg/revspec/parse"
)

// References is the reference store a resolution reads from.
type References interface {
	FindReference(name string) (*repo.Reference, error)
}

// Objects is the object database a resolution reads from.
type Objects interface {
	LookupPrefix(p object.Prefix) ([]object.Hash, error)
	FindObject(h object.Hash) (*object.Object, error)
	TreeEntryAtPath(tree object.Hash, path string) (object.TreeEntry, error)
}

// candidates is the set of objects a side may still name. A nil set means
// the side has no object yet; a non-nil set is never empty.
type candidates map[object.Hash]struct{}

func newCandidates(ids ...object.Hash) candidates {
	c := make(candidates, len(ids))
	for _, id := range ids {
		c[id] = struct{}{}
	}
	return c
}

func (c candidates) sorted() []object.Hash {
	out := make([]object.Hash, 0, len(c))
	for id := range c {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// side is one endpoint of a spec: 0 is "from", 1 is "to".
type side struct {
	ref  *repo.Reference
	objs candidates
	// prefix produced objs, kept to name it in an ambiguity error.
	prefix object.Prefix
	hint   *parse.PrefixHint
	// fromPrefix is true while the last change to this side was a raw
	// prefix lookup.
	fromPrefix bool
	foldFailed bool
}

func (s *side) setRef(ref *repo.Reference) {
	if s.ref != nil {
		panic("BUG: cannot set the same ref twice")
	}
	s.ref = ref
}

func (s *side) setObjects(c candidates) {
	if s.objs != nil {
		panic("BUG: cannot set the same prefix twice")
	}
	if len(c) == 0 {
		panic("BUG: refusing to store an empty candidate set")
	}
	s.objs = c
}

// delegate receives the callbacks of parse.Parse for one resolution.
type delegate struct {
	refs References
	objs Objects
	opts Options
	log  *zap.Logger

	sides   [2]side
	idx     int
	kind    parse.Kind
	kindSet bool
	errs    []error // oldest first
}

var _ parse.Delegate = (*delegate)(nil)

func newDelegate(refs References, objs Objects, opts Options) *delegate {
	return &delegate{refs: refs, objs: objs, opts: opts, log: opts.logger()}
}

func (d *delegate) cur() *side { return &d.sides[d.idx] }

func (d *delegate) record(errs ...error) { d.errs = append(d.errs, errs...) }

func (d *delegate) unsetDisambiguation() { d.cur().fromPrefix = false }

func (d *delegate) FindRef(name string) bool {
	d.unsetDisambiguation()
	s := d.cur()
	if len(d.errs) > 0 && s.ref != nil {
		return false
	}
	ref, err := d.refs.FindReference(name)
	if err != nil {
		d.log.Debug("reference lookup failed", zap.String("name", name), zap.Error(err))
		d.record(&FindReferenceError{Name: name, Err: err})
		return false
	}
	s.setRef(ref)
	return true
}

func (d *delegate) DisambiguatePrefix(prefix object.Prefix, hint *parse.PrefixHint) bool {
	s := d.cur()
	s.fromPrefix = true
	s.prefix = prefix
	s.hint = hint

	ids, err := d.objs.LookupPrefix(prefix)
	if err != nil {
		d.record(&FindObjectError{Prefix: prefix, Err: err})
		return false
	}
	if len(ids) == 0 {
		d.record(&PrefixNotFoundError{Prefix: prefix})
		return false
	}
	found := newCandidates(ids...)
	d.log.Debug("prefix lookup",
		zap.Int("side", d.idx),
		zap.Stringer("prefix", prefix),
		zap.Int("candidates", len(found)),
		zap.Stringer("refs_hint", d.opts.RefsHint))

	if !d.opts.RefsHint.consultsReferences(prefix) {
		s.setObjects(found)
		return true
	}
	ref, err := d.refs.FindReference(prefix.String())
	if err != nil {
		s.setObjects(found)
		return true
	}
	s.setRef(ref)
	if d.opts.RefsHint == FailOnAmbiguity {
		d.record(
			&AmbiguousRefAndObjectError{Prefix: prefix, Reference: ref.Name},
			d.ambiguous(found, prefix),
		)
		return false
	}
	d.log.Debug("prefix resolved as reference", zap.Stringer("prefix", prefix), zap.String("ref", ref.Name))
	return true
}

func (d *delegate) unsupported(feature string) bool {
	d.unsetDisambiguation()
	d.record(&UnsupportedError{Feature: feature})
	return false
}

func (d *delegate) Reflog(parse.ReflogLookup) bool { return d.unsupported("reflog lookup") }

func (d *delegate) NthCheckedOutBranch(int) bool {
	return d.unsupported("checked-out branch lookup")
}

func (d *delegate) SiblingBranch(kind parse.SiblingBranch) bool {
	return d.unsupported(fmt.Sprintf("@{%s} lookup", kind))
}

func (d *delegate) Find(string, bool) bool { return d.unsupported("message search") }

func (d *delegate) IndexLookup(string, int) bool { return d.unsupported("index lookup") }

func (d *delegate) Traverse(t parse.Traversal) bool {
	d.unsetDisambiguation()
	return d.replaceEach(t.String(), func(id object.Hash) (object.Hash, error) {
		return d.traverse(id, t)
	})
}

func (d *delegate) PeelUntil(to parse.PeelTo) bool {
	d.unsetDisambiguation()
	var fn func(object.Hash) (object.Hash, error)
	switch to.Target {
	case parse.PeelValidObject:
		fn = func(id object.Hash) (object.Hash, error) {
			if _, err := d.findObject(id); err != nil {
				return "", err
			}
			return id, nil
		}
	case parse.PeelObjectKind:
		fn = func(id object.Hash) (object.Hash, error) {
			return d.peel(id, to.Kind)
		}
	case parse.PeelPath:
		fn = func(id object.Hash) (object.Hash, error) {
			tree, err := d.peel(id, object.TypeTree)
			if err != nil {
				return "", err
			}
			entry, err := d.objs.TreeEntryAtPath(tree, to.Path)
			if err != nil {
				return "", fmt.Errorf("%s:%s: %w", id.Short(12), to.Path, err)
			}
			return entry.ID(), nil
		}
	case parse.PeelRecursiveTagObject:
		fn = func(id object.Hash) (object.Hash, error) {
			obj, err := d.findObject(id)
			if err != nil {
				return "", err
			}
			peeled, err := obj.PeelTagsToEnd()
			if err != nil {
				return "", err
			}
			return peeled.ID, nil
		}
	default:
		return d.unsupported(to.String())
	}
	return d.replaceEach(to.String(), fn)
}

// replaceEach maps every candidate of the active side through fn. Failed
// candidates are dropped and their errors kept as context; if none
// survives, the side is left untouched and the callback fails.
func (d *delegate) replaceEach(op string, fn func(object.Hash) (object.Hash, error)) bool {
	d.foldReferences()
	s := d.cur()
	if s.objs == nil {
		if s.ref == nil {
			panic("BUG: navigation before a revision was resolved")
		}
		return false
	}

	next := candidates{}
	var errs []error
	for _, id := range s.objs.sorted() {
		out, err := fn(id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		next[out] = struct{}{}
	}
	d.record(errs...)
	if len(next) == 0 {
		d.log.Debug("all candidates failed", zap.String("op", op), zap.Int("errors", len(errs)))
		return false
	}
	d.log.Debug("candidates replaced",
		zap.String("op", op),
		zap.Int("before", len(s.objs)),
		zap.Int("after", len(next)))
	s.objs = next
	return true
}

func (d *delegate) Kind(k parse.Kind) bool {
	if d.kindSet {
		d.record(fmt.Errorf("revision kind already set to %s, cannot change it to %s", d.kind, k))
		return false
	}
	switch k {
	case parse.RangeBetween, parse.ReachableToMergeBase:
		d.kind, d.kindSet = k, true
		d.idx = 1
	case parse.ExcludeReachable:
		d.kind, d.kindSet = k, true
	default:
		return d.unsupported(fmt.Sprintf("kind %s", k))
	}
	return true
}

func (d *delegate) Done() {
	d.foldReferences()
	for i := range d.sides {
		d.disambiguateByFallbackHint(i)
	}
}

func (d *delegate) findObject(id object.Hash) (*object.Object, error) {
	obj, err := d.objs.FindObject(id)
	if err != nil {
		return nil, &FindObjectError{ID: id, Err: err}
	}
	return obj, nil
}

// peel dereferences id until an object of kind is reached. A missing id is
// a lookup error, never a *object.PeelError.
func (d *delegate) peel(id object.Hash, kind object.ObjectType) (object.Hash, error) {
	obj, err := d.findObject(id)
	if err != nil {
		return "", err
	}
	peeled, err := obj.PeelToKind(kind)
	if err != nil {
		return "", err
	}
	return peeled.ID, nil
}

func (d *delegate) requireKind(id object.Hash, kind object.ObjectType) error {
	obj, err := d.findObject(id)
	if err != nil {
		return err
	}
	if obj.Type != kind {
		return &ObjectKindError{ID: id, Actual: obj.Type, Expected: kind}
	}
	return nil
}

func (d *delegate) traverse(id object.Hash, t parse.Traversal) (object.Hash, error) {
	obj, err := d.findObject(id)
	if err != nil {
		return "", err
	}
	start, err := obj.PeelToKind(object.TypeCommit)
	if err != nil {
		return "", err
	}

	switch t.Kind {
	case parse.NthParent:
		if t.N == 0 {
			return start.ID, nil
		}
		c, err := start.Commit()
		if err != nil {
			return "", err
		}
		if t.N > len(c.Parents) {
			return "", &TraversalError{ID: start.ID, Traversal: t, Parents: len(c.Parents)}
		}
		return c.Parents[t.N-1], nil
	default:
		cur := start
		for i := 0; i < t.N; i++ {
			c, err := cur.Commit()
			if err != nil {
				return "", err
			}
			if len(c.Parents) == 0 {
				return "", &TraversalError{ID: start.ID, Traversal: t}
			}
			if cur, err = d.findObject(c.Parents[0]); err != nil {
				return "", err
			}
		}
		return cur.ID, nil
	}
}

func (d *delegate) ambiguous(c candidates, prefix object.Prefix) *AmbiguousPrefixError {
	ids := c.sorted()
	infos := make([]CandidateInfo, 0, len(ids))
	for _, id := range ids {
		infos = append(infos, d.candidateInfo(id))
	}
	return &AmbiguousPrefixError{Prefix: prefix, Candidates: infos}
}

func (d *delegate) candidateInfo(id object.Hash) CandidateInfo {
	info := CandidateInfo{ID: id}
	obj, err := d.objs.FindObject(id)
	if err != nil {
		info.Err = err
		return info
	}
	info.Type = obj.Type
	switch obj.Type {
	case object.TypeTag:
		tag, err := obj.Tag()
		if err != nil {
			info.Err = err
			return info
		}
		info.TagName = tag.Name
	case object.TypeCommit:
		c, err := obj.Commit()
		if err != nil {
			info.Err = err
			return info
		}
		info.Date = time.Unix(c.Timestamp, 0).UTC()
		info.Subject = c.Subject()
	}
	return info
}
