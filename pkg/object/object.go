package object

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPathNotFound is returned (wrapped) when a tree has no entry at a path.
var ErrPathNotFound = errors.New("path not found in tree")

// Object is a decoded-on-demand object read from a Store. It remembers the
// store it came from so it can be peeled.
type Object struct {
	ID   Hash
	Type ObjectType
	Data []byte

	store *Store
}

// PeelError reports that an object cannot be dereferenced to the wanted
// kind.
type PeelError struct {
	ID       Hash
	Actual   ObjectType
	Expected ObjectType
}

func (e *PeelError) Error() string {
	return fmt.Sprintf("last %s object %s could not be peeled to %s", e.Actual, e.ID, e.Expected)
}

// FindObject reads the object named h. A missing object yields an error
// wrapping ErrObjectNotFound.
func (s *Store) FindObject(h Hash) (*Object, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	return &Object{ID: h, Type: objType, Data: data, store: s}, nil
}

// Commit decodes the object as a commit.
func (o *Object) Commit() (*CommitObj, error) {
	if o.Type != TypeCommit {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", o.ID, o.Type, TypeCommit)
	}
	return UnmarshalCommit(o.Data)
}

// Tag decodes the object as an annotated tag.
func (o *Object) Tag() (*TagObj, error) {
	if o.Type != TypeTag {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", o.ID, o.Type, TypeTag)
	}
	return UnmarshalTag(o.Data)
}

// PeelToKind dereferences tags (and commits, towards their tree) until an
// object of the given kind is reached. It returns a *PeelError when the
// chain ends on another kind. Failing to read an object along the way is
// reported as a lookup error, not a PeelError.
func (o *Object) PeelToKind(kind ObjectType) (*Object, error) {
	cur := o
	for {
		if cur.Type == kind {
			return cur, nil
		}
		var next Hash
		switch cur.Type {
		case TypeTag:
			tag, err := cur.Tag()
			if err != nil {
				return nil, fmt.Errorf("peel %s: %w", o.ID, err)
			}
			next = tag.TargetHash
		case TypeCommit:
			if kind != TypeTree {
				return nil, &PeelError{ID: cur.ID, Actual: cur.Type, Expected: kind}
			}
			commit, err := cur.Commit()
			if err != nil {
				return nil, fmt.Errorf("peel %s: %w", o.ID, err)
			}
			next = commit.TreeHash
		default:
			return nil, &PeelError{ID: cur.ID, Actual: cur.Type, Expected: kind}
		}

		obj, err := o.store.FindObject(next)
		if err != nil {
			return nil, fmt.Errorf("peel %s: %w", o.ID, err)
		}
		cur = obj
	}
}

// PeelTagsToEnd follows annotated tags until a non-tag object is reached.
func (o *Object) PeelTagsToEnd() (*Object, error) {
	cur := o
	for cur.Type == TypeTag {
		tag, err := cur.Tag()
		if err != nil {
			return nil, fmt.Errorf("peel %s: %w", o.ID, err)
		}
		next, err := o.store.FindObject(tag.TargetHash)
		if err != nil {
			return nil, fmt.Errorf("peel %s: %w", o.ID, err)
		}
		cur = next
	}
	return cur, nil
}

// TreeEntryAtPath walks the tree named treeHash along a slash-separated
// path and returns the entry found there. Directories are valid targets.
func (s *Store) TreeEntryAtPath(treeHash Hash, relPath string) (TreeEntry, error) {
	relPath = strings.Trim(relPath, "/")
	if relPath == "" {
		return TreeEntry{Name: "", IsDir: true, Mode: TreeModeDir, SubtreeHash: treeHash}, nil
	}
	parts := strings.Split(relPath, "/")
	current := treeHash

	for i, part := range parts {
		treeObj, err := s.ReadTree(current)
		if err != nil {
			return TreeEntry{}, fmt.Errorf("read tree %s: %w", current, err)
		}

		var (
			entry TreeEntry
			found bool
		)
		for _, te := range treeObj.Entries {
			if te.Name == part {
				entry = te
				found = true
				break
			}
		}
		if !found {
			return TreeEntry{}, fmt.Errorf("%q in tree %s: %w", relPath, treeHash, ErrPathNotFound)
		}

		if i == len(parts)-1 {
			return entry, nil
		}
		if !entry.IsDir || entry.SubtreeHash == "" {
			return TreeEntry{}, fmt.Errorf("%q in tree %s: %w", relPath, treeHash, ErrPathNotFound)
		}
		current = entry.SubtreeHash
	}

	return TreeEntry{}, fmt.Errorf("%q in tree %s: %w", relPath, treeHash, ErrPathNotFound)
}
