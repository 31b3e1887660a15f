package repo

import (
	"github.com/odvcencio/gotrev/pkg/object"
)

// Repo represents an opened Got repository.
type Repo struct {
	RootDir string        // working directory root
	GotDir  string        // .got/ directory
	Store   *object.Store // content-addressed object store
}

// LookupPrefix forwards to the object store so a Repo can serve as the
// object database of a revision resolution.
func (r *Repo) LookupPrefix(p object.Prefix) ([]object.Hash, error) {
	return r.Store.LookupPrefix(p)
}

// FindObject forwards to the object store.
func (r *Repo) FindObject(h object.Hash) (*object.Object, error) {
	return r.Store.FindObject(h)
}

// TreeEntryAtPath forwards to the object store.
func (r *Repo) TreeEntryAtPath(tree object.Hash, path string) (object.TreeEntry, error) {
	return r.Store.TreeEntryAtPath(tree, path)
}
