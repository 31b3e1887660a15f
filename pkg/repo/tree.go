package repo

import (
	"fmt"
	"path"
	"sort"

	"github.com/odvcencio/gotrev/pkg/object"
)

// TreeFileEntry represents a single file in a flattened tree.
type TreeFileEntry struct {
	Path     string
	BlobHash object.Hash
	Mode     string
}

// FlattenTree walks a tree object recursively, returning all file entries
// with their full paths (using forward slashes).
func (r *Repo) FlattenTree(h object.Hash) ([]TreeFileEntry, error) {
	return r.flattenTreeRec(h, "")
}

func (r *Repo) flattenTreeRec(h object.Hash, prefix string) ([]TreeFileEntry, error) {
	treeObj, err := r.Store.ReadTree(h)
	if err != nil {
		return nil, fmt.Errorf("flatten tree: read %s: %w", h, err)
	}

	var result []TreeFileEntry
	for _, entry := range treeObj.Entries {
		fullPath := path.Join(prefix, entry.Name)
		if entry.IsDir {
			sub, err := r.flattenTreeRec(entry.SubtreeHash, fullPath)
			if err != nil {
				return nil, err
			}
			result = append(result, sub...)
			continue
		}
		mode := entry.Mode
		if mode == "" {
			mode = object.TreeModeFile
		}
		result = append(result, TreeFileEntry{Path: fullPath, BlobHash: entry.BlobHash, Mode: mode})
	}
	return result, nil
}

// TreeChange is one file that differs between two trees. Status is "A",
// "D" or "M".
type TreeChange struct {
	Status string
	Path   string
}

// DiffTrees lists the files added, deleted or modified going from before
// to after, sorted by path. An empty before means the empty tree.
func (r *Repo) DiffTrees(before, after object.Hash) ([]TreeChange, error) {
	old := make(map[string]TreeFileEntry)
	if before != "" {
		entries, err := r.FlattenTree(before)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			old[e.Path] = e
		}
	}
	entries, err := r.FlattenTree(after)
	if err != nil {
		return nil, err
	}

	var changes []TreeChange
	for _, a := range entries {
		b, ok := old[a.Path]
		switch {
		case !ok:
			changes = append(changes, TreeChange{Status: "A", Path: a.Path})
		case b.BlobHash != a.BlobHash || b.Mode != a.Mode:
			changes = append(changes, TreeChange{Status: "M", Path: a.Path})
		}
		delete(old, a.Path)
	}
	for p := range old {
		changes = append(changes, TreeChange{Status: "D", Path: p})
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes, nil
}
