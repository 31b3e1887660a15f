package repo

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/odvcencio/gotrev/pkg/object"
)

// CommitTreeOptions describes a commit to write with CommitTree.
type CommitTreeOptions struct {
	Tree    object.Hash
	Parents []object.Hash
	Author  string
	Message string
	When    time.Time // zero means now
}

// CommitTree writes a commit object for an existing tree. The tree and all
// parents must already be stored with the right kinds. No ref is moved.
func (r *Repo) CommitTree(opts CommitTreeOptions) (object.Hash, error) {
	if _, err := r.Store.ReadTree(opts.Tree); err != nil {
		return "", fmt.Errorf("commit tree: %w", err)
	}
	for _, p := range opts.Parents {
		if _, err := r.Store.ReadCommit(p); err != nil {
			return "", fmt.Errorf("commit tree: parent: %w", err)
		}
	}
	author := strings.TrimSpace(opts.Author)
	if author == "" {
		author = "unknown"
	}
	when := opts.When
	if when.IsZero() {
		when = time.Now()
	}

	h, err := r.Store.WriteCommit(&object.CommitObj{
		TreeHash:       opts.Tree,
		Parents:        opts.Parents,
		Author:         author,
		Timestamp:      when.Unix(),
		AuthorTimezone: formatTimezoneOffset(when),
		Message:        opts.Message,
	})
	if err != nil {
		return "", fmt.Errorf("commit tree: write commit: %w", err)
	}
	return h, nil
}

// Log walks the commit history starting from the given hash, following
// first-parent links, returning up to limit commits newest first together
// with their hashes.
func (r *Repo) Log(start object.Hash, limit int) ([]object.Hash, []*object.CommitObj, error) {
	var (
		hashes  []object.Hash
		commits []*object.CommitObj
	)
	current := start

	for limit <= 0 || len(commits) < limit {
		c, err := r.Store.ReadCommit(current)
		if err != nil {
			if errors.Is(err, object.ErrObjectNotFound) && len(commits) > 0 {
				break
			}
			return nil, nil, fmt.Errorf("log: read commit %s: %w", current, err)
		}
		hashes = append(hashes, current)
		commits = append(commits, c)

		if len(c.Parents) == 0 {
			break
		}
		current = c.Parents[0]
	}

	return hashes, commits, nil
}
