package revspec

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/odvcencio/gotrev/pkg/object"
	"github.com/odvcencio/gotrev/pkg/repo"
)

var fixedTime = time.Unix(1700000000, 0).UTC()

func newRepo(t testing.TB) *repo.Repo {
	t.Helper()
	r, err := repo.Init(t.TempDir())
	require.NoError(t, err)
	return r
}

// writeCommit stores a one-file tree and a commit on top of parents.
func writeCommit(t testing.TB, r *repo.Repo, msg string, parents ...object.Hash) object.Hash {
	t.Helper()
	blob, err := r.Store.WriteBlob(&object.Blob{Data: []byte(msg + "\n")})
	require.NoError(t, err)
	tree, err := r.Store.WriteTree(&object.TreeObj{Entries: []object.TreeEntry{{Name: "file.txt", BlobHash: blob}}})
	require.NoError(t, err)
	h, err := r.CommitTree(repo.CommitTreeOptions{Tree: tree, Parents: parents, Author: "tester", Message: msg, When: fixedTime})
	require.NoError(t, err)
	return h
}

func writeTag(t testing.TB, r *repo.Repo, name string, target object.Hash, targetType object.ObjectType) object.Hash {
	t.Helper()
	h, err := r.Store.WriteTag(tagObject(name, target, targetType, "release\n"))
	require.NoError(t, err)
	return h
}

func tagObject(name string, target object.Hash, targetType object.ObjectType, msg string) *object.TagObj {
	return &object.TagObj{
		TargetHash: target,
		TargetType: targetType,
		Name:       name,
		Tagger:     "tester",
		Timestamp:  fixedTime.Unix(),
		Timezone:   "+0000",
		Message:    msg,
	}
}

// plantWithPrefix writes the first object produced by gen whose id starts
// with prefix. Short prefixes keep the search to a few hundred thousand
// hashes at most.
func plantWithPrefix(t testing.TB, r *repo.Repo, prefix string, typ object.ObjectType, gen func(i int) []byte) object.Hash {
	t.Helper()
	for i := 0; i < 1<<24; i++ {
		data := gen(i)
		if strings.HasPrefix(string(object.HashObject(typ, data)), prefix) {
			h, err := r.Store.Write(typ, data)
			require.NoError(t, err)
			return h
		}
	}
	t.Fatalf("no %s with prefix %s found", typ, prefix)
	return ""
}

// collidingBlobs writes two blobs whose ids share their first four hex
// characters and returns that prefix.
func collidingBlobs(t testing.TB, r *repo.Repo) (string, object.Hash, object.Hash) {
	t.Helper()
	seen := make(map[string][]byte)
	for i := 0; ; i++ {
		data := []byte(fmt.Sprintf("blob %d\n", i))
		h := object.HashObject(object.TypeBlob, data)
		key := string(h[:4])
		if first, ok := seen[key]; ok {
			a, err := r.Store.Write(object.TypeBlob, first)
			require.NoError(t, err)
			b, err := r.Store.Write(object.TypeBlob, data)
			require.NoError(t, err)
			if b < a {
				a, b = b, a
			}
			return key, a, b
		}
		seen[key] = data
	}
}

func blobGen(i int) []byte { return []byte(fmt.Sprintf("payload %d\n", i)) }

// countingRefs records every reference lookup.
type countingRefs struct {
	References
	calls []string
}

func (c *countingRefs) FindReference(name string) (*repo.Reference, error) {
	c.calls = append(c.calls, name)
	return c.References.FindReference(name)
}

func resolve(t testing.TB, r *repo.Repo, spec string, opts Options) *Spec {
	t.Helper()
	out, err := ResolveRepo(r, spec, opts)
	require.NoError(t, err, "resolve %q", spec)
	return out
}

func single(t testing.TB, r *repo.Repo, spec string, opts Options) object.Hash {
	t.Helper()
	id, ok := resolve(t, r, spec, opts).Single()
	require.True(t, ok, "resolve %q: want a single object", spec)
	return id
}
