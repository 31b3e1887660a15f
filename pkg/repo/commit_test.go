package repo

import (
	"testing"
	"time"

	"github.com/odvcencio/gotrev/pkg/object"
)

func TestCommitTreeValidatesInputs(t *testing.T) {
	r := initRepo(t)
	blob, err := r.Store.WriteBlob(&object.Blob{Data: []byte("x")})
	if err != nil {
		t.Fatalf("WriteBlob: %v", err)
	}

	if _, err := r.CommitTree(CommitTreeOptions{Tree: blob, Message: "m"}); err == nil {
		t.Fatal("CommitTree with a blob as tree should fail")
	}
	if _, err := r.CommitTree(CommitTreeOptions{Tree: testHash("f"), Message: "m"}); err == nil {
		t.Fatal("CommitTree with a missing tree should fail")
	}

	tree, err := r.Store.WriteTree(&object.TreeObj{Entries: []object.TreeEntry{{Name: "x", BlobHash: blob}}})
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	if _, err := r.CommitTree(CommitTreeOptions{Tree: tree, Parents: []object.Hash{blob}, Message: "m"}); err == nil {
		t.Fatal("CommitTree with a blob parent should fail")
	}

	when := time.Unix(1700000000, 0).UTC()
	h, err := r.CommitTree(CommitTreeOptions{Tree: tree, Author: "bob", Message: "subject\n\nbody\n", When: when})
	if err != nil {
		t.Fatalf("CommitTree: %v", err)
	}
	c, err := r.Store.ReadCommit(h)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if c.TreeHash != tree || c.Author != "bob" || c.Timestamp != when.Unix() || c.AuthorTimezone != "+0000" {
		t.Fatalf("commit = %+v", c)
	}
	if c.Subject() != "subject" {
		t.Fatalf("Subject = %q, want subject", c.Subject())
	}
}

func TestLogFollowsFirstParent(t *testing.T) {
	r := initRepo(t)
	c1 := writeCommit(t, r, "one")
	c2 := writeCommit(t, r, "two", c1)
	side := writeCommit(t, r, "side", c1)
	c3 := writeCommit(t, r, "three", c2, side)

	hashes, commits, err := r.Log(c3, 0)
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	want := []object.Hash{c3, c2, c1}
	if len(hashes) != len(want) || len(commits) != len(want) {
		t.Fatalf("Log returned %d hashes, %d commits; want %d", len(hashes), len(commits), len(want))
	}
	for i := range want {
		if hashes[i] != want[i] {
			t.Fatalf("hashes[%d] = %s, want %s", i, hashes[i], want[i])
		}
	}
	if commits[0].Message != "three" {
		t.Fatalf("commits[0].Message = %q, want three", commits[0].Message)
	}

	hashes, _, err = r.Log(c3, 2)
	if err != nil {
		t.Fatalf("Log(limit): %v", err)
	}
	if len(hashes) != 2 {
		t.Fatalf("Log(limit=2) returned %d commits", len(hashes))
	}

	if _, _, err := r.Log(testHash("9"), 0); err == nil {
		t.Fatal("Log from a missing commit should fail")
	}
}
