package repo

import (
	"errors"
	"testing"

	"github.com/odvcencio/gotrev/pkg/object"
)

func TestTagCreateResolveAndList(t *testing.T) {
	r := initRepo(t)
	head := writeCommit(t, r, "initial")

	if err := r.CreateTag("v1.0.0", head, false); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	resolved, err := r.ResolveRef("v1.0.0")
	if err != nil {
		t.Fatalf("ResolveRef: %v", err)
	}
	if resolved != head {
		t.Fatalf("resolved tag = %q, want %q", resolved, head)
	}

	tags, err := r.ListTags()
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	if len(tags) != 1 || tags[0] != "v1.0.0" {
		t.Fatalf("ListTags = %v, want [v1.0.0]", tags)
	}
}

func TestTagCreateExistingWithoutForceFails(t *testing.T) {
	r := initRepo(t)
	first := writeCommit(t, r, "initial")
	second := writeCommit(t, r, "second", first)

	if err := r.CreateTag("v1", first, false); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if err := r.CreateTag("v1", second, false); err == nil {
		t.Fatal("CreateTag without force should fail for an existing tag")
	}
	if err := r.CreateTag("v1", second, true); err != nil {
		t.Fatalf("CreateTag with force: %v", err)
	}

	resolved, err := r.ResolveRef("refs/tags/v1")
	if err != nil {
		t.Fatalf("ResolveRef: %v", err)
	}
	if resolved != second {
		t.Fatalf("forced tag = %s, want %s", resolved, second)
	}
}

func TestTagCreateMissingTarget(t *testing.T) {
	r := initRepo(t)
	err := r.CreateTag("v1", testHash("e"), false)
	if !errors.Is(err, object.ErrObjectNotFound) {
		t.Fatalf("CreateTag err = %v, want ErrObjectNotFound", err)
	}
}

func TestAnnotatedTag(t *testing.T) {
	r := initRepo(t)
	head := writeCommit(t, r, "initial")

	tagHash, err := r.CreateAnnotatedTag("v2", head, "alice", "release two", false)
	if err != nil {
		t.Fatalf("CreateAnnotatedTag: %v", err)
	}
	if tagHash == head {
		t.Fatal("annotated tag should point at a tag object, not the commit")
	}

	tag, err := r.Store.ReadTag(tagHash)
	if err != nil {
		t.Fatalf("ReadTag: %v", err)
	}
	if tag.TargetHash != head || tag.TargetType != object.TypeCommit {
		t.Fatalf("tag target = %s (%s), want %s (commit)", tag.TargetHash, tag.TargetType, head)
	}
	if tag.Name != "v2" || tag.Tagger != "alice" || tag.Message != "release two\n" {
		t.Fatalf("tag = %+v", tag)
	}

	ref, err := r.ResolveRef("v2")
	if err != nil {
		t.Fatalf("ResolveRef: %v", err)
	}
	if ref != tagHash {
		t.Fatalf("tag ref = %s, want %s", ref, tagHash)
	}

	if _, err := r.CreateAnnotatedTag("v3", head, "alice", "  ", false); err == nil {
		t.Fatal("annotated tag without message should fail")
	}
	if _, err := r.CreateAnnotatedTag("v2", head, "alice", "again", false); err == nil {
		t.Fatal("annotated tag over an existing tag without force should fail")
	}
}

func TestDeleteTag(t *testing.T) {
	r := initRepo(t)
	head := writeCommit(t, r, "initial")
	if err := r.CreateTag("old", head, false); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if err := r.DeleteTag("old"); err != nil {
		t.Fatalf("DeleteTag: %v", err)
	}
	if err := r.DeleteTag("old"); err == nil {
		t.Fatal("deleting a missing tag should fail")
	}
	tags, err := r.ListTagsWithHashes()
	if err != nil {
		t.Fatalf("ListTagsWithHashes: %v", err)
	}
	if len(tags) != 0 {
		t.Fatalf("tags = %v, want none", tags)
	}
}
