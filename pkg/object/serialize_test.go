package object

import (
	"bytes"
	"strings"
	"testing"
)

func TestMarshalUnmarshalBlob(t *testing.T) {
	orig := &Blob{Data: []byte("hello world\nline two")}
	got, err := UnmarshalBlob(MarshalBlob(orig))
	if err != nil {
		t.Fatalf("UnmarshalBlob: %v", err)
	}
	if !bytes.Equal(got.Data, orig.Data) {
		t.Errorf("Blob round-trip mismatch: got %q, want %q", got.Data, orig.Data)
	}
}

func TestMarshalTreeSortsEntries(t *testing.T) {
	tr := &TreeObj{Entries: []TreeEntry{
		{Name: "z.go", BlobHash: Hash("b1")},
		{Name: "a", IsDir: true, SubtreeHash: Hash("s1")},
		{Name: "run.sh", Mode: TreeModeExecutable, BlobHash: Hash("b2")},
	}}
	data := MarshalTree(tr)
	want := "a 40000 - s1\nrun.sh 100755 b2 -\nz.go 100644 b1 -\n"
	if string(data) != want {
		t.Fatalf("MarshalTree =\n%s\nwant\n%s", data, want)
	}

	got, err := UnmarshalTree(data)
	if err != nil {
		t.Fatalf("UnmarshalTree: %v", err)
	}
	if len(got.Entries) != 3 || !got.Entries[0].IsDir || got.Entries[0].ID() != Hash("s1") || got.Entries[2].ID() != Hash("b1") {
		t.Fatalf("UnmarshalTree entries = %+v", got.Entries)
	}
}

func TestUnmarshalTreeErrors(t *testing.T) {
	for _, input := range []string{"only three fields\n", "x 777 - -\n"} {
		if _, err := UnmarshalTree([]byte(input)); err == nil {
			t.Errorf("UnmarshalTree(%q) should fail", input)
		}
	}
}

func TestMarshalUnmarshalCommit(t *testing.T) {
	orig := &CommitObj{
		TreeHash:       Hash("t1"),
		Parents:        []Hash{"p1", "p2"},
		Author:         "Jane Doe <jane@example.com>",
		Timestamp:      1700000000,
		AuthorTimezone: "-0700",
		Message:        "subject line\n\nbody text\n",
	}
	got, err := UnmarshalCommit(MarshalCommit(orig))
	if err != nil {
		t.Fatalf("UnmarshalCommit: %v", err)
	}
	if got.TreeHash != orig.TreeHash || len(got.Parents) != 2 || got.Parents[1] != "p2" {
		t.Errorf("commit graph fields mismatch: %+v", got)
	}
	if got.Author != orig.Author || got.Timestamp != orig.Timestamp || got.AuthorTimezone != orig.AuthorTimezone {
		t.Errorf("commit metadata mismatch: %+v", got)
	}
	if got.Message != orig.Message {
		t.Errorf("Message: got %q, want %q", got.Message, orig.Message)
	}
	if got.Subject() != "subject line" {
		t.Errorf("Subject: got %q", got.Subject())
	}
}

func TestUnmarshalCommitErrors(t *testing.T) {
	tests := []string{
		"tree t1\nauthor a\n",
		"author a\ntimestamp 1\n\nmsg",
		"tree t1\ntimestamp nope\n\nmsg",
		"tree t1\ncolor blue\n\nmsg",
	}
	for _, input := range tests {
		if _, err := UnmarshalCommit([]byte(input)); err == nil {
			t.Errorf("UnmarshalCommit(%q) should fail", input)
		}
	}
}

func TestMarshalUnmarshalTag(t *testing.T) {
	orig := &TagObj{
		TargetHash: Hash("c1"),
		TargetType: TypeCommit,
		Name:       "v1.0.0",
		Tagger:     "Release Bot <bot@example.com>",
		Timestamp:  1700000001,
		Timezone:   "+0200",
		Message:    "first release\n",
	}
	data := MarshalTag(orig)
	if !strings.HasPrefix(string(data), "object c1\ntype commit\ntag v1.0.0\n") {
		t.Fatalf("MarshalTag header = %q", data)
	}
	got, err := UnmarshalTag(data)
	if err != nil {
		t.Fatalf("UnmarshalTag: %v", err)
	}
	if *got != *orig {
		t.Fatalf("tag round-trip = %+v, want %+v", got, orig)
	}
}

func TestUnmarshalTagErrors(t *testing.T) {
	tests := []string{
		"object c1\ntype commit\n",
		"type commit\ntag v1\ntagger a 1 +0000\n\nmsg",
		"object c1\ntype gizmo\ntag v1\ntagger a 1 +0000\n\nmsg",
		"object c1\ntype commit\ntag v1\ntagger a\n\nmsg",
	}
	for _, input := range tests {
		if _, err := UnmarshalTag([]byte(input)); err == nil {
			t.Errorf("UnmarshalTag(%q) should fail", input)
		}
	}
}
