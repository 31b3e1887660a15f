package repo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestUpdateRef_WritesReflog(t *testing.T) {
	r := initRepo(t)

	h1 := testHash("a")
	h2 := testHash("b")
	before := time.Now().Add(-time.Second)

	if err := r.UpdateRef("refs/heads/main", h1); err != nil {
		t.Fatalf("UpdateRef(h1): %v", err)
	}
	if err := r.UpdateRef("refs/heads/main", h2); err != nil {
		t.Fatalf("UpdateRef(h2): %v", err)
	}

	log, err := r.ReadReflog("main", 10)
	if err != nil {
		t.Fatalf("ReadReflog: %v", err)
	}
	if log.Ref.Name != "refs/heads/main" || log.Ref.Target != h2 {
		t.Fatalf("reflog ref = %+v, want refs/heads/main at %s", log.Ref, h2)
	}
	if len(log.Entries) != 2 {
		t.Fatalf("expected 2 reflog entries, got %d", len(log.Entries))
	}
	if e := log.Entries[0]; e.New != h2 || e.Old != h1 || e.Message != "update" {
		t.Fatalf("latest reflog entry = %+v, want %s -> %s", e, h1, h2)
	}
	if e := log.Entries[1]; e.New != h1 || e.Old != "" || e.When.Before(before) {
		t.Fatalf("first reflog entry = %+v, want creation of %s", e, h1)
	}

	assertFile(t, filepath.Join(r.GotDir, "logs", "refs", "heads", "main"))
}

func TestReadReflog_HeadFollowsCurrentBranch(t *testing.T) {
	r := initRepo(t)

	log, err := r.ReadReflog("", 0)
	if err != nil {
		t.Fatalf("ReadReflog on unborn HEAD: %v", err)
	}
	if log.Ref.Name != "refs/heads/main" || len(log.Entries) != 0 {
		t.Fatalf("unborn reflog = %+v, want an empty log of refs/heads/main", log)
	}

	if err := r.UpdateRef("refs/heads/main", testHash("c")); err != nil {
		t.Fatalf("UpdateRef: %v", err)
	}
	log, err = r.ReadReflog("HEAD", 0)
	if err != nil {
		t.Fatalf("ReadReflog: %v", err)
	}
	if log.Ref.Name != "refs/heads/main" || len(log.Entries) != 1 {
		t.Fatalf("ReadReflog(HEAD) = %+v, want one entry for refs/heads/main", log)
	}
}

func TestReadReflog_RespectsLimit(t *testing.T) {
	r := initRepo(t)
	for _, c := range []string{"1", "2", "3"} {
		if err := r.UpdateRef("refs/heads/main", testHash(c)); err != nil {
			t.Fatalf("UpdateRef(%s): %v", c, err)
		}
	}

	log, err := r.ReadReflog("main", 2)
	if err != nil {
		t.Fatalf("ReadReflog: %v", err)
	}
	if len(log.Entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(log.Entries))
	}
	if log.Entries[0].New != testHash("3") || log.Entries[1].New != testHash("2") {
		t.Fatalf("entries = %+v, want the two newest", log.Entries)
	}
}

func TestReadReflog_UnknownRef(t *testing.T) {
	r := initRepo(t)
	if _, err := r.ReadReflog("missing", 10); err == nil {
		t.Fatal("ReadReflog of an unknown ref should fail")
	}
}

func TestReadReflog_RejectsCorruptLine(t *testing.T) {
	r := initRepo(t)
	if err := r.UpdateRef("refs/heads/main", testHash("4")); err != nil {
		t.Fatalf("UpdateRef: %v", err)
	}
	path := filepath.Join(r.GotDir, "logs", "refs", "heads", "main")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open reflog: %v", err)
	}
	if _, err := f.WriteString("not-a-hash " + string(testHash("5")) + " 1700000000 update\n"); err != nil {
		t.Fatalf("append: %v", err)
	}
	f.Close()

	_, err = r.ReadReflog("main", 0)
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("ReadReflog err = %v, want an error naming line 2", err)
	}
}
