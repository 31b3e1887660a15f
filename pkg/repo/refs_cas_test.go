package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"github.com/odvcencio/gotrev/pkg/object"
)

// race runs update(i) for i in [0, n) concurrently and returns each call's
// error by index.
func race(t *testing.T, n int, update func(i int) error) []error {
	t.Helper()
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	errs := make([]error, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			errs[i] = update(i)
			return nil
		})
	}
	_ = g.Wait()
	return errs
}

// winner returns the single index whose error is nil and checks that every
// other error satisfies loser.
func winner(t *testing.T, errs []error, loser func(error) bool) int {
	t.Helper()
	won := -1
	for i, err := range errs {
		switch {
		case err == nil && won >= 0:
			t.Fatalf("updates %d and %d both succeeded", won, i)
		case err == nil:
			won = i
		case !loser(err):
			t.Fatalf("update %d: unexpected error %v", i, err)
		}
	}
	if won < 0 {
		t.Fatal("no update succeeded")
	}
	return won
}

func TestUpdateRefCAS_ConcurrentSingleWinner(t *testing.T) {
	r := initRepo(t)
	base := testHash("a")
	if err := r.UpdateRef("refs/heads/main", base); err != nil {
		t.Fatalf("UpdateRef(base): %v", err)
	}

	next := func(i int) object.Hash { return object.Hash(fmt.Sprintf("%064x", i+1)) }
	errs := race(t, 16, func(i int) error {
		return r.UpdateRefCAS("refs/heads/main", next(i), base)
	})
	won := winner(t, errs, func(err error) bool { return errors.Is(err, ErrRefCASMismatch) })

	got, err := r.ResolveRef("refs/heads/main")
	if err != nil {
		t.Fatalf("ResolveRef(main): %v", err)
	}
	if got != next(won) {
		t.Fatalf("refs/heads/main = %s, want winner %s", got, next(won))
	}

	log, err := r.ReadReflog("main", 0)
	if err != nil {
		t.Fatalf("ReadReflog: %v", err)
	}
	if len(log.Entries) != 2 || log.Entries[0].Old != base || log.Entries[0].New != next(won) {
		t.Fatalf("reflog = %+v, want only the winning move on top of the base", log.Entries)
	}
}

func TestUpdateRefCAS_ExpectedValue(t *testing.T) {
	tests := []struct {
		name     string
		current  object.Hash
		expected object.Hash
		wantErr  bool
	}{
		{"matching", testHash("b"), testHash("b"), false},
		{"stale", testHash("b"), testHash("d"), true},
		{"create when absent", "", "", false},
		{"absent but expected", "", testHash("d"), true},
		{"exists but expected absent", testHash("b"), "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := initRepo(t)
			if tc.current != "" {
				if err := r.UpdateRef("refs/heads/main", tc.current); err != nil {
					t.Fatalf("UpdateRef(current): %v", err)
				}
			}

			err := r.UpdateRefCAS("refs/heads/main", testHash("c"), tc.expected)
			if tc.wantErr != (err != nil) {
				t.Fatalf("UpdateRefCAS err = %v, wantErr %t", err, tc.wantErr)
			}
			if tc.wantErr && !errors.Is(err, ErrRefCASMismatch) {
				t.Fatalf("UpdateRefCAS err = %v, want ErrRefCASMismatch", err)
			}

			lockPath := filepath.Join(r.GotDir, "refs", "heads", "main.lock")
			if _, statErr := os.Stat(lockPath); !os.IsNotExist(statErr) {
				t.Fatalf("lockfile left at %q, stat err=%v", lockPath, statErr)
			}
		})
	}
}

func TestCreateBranch_ConcurrentSingleWinner(t *testing.T) {
	r := initRepo(t)
	headHash := writeCommit(t, r, "initial")

	errs := race(t, 12, func(int) error { return r.CreateBranch("feature", headHash) })
	winner(t, errs, func(err error) bool { return strings.Contains(err.Error(), "already exists") })

	got, err := r.ResolveRef("refs/heads/feature")
	if err != nil {
		t.Fatalf("ResolveRef(feature): %v", err)
	}
	if got != headHash {
		t.Fatalf("feature ref = %s, want %s", got, headHash)
	}
}
