package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/odvcencio/gotrev/pkg/object"
)

var ErrRefCASMismatch = errors.New("ref compare-and-swap mismatch")
var ErrRefUpdatedButReflogAppendFailed = errors.New("ref updated but reflog append failed")

// RefUpdateReflogError indicates the ref file update succeeded, but appending
// the corresponding reflog entry failed.
type RefUpdateReflogError struct {
	Ref     string
	OldHash object.Hash
	NewHash object.Hash
	Err     error
}

func (e *RefUpdateReflogError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf(
		"update ref %q: %s (old=%s new=%s): %v",
		e.Ref,
		ErrRefUpdatedButReflogAppendFailed,
		e.OldHash,
		e.NewHash,
		e.Err,
	)
}

func (e *RefUpdateReflogError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *RefUpdateReflogError) Is(target error) bool {
	return target == ErrRefUpdatedButReflogAppendFailed
}

const (
	refLockRetryDelay = 5 * time.Millisecond
	refLockWaitLimit  = 2 * time.Second

	// DefaultBranch is the branch HEAD points at in a fresh repository.
	DefaultBranch = "main"
)

// InitOptions tunes repository creation.
type InitOptions struct {
	// DefaultBranch names the branch HEAD starts on. Empty means "main".
	DefaultBranch string
}

// Init creates a new Got repository at path with default options.
func Init(path string) (*Repo, error) {
	return InitWithOptions(path, InitOptions{})
}

// InitWithOptions creates the .got/ directory structure: HEAD, config.toml,
// objects/, and refs/heads/. Returns an error if a .got/ directory already
// exists.
func InitWithOptions(path string, opts InitOptions) (*Repo, error) {
	gotDir := filepath.Join(path, ".got")

	if _, err := os.Stat(gotDir); err == nil {
		return nil, fmt.Errorf("init: repository already exists at %s", gotDir)
	}

	branch := strings.TrimSpace(opts.DefaultBranch)
	if branch == "" {
		branch = DefaultBranch
	}
	if err := validateRefComponent(branch); err != nil {
		return nil, fmt.Errorf("init: default branch: %w", err)
	}

	dirs := []string{
		filepath.Join(gotDir, "objects"),
		filepath.Join(gotDir, "refs", "heads"),
		filepath.Join(gotDir, "refs", "tags"),
		filepath.Join(gotDir, "logs", "refs", "heads"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	headPath := filepath.Join(gotDir, "HEAD")
	if err := os.WriteFile(headPath, []byte(symbolicPrefix+"refs/heads/"+branch+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("init: write HEAD: %w", err)
	}

	r := &Repo{
		RootDir: path,
		GotDir:  gotDir,
		Store:   object.NewStore(gotDir),
	}
	cfg := DefaultConfig()
	cfg.Core.DefaultBranch = branch
	if err := r.WriteConfig(cfg); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	return r, nil
}

// Open searches upward from path for a .got/ directory and opens the
// repository. Returns an error if no .got/ directory is found.
func Open(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		gotDir := filepath.Join(cur, ".got")
		info, err := os.Stat(gotDir)
		if err == nil && info.IsDir() {
			return &Repo{
				RootDir: cur,
				GotDir:  gotDir,
				Store:   object.NewStore(gotDir),
			}, nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open: not a got repository (or any parent up to /)")
		}
		cur = parent
	}
}

// Head reads .got/HEAD. If HEAD is symbolic it returns the ref path
// (e.g., "refs/heads/main"). Otherwise it returns the detached hash.
func (r *Repo) Head() (string, error) {
	ref, err := r.FindReference("HEAD")
	if err != nil {
		return "", fmt.Errorf("head: %w", err)
	}
	if ref.IsSymbolic() {
		return ref.Symbolic, nil
	}
	return string(ref.Target), nil
}

// UpdateRef writes a hash to the named ref file under .got/. Parent
// directories are created as needed.
func (r *Repo) UpdateRef(name string, h object.Hash) error {
	return r.UpdateRefCAS(name, h)
}

// UpdateRefCAS writes a hash to the named ref file under .got/ using
// lockfile + rename atomic semantics. If expectedOld is provided, the
// update only succeeds when the current ref hash matches it; an empty
// expectedOld means the ref must not exist yet.
//
// Reflog append happens after the ref rename; if reflog append fails, the ref
// update remains committed and a RefUpdateReflogError is returned.
func (r *Repo) UpdateRefCAS(name string, h object.Hash, expectedOld ...object.Hash) error {
	if len(expectedOld) > 1 {
		return fmt.Errorf("update ref %q: expected at most one old hash", name)
	}
	if err := validateFullRefName(name); err != nil {
		return fmt.Errorf("update ref: %w", err)
	}
	if _, err := object.ParseHash(string(h)); err != nil {
		return fmt.Errorf("update ref %q: %w", name, err)
	}

	var oldHash object.Hash
	err := r.writeRefFile(name, string(h)+"\n", func(old string) error {
		oldHash = object.Hash(old)
		if len(expectedOld) == 1 && oldHash != expectedOld[0] {
			return fmt.Errorf("%w (expected %s, found %s)", ErrRefCASMismatch, expectedOld[0], oldHash)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update ref %q: %w", name, err)
	}

	if err := r.appendReflog(name, ReflogEntry{Old: oldHash, New: h, When: time.Now()}); err != nil {
		return &RefUpdateReflogError{
			Ref:     name,
			OldHash: oldHash,
			NewHash: h,
			Err:     err,
		}
	}
	return nil
}

// SetSymbolicRef points name at another reference, e.g. HEAD at
// refs/heads/main.
func (r *Repo) SetSymbolicRef(name, target string) error {
	if err := validateFullRefName(name); err != nil {
		return fmt.Errorf("set symbolic ref: %w", err)
	}
	if !strings.HasPrefix(target, "refs/") {
		return fmt.Errorf("set symbolic ref %q: target %q must start with refs/", name, target)
	}
	if err := validateFullRefName(target); err != nil {
		return fmt.Errorf("set symbolic ref: %w", err)
	}
	if err := r.writeRefFile(name, symbolicPrefix+target+"\n", nil); err != nil {
		return fmt.Errorf("set symbolic ref %q: %w", name, err)
	}
	return nil
}

// writeRefFile replaces the ref file under a lock. check sees the trimmed
// previous content (empty when the ref is new) and may veto the write.
func (r *Repo) writeRefFile(name, content string, check func(old string) error) error {
	refPath := filepath.Join(r.GotDir, filepath.FromSlash(name))

	if err := os.MkdirAll(filepath.Dir(refPath), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	lockPath := refPath + ".lock"
	lockFile, err := acquireRefLock(lockPath)
	if err != nil {
		return fmt.Errorf("lock: %w", err)
	}
	cleanupLock := true
	defer func() {
		if lockFile != nil {
			_ = lockFile.Close()
		}
		if cleanupLock {
			_ = os.Remove(lockPath)
		}
	}()

	old, err := readRefContent(refPath)
	if err != nil {
		return fmt.Errorf("read old value: %w", err)
	}
	if check != nil {
		if err := check(old); err != nil {
			return err
		}
	}

	if _, err := lockFile.WriteString(content); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := lockFile.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err := lockFile.Close(); err != nil {
		lockFile = nil
		return fmt.Errorf("close: %w", err)
	}
	lockFile = nil

	if err := os.Rename(lockPath, refPath); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	cleanupLock = false
	return nil
}

func acquireRefLock(lockPath string) (*os.File, error) {
	deadline := time.Now().Add(refLockWaitLimit)
	for {
		f, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, nil
		}
		if os.IsExist(err) {
			if time.Now().After(deadline) {
				return nil, fmt.Errorf("timeout waiting for lock %q", lockPath)
			}
			time.Sleep(refLockRetryDelay)
			continue
		}
		return nil, err
	}
}

func readRefContent(refPath string) (string, error) {
	data, err := os.ReadFile(refPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
