package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/gotrev/pkg/object"
)

const (
	symbolicPrefix = "ref: "

	// MaxSymbolicDepth bounds how many symbolic hops are followed before a
	// chain is treated as a loop.
	MaxSymbolicDepth = 5
)

// ErrReferenceNotFound is matched by errors reporting a missing reference.
var ErrReferenceNotFound = errors.New("reference not found")

// ReferenceNotFoundError names the reference that could not be found.
type ReferenceNotFoundError struct {
	Name string
}

func (e *ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("reference %q not found", e.Name)
}

func (e *ReferenceNotFoundError) Is(target error) bool {
	return target == ErrReferenceNotFound
}

// Reference is a named pointer stored under .got/. Exactly one of Target
// and Symbolic is set: a direct reference names an object, a symbolic one
// names another reference.
type Reference struct {
	Name     string      // full name, e.g. "refs/heads/main" or "HEAD"
	Target   object.Hash // direct target
	Symbolic string      // symbolic target, e.g. "refs/heads/main"
}

// IsSymbolic reports whether the reference points at another reference.
func (r *Reference) IsSymbolic() bool { return r.Symbolic != "" }

// TargetID returns the object the reference points at directly, if any.
func (r *Reference) TargetID() (object.Hash, bool) {
	if r.IsSymbolic() || r.Target == "" {
		return "", false
	}
	return r.Target, true
}

func (r *Reference) String() string {
	if r.IsSymbolic() {
		return r.Name + " -> " + r.Symbolic
	}
	return r.Name + " -> " + string(r.Target)
}

// FindReference looks up name the way git does for a partial name,
// returning the first existing reference among:
//
//	<name>                 (only for HEAD-like names and names under refs/)
//	refs/<name>
//	refs/tags/<name>
//	refs/heads/<name>
//	refs/remotes/<name>
//	refs/remotes/<name>/HEAD
//
// Symbolic references are returned as-is, not followed.
func (r *Repo) FindReference(name string) (*Reference, error) {
	name = strings.TrimSpace(name)
	if err := validateRefName(name); err != nil {
		return nil, fmt.Errorf("find reference: %w", err)
	}

	for _, candidate := range referenceCandidates(name) {
		ref, ok, err := r.readReference(candidate)
		if err != nil {
			return nil, fmt.Errorf("find reference %q: %w", name, err)
		}
		if ok {
			return ref, nil
		}
	}
	return nil, &ReferenceNotFoundError{Name: name}
}

func referenceCandidates(name string) []string {
	if strings.HasPrefix(name, "refs/") {
		return []string{name}
	}
	var out []string
	if isHeadLike(name) {
		out = append(out, name)
	}
	return append(out,
		"refs/"+name,
		"refs/tags/"+name,
		"refs/heads/"+name,
		"refs/remotes/"+name,
		"refs/remotes/"+name+"/HEAD",
	)
}

// isHeadLike matches names such as HEAD, ORIG_HEAD or FETCH_HEAD that live
// directly in .got/.
func isHeadLike(name string) bool {
	if !strings.HasSuffix(name, "HEAD") {
		return false
	}
	for _, c := range name {
		if (c < 'A' || c > 'Z') && c != '_' {
			return false
		}
	}
	return true
}

// readReference loads a single fully-qualified reference file. Directories
// and missing files report ok=false.
func (r *Repo) readReference(fullName string) (*Reference, bool, error) {
	path := filepath.Join(r.GotDir, filepath.FromSlash(fullName))
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if info.IsDir() {
		return nil, false, nil
	}

	content, err := readRefContent(path)
	if err != nil {
		return nil, false, err
	}
	ref, err := parseReference(fullName, content)
	if err != nil {
		return nil, false, err
	}
	return ref, true, nil
}

func parseReference(fullName, content string) (*Reference, error) {
	if strings.HasPrefix(content, symbolicPrefix) {
		target := strings.TrimSpace(strings.TrimPrefix(content, symbolicPrefix))
		if target == "" {
			return nil, fmt.Errorf("malformed symbolic ref %q", fullName)
		}
		return &Reference{Name: fullName, Symbolic: target}, nil
	}
	h, err := object.ParseHash(content)
	if err != nil {
		return nil, fmt.Errorf("malformed ref %q: %w", fullName, err)
	}
	return &Reference{Name: fullName, Target: h}, nil
}

// PeelReference follows symbolic references until a direct one is found
// and returns its target.
func (r *Repo) PeelReference(ref *Reference) (object.Hash, error) {
	cur := ref
	for depth := 0; ; depth++ {
		if id, ok := cur.TargetID(); ok {
			return id, nil
		}
		if depth >= MaxSymbolicDepth {
			return "", fmt.Errorf("peel reference %q: symbolic chain deeper than %d", ref.Name, MaxSymbolicDepth)
		}
		next, ok, err := r.readReference(cur.Symbolic)
		if err != nil {
			return "", fmt.Errorf("peel reference %q: %w", ref.Name, err)
		}
		if !ok {
			return "", fmt.Errorf("peel reference %q: %w", ref.Name, &ReferenceNotFoundError{Name: cur.Symbolic})
		}
		cur = next
	}
}

// ResolveRef resolves a ref name to an object hash, following symbolic
// references.
func (r *Repo) ResolveRef(name string) (object.Hash, error) {
	ref, err := r.FindReference(name)
	if err != nil {
		return "", fmt.Errorf("resolve ref: %w", err)
	}
	h, err := r.PeelReference(ref)
	if err != nil {
		return "", fmt.Errorf("resolve ref: %w", err)
	}
	return h, nil
}

// ListRefs lists direct references under .got/refs.
// Names are returned relative to refs root, e.g. "heads/main", "tags/v1".
func (r *Repo) ListRefs(prefix string) (map[string]object.Hash, error) {
	root := filepath.Join(r.GotDir, "refs")
	dir := root
	if strings.TrimSpace(prefix) != "" {
		dir = filepath.Join(root, filepath.FromSlash(prefix))
	}

	refs := make(map[string]object.Hash)
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || strings.HasSuffix(path, ".lock") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		content, err := readRefContent(path)
		if err != nil {
			return err
		}
		ref, err := parseReference("refs/"+name, content)
		if err != nil {
			return err
		}
		if id, ok := ref.TargetID(); ok {
			refs[name] = id
		}
		return nil
	})
	if os.IsNotExist(err) {
		return refs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	return refs, nil
}

func validateRefName(name string) error {
	if name == "" {
		return fmt.Errorf("reference name is required")
	}
	if strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") || strings.HasSuffix(name, ".lock") {
		return fmt.Errorf("invalid reference name %q", name)
	}
	if strings.Contains(name, "..") || strings.Contains(name, "//") {
		return fmt.Errorf("invalid reference name %q", name)
	}
	if strings.ContainsAny(name, " \t\n\r\\:?*[~^") {
		return fmt.Errorf("invalid reference name %q", name)
	}
	return nil
}

// validateFullRefName accepts HEAD-like names and names under refs/.
func validateFullRefName(name string) error {
	if err := validateRefName(name); err != nil {
		return err
	}
	if !isHeadLike(name) && !strings.HasPrefix(name, "refs/") {
		return fmt.Errorf("reference %q must be HEAD-like or start with refs/", name)
	}
	return nil
}

// validateRefComponent checks a short branch or tag name.
func validateRefComponent(name string) error {
	if err := validateRefName(name); err != nil {
		return err
	}
	if name == "HEAD" || strings.HasPrefix(name, "-") {
		return fmt.Errorf("invalid name %q", name)
	}
	return nil
}
