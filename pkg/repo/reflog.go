package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/odvcencio/gotrev/pkg/object"
)

// Reflog is the update history of one reference, newest entry first.
type Reflog struct {
	Ref     *Reference
	Entries []ReflogEntry
}

// ReflogEntry is one move of a reference from Old to New. Old is empty for
// the update that created the reference.
type ReflogEntry struct {
	Old     object.Hash
	New     object.Hash
	When    time.Time
	Message string
}

var nullID = object.Hash(strings.Repeat("0", object.HexSize))

// line encodes e as "<old> <new> <unix-seconds> <message>".
func (e ReflogEntry) line() string {
	old := e.Old
	if _, err := object.ParseHash(string(old)); err != nil {
		old = nullID
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = "update"
	}
	return fmt.Sprintf("%s %s %d %s\n", old, e.New, e.When.Unix(), msg)
}

func parseReflogLine(line string) (ReflogEntry, error) {
	fields := strings.SplitN(line, " ", 4)
	if len(fields) != 4 {
		return ReflogEntry{}, fmt.Errorf("want 4 fields, got %d", len(fields))
	}
	var e ReflogEntry
	if fields[0] != string(nullID) {
		old, err := object.ParseHash(fields[0])
		if err != nil {
			return ReflogEntry{}, fmt.Errorf("old id: %w", err)
		}
		e.Old = old
	}
	next, err := object.ParseHash(fields[1])
	if err != nil {
		return ReflogEntry{}, fmt.Errorf("new id: %w", err)
	}
	secs, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return ReflogEntry{}, fmt.Errorf("timestamp: %w", err)
	}
	e.New = next
	e.When = time.Unix(secs, 0).UTC()
	e.Message = fields[3]
	return e, nil
}

func (r *Repo) reflogPath(name string) string {
	return filepath.Join(r.GotDir, "logs", filepath.FromSlash(name))
}

func (r *Repo) appendReflog(name string, e ReflogEntry) error {
	path := r.reflogPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("reflog %s: %w", name, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("reflog %s: %w", name, err)
	}
	if _, err := f.WriteString(e.line()); err != nil {
		f.Close()
		return fmt.Errorf("reflog %s: %w", name, err)
	}
	return f.Close()
}

// ReadReflog returns the history of the reference name resolves to, keeping
// at most limit entries when limit is positive. An empty name means HEAD;
// a symbolic HEAD reads the log of its branch, even an unborn one.
func (r *Repo) ReadReflog(name string, limit int) (*Reflog, error) {
	ref, err := r.reflogReference(name)
	if err != nil {
		return nil, fmt.Errorf("read reflog: %w", err)
	}
	log := &Reflog{Ref: ref}

	data, err := os.ReadFile(r.reflogPath(ref.Name))
	if os.IsNotExist(err) {
		return log, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read reflog: %w", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if limit > 0 && len(log.Entries) == limit {
			break
		}
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		e, err := parseReflogLine(lines[i])
		if err != nil {
			return nil, fmt.Errorf("read reflog %s line %d: %w", ref.Name, i+1, err)
		}
		log.Entries = append(log.Entries, e)
	}
	return log, nil
}

func (r *Repo) reflogReference(name string) (*Reference, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "HEAD"
	}
	ref, err := r.FindReference(name)
	if err != nil {
		return nil, err
	}
	if ref.Name != "HEAD" || !ref.IsSymbolic() {
		return ref, nil
	}
	branch, ok, err := r.readReference(ref.Symbolic)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &Reference{Name: ref.Symbolic}, nil
	}
	return branch, nil
}
