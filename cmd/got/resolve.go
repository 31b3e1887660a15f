package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/odvcencio/gotrev/pkg/object"
	"github.com/odvcencio/gotrev/pkg/repo"
	"github.com/odvcencio/gotrev/pkg/revspec"
)

// hintFlags are the per-invocation overrides of the [revparse] config.
type hintFlags struct {
	refsHint       string
	objectKindHint string
}

// resolveOptions merges the repository config with flag overrides.
func resolveOptions(r *repo.Repo, flags hintFlags) (revspec.Options, error) {
	cfg, err := r.ReadConfig()
	if err != nil {
		return revspec.Options{}, err
	}
	opts, err := revspec.OptionsFromConfig(cfg)
	if err != nil {
		return revspec.Options{}, fmt.Errorf("config: %w", err)
	}
	if flags.refsHint != "" {
		if opts.RefsHint, err = revspec.ParseRefsHint(flags.refsHint); err != nil {
			return revspec.Options{}, fmt.Errorf("--refs-hint: %w", err)
		}
	}
	if flags.objectKindHint != "" {
		if opts.ObjectKindHint, err = revspec.ParseObjectKindHint(flags.objectKindHint); err != nil {
			return revspec.Options{}, fmt.Errorf("--object-kind-hint: %w", err)
		}
	}
	opts.Logger = logger
	return opts, nil
}

// resolveObject resolves spec to exactly one object. hint replaces the
// configured object kind hint unless it is NoObjectKindHint.
func resolveObject(r *repo.Repo, spec string, hint revspec.ObjectKindHint) (object.Hash, error) {
	opts, err := resolveOptions(r, hintFlags{})
	if err != nil {
		return "", err
	}
	if hint != revspec.NoObjectKindHint {
		opts.ObjectKindHint = hint
	}
	out, err := revspec.ResolveRepo(r, strings.TrimSpace(spec), opts)
	if err != nil {
		return "", err
	}
	id, ok := out.Single()
	if !ok {
		if out.From == "" && out.To == "" {
			return "", fmt.Errorf("%q does not name an object", spec)
		}
		return "", fmt.Errorf("%q names a range, expected a single object", spec)
	}
	return id, nil
}

// resolvePeeled resolves spec and peels the result to kind.
func resolvePeeled(r *repo.Repo, spec string, kind object.ObjectType) (object.Hash, error) {
	hint := revspec.CommittishHint
	if kind == object.TypeTree {
		hint = revspec.TreeishHint
	}
	id, err := resolveObject(r, spec, hint)
	if err != nil {
		return "", err
	}
	peeled, err := peel(r, id, kind)
	if err != nil {
		return "", fmt.Errorf("%s: %w", spec, err)
	}
	return peeled, nil
}

func resolveCommit(r *repo.Repo, spec string) (object.Hash, error) {
	return resolvePeeled(r, spec, object.TypeCommit)
}

func defaultUser() string {
	if u := strings.TrimSpace(os.Getenv("USER")); u != "" {
		return u
	}
	return "unknown"
}

func peel(r *repo.Repo, id object.Hash, kind object.ObjectType) (object.Hash, error) {
	obj, err := r.FindObject(id)
	if err != nil {
		return "", err
	}
	peeled, err := obj.PeelToKind(kind)
	if err != nil {
		return "", err
	}
	return peeled.ID, nil
}
