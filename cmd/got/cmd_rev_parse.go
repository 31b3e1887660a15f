package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"

	"github.com/odvcencio/gotrev/pkg/object"
	"github.com/odvcencio/gotrev/pkg/repo"
	"github.com/odvcencio/gotrev/pkg/revspec"
	"github.com/odvcencio/gotrev/pkg/revspec/parse"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// revParseResult is the structured form of one resolved revision.
type revParseResult struct {
	Spec      string `json:"spec" yaml:"spec"`
	Kind      string `json:"kind" yaml:"kind"`
	FromRef   string `json:"from_ref,omitempty" yaml:"from_ref,omitempty"`
	From      string `json:"from,omitempty" yaml:"from,omitempty"`
	ToRef     string `json:"to_ref,omitempty" yaml:"to_ref,omitempty"`
	To        string `json:"to,omitempty" yaml:"to,omitempty"`
	MergeBase string `json:"merge_base,omitempty" yaml:"merge_base,omitempty"`
}

func newRevParseCmd() *cobra.Command {
	var format string
	var hints hintFlags

	cmd := &cobra.Command{
		Use:   "rev-parse <revision>...",
		Short: "Resolve revision specifications to object ids",
		Long: `Resolve each revision to object ids.

Single revisions print one id. "A..B" prints B and ^A, "A...B" prints B, A
and ^<merge base>, and "^A" prints ^A.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "text", "json", "yaml":
			default:
				return fmt.Errorf("rev-parse: unknown format %q (want text, json or yaml)", format)
			}

			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			opts, err := resolveOptions(r, hints)
			if err != nil {
				return err
			}

			// Specs resolve independently. Wait reports whichever failure
			// finished first, so the error returned is the first one in
			// argument order instead.
			results := make([]revParseResult, len(args))
			errs := make([]error, len(args))
			var g errgroup.Group
			g.SetLimit(runtime.GOMAXPROCS(0))
			for i, spec := range args {
				g.Go(func() error {
					out, err := revspec.ResolveRepo(r, spec, opts)
					if err == nil {
						results[i], err = newRevParseResult(r, spec, out)
					}
					errs[i] = err
					return err
				})
			}
			if g.Wait() != nil {
				for _, err := range errs {
					if err != nil {
						return err
					}
				}
			}

			w := cmd.OutOrStdout()
			switch format {
			case "json":
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			case "yaml":
				enc := yaml.NewEncoder(w)
				enc.SetIndent(2)
				if err := enc.Encode(results); err != nil {
					return err
				}
				return enc.Close()
			default:
				for _, res := range results {
					writeRevParseText(w, res)
				}
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json or yaml")
	cmd.Flags().StringVar(&hints.refsHint, "refs-hint", "", "what a hex name that is also a ref means: prefer-object-on-full-length, prefer-object, prefer-ref or fail")
	cmd.Flags().StringVar(&hints.objectKindHint, "object-kind-hint", "", "object kind used to narrow ambiguous short hashes: commit, commit-ish, tree, tree-ish or blob")

	return cmd
}

func newRevParseResult(r *repo.Repo, spec string, out *revspec.Spec) (revParseResult, error) {
	res := revParseResult{
		Spec: spec,
		Kind: out.Kind.String(),
		From: string(out.From),
		To:   string(out.To),
	}
	if out.FromRef != nil {
		res.FromRef = out.FromRef.Name
	}
	if out.ToRef != nil {
		res.ToRef = out.ToRef.Name
	}
	if out.Kind == parse.ReachableToMergeBase && out.From != "" && out.To != "" {
		from, err := peel(r, out.From, object.TypeCommit)
		if err != nil {
			return res, fmt.Errorf("rev-parse %s: %w", spec, err)
		}
		to, err := peel(r, out.To, object.TypeCommit)
		if err != nil {
			return res, fmt.Errorf("rev-parse %s: %w", spec, err)
		}
		base, ok, err := r.MergeBase(from, to)
		if err != nil {
			return res, fmt.Errorf("rev-parse %s: %w", spec, err)
		}
		if ok {
			res.MergeBase = string(base)
		}
	}
	return res, nil
}

func writeRevParseText(w io.Writer, res revParseResult) {
	switch res.Kind {
	case parse.ExcludeReachable.String():
		fmt.Fprintf(w, "^%s\n", res.From)
	case parse.RangeBetween.String():
		fmt.Fprintf(w, "%s\n^%s\n", res.To, res.From)
	case parse.ReachableToMergeBase.String():
		fmt.Fprintf(w, "%s\n%s\n", res.To, res.From)
		if res.MergeBase != "" {
			fmt.Fprintf(w, "^%s\n", res.MergeBase)
		}
	default:
		fmt.Fprintln(w, res.From)
	}
}
