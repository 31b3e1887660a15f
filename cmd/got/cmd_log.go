package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/odvcencio/gotrev/pkg/object"
	"github.com/odvcencio/gotrev/pkg/repo"
	"github.com/spf13/cobra"
)

func newLogCmd() *cobra.Command {
	var oneline bool
	var limit int

	cmd := &cobra.Command{
		Use:   "log [revision]",
		Short: "Show commit history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			start := "HEAD"
			if len(args) == 1 {
				start = args[0]
			}
			startHash, err := resolveCommit(r, start)
			if err != nil {
				if len(args) == 0 && errors.Is(err, repo.ErrReferenceNotFound) {
					fmt.Fprintln(out, "no commits yet")
					return nil
				}
				return err
			}

			hashes, commits, err := r.Log(startHash, limit)
			if err != nil {
				return err
			}

			// Only the commit HEAD points at is decorated.
			headHash, _ := r.ResolveRef("HEAD")
			branchName := ""
			if head, err := r.Head(); err == nil && strings.HasPrefix(head, "refs/heads/") {
				branchName = strings.TrimPrefix(head, "refs/heads/")
			}

			for i, c := range commits {
				h := hashes[i]
				decoration := buildDecoration(h, headHash, branchName)

				if oneline {
					if decoration != "" {
						fmt.Fprintf(out, "%s %s %s\n", h.Short(8), decoration, c.Subject())
					} else {
						fmt.Fprintf(out, "%s %s\n", h.Short(8), c.Subject())
					}
					continue
				}
				writeCommitHeader(out, h, decoration, c)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&oneline, "oneline", false, "compact one-line format")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of commits to show")

	return cmd
}

// buildDecoration returns a string like "(HEAD -> main)" if the commit is
// the current HEAD, or "" otherwise.
func buildDecoration(commitHash, headHash object.Hash, branchName string) string {
	if commitHash != headHash {
		return ""
	}
	if branchName != "" {
		return "(HEAD -> " + branchName + ")"
	}
	return "(HEAD)"
}
