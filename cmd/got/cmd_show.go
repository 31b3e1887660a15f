package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/odvcencio/gotrev/pkg/object"
	"github.com/odvcencio/gotrev/pkg/repo"
	"github.com/odvcencio/gotrev/pkg/revspec"
	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [revision]",
		Short: "Show an object: commit metadata and changed files, tag headers, tree listings or blob content",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			target := "HEAD"
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				target = strings.TrimSpace(args[0])
			}

			h, err := resolveObject(r, target, revspec.NoObjectKindHint)
			if err != nil {
				return err
			}
			return showObject(cmd.OutOrStdout(), r, h)
		},
	}
}

func showObject(out io.Writer, r *repo.Repo, h object.Hash) error {
	obj, err := r.FindObject(h)
	if err != nil {
		return err
	}

	switch obj.Type {
	case object.TypeCommit:
		commit, err := obj.Commit()
		if err != nil {
			return fmt.Errorf("show: read commit %s: %w", h, err)
		}
		writeCommitHeader(out, h, "", commit)

		var parentTree object.Hash
		if len(commit.Parents) > 0 {
			parent, err := r.Store.ReadCommit(commit.Parents[0])
			if err != nil {
				return fmt.Errorf("show: read parent: %w", err)
			}
			parentTree = parent.TreeHash
		}
		changes, err := r.DiffTrees(parentTree, commit.TreeHash)
		if err != nil {
			return fmt.Errorf("show: %w", err)
		}
		if len(changes) == 0 {
			return nil
		}
		fmt.Fprintln(out, "Changes:")
		for _, c := range changes {
			fmt.Fprintf(out, "  %s %s\n", c.Status, c.Path)
		}
		return nil

	case object.TypeTag:
		tag, err := obj.Tag()
		if err != nil {
			return fmt.Errorf("show: read tag %s: %w", h, err)
		}
		fmt.Fprintf(out, "tag %s\n", tag.Name)
		fmt.Fprintf(out, "Tagger: %s\n", tag.Tagger)
		fmt.Fprintf(out, "Date:   %s\n", time.Unix(tag.Timestamp, 0).Format("2006-01-02 15:04:05"))
		fmt.Fprintln(out)
		fmt.Fprintln(out, strings.TrimRight(tag.Message, "\n"))
		fmt.Fprintln(out)
		return showObject(out, r, tag.TargetHash)

	case object.TypeTree:
		tree, err := r.Store.ReadTree(h)
		if err != nil {
			return fmt.Errorf("show: read tree %s: %w", h, err)
		}
		fmt.Fprintf(out, "tree %s\n\n", h)
		for _, e := range tree.Entries {
			if e.IsDir {
				fmt.Fprintf(out, "%s/\n", e.Name)
			} else {
				fmt.Fprintln(out, e.Name)
			}
		}
		return nil

	default:
		_, err := out.Write(obj.Data)
		return err
	}
}

// writeCommitHeader prints a commit the way log does in its long form.
func writeCommitHeader(out io.Writer, h object.Hash, decoration string, c *object.CommitObj) {
	if decoration != "" {
		fmt.Fprintf(out, "commit %s %s\n", h, decoration)
	} else {
		fmt.Fprintf(out, "commit %s\n", h)
	}
	if len(c.Parents) > 1 {
		parents := make([]string, len(c.Parents))
		for i, p := range c.Parents {
			parents[i] = p.Short(8)
		}
		fmt.Fprintf(out, "Merge:  %s\n", strings.Join(parents, " "))
	}
	fmt.Fprintf(out, "Author: %s\n", c.Author)
	fmt.Fprintf(out, "Date:   %s\n", time.Unix(c.Timestamp, 0).Format("2006-01-02 15:04:05"))
	fmt.Fprintln(out)
	for _, line := range strings.Split(strings.TrimRight(c.Message, "\n"), "\n") {
		fmt.Fprintf(out, "    %s\n", line)
	}
	fmt.Fprintln(out)
}
