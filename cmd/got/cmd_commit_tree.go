package main

import (
	"fmt"
	"strings"

	"github.com/odvcencio/gotrev/pkg/object"
	"github.com/odvcencio/gotrev/pkg/repo"
	"github.com/spf13/cobra"
)

func newCommitTreeCmd() *cobra.Command {
	var parents []string
	var message string
	var author string

	cmd := &cobra.Command{
		Use:   "commit-tree <tree-ish> [-p <parent>]... -m <message>",
		Short: "Create a commit object for a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(message) == "" {
				return fmt.Errorf("commit-tree: a message is required (-m)")
			}
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			tree, err := resolvePeeled(r, args[0], object.TypeTree)
			if err != nil {
				return fmt.Errorf("commit-tree: %w", err)
			}
			parentIDs := make([]object.Hash, 0, len(parents))
			for _, p := range parents {
				id, err := resolveCommit(r, p)
				if err != nil {
					return fmt.Errorf("commit-tree: parent: %w", err)
				}
				parentIDs = append(parentIDs, id)
			}
			if author == "" {
				author = defaultUser()
			}

			h, err := r.CommitTree(repo.CommitTreeOptions{
				Tree:    tree,
				Parents: parentIDs,
				Author:  author,
				Message: message,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&parents, "parent", "p", nil, "parent commit (repeatable)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().StringVar(&author, "author", "", "override author (default: $USER)")

	return cmd
}
