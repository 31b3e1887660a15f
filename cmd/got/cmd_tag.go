package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/odvcencio/gotrev/pkg/object"
	"github.com/odvcencio/gotrev/pkg/repo"
	"github.com/odvcencio/gotrev/pkg/revspec"
	"github.com/spf13/cobra"
)

func newTagCmd() *cobra.Command {
	var deleteTag string
	var force bool
	var showHash bool
	var annotate bool
	var message string
	var tagger string

	cmd := &cobra.Command{
		Use:   "tag [name] [target]",
		Short: "List, create, or delete tags",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			if strings.TrimSpace(deleteTag) != "" {
				if len(args) > 0 {
					return fmt.Errorf("tag --delete does not accept positional args")
				}
				return r.DeleteTag(deleteTag)
			}

			if len(args) == 0 {
				tags, err := r.ListTagsWithHashes()
				if err != nil {
					return err
				}
				names := make([]string, 0, len(tags))
				for name := range tags {
					names = append(names, name)
				}
				sort.Strings(names)

				for _, name := range names {
					if showHash {
						fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", tags[name], name)
					} else {
						fmt.Fprintln(cmd.OutOrStdout(), name)
					}
				}
				return nil
			}

			name := args[0]
			targetSpec := "HEAD"
			if len(args) == 2 {
				targetSpec = args[1]
			}
			var target object.Hash
			if target, err = resolveObject(r, targetSpec, revspec.NoObjectKindHint); err != nil {
				return fmt.Errorf("tag: target: %w", err)
			}

			if !annotate && message == "" {
				return r.CreateTag(name, target, force)
			}
			if strings.TrimSpace(message) == "" {
				return fmt.Errorf("tag: an annotated tag needs a message (-m)")
			}
			if tagger == "" {
				tagger = defaultUser()
			}
			h, err := r.CreateAnnotatedTag(name, target, tagger, message, force)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}

	cmd.Flags().StringVarP(&deleteTag, "delete", "d", "", "delete the named tag")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing tag")
	cmd.Flags().BoolVar(&showHash, "show-hash", false, "show tag target hashes when listing")
	cmd.Flags().BoolVarP(&annotate, "annotate", "a", false, "create an annotated tag object")
	cmd.Flags().StringVarP(&message, "message", "m", "", "annotated tag message (implies -a)")
	cmd.Flags().StringVar(&tagger, "tagger", "", "override tagger (default: $USER)")

	return cmd
}
