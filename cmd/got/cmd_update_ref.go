package main

import (
	"fmt"

	"github.com/odvcencio/gotrev/pkg/repo"
	"github.com/odvcencio/gotrev/pkg/revspec"
	"github.com/spf13/cobra"
)

func newUpdateRefCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update-ref <ref> <new-revision> [<old-revision>]",
		Short: "Point a reference at an object, optionally only if it still has an expected value",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			newID, err := resolveObject(r, args[1], revspec.NoObjectKindHint)
			if err != nil {
				return fmt.Errorf("update-ref: %w", err)
			}
			if len(args) == 2 {
				return r.UpdateRef(args[0], newID)
			}
			oldID, err := resolveObject(r, args[2], revspec.NoObjectKindHint)
			if err != nil {
				return fmt.Errorf("update-ref: old value: %w", err)
			}
			return r.UpdateRefCAS(args[0], newID, oldID)
		},
	}
}
