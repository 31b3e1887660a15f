package main

import (
	"fmt"

	"github.com/odvcencio/gotrev/pkg/repo"
	"github.com/spf13/cobra"
)

func newSymbolicRefCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "symbolic-ref <name> [<target-ref>]",
		Short: "Read or set a symbolic reference",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			if len(args) == 2 {
				return r.SetSymbolicRef(args[0], args[1])
			}
			ref, err := r.FindReference(args[0])
			if err != nil {
				return err
			}
			if !ref.IsSymbolic() {
				return fmt.Errorf("symbolic-ref: %s is not a symbolic reference", ref.Name)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ref.Symbolic)
			return nil
		},
	}
}
