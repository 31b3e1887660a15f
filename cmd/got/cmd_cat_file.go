package main

import (
	"fmt"
	"io"

	"github.com/odvcencio/gotrev/pkg/object"
	"github.com/odvcencio/gotrev/pkg/repo"
	"github.com/odvcencio/gotrev/pkg/revspec"
	"github.com/spf13/cobra"
)

func newCatFileCmd() *cobra.Command {
	var showType bool
	var showSize bool
	var pretty bool

	cmd := &cobra.Command{
		Use:   "cat-file (-t | -s | -p) <revision>",
		Short: "Show the type, size or content of an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			modes := 0
			for _, set := range []bool{showType, showSize, pretty} {
				if set {
					modes++
				}
			}
			if modes != 1 {
				return fmt.Errorf("cat-file: pass exactly one of -t, -s or -p")
			}

			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			id, err := resolveObject(r, args[0], revspec.NoObjectKindHint)
			if err != nil {
				return err
			}
			obj, err := r.FindObject(id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case showType:
				fmt.Fprintln(out, obj.Type)
			case showSize:
				fmt.Fprintln(out, len(obj.Data))
			default:
				return printObject(out, obj)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showType, "type", "t", false, "show the object type")
	cmd.Flags().BoolVarP(&showSize, "size", "s", false, "show the object size in bytes")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "pretty-print the object content")

	return cmd
}

// printObject writes obj in its human readable form. Trees are listed one
// entry per line, everything else is printed as stored.
func printObject(out io.Writer, obj *object.Object) error {
	if obj.Type != object.TypeTree {
		_, err := out.Write(obj.Data)
		return err
	}
	tree, err := object.UnmarshalTree(obj.Data)
	if err != nil {
		return err
	}
	for _, e := range tree.Entries {
		kind := object.TypeBlob
		if e.IsDir {
			kind = object.TypeTree
		}
		mode := e.Mode
		if mode == "" {
			mode = object.TreeModeFile
			if e.IsDir {
				mode = object.TreeModeDir
			}
		}
		fmt.Fprintf(out, "%s %s %s\t%s\n", mode, kind, e.ID(), e.Name)
	}
	return nil
}
