package main

import (
	"fmt"
	"io"
	"os"

	"github.com/odvcencio/gotrev/pkg/object"
	"github.com/odvcencio/gotrev/pkg/repo"
	"github.com/spf13/cobra"
)

func newHashObjectCmd() *cobra.Command {
	var objType string
	var write bool
	var stdin bool

	cmd := &cobra.Command{
		Use:   "hash-object [-t type] [-w] (--stdin | <file>)",
		Short: "Compute an object id and optionally store the object",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ := object.ObjectType(objType)
			if !typ.Valid() {
				return fmt.Errorf("hash-object: unknown object type %q", objType)
			}

			var data []byte
			var err error
			switch {
			case stdin && len(args) == 0:
				data, err = io.ReadAll(cmd.InOrStdin())
			case !stdin && len(args) == 1:
				data, err = os.ReadFile(args[0])
			default:
				return fmt.Errorf("hash-object: pass exactly one of --stdin or a file")
			}
			if err != nil {
				return fmt.Errorf("hash-object: read input: %w", err)
			}
			if err := validateObjectData(typ, data); err != nil {
				return fmt.Errorf("hash-object: %w", err)
			}

			h := object.HashObject(typ, data)
			if write {
				r, err := repo.Open(".")
				if err != nil {
					return err
				}
				if h, err = r.Store.Write(typ, data); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}

	cmd.Flags().StringVarP(&objType, "type", "t", string(object.TypeBlob), "object type: blob, tree, commit or tag")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the object into the object store")
	cmd.Flags().BoolVar(&stdin, "stdin", false, "read the object from standard input")

	return cmd
}

// validateObjectData rejects payloads that would not decode as typ.
func validateObjectData(typ object.ObjectType, data []byte) error {
	var err error
	switch typ {
	case object.TypeTree:
		_, err = object.UnmarshalTree(data)
	case object.TypeCommit:
		_, err = object.UnmarshalCommit(data)
	case object.TypeTag:
		_, err = object.UnmarshalTag(data)
	}
	if err != nil {
		return fmt.Errorf("invalid %s: %w", typ, err)
	}
	return nil
}
