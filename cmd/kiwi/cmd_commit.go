package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odvcencio/kiwi/pkg/kiwi"
)

func newCommitCmd() *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "commit [message...]",
		Short: "Snapshot the object store and staging index",
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				message = strings.Join(args, " ")
			}

			r, err := openRepo(cmd)
			if err != nil {
				return err
			}

			meta, err := r.Commit(message)
			if kiwi.Is(err, kiwi.ErrInvalidCommand) {
				// Nothing was written; warn and leave the exit status alone.
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s (%d object(s))\n", meta.ID.Short(), meta.Message, meta.Objects)
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message (default: the positional arguments)")

	return cmd
}
