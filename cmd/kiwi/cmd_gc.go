package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGcCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gc",
		Short: "Drop deleted files from the index and remove unreferenced objects",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}

			summary, err := r.GC()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, p := range summary.Pruned {
				fmt.Fprintf(out, "  - %s (deleted)\n", r.RelPath(p))
			}
			if summary.RemovedObjects == 0 && len(summary.Pruned) == 0 {
				fmt.Fprintln(out, "nothing to collect")
				return nil
			}

			fmt.Fprintf(
				out,
				"removed %d object(s), kept %d, pruned %d index entr(ies)\n",
				summary.RemovedObjects,
				summary.KeptObjects,
				len(summary.Pruned),
			)
			return nil
		},
	}
}
