package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/odvcencio/kiwi/pkg/repo"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show working tree status",
		Long: `Show working tree status against the staging index.

Until something has been staged there is nothing to compare against, so
status only prints a notice. Use "kiwi add" first.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !r.HasIndex() {
				fmt.Fprintln(out, "no files have been staged yet")
				return nil
			}

			st, err := r.Status()
			if err != nil {
				return err
			}
			if st.Clean() {
				fmt.Fprintln(out, "nothing to report, working tree matches the index")
				return nil
			}

			printStatusSection(out, r, "modified:", "~ ", st.Modified)
			printStatusSection(out, r, "deleted:", "- ", st.Deleted)
			printStatusSection(out, r, "untracked:", "", st.Untracked)
			return nil
		},
	}
}

func printStatusSection(out io.Writer, r *repo.Repo, title, marker string, paths []string) {
	if len(paths) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, title)
	for _, p := range paths {
		fmt.Fprintf(out, "  %s%s\n", marker, r.RelPath(p))
	}
}
