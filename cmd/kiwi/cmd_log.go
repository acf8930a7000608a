package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/kiwi/pkg/object"
)

const logDateLayout = "2006-01-02 15:04:05 MST"

func newLogCmd() *cobra.Command {
	var oneline bool
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show commit history, newest first",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}

			commits, err := r.Log()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(commits) == 0 {
				fmt.Fprintln(out, "no commits yet")
				return nil
			}
			if limit > 0 && len(commits) > limit {
				commits = commits[:limit]
			}

			head, err := r.Head()
			if err != nil {
				r.Logger.Warn("log: HEAD unreadable", "err", err)
			}

			decorated := false
			for _, c := range commits {
				// Identical object sets share an id; only the newest one is HEAD.
				decoration := ""
				if !decorated {
					decoration = buildDecoration(c.ID, head)
					decorated = decoration != ""
				}

				if oneline {
					if decoration != "" {
						fmt.Fprintf(out, "%s %s %s\n", c.ID.Short(), decoration, c.Message)
					} else {
						fmt.Fprintf(out, "%s %s\n", c.ID.Short(), c.Message)
					}
					continue
				}
				if decoration != "" {
					fmt.Fprintf(out, "commit %s %s\n", c.ID, decoration)
				} else {
					fmt.Fprintf(out, "commit %s\n", c.ID)
				}
				fmt.Fprintf(out, "Date:    %s\n", c.Timestamp.UTC().Format(logDateLayout))
				fmt.Fprintf(out, "Objects: %d\n", c.Objects)
				fmt.Fprintln(out)
				fmt.Fprintf(out, "    %s\n", c.Message)
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&oneline, "oneline", false, "compact one-line format")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of commits to show (0 for all)")

	return cmd
}

// buildDecoration returns "(HEAD)" if id is the commit HEAD records, or ""
// otherwise.
func buildDecoration(id, head object.Hash) string {
	if head == "" || id != head {
		return ""
	}
	return "(HEAD)"
}
