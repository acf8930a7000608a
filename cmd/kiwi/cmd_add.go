package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/warpfork/go-errcat"

	"github.com/odvcencio/kiwi/pkg/kiwi"
	"github.com/odvcencio/kiwi/pkg/repo"
)

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <files...>",
		Short: "Stage files for the next commit",
		Long: `Stage files for the next commit.

"kiwi add ." stages every file in the working tree, from whichever directory
it is run. A single directory argument stages every file below it. Index
entries for files deleted from disk are dropped on every add.`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}

			// Paths on the command line are relative to the working
			// directory, not the repository root.
			paths := make([]string, 0, len(args))
			for _, a := range args {
				abs, err := filepath.Abs(a)
				if err != nil {
					return fmt.Errorf("resolve %q: %w", a, err)
				}
				paths = append(paths, abs)
			}

			var report *repo.StageReport
			switch {
			case len(args) == 1 && filepath.Clean(args[0]) == ".":
				report, err = r.StageAll()
			case len(paths) == 1 && isDir(paths[0]):
				report, err = r.StageDir(paths[0])
			default:
				report, err = r.Stage(paths)
			}
			if report != nil {
				printStageReport(cmd, r, report)
			}
			if err != nil {
				return err
			}
			if n := report.Failed(); n > 0 {
				return errcat.Errorf(kiwi.ErrStaging, "%d file(s) could not be staged", n)
			}
			return nil
		},
	}
}

func printStageReport(cmd *cobra.Command, r *repo.Repo, report *repo.StageReport) {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	for _, p := range report.Pruned {
		fmt.Fprintf(out, "  - %s (deleted)\n", r.RelPath(p))
	}
	for _, res := range report.Staged {
		if res.Err != nil {
			fmt.Fprintf(errOut, "error: %s: %v\n", r.RelPath(res.Path), res.Err)
			continue
		}
		fmt.Fprintf(out, "  + %s %s\n", r.RelPath(res.Path), res.Digest.Short())
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
