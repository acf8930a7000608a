package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/warpfork/go-errcat"

	"github.com/odvcencio/kiwi/pkg/kiwi"
)

var version = "0.1.0-dev"

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(reportError(root.ErrOrStderr(), err))
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kiwi",
		Short:         "Minimal content-addressed version control",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("log-level", "", "diagnostic log level: debug, info, warn, error (default from config)")
	root.PersistentFlags().String("log-format", "", "diagnostic log format: text or json (default from config)")
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errcat.Errorf(kiwi.ErrInvalidCommand, "%s", err)
	})

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newAddCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newCommitCmd())
	root.AddCommand(newLogCmd())
	root.AddCommand(newGcCmd())
	root.AddCommand(newVerifyCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  usageArgs(cobra.NoArgs),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kiwi %s\n", version)
		},
	}
}

// exitCodes maps error categories to process exit codes. Uncategorized
// failures exit 1.
var exitCodes = map[kiwi.ErrorCategory]int{
	kiwi.ErrInvalidCommand:     2,
	kiwi.ErrRepoNotInitialized: 3,
	kiwi.ErrRepoAlreadyExists:  4,
	kiwi.ErrStaging:            5,
	kiwi.ErrObjectWrite:        6,
	kiwi.ErrIndexCorrupted:     7,
}

// reportError prints err as "kiwi: <category>: <message>" and returns the
// exit code for it.
func reportError(w io.Writer, err error) int {
	cat := kiwi.CategoryOf(err)
	if cat == "" {
		fmt.Fprintf(w, "kiwi: %v\n", err)
		return 1
	}
	fmt.Fprintf(w, "kiwi: %s: %v\n", cat.Label(), err)
	if code, ok := exitCodes[cat]; ok {
		return code
	}
	return 1
}

// usageArgs tags positional-argument errors as invalid commands.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return errcat.Errorf(kiwi.ErrInvalidCommand, "%s", err)
		}
		return nil
	}
}
