package main

import (
	"github.com/spf13/cobra"
	"github.com/warpfork/go-errcat"

	"github.com/odvcencio/kiwi/pkg/kiwi"
	"github.com/odvcencio/kiwi/pkg/logging"
	"github.com/odvcencio/kiwi/pkg/repo"
)

// openRepo opens the repository containing the working directory and
// attaches a logger writing to the command's stderr, tagged with the
// subcommand name. The --log-level and
// --log-format flags override the repository config.
func openRepo(cmd *cobra.Command) (*repo.Repo, error) {
	r, err := repo.Open(".")
	if err != nil {
		return nil, err
	}

	level, format := r.Config.Log.Level, r.Config.Log.Format
	if f := cmd.Flag("log-level"); f != nil && f.Changed {
		level = f.Value.String()
	}
	if f := cmd.Flag("log-format"); f != nil && f.Changed {
		format = f.Value.String()
	}
	logger, err := logging.New(cmd.ErrOrStderr(), format, level)
	if err != nil {
		return nil, errcat.Errorf(kiwi.ErrInvalidCommand, "%s", err)
	}
	r.Logger = logger.With("cmd", cmd.Name())
	return r, nil
}
