package repo

import (
	"os"
	"path/filepath"
	"time"

	"github.com/odvcencio/kiwi/pkg/kiwi"
	"github.com/odvcencio/kiwi/pkg/logging"
	"github.com/odvcencio/kiwi/pkg/object"
)

// ControlDirName is the name of the control directory at the repository root.
const ControlDirName = ".kiwi"

// Repo represents an opened kiwi repository. RootDir is always absolute and
// symlink-resolved, so paths found by walking it are already normalized.
type Repo struct {
	RootDir string        // working directory root
	KiwiDir string        // .kiwi/ directory
	Store   *object.Store // content-addressed object store
	Config  *Config

	// Logger receives warnings for non-fatal failures. Nil discards them.
	Logger logging.Logger

	now func() time.Time
}

func newRepo(root string, cfg *Config) *Repo {
	kiwiDir := filepath.Join(root, ControlDirName)
	return &Repo{
		RootDir: root,
		KiwiDir: kiwiDir,
		Store:   object.NewStore(kiwiDir),
		Config:  cfg,
	}
}

func (r *Repo) logger() logging.Logger {
	if r.Logger == nil {
		return logging.Nop()
	}
	return r.Logger
}

func (r *Repo) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

func (r *Repo) indexDir() string   { return filepath.Join(r.KiwiDir, "index") }
func (r *Repo) commitsDir() string { return filepath.Join(r.KiwiDir, "commits") }
func (r *Repo) headPath() string   { return filepath.Join(r.KiwiDir, "HEAD") }

// ensureInitialized fails when the control directory has gone away since
// the repository was opened.
func (r *Repo) ensureInitialized(op string) error {
	info, err := os.Stat(r.KiwiDir)
	if err != nil {
		return kiwi.E(kiwi.ErrRepoNotInitialized, op, err).WithPath(r.RootDir)
	}
	if !info.IsDir() {
		return kiwi.E(kiwi.ErrRepoNotInitialized, op, nil).WithPath(r.RootDir).WithMsg("%s is not a directory", ControlDirName)
	}
	return nil
}
