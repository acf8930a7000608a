package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/odvcencio/kiwi/pkg/kiwi"
)

// Init creates a new kiwi repository at path. It creates the .kiwi/
// directory structure: HEAD, config.toml, objects/, index/ and commits/.
// Returns an ErrRepoAlreadyExists error if a .kiwi/ directory already exists.
// Any other failure leaves the repository unusable and is reported as
// ErrRepoNotInitialized.
func Init(path string) (*Repo, error) {
	fail := func(err error) *kiwi.Error {
		return kiwi.E(kiwi.ErrRepoNotInitialized, "init", err)
	}

	root, err := resolveRoot(path)
	if err != nil {
		return nil, fail(err)
	}
	kiwiDir := filepath.Join(root, ControlDirName)

	// Fail if .kiwi/ already exists.
	if _, err := os.Lstat(kiwiDir); err == nil {
		return nil, kiwi.E(kiwi.ErrRepoAlreadyExists, "init", nil).WithPath(kiwiDir).WithMsg("repository already exists")
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fail(err).WithPath(kiwiDir)
	}

	dirs := []string{
		filepath.Join(kiwiDir, "objects"),
		filepath.Join(kiwiDir, "index"),
		filepath.Join(kiwiDir, "commits"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fail(err).WithPath(d).WithMsg("mkdir")
		}
	}

	// HEAD is a marker; commit rewrites it with the newest commit id.
	if err := os.WriteFile(filepath.Join(kiwiDir, "HEAD"), nil, 0o644); err != nil {
		return nil, fail(err).WithMsg("write HEAD")
	}

	r := newRepo(root, DefaultConfig())
	if err := r.WriteConfig(r.Config); err != nil {
		return nil, fail(err).WithPath(r.configPath())
	}
	return r, nil
}

// Open searches upward from path for a .kiwi/ directory and opens the
// repository. Returns an ErrRepoNotInitialized error if none is found.
func Open(path string) (*Repo, error) {
	start, err := resolveRoot(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	cur := start
	for {
		info, err := os.Stat(filepath.Join(cur, ControlDirName))
		if err == nil && info.IsDir() {
			r := newRepo(cur, nil)
			cfg, err := r.ReadConfig()
			if err != nil {
				return nil, fmt.Errorf("open: %w", err)
			}
			r.Config = cfg
			return r, nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			// Reached filesystem root without finding .kiwi/.
			return nil, kiwi.E(kiwi.ErrRepoNotInitialized, "open", nil).
				WithPath(start).
				WithMsg("not a kiwi repository (or any parent up to %s)", cur)
		}
		cur = parent
	}
}

// resolveRoot makes path absolute and resolves symlinks where possible.
func resolveRoot(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("abs path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return abs, nil
}
