package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/odvcencio/kiwi/pkg/kiwi"
	"github.com/odvcencio/kiwi/pkg/object"
)

// Log lists every commit, newest first.
//
// Commit directory names are split into exactly three fields (id, message
// slug, timestamp); anything else is not a commit and is skipped. Commits
// are ordered by their parsed timestamp, not by the raw name, which starts
// with the id. When commit.toml is present its full message replaces the
// slug.
func (r *Repo) Log() ([]CommitMeta, error) {
	if err := r.ensureInitialized("log"); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(r.commitsDir())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, kiwi.E(kiwi.ErrObjectWrite, "log", err).WithPath(r.commitsDir())
	}

	var commits []CommitMeta
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		meta, ok := ParseCommitName(e.Name())
		if !ok {
			r.logger().Debug("log: skipping non-commit entry", "name", e.Name())
			continue
		}

		rec, err := readCommitMeta(filepath.Join(r.commitsDir(), e.Name(), commitMetaFile))
		switch {
		case err == nil && rec.ID == meta.ID:
			meta.Message = rec.Message
			meta.Objects = rec.Objects
		case err == nil:
			r.logger().Warn("log: commit.toml id mismatch", "name", e.Name(), "id", string(rec.ID))
		case !errors.Is(err, fs.ErrNotExist):
			r.logger().Warn("log: unreadable commit.toml", "name", e.Name(), "err", err)
		}
		commits = append(commits, meta)
	}

	sort.SliceStable(commits, func(i, j int) bool {
		ti, tj := commits[i].Timestamp, commits[j].Timestamp
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return commits[i].Name > commits[j].Name
	})
	return commits, nil
}

// ParseCommitName splits a commit directory name into its id, message and
// timestamp. It reports false for names that are not commits.
func ParseCommitName(name string) (CommitMeta, bool) {
	fields := strings.Fields(name)
	if len(fields) != 3 {
		return CommitMeta{}, false
	}
	ts, err := time.Parse(CommitTimeLayout, fields[2])
	if err != nil {
		return CommitMeta{}, false
	}
	return CommitMeta{
		ID:        object.Hash(fields[0]),
		Message:   fields[1],
		Timestamp: ts,
		Name:      name,
	}, true
}

// Head returns the id recorded by the most recent commit, or "" before the
// first commit.
func (r *Repo) Head() (object.Hash, error) {
	data, err := os.ReadFile(r.headPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read HEAD: %w", err)
	}
	h := object.Hash(strings.TrimSpace(string(data)))
	if h != "" && !h.Valid() {
		return "", fmt.Errorf("read HEAD: invalid id %q", string(h))
	}
	return h, nil
}
