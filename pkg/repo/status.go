package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// StatusReport classifies working tree files against the staging index.
// All paths are normalized. Deleted follows ledger order; Modified and
// Untracked follow scan order.
type StatusReport struct {
	Modified  []string // staged, content changed on disk
	Untracked []string // on disk, never staged
	Deleted   []string // staged, gone from disk
}

// Clean reports whether the working tree matches the index.
func (s *StatusReport) Clean() bool {
	return len(s.Modified) == 0 && len(s.Untracked) == 0 && len(s.Deleted) == 0
}

// Status computes the working tree status for the repository.
//
// Algorithm:
//  1. Read the staging index.
//  2. Every indexed path missing from disk is deleted.
//  3. Walk the working tree (same exclusions as StageAll) and hash each
//     file: not indexed is untracked, indexed with another digest is
//     modified, matching digest is unchanged and not reported.
//
// A file that cannot be hashed is logged and skipped.
func (r *Repo) Status() (*StatusReport, error) {
	if err := r.ensureInitialized("status"); err != nil {
		return nil, err
	}
	ix, err := r.ReadIndex()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	report := &StatusReport{}

	for path := range ix.All() {
		_, err := os.Stat(filepath.FromSlash(path))
		switch {
		case err == nil:
		case errors.Is(err, fs.ErrNotExist):
			report.Deleted = append(report.Deleted, path)
		default:
			r.logger().Warn("status: stat failed", "path", path, "err", err)
		}
	}

	for entry, err := range r.WorktreeEntries() {
		if err != nil {
			r.logger().Warn("status: skipping file", "path", entry.Path, "err", err)
			continue
		}
		staged, ok := ix.Get(entry.Path)
		switch {
		case !ok:
			report.Untracked = append(report.Untracked, entry.Path)
		case staged != entry.Digest:
			report.Modified = append(report.Modified, entry.Path)
		}
	}

	return report, nil
}
