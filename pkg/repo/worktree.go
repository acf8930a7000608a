package repo

import (
	"io/fs"
	"iter"
	"path/filepath"
	"strings"

	"github.com/odvcencio/kiwi/pkg/object"
)

// WorktreeEntry is a regular file found in the working tree together with
// the digest of its current content.
type WorktreeEntry struct {
	Path   string // normalized path
	Digest object.Hash
}

// excluded reports whether a directory entry is skipped by every working
// tree scan: the control directory, anything hidden, and anything matched
// by the ignore rules.
func (r *Repo) excluded(rules *IgnoreRules, path string, d fs.DirEntry) bool {
	name := d.Name()
	if name == ControlDirName {
		return true
	}
	prefix := "."
	if r.Config != nil {
		prefix = r.Config.Core.HiddenPrefix
	}
	if prefix != "" && strings.HasPrefix(name, prefix) {
		return true
	}
	if rules.Len() == 0 {
		return false
	}
	rel, err := filepath.Rel(r.RootDir, path)
	if err != nil {
		return false
	}
	return rules.Ignored(filepath.ToSlash(rel), d.IsDir())
}

// WorktreeFiles yields the normalized path of every regular file under the
// repository root in lexical order. Symlinks and other special files are
// not yielded. A directory that cannot be read is reported with its error
// and skipped. Each range over the sequence re-reads the ignore file and
// walks the tree afresh.
func (r *Repo) WorktreeFiles() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		rules, err := r.LoadIgnoreRules()
		if err != nil {
			r.logger().Warn("scan: ignore rules not applied", "err", err)
		}
		_ = filepath.WalkDir(r.RootDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if !yield(filepath.ToSlash(path), err) {
					return filepath.SkipAll
				}
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if path == r.RootDir {
				return nil
			}
			if r.excluded(rules, path, d) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			// RootDir is symlink-resolved and WalkDir does not follow
			// links, so walked paths are already canonical.
			if !yield(filepath.ToSlash(path), nil) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// WorktreeEntries is WorktreeFiles with each file's content digest. A file
// that cannot be hashed is yielded with its error and an empty digest.
func (r *Repo) WorktreeEntries() iter.Seq2[WorktreeEntry, error] {
	return func(yield func(WorktreeEntry, error) bool) {
		for path, err := range r.WorktreeFiles() {
			if err != nil {
				if !yield(WorktreeEntry{Path: path}, err) {
					return
				}
				continue
			}
			h, err := object.HashFile(filepath.FromSlash(path))
			if !yield(WorktreeEntry{Path: path, Digest: h}, err) {
				return
			}
		}
	}
}
