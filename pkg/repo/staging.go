package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/kiwi/pkg/kiwi"
	"github.com/odvcencio/kiwi/pkg/object"
)

const indexFileName = "stage.index"

// indexPath returns the filesystem path to the staging ledger.
func (r *Repo) indexPath() string {
	return filepath.Join(r.indexDir(), indexFileName)
}

// HasIndex reports whether anything has ever been staged.
func (r *Repo) HasIndex() bool {
	_, err := os.Stat(r.indexPath())
	return err == nil
}

// ReadIndex loads the staging ledger. If the file does not exist, an empty
// Index is returned (no error).
func (r *Repo) ReadIndex() (*Index, error) {
	f, err := os.Open(r.indexPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewIndex(), nil
		}
		return nil, kiwi.E(kiwi.ErrIndexCorrupted, "read index", err).WithPath(r.indexPath())
	}
	defer f.Close()

	ix, err := ReadIndex(f)
	if err != nil {
		return nil, kiwi.E(kiwi.ErrIndexCorrupted, "read index", err).WithPath(r.indexPath())
	}
	return ix, nil
}

// WriteIndex atomically writes the staging ledger.
func (r *Repo) WriteIndex(ix *Index) error {
	fail := func(msg string, err error) error {
		return kiwi.E(kiwi.ErrIndexCorrupted, "write index", err).WithPath(r.indexPath()).WithMsg("%s", msg)
	}

	if err := os.MkdirAll(r.indexDir(), 0o755); err != nil {
		return fail("mkdir", err)
	}

	// Atomic write via temp file + rename.
	tmp, err := os.CreateTemp(r.indexDir(), ".stage-tmp-*")
	if err != nil {
		return fail("tmpfile", err)
	}
	tmpName := tmp.Name()

	if _, err := ix.WriteTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fail("write", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fail("close", err)
	}
	if err := os.Rename(tmpName, r.indexPath()); err != nil {
		os.Remove(tmpName)
		return fail("rename", err)
	}
	return nil
}

// StageResult is the outcome of staging one file.
type StageResult struct {
	Path   string      // normalized path
	Digest object.Hash // set on success
	Err    error       // per-file failure; the batch continues past it
}

// StageReport summarizes a stage invocation.
type StageReport struct {
	Staged []StageResult
	Pruned []string // entries dropped because their file no longer exists
}

// Failed returns the number of files that could not be staged.
func (s *StageReport) Failed() int {
	n := 0
	for _, res := range s.Staged {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// Stage stages the given paths. Relative paths are resolved against the
// repository root. Before staging, entries whose files have been deleted
// are dropped together with their objects.
//
// A file that is missing, a directory, or unreadable is reported in its
// StageResult and does not stop the others. The returned error is reserved
// for failures that make the whole invocation meaningless: the repository
// is gone or the ledger cannot be read or written.
func (r *Repo) Stage(paths []string) (*StageReport, error) {
	ix, report, err := r.beginStage("stage")
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		if err := r.stageOne(ix, report, r.NormalizePath(p)); err != nil {
			return report, err
		}
	}
	return report, nil
}

// StageAll stages every regular file in the working tree, skipping the
// control directory and hidden entries.
func (r *Repo) StageAll() (*StageReport, error) {
	return r.stageTree("stage all", "")
}

// StageDir stages every regular file below dir, applying the same
// exclusions as StageAll. Deleted entries anywhere in the tree are still
// pruned.
func (r *Repo) StageDir(dir string) (*StageReport, error) {
	prefix := r.NormalizePath(dir)
	if prefix == filepath.ToSlash(r.RootDir) {
		return r.StageAll()
	}
	if err := r.checkStageable(filepath.FromSlash(prefix)); err != nil {
		return nil, err
	}
	return r.stageTree("stage dir", prefix+"/")
}

// stageTree stages the working-tree files whose normalized path starts
// with prefix.
func (r *Repo) stageTree(op, prefix string) (*StageReport, error) {
	ix, report, err := r.beginStage(op)
	if err != nil {
		return nil, err
	}
	for path, walkErr := range r.WorktreeFiles() {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		if walkErr != nil {
			report.Staged = append(report.Staged, StageResult{
				Path: path,
				Err:  kiwi.E(kiwi.ErrStaging, "stage", walkErr).WithPath(path),
			})
			continue
		}
		if err := r.stageOne(ix, report, path); err != nil {
			return report, err
		}
	}
	return report, nil
}

func (r *Repo) beginStage(op string) (*Index, *StageReport, error) {
	if err := r.ensureInitialized(op); err != nil {
		return nil, nil, err
	}
	ix, err := r.ReadIndex()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	pruned, err := r.reconcileDeleted(ix)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return ix, &StageReport{Pruned: pruned}, nil
}

// stageOne stages path and records the outcome. Only ledger failures are
// returned.
func (r *Repo) stageOne(ix *Index, report *StageReport, path string) error {
	h, err := r.stageFile(ix, path)
	if err != nil {
		if kiwi.Is(err, kiwi.ErrIndexCorrupted) {
			return err
		}
		report.Staged = append(report.Staged, StageResult{Path: path, Err: err})
		return nil
	}
	report.Staged = append(report.Staged, StageResult{Path: path, Digest: h})
	return nil
}

// stageFile stores the content of the normalized path and records it in
// the index. One object write, one ledger rewrite.
func (r *Repo) stageFile(ix *Index, path string) (object.Hash, error) {
	osPath := filepath.FromSlash(path)
	if err := r.checkStageable(osPath); err != nil {
		return "", err
	}
	if strings.ContainsAny(path, "\n\r") {
		// The ledger is line oriented.
		return "", kiwi.E(kiwi.ErrStaging, "stage", nil).WithPath(path).WithMsg("path contains a line break")
	}

	info, err := os.Stat(osPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", kiwi.E(kiwi.ErrStaging, "stage", err).WithPath(path).WithMsg("file does not exist")
		}
		return "", kiwi.E(kiwi.ErrStaging, "stage", err).WithPath(path)
	}
	if info.IsDir() {
		return "", kiwi.E(kiwi.ErrStaging, "stage", nil).WithPath(path).WithMsg("is a directory")
	}
	if !info.Mode().IsRegular() {
		return "", kiwi.E(kiwi.ErrStaging, "stage", nil).WithPath(path).WithMsg("not a regular file")
	}

	h, err := r.Store.PutFile(osPath)
	if err != nil {
		return "", err
	}
	if err := r.upsert(ix, path, h); err != nil {
		return "", err
	}
	r.logger().Debug("staged", "path", path, "digest", h.Short())
	return h, nil
}

// checkStageable rejects paths outside the working tree or inside the
// control directory.
func (r *Repo) checkStageable(osPath string) error {
	rel, err := filepath.Rel(r.RootDir, osPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return kiwi.E(kiwi.ErrStaging, "stage", err).WithPath(filepath.ToSlash(osPath)).WithMsg("outside repository %s", r.RootDir)
	}
	if rel == ControlDirName || strings.HasPrefix(rel, ControlDirName+string(filepath.Separator)) {
		return kiwi.E(kiwi.ErrStaging, "stage", nil).WithPath(filepath.ToSlash(osPath)).WithMsg("inside %s", ControlDirName)
	}
	return nil
}

// upsert records h for path and persists the ledger. If path previously
// held a different digest, the superseded object is released. If the
// ledger cannot be written, h is released instead so no object is left
// without an entry.
func (r *Repo) upsert(ix *Index, path string, h object.Hash) error {
	prev, existed := ix.Set(path, h)
	if err := r.WriteIndex(ix); err != nil {
		// Keep memory in line with disk.
		if existed {
			ix.Set(path, prev)
		} else {
			ix.Delete(path)
		}
		r.release(ix, h)
		return err
	}
	if existed && prev != h {
		r.release(ix, prev)
	}
	return nil
}

// reconcileDeleted drops every entry whose file no longer exists and
// releases the objects only those entries referenced. It returns the
// dropped paths in ledger order.
func (r *Repo) reconcileDeleted(ix *Index) ([]string, error) {
	var gone []string
	for path := range ix.All() {
		_, err := os.Stat(filepath.FromSlash(path))
		switch {
		case err == nil:
		case errors.Is(err, fs.ErrNotExist):
			gone = append(gone, path)
		default:
			r.logger().Warn("reconcile: stat failed, keeping entry", "path", path, "err", err)
		}
	}
	if len(gone) == 0 {
		return nil, nil
	}

	var released []object.Hash
	seen := make(map[object.Hash]bool)
	for _, path := range gone {
		h, _ := ix.Delete(path)
		if !seen[h] {
			seen[h] = true
			released = append(released, h)
		}
	}
	if err := r.WriteIndex(ix); err != nil {
		return nil, err
	}
	for _, h := range released {
		r.release(ix, h)
	}
	for _, path := range gone {
		r.logger().Info("unstaged deleted file", "path", path)
	}
	return gone, nil
}

// release removes the object stored under h unless an index entry still
// references it. Removal failures are logged, never returned.
func (r *Repo) release(ix *Index, h object.Hash) {
	if n := ix.Refs(h); n > 0 {
		r.logger().Debug("object still referenced", "digest", h.Short(), "refs", n)
		return
	}
	if err := r.Store.Remove(h); err != nil {
		r.logger().Warn("remove object", "digest", string(h), "err", err)
	}
}

// NormalizePath returns the canonical form of p used as index key: absolute
// (relative paths are taken from the repository root), cleaned, with
// symlinked parent directories resolved and '/' separators.
func (r *Repo) NormalizePath(p string) string {
	if !filepath.IsAbs(p) {
		p = filepath.Join(r.RootDir, p)
	}
	p = filepath.Clean(p)
	if dir, err := filepath.EvalSymlinks(filepath.Dir(p)); err == nil {
		p = filepath.Join(dir, filepath.Base(p))
	}
	return filepath.ToSlash(p)
}

// RelPath renders a normalized path relative to the repository root for
// display. Paths outside the root are returned unchanged.
func (r *Repo) RelPath(path string) string {
	rel, err := filepath.Rel(r.RootDir, filepath.FromSlash(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return filepath.ToSlash(rel)
}
