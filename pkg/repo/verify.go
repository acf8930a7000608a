package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/odvcencio/kiwi/pkg/kiwi"
	"github.com/odvcencio/kiwi/pkg/object"
)

// VerifySummary reports what Verify checked.
type VerifySummary struct {
	Objects      int // objects re-hashed in the live store
	IndexEntries int
	Commits      int
}

// Verify checks repository integrity:
//   - every stored object still hashes to its name,
//   - every index entry points at a stored object,
//   - every commit snapshot is self-consistent: its objects re-hash, its
//     index references only objects it holds, and its id matches the set of
//     objects it holds.
func (r *Repo) Verify() (*VerifySummary, error) {
	if err := r.ensureInitialized("verify"); err != nil {
		return nil, err
	}

	storeReport, err := r.Store.Verify()
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	summary := &VerifySummary{Objects: storeReport.Objects}

	ix, err := r.ReadIndex()
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	for path, h := range ix.All() {
		if !r.Store.Has(h) {
			return nil, kiwi.E(kiwi.ErrIndexCorrupted, "verify", nil).WithPath(path).WithDigest(string(h)).WithMsg("index entry references missing object")
		}
		summary.IndexEntries++
	}

	commits, err := r.Log()
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	for _, c := range commits {
		if err := verifyCommit(filepath.Join(r.commitsDir(), c.Name), c.ID); err != nil {
			return nil, fmt.Errorf("verify: commit %s: %w", c.ID.Short(), err)
		}
		summary.Commits++
	}
	return summary, nil
}

func verifyCommit(dir string, id object.Hash) error {
	snap := object.NewStore(dir)
	if _, err := snap.Verify(); err != nil {
		return err
	}
	hashes, err := snap.List()
	if err != nil {
		return err
	}
	if got := CommitID(hashes); got != id {
		return kiwi.E(kiwi.ErrObjectWrite, "verify commit", nil).WithPath(dir).WithMsg("id mismatch: objects hash to %s", got)
	}

	f, err := os.Open(filepath.Join(dir, "index", indexFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return kiwi.E(kiwi.ErrIndexCorrupted, "verify commit", err).WithPath(dir)
	}
	defer f.Close()
	ix, err := ReadIndex(f)
	if err != nil {
		return kiwi.E(kiwi.ErrIndexCorrupted, "verify commit", err).WithPath(dir).WithMsg("read index")
	}
	for path, h := range ix.All() {
		if !snap.Has(h) {
			return kiwi.E(kiwi.ErrIndexCorrupted, "verify commit", nil).WithPath(path).WithDigest(string(h)).WithMsg("index entry references missing object")
		}
	}
	return nil
}
