package repo

import (
	"fmt"

	"github.com/odvcencio/kiwi/pkg/object"
)

// GCSummary reports what GC removed.
type GCSummary struct {
	Pruned         []string // index entries dropped for deleted files
	RemovedObjects int
	KeptObjects    int
}

// GC drops index entries for deleted files and removes every object no
// index entry references. Commit snapshots hold their own copies and are
// never touched.
func (r *Repo) GC() (*GCSummary, error) {
	if err := r.ensureInitialized("gc"); err != nil {
		return nil, err
	}
	ix, err := r.ReadIndex()
	if err != nil {
		return nil, fmt.Errorf("gc: %w", err)
	}
	pruned, err := r.reconcileDeleted(ix)
	if err != nil {
		return nil, fmt.Errorf("gc: %w", err)
	}

	referenced := make(map[object.Hash]struct{}, ix.Len())
	for _, h := range ix.All() {
		referenced[h] = struct{}{}
	}

	hashes, err := r.Store.List()
	if err != nil {
		return nil, fmt.Errorf("gc: %w", err)
	}

	summary := &GCSummary{Pruned: pruned}
	for _, h := range hashes {
		if _, ok := referenced[h]; ok {
			summary.KeptObjects++
			continue
		}
		if err := r.Store.Remove(h); err != nil {
			r.logger().Warn("gc: remove object", "digest", string(h), "err", err)
			continue
		}
		summary.RemovedObjects++
	}
	return summary, nil
}
