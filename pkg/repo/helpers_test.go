package repo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func initTestRepo(t *testing.T) *Repo {
	t.Helper()
	r, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return r
}

func writeFile(t *testing.T, r *Repo, relPath, content string) string {
	t.Helper()
	absPath := filepath.Join(r.RootDir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		t.Fatalf("MkdirAll(%q): %v", relPath, err)
	}
	if err := os.WriteFile(absPath, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%q): %v", relPath, err)
	}
	return absPath
}

func removeFile(t *testing.T, r *Repo, relPath string) {
	t.Helper()
	if err := os.Remove(filepath.Join(r.RootDir, filepath.FromSlash(relPath))); err != nil {
		t.Fatalf("Remove(%q): %v", relPath, err)
	}
}

// mustStage stages paths and fails the test on any per-file error.
func mustStage(t *testing.T, r *Repo, paths ...string) *StageReport {
	t.Helper()
	report, err := r.Stage(paths)
	if err != nil {
		t.Fatalf("Stage(%v): %v", paths, err)
	}
	for _, res := range report.Staged {
		if res.Err != nil {
			t.Fatalf("Stage(%v): %s: %v", paths, res.Path, res.Err)
		}
	}
	return report
}

func mustReadIndex(t *testing.T, r *Repo) *Index {
	t.Helper()
	ix, err := r.ReadIndex()
	if err != nil {
		t.Fatalf("ReadIndex: %v", err)
	}
	return ix
}

func ledgerLines(t *testing.T, r *Repo) []string {
	t.Helper()
	data, err := os.ReadFile(r.indexPath())
	if err != nil {
		t.Fatalf("read ledger: %v", err)
	}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

// stepClock returns a clock that advances by one second per call.
func stepClock(start time.Time) func() time.Time {
	cur := start
	return func() time.Time {
		t := cur
		cur = cur.Add(time.Second)
		return t
	}
}

func relPaths(r *Repo, paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = r.RelPath(p)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
