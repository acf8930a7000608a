package repo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/odvcencio/kiwi/pkg/object"
)

func TestLogNewestFirst(t *testing.T) {
	r := initTestRepo(t)
	start := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	r.now = stepClock(start)

	var made []*CommitMeta
	for i, content := range []string{"one", "two", "three"} {
		writeFile(t, r, "f.txt", content)
		mustStage(t, r, "f.txt")
		meta, err := r.Commit("commit " + content)
		if err != nil {
			t.Fatalf("Commit %d: %v", i, err)
		}
		made = append(made, meta)
	}

	commits, err := r.Log()
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if len(commits) != 3 {
		t.Fatalf("Log returned %d commits, want 3", len(commits))
	}
	for i, c := range commits {
		want := made[len(made)-1-i]
		if c.ID != want.ID {
			t.Errorf("commits[%d].ID = %s, want %s", i, c.ID.Short(), want.ID.Short())
		}
		if c.Message != want.Message {
			t.Errorf("commits[%d].Message = %q, want %q", i, c.Message, want.Message)
		}
		if !c.Timestamp.Equal(want.Timestamp) {
			t.Errorf("commits[%d].Timestamp = %v, want %v", i, c.Timestamp, want.Timestamp)
		}
		if c.Objects != 1 {
			t.Errorf("commits[%d].Objects = %d, want 1", i, c.Objects)
		}
	}
}

func TestLogOrdersByTimestampNotID(t *testing.T) {
	r := initTestRepo(t)
	mk := func(id object.Hash, ts time.Time) {
		name := commitDirName(id, "m", ts)
		if err := os.MkdirAll(filepath.Join(r.commitsDir(), name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	// The oldest commit has the lexically largest id.
	idOld := object.Hash("ffff" + object.HashBytes([]byte("old"))[4:])
	idNew := object.Hash("0000" + object.HashBytes([]byte("new"))[4:])
	mk(idOld, base)
	mk(idNew, base.Add(time.Hour))

	commits, err := r.Log()
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if len(commits) != 2 || commits[0].ID != idNew || commits[1].ID != idOld {
		t.Fatalf("Log order = %+v", commits)
	}
}

func TestLogSkipsNonCommitEntries(t *testing.T) {
	r := initTestRepo(t)
	writeFile(t, r, "a.txt", "a")
	mustStage(t, r, "a.txt")
	if _, err := r.Commit("real"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	junk := []string{
		"just-a-dir",
		"two fields",
		"id msg not-a-time",
		".tmp-commit-123",
	}
	for _, name := range junk {
		if err := os.MkdirAll(filepath.Join(r.commitsDir(), name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(r.commitsDir(), "stray-file"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	commits, err := r.Log()
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if len(commits) != 1 || commits[0].Message != "real" {
		t.Fatalf("Log = %+v, want the single real commit", commits)
	}
}

func TestLogFallsBackToSlugWithoutMetadata(t *testing.T) {
	r := initTestRepo(t)
	meta, err := r.Commit("hello kiwi world")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := os.Remove(filepath.Join(r.commitsDir(), meta.Name, commitMetaFile)); err != nil {
		t.Fatal(err)
	}

	commits, err := r.Log()
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if len(commits) != 1 || commits[0].Message != "hello-kiwi-world" {
		t.Fatalf("Log = %+v, want slug message", commits)
	}
}

func TestLogEmpty(t *testing.T) {
	r := initTestRepo(t)
	commits, err := r.Log()
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if len(commits) != 0 {
		t.Fatalf("Log = %+v, want none", commits)
	}
	head, err := r.Head()
	if err != nil || head != "" {
		t.Fatalf("Head = (%q, %v), want empty", head, err)
	}
}

func TestParseCommitName(t *testing.T) {
	id := object.HashBytes([]byte("x"))
	ts := time.Date(2026, 2, 3, 4, 5, 6, 7, time.UTC)

	meta, ok := ParseCommitName(commitDirName(id, "add feature", ts))
	if !ok {
		t.Fatal("ParseCommitName rejected a valid name")
	}
	if meta.ID != id || meta.Message != "add-feature" || !meta.Timestamp.Equal(ts) {
		t.Fatalf("parsed = %+v", meta)
	}

	for _, bad := range []string{"", "a b", "a b c d", string(id) + " m 2026-02-03"} {
		if _, ok := ParseCommitName(bad); ok {
			t.Errorf("ParseCommitName(%q) accepted", bad)
		}
	}
}
