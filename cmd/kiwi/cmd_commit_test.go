package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCommitCmdAndLog(t *testing.T) {
	dir := initCmdRepo(t)
	writeCmdFile(t, dir, "a.txt", "a")
	mustRunKiwi(t, dir, "add", "a.txt")

	out := mustRunKiwi(t, dir, "commit", "-m", "first snapshot")
	if !strings.Contains(out, "first snapshot (1 object(s))") {
		t.Fatalf("commit output = %q", out)
	}

	writeCmdFile(t, dir, "b.txt", "b")
	mustRunKiwi(t, dir, "add", "b.txt")
	mustRunKiwi(t, dir, "commit", "second", "snapshot")

	logOut := mustRunKiwi(t, dir, "log")
	first := strings.Index(logOut, "first snapshot")
	second := strings.Index(logOut, "second snapshot")
	if first < 0 || second < 0 || second > first {
		t.Fatalf("log should list newest first:\n%s", logOut)
	}
	if strings.Count(logOut, "(HEAD)") != 1 {
		t.Fatalf("log should decorate exactly one commit:\n%s", logOut)
	}
	if !strings.Contains(logOut, "Objects: 2") {
		t.Fatalf("log output missing object count:\n%s", logOut)
	}

	oneline := mustRunKiwi(t, dir, "log", "--oneline", "-n", "1")
	lines := strings.Split(strings.TrimSpace(oneline), "\n")
	if len(lines) != 1 || !strings.HasSuffix(lines[0], "(HEAD) second snapshot") {
		t.Fatalf("log --oneline -n 1 = %q", oneline)
	}
}

func TestCommitCmdEmptyMessageWarns(t *testing.T) {
	dir := initCmdRepo(t)
	writeCmdFile(t, dir, "a.txt", "a")
	mustRunKiwi(t, dir, "add", "a.txt")

	stdout, stderr, err := runKiwi(t, dir, "commit")
	if err != nil {
		t.Fatalf("commit without message should not fail: %v", err)
	}
	if stdout != "" {
		t.Fatalf("stdout = %q, want empty", stdout)
	}
	if !strings.Contains(stderr, "warning:") || !strings.Contains(stderr, "commit message not provided") {
		t.Fatalf("stderr = %q", stderr)
	}

	entries, err := os.ReadDir(filepath.Join(dir, ".kiwi", "commits"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("commit without message created %d entries", len(entries))
	}
}

func TestLogCmdNoCommits(t *testing.T) {
	dir := initCmdRepo(t)
	out := mustRunKiwi(t, dir, "log")
	if strings.TrimSpace(out) != "no commits yet" {
		t.Fatalf("log output = %q", out)
	}
}

func TestBuildDecoration(t *testing.T) {
	tests := []struct {
		id, head string
		want     string
	}{
		{"abc", "abc", "(HEAD)"},
		{"abc", "def", ""},
		{"abc", "", ""},
	}
	for _, tt := range tests {
		if got := buildDecoration(hashOf(tt.id), hashOf(tt.head)); got != tt.want {
			t.Errorf("buildDecoration(%q, %q) = %q, want %q", tt.id, tt.head, got, tt.want)
		}
	}
}
