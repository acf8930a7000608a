package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func chdirForTest(t *testing.T, dir string) func() {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir(%s): %v", dir, err)
	}
	return func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatalf("restore cwd %s: %v", wd, err)
		}
	}
}

// runKiwi executes the root command with args from inside dir.
func runKiwi(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	restore := chdirForTest(t, dir)
	defer restore()

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// mustRunKiwi is runKiwi failing the test on error.
func mustRunKiwi(t *testing.T, dir string, args ...string) string {
	t.Helper()
	stdout, stderr, err := runKiwi(t, dir, args...)
	if err != nil {
		t.Fatalf("kiwi %v: %v\nstdout:\n%s\nstderr:\n%s", args, err, stdout, stderr)
	}
	return stdout
}

func writeCmdFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll(%s): %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
}

func initCmdRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	mustRunKiwi(t, dir, "init")
	return dir
}
