package kiwi

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/warpfork/go-errcat"
)

func TestCategoryOf(t *testing.T) {
	base := E(ErrStaging, "stage", fs.ErrNotExist).WithPath("/repo/a.txt")

	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain", err: errors.New("boom"), want: ""},
		{name: "direct", err: base, want: ErrStaging},
		{name: "wrapped", err: fmt.Errorf("add: %w", base), want: ErrStaging},
		{name: "errcat", err: errcat.Errorf(ErrInvalidCommand, "unknown command %q", "push"), want: ErrInvalidCommand},
		{name: "wrapped errcat", err: fmt.Errorf("cli: %w", errcat.Errorf(ErrInvalidCommand, "x")), want: ErrInvalidCommand},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CategoryOf(tc.err); got != tc.want {
				t.Fatalf("CategoryOf = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestErrorUnwrapAndContext(t *testing.T) {
	err := E(ErrObjectWrite, "object put", fs.ErrPermission).WithDigest("abc123")

	if !errors.Is(err, fs.ErrPermission) {
		t.Fatal("errors.Is should reach the I/O cause")
	}
	if got := errcat.Category(err); got != ErrObjectWrite {
		t.Fatalf("errcat.Category = %v, want %v", got, ErrObjectWrite)
	}
	msg := err.Error()
	if !strings.Contains(msg, "object put") || !strings.Contains(msg, "abc123") {
		t.Fatalf("Error() = %q, want op and digest", msg)
	}
	if d := err.Details(); d["digest"] != "abc123" || d["op"] != "object put" {
		t.Fatalf("Details = %v", d)
	}
}

func TestErrorWithoutCauseFallsBackToLabel(t *testing.T) {
	err := E(ErrRepoNotInitialized, "", nil)
	if got := err.Error(); got != "repository not initialized" {
		t.Fatalf("Error() = %q", got)
	}
	if !Is(fmt.Errorf("status: %w", err), ErrRepoNotInitialized) {
		t.Fatal("Is should match through wrapping")
	}
}
