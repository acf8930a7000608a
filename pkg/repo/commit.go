package repo

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"github.com/odvcencio/kiwi/pkg/kiwi"
	"github.com/odvcencio/kiwi/pkg/object"
)

const (
	// CommitTimeLayout is fixed width and zero padded, so commit directory
	// timestamps sort lexically in chronological order.
	CommitTimeLayout = "20060102T150405.000000000Z"

	commitMetaFile = "commit.toml"
	maxSlugLen     = 64
)

// CommitMeta describes one commit snapshot.
type CommitMeta struct {
	ID        object.Hash `toml:"id"`
	Message   string      `toml:"message"`
	Timestamp time.Time   `toml:"timestamp"`
	Objects   int         `toml:"objects"`
	Name      string      `toml:"-"` // directory name under .kiwi/commits
}

// Commit snapshots the current object store and staging index.
//
//  1. List every stored object, sorted by digest.
//  2. Hash the concatenated digests into the commit id, so the id depends
//     only on the set of objects present.
//  3. Name the commit "<id> <message slug> <timestamp>".
//  4. Copy objects/ and index/ plus commit.toml into a temp directory
//     and rename it into .kiwi/commits/ as the last step.
//
// A failure before the rename leaves no commit behind.
func (r *Repo) Commit(message string) (*CommitMeta, error) {
	if err := r.ensureInitialized("commit"); err != nil {
		return nil, err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, kiwi.E(kiwi.ErrInvalidCommand, "commit", nil).WithMsg("commit message not provided")
	}

	hashes, err := r.Store.List()
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	meta := &CommitMeta{
		ID:        CommitID(hashes),
		Message:   message,
		Timestamp: r.clock().UTC(),
		Objects:   len(hashes),
	}
	meta.Name = commitDirName(meta.ID, message, meta.Timestamp)

	// Snapshot I/O counts as object write failure, except copying the
	// ledger directory, which reports the index.
	fail := func(msg string, err error) *kiwi.Error {
		return kiwi.E(kiwi.ErrObjectWrite, "commit", err).WithMsg("%s", msg)
	}

	if err := os.MkdirAll(r.commitsDir(), 0o755); err != nil {
		return nil, fail("mkdir", err).WithPath(r.commitsDir())
	}
	dest := filepath.Join(r.commitsDir(), meta.Name)
	if _, err := os.Lstat(dest); err == nil {
		return nil, fail("already exists", nil).WithPath(dest)
	}

	tmp, err := os.MkdirTemp(r.commitsDir(), ".tmp-commit-*")
	if err != nil {
		return nil, fail("tmpdir", err).WithPath(r.commitsDir())
	}
	done := false
	defer func() {
		if !done {
			os.RemoveAll(tmp)
		}
	}()

	if err := copyTree(r.Store.Dir(), filepath.Join(tmp, "objects")); err != nil {
		return nil, fail("copy objects", err)
	}
	if err := copyTree(r.indexDir(), filepath.Join(tmp, "index")); err != nil {
		return nil, kiwi.E(kiwi.ErrIndexCorrupted, "commit", err).WithPath(r.indexDir()).WithMsg("copy index")
	}
	if err := writeCommitMeta(filepath.Join(tmp, commitMetaFile), meta); err != nil {
		return nil, kiwi.E(kiwi.ErrObjectWrite, "commit", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return nil, fail("rename", err).WithPath(dest)
	}
	done = true

	if err := os.WriteFile(r.headPath(), []byte(string(meta.ID)+"\n"), 0o644); err != nil {
		r.logger().Warn("commit: update HEAD", "err", err)
	}
	return meta, nil
}

// CommitID derives a commit id from the object digests present at commit
// time. hashes must be sorted; Store.List returns them that way.
func CommitID(hashes []object.Hash) object.Hash {
	var b strings.Builder
	b.Grow(len(hashes) * object.HashLen)
	for _, h := range hashes {
		b.WriteString(string(h))
	}
	return object.HashBytes([]byte(b.String()))
}

func commitDirName(id object.Hash, message string, ts time.Time) string {
	return string(id) + " " + commitSlug(message) + " " + ts.UTC().Format(CommitTimeLayout)
}

// commitSlug turns a message into a single directory-name-safe field:
// whitespace and path-unsafe characters collapse to '-'.
func commitSlug(message string) string {
	var b strings.Builder
	dash := false
	for _, c := range message {
		if unicode.IsSpace(c) || unicode.IsControl(c) || strings.ContainsRune(`/\:*?"<>|`, c) {
			if !dash {
				b.WriteByte('-')
				dash = true
			}
			continue
		}
		b.WriteRune(c)
		dash = false
	}
	s := strings.Trim(b.String(), "-")
	if len(s) > maxSlugLen {
		cut := maxSlugLen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = strings.TrimRight(s[:cut], "-")
	}
	if s == "" {
		s = "-"
	}
	return s
}

func writeCommitMeta(path string, meta *CommitMeta) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("write %s: %w", commitMetaFile, err)
	}
	if err := toml.NewEncoder(f).Encode(meta); err != nil {
		f.Close()
		return fmt.Errorf("write %s: encode: %w", commitMetaFile, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: close: %w", commitMetaFile, err)
	}
	return nil
}

func readCommitMeta(path string) (*CommitMeta, error) {
	var meta CommitMeta
	if _, err := toml.DecodeFile(path, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// copyTree copies the regular files under src into dst, recreating the
// directory structure. Dot-prefixed entries (in-flight temp files) are
// skipped. A missing src produces an empty dst.
func copyTree(src, dst string) error {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == src && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipAll
			}
			return err
		}
		if path == src {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return copyFile(path, target)
	})
	return err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
