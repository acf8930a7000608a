package object

import (
	"crypto/sha256"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/odvcencio/kiwi/pkg/kiwi"
	"golang.org/x/exp/mmap"
)

// tmpPrefix marks in-flight writes inside the objects directory. Names with
// this prefix are never valid digests, so List and commit snapshots skip them.
const tmpPrefix = ".tmp-"

// Store is a content-addressed blob store with a flat layout:
// objects/<digest>. Each file holds the raw bytes of one unique content.
// Content under a digest is write-once.
type Store struct {
	root string
}

// NewStore creates a Store rooted at the given directory. The objects/
// subdirectory is created lazily on first write.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Dir returns the objects directory.
func (s *Store) Dir() string {
	return filepath.Join(s.root, "objects")
}

// objectPath returns the filesystem path for a given hash.
func (s *Store) objectPath(h Hash) string {
	return filepath.Join(s.root, "objects", string(h))
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	if !h.Valid() {
		return false
	}
	info, err := os.Stat(s.objectPath(h))
	return err == nil && info.Mode().IsRegular()
}

// Put stores data under its digest and returns the digest. Storing content
// that is already present is a no-op. Writes are atomic: data is written to
// a temp file and then renamed into place.
func (s *Store) Put(data []byte) (Hash, error) {
	h := HashBytes(data)

	// Fast path: already exists.
	if s.Has(h) {
		return h, nil
	}

	tmp, err := s.createTemp()
	if err != nil {
		return "", err.WithDigest(string(h))
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", kiwi.E(kiwi.ErrObjectWrite, "object put", err).WithDigest(string(h))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", kiwi.E(kiwi.ErrObjectWrite, "object put", err).WithDigest(string(h))
	}
	if err := s.install(tmpName, h); err != nil {
		return "", err
	}
	return h, nil
}

// PutFile stores the content of the file at path and returns its digest.
// The file is hashed while it is copied, so the stored bytes always match
// the digest they are stored under even if the file changes meanwhile.
func (s *Store) PutFile(path string) (Hash, error) {
	src, err := mmap.Open(path)
	if err != nil {
		return "", kiwi.E(kiwi.ErrStaging, "object put", err).WithPath(path)
	}
	defer src.Close()

	tmp, kerr := s.createTemp()
	if kerr != nil {
		return "", kerr.WithPath(path)
	}
	tmpName := tmp.Name()

	hasher := sha256.New()
	_, err = io.Copy(io.MultiWriter(tmp, hasher), io.NewSectionReader(src, 0, int64(src.Len())))
	if err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", kiwi.E(kiwi.ErrObjectWrite, "object put", err).WithPath(path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", kiwi.E(kiwi.ErrObjectWrite, "object put", err).WithPath(path)
	}

	h := sumHash(hasher)
	if s.Has(h) {
		os.Remove(tmpName)
		return h, nil
	}
	if err := s.install(tmpName, h); err != nil {
		return "", err
	}
	return h, nil
}

func (s *Store) createTemp() (*os.File, *kiwi.Error) {
	if err := os.MkdirAll(s.Dir(), 0o755); err != nil {
		return nil, kiwi.E(kiwi.ErrObjectWrite, "object put", err).WithMsg("mkdir")
	}
	tmp, err := os.CreateTemp(s.Dir(), tmpPrefix+"*")
	if err != nil {
		return nil, kiwi.E(kiwi.ErrObjectWrite, "object put", err).WithMsg("tmpfile")
	}
	return tmp, nil
}

func (s *Store) install(tmpName string, h Hash) error {
	if err := os.Rename(tmpName, s.objectPath(h)); err != nil {
		os.Remove(tmpName)
		return kiwi.E(kiwi.ErrObjectWrite, "object put", err).WithDigest(string(h)).WithMsg("rename")
	}
	return nil
}

// Read returns the bytes stored under h.
func (s *Store) Read(h Hash) ([]byte, error) {
	if !h.Valid() {
		return nil, kiwi.E(kiwi.ErrObjectWrite, "object read", nil).WithDigest(string(h)).WithMsg("invalid digest")
	}
	data, err := os.ReadFile(s.objectPath(h))
	if err != nil {
		return nil, kiwi.E(kiwi.ErrObjectWrite, "object read", err).WithDigest(string(h))
	}
	return data, nil
}

// Remove deletes the object stored under h. A missing object is reported
// as an error wrapping fs.ErrNotExist; callers treat removal failures as
// non-fatal.
func (s *Store) Remove(h Hash) error {
	if !h.Valid() {
		return kiwi.E(kiwi.ErrObjectWrite, "object remove", nil).WithDigest(string(h)).WithMsg("invalid digest")
	}
	if err := os.Remove(s.objectPath(h)); err != nil {
		return kiwi.E(kiwi.ErrObjectWrite, "object remove", err).WithDigest(string(h))
	}
	return nil
}

// List returns the digests of every stored object in ascending order.
// Temp files and names that are not digests are ignored. A store that has
// never been written to is empty.
func (s *Store) List() ([]Hash, error) {
	entries, err := os.ReadDir(s.Dir())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, kiwi.E(kiwi.ErrObjectWrite, "object list", err).WithPath(s.Dir())
	}

	hashes := make([]Hash, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		h := Hash(e.Name())
		if !h.Valid() {
			continue
		}
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })
	return hashes, nil
}

// VerifySummary reports the result of Store.Verify.
type VerifySummary struct {
	Objects int
}

// Verify re-hashes every stored object and fails on the first object whose
// content no longer matches its name.
func (s *Store) Verify() (*VerifySummary, error) {
	hashes, err := s.List()
	if err != nil {
		return nil, err
	}
	report := &VerifySummary{}
	for _, h := range hashes {
		actual, err := HashFile(s.objectPath(h))
		if err != nil {
			return nil, kiwi.E(kiwi.ErrObjectWrite, "object verify", err).WithDigest(string(h))
		}
		if actual != h {
			return nil, kiwi.E(kiwi.ErrObjectWrite, "object verify", nil).WithDigest(string(h)).WithMsg("hash mismatch (computed %s)", actual)
		}
		report.Objects++
	}
	return report, nil
}
