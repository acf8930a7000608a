package object

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"golang.org/x/exp/mmap"
)

// HashBytes computes the raw SHA-256 hash of data and returns it as a
// lowercase hex-encoded Hash.
func HashBytes(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// HashReader streams r into SHA-256. It yields the same Hash as HashBytes
// over the same bytes.
func HashReader(r io.Reader) (Hash, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return sumHash(h), nil
}

// HashFile hashes the content of the file at path. The file is read
// through a read-only memory map so large files are never copied into the
// heap.
func HashFile(path string) (Hash, error) {
	ra, err := mmap.Open(path)
	if err != nil {
		return "", fmt.Errorf("hash file %q: %w", path, err)
	}
	defer ra.Close()

	h, err := HashReader(io.NewSectionReader(ra, 0, int64(ra.Len())))
	if err != nil {
		return "", fmt.Errorf("hash file %q: %w", path, err)
	}
	return h, nil
}

func sumHash(h hash.Hash) Hash {
	return Hash(hex.EncodeToString(h.Sum(nil)))
}
