package repo

import (
	"bufio"
	"io"
	"iter"
	"strings"

	"github.com/odvcencio/kiwi/pkg/object"
)

// Index is the in-memory staging index: an ordered mapping from normalized
// path to the digest last staged for it. There is at most one entry per
// path. Order is insertion order; replacing a digest keeps the entry's
// position, so rewriting the ledger never reshuffles unrelated lines.
type Index struct {
	paths   []string
	digests map[string]object.Hash
}

// NewIndex returns an empty Index.
func NewIndex() *Index {
	return &Index{digests: make(map[string]object.Hash)}
}

// ReadIndex parses a ledger: one "<path> <digest>" line per entry. The
// digest follows the last space or tab, and the path is everything before
// that separator byte for byte, so paths may contain and end with spaces.
// Trailing whitespace after the digest is ignored. Blank lines and lines
// without a separator are skipped. A path listed twice keeps its first
// position and its last digest.
func ReadIndex(r io.Reader) (*Index, error) {
	ix := NewIndex()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		i := strings.LastIndexAny(line, " \t")
		if i < 0 {
			continue
		}
		path := line[:i]
		digest := object.Hash(line[i+1:])
		if path == "" || digest == "" {
			continue
		}
		ix.Set(path, digest)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return ix, nil
}

// WriteTo serializes the index in ledger format.
func (ix *Index) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	for _, p := range ix.paths {
		b.WriteString(p)
		b.WriteByte(' ')
		b.WriteString(string(ix.digests[p]))
		b.WriteByte('\n')
	}
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// Len returns the number of entries.
func (ix *Index) Len() int { return len(ix.paths) }

// Get returns the digest staged for path.
func (ix *Index) Get(path string) (object.Hash, bool) {
	h, ok := ix.digests[path]
	return h, ok
}

// Set records digest h for path, appending a new entry or replacing the
// digest of an existing one in place. It returns the previous digest.
func (ix *Index) Set(path string, h object.Hash) (prev object.Hash, existed bool) {
	prev, existed = ix.digests[path]
	if !existed {
		ix.paths = append(ix.paths, path)
	}
	ix.digests[path] = h
	return prev, existed
}

// Delete removes the entry for path, keeping the order of the others.
func (ix *Index) Delete(path string) (object.Hash, bool) {
	h, ok := ix.digests[path]
	if !ok {
		return "", false
	}
	delete(ix.digests, path)
	for i, p := range ix.paths {
		if p == path {
			ix.paths = append(ix.paths[:i], ix.paths[i+1:]...)
			break
		}
	}
	return h, true
}

// Refs counts the entries whose digest is h.
func (ix *Index) Refs(h object.Hash) int {
	n := 0
	for _, d := range ix.digests {
		if d == h {
			n++
		}
	}
	return n
}

// Paths returns the indexed paths in ledger order.
func (ix *Index) Paths() []string {
	return append([]string(nil), ix.paths...)
}

// All iterates entries in ledger order. The index must not be modified
// during iteration.
func (ix *Index) All() iter.Seq2[string, object.Hash] {
	return func(yield func(string, object.Hash) bool) {
		for _, p := range ix.paths {
			if !yield(p, ix.digests[p]) {
				return
			}
		}
	}
}
