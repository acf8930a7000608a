package object

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func BenchmarkStorePutUnique(b *testing.B) {
	store := NewStore(filepath.Join(b.TempDir(), "store"))
	seed := []byte("0123456789abcdef0123456789abcdef")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		payload := []byte(fmt.Sprintf("blob-%d-%x", i, seed))
		if _, err := store.Put(payload); err != nil {
			b.Fatalf("Put: %v", err)
		}
	}
}

func BenchmarkHashFile(b *testing.B) {
	path := filepath.Join(b.TempDir(), "big.bin")
	payload := make([]byte, 1<<20)
	for i := range payload {
		payload[i] = byte(i)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		b.Fatalf("write: %v", err)
	}

	b.SetBytes(int64(len(payload)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := HashFile(path); err != nil {
			b.Fatalf("HashFile: %v", err)
		}
	}
}

// BenchmarkStorePutFileLarge measures staging a 100KB file end to end.
func BenchmarkStorePutFileLarge(b *testing.B) {
	dir := b.TempDir()
	store := NewStore(filepath.Join(dir, "store"))
	src := filepath.Join(dir, "src.bin")

	payload := make([]byte, 100*1024)
	if _, err := rand.Read(payload); err != nil {
		b.Fatalf("rand.Read: %v", err)
	}
	if err := os.WriteFile(src, payload, 0o644); err != nil {
		b.Fatalf("write: %v", err)
	}

	b.ReportAllocs()
	b.SetBytes(int64(len(payload)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h, err := store.PutFile(src)
		if err != nil {
			b.Fatalf("PutFile: %v", err)
		}
		b.StopTimer()
		if err := store.Remove(h); err != nil {
			b.Fatalf("Remove: %v", err)
		}
		b.StartTimer()
	}
}

func BenchmarkStoreRead(b *testing.B) {
	store := NewStore(b.TempDir())
	data := make([]byte, 4096)
	if _, err := rand.Read(data); err != nil {
		b.Fatalf("rand.Read: %v", err)
	}
	h, err := store.Put(data)
	if err != nil {
		b.Fatalf("Put: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := store.Read(h); err != nil {
			b.Fatalf("Read: %v", err)
		}
	}
}
