package blobstore

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func TestPutGetRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	data := []byte("certificate bytes, compressible compressible compressible")

	ref, err := store.Put("diploma.pdf", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	rc, err := store.Get(ref)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("reading blob failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("retrieved bytes differ from stored bytes")
	}
}

func TestPutLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	if _, err := store.Put("a.pdf", strings.NewReader("payload")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read base dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "temp-") {
			t.Errorf("temp file %s left behind after commit", e.Name())
		}
	}
}

func TestRefsUniqueForIdenticalNames(t *testing.T) {
	store := setupTestStore(t)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		ref, err := store.Put("same.pdf", strings.NewReader("x"))
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if seen[ref] {
			t.Fatalf("duplicate reference %s", ref)
		}
		seen[ref] = true
	}
}

func TestGetMissingRef(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Get("1234-1-gone.pdf")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := setupTestStore(t)

	ref, err := store.Put("doc.pdf", strings.NewReader("data"))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if err := store.Delete(ref); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ref); err != nil {
		t.Errorf("second Delete should not fail: %v", err)
	}

	exists, err := store.Exists(ref)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("blob should be gone after delete")
	}
}

func TestHostileFilenames(t *testing.T) {
	store := setupTestStore(t)

	for _, name := range []string{
		"../../etc/passwd",
		"..\\..\\boot.ini",
		"a b c .pdf",
		"",
		"...",
		strings.Repeat("x", 300) + ".pdf",
	} {
		ref, err := store.Put(name, strings.NewReader("content"))
		if err != nil {
			t.Fatalf("Put(%q) failed: %v", name, err)
		}
		if strings.ContainsAny(ref, "/\\ ") || strings.Contains(ref, "..") {
			t.Errorf("reference %q from filename %q is not sanitized", ref, name)
		}

		rc, err := store.Get(ref)
		if err != nil {
			t.Fatalf("Get(%q) failed: %v", ref, err)
		}
		rc.Close()
	}
}

func TestRefValidation(t *testing.T) {
	store := setupTestStore(t)

	for _, ref := range []string{"", "../data/x", "a/b", "..", "data/../x"} {
		if _, err := store.Get(ref); !errors.Is(err, ErrInvalidRef) {
			t.Errorf("Get(%q): expected ErrInvalidRef, got %v", ref, err)
		}
		if err := store.Delete(ref); !errors.Is(err, ErrInvalidRef) {
			t.Errorf("Delete(%q): expected ErrInvalidRef, got %v", ref, err)
		}
	}
}

func TestCreatedAtFromRef(t *testing.T) {
	store := setupTestStore(t)

	before := time.Now()
	ref, err := store.Put("dated.pdf", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	after := time.Now()

	created, err := CreatedAt(ref)
	if err != nil {
		t.Fatalf("CreatedAt failed: %v", err)
	}
	if created.Before(before) || created.After(after) {
		t.Errorf("embedded creation time %v outside [%v, %v]", created, before, after)
	}

	if _, err := CreatedAt("not-a-timestamp"); !errors.Is(err, ErrInvalidRef) {
		t.Errorf("expected ErrInvalidRef for malformed ref, got %v", err)
	}
}

func TestCount(t *testing.T) {
	store := setupTestStore(t)

	for i := 0; i < 3; i++ {
		if _, err := store.Put("n.pdf", strings.NewReader("x")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	n, err := store.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 blobs, got %d", n)
	}
}

func TestCompressedAtRest(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	data := bytes.Repeat([]byte("AAAAAAAAAA"), 10000)
	ref, err := store.Put("big.txt", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "data", ref))
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Size() >= int64(len(data)) {
		t.Errorf("blob should be compressed at rest: %d on disk vs %d raw", info.Size(), len(data))
	}
}
