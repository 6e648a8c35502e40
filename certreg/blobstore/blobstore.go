package blobstore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/klauspost/compress/zstd"
)

var (
	ErrNotFound   = errors.New("blob not found")
	ErrInvalidRef = errors.New("invalid blob reference")
)

// seq disambiguates blobs committed within the same nanosecond.
var seq uint64

// Store persists uploaded bytes on disk, zstd-compressed at rest.
// Each blob is staged in a temp file and renamed into place, so a blob
// is either fully visible or absent. References embed the creation time
// so orphaned blobs can be dated by an out-of-band sweep.
type Store struct {
	basePath string
}

func New(basePath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(basePath, "data"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	return &Store{basePath: basePath}, nil
}

// Put stores the bytes read from r and returns an opaque reference.
// The original filename only flavors the reference for operators
// browsing the directory; it is sanitized first and never trusted.
func (s *Store) Put(originalFilename string, r io.Reader) (string, error) {
	ref := fmt.Sprintf("%d-%d-%s",
		time.Now().UnixNano(),
		atomic.AddUint64(&seq, 1),
		sanitizeFilename(originalFilename),
	)

	tmpPath := filepath.Join(s.basePath, fmt.Sprintf("temp-%s", ref))
	defer os.Remove(tmpPath)

	f, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("failed to create temp blob: %w", err)
	}

	enc, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return "", fmt.Errorf("failed to init compressor: %w", err)
	}

	buf := make([]byte, 1*1024*1024) // 1MB
	_, copyErr := io.CopyBuffer(enc, r, buf)
	encErr := enc.Close()
	closeErr := f.Close()
	if copyErr != nil {
		return "", fmt.Errorf("failed to write blob: %w", copyErr)
	}
	if encErr != nil {
		return "", fmt.Errorf("failed to finish compression: %w", encErr)
	}
	if closeErr != nil {
		return "", fmt.Errorf("failed to close temp blob: %w", closeErr)
	}

	if err := os.Rename(tmpPath, s.blobPath(ref)); err != nil {
		return "", fmt.Errorf("failed to commit blob: %w", err)
	}
	return ref, nil
}

// Get opens the blob for reading. The returned stream yields the
// original uncompressed bytes and must be closed by the caller.
func (s *Store) Get(ref string) (io.ReadCloser, error) {
	if err := validateRef(ref); err != nil {
		return nil, err
	}

	f, err := os.Open(s.blobPath(ref))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blob %q: %w", ref, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open blob %q: %w", ref, err)
	}

	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to init decompressor for %q: %w", ref, err)
	}
	return &blobReader{f: f, dec: dec}, nil
}

// Delete removes the blob. Deleting an absent reference is not an
// error; rollback after a duplicate upload must be idempotent.
func (s *Store) Delete(ref string) error {
	if err := validateRef(ref); err != nil {
		return err
	}
	if err := os.Remove(s.blobPath(ref)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob %q: %w", ref, err)
	}
	return nil
}

// Exists reports whether the blob is present on disk.
func (s *Store) Exists(ref string) (bool, error) {
	if err := validateRef(ref); err != nil {
		return false, err
	}
	_, err := os.Stat(s.blobPath(ref))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Count returns the number of committed blobs, temp files excluded.
func (s *Store) Count() (int, error) {
	entries, err := os.ReadDir(filepath.Join(s.basePath, "data"))
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// CreatedAt extracts the creation time embedded in a reference, for
// out-of-band orphan detection.
func CreatedAt(ref string) (time.Time, error) {
	head, _, ok := strings.Cut(ref, "-")
	if !ok {
		return time.Time{}, fmt.Errorf("reference %q: %w", ref, ErrInvalidRef)
	}
	nanos, err := strconv.ParseInt(head, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("reference %q: %w", ref, ErrInvalidRef)
	}
	return time.Unix(0, nanos), nil
}

func (s *Store) blobPath(ref string) string {
	return filepath.Join(s.basePath, "data", ref)
}

func validateRef(ref string) error {
	if ref == "" || ref != filepath.Base(ref) || strings.Contains(ref, "..") {
		return fmt.Errorf("reference %q: %w", ref, ErrInvalidRef)
	}
	return nil
}

// sanitizeFilename reduces an uploader-supplied name to a safe path
// component: base name only, whitespace collapsed, anything outside
// [a-zA-Z0-9._-] dropped.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}

	clean := strings.Trim(b.String(), ".")
	if clean == "" {
		return "upload"
	}
	if len(clean) > 100 {
		clean = clean[len(clean)-100:]
	}
	return clean
}

type blobReader struct {
	f   *os.File
	dec *zstd.Decoder
}

func (b *blobReader) Read(p []byte) (int, error) {
	return b.dec.Read(p)
}

func (b *blobReader) Close() error {
	b.dec.Close()
	return b.f.Close()
}
