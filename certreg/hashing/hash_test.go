package hashing

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"math/rand"
	"strings"
	"testing"
)

func TestDigestBytesKnownValue(t *testing.T) {
	// sha256("PDF-A"), computed independently
	want := sha256.Sum256([]byte("PDF-A"))
	got := DigestBytes([]byte("PDF-A"))

	if got != hex.EncodeToString(want[:]) {
		t.Errorf("expected digest %s, got %s", hex.EncodeToString(want[:]), got)
	}
}

func TestDigestBytesDeterminism(t *testing.T) {
	data := []byte("the same bytes every time")

	first := DigestBytes(data)
	for i := 0; i < 10; i++ {
		if got := DigestBytes(data); got != first {
			t.Fatalf("digest changed between calls: %s vs %s", first, got)
		}
	}
}

func TestDigestBytesFormat(t *testing.T) {
	digest := DigestBytes([]byte("anything"))

	if len(digest) != DigestHexLen {
		t.Errorf("expected digest length %d, got %d", DigestHexLen, len(digest))
	}
	if digest != strings.ToLower(digest) {
		t.Errorf("digest should be lowercase hex: %s", digest)
	}
	if !IsDigest(digest) {
		t.Errorf("IsDigest should accept a produced digest: %s", digest)
	}
}

func TestDigestReaderMatchesDigestBytes(t *testing.T) {
	data := make([]byte, 3*1024*1024) // spans multiple copy buffers
	rand.Read(data)

	fromReader, err := DigestReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DigestReader failed: %v", err)
	}
	if fromBytes := DigestBytes(data); fromReader != fromBytes {
		t.Errorf("reader digest %s != bytes digest %s", fromReader, fromBytes)
	}
}

func TestDigestSensitivity(t *testing.T) {
	base := make([]byte, 4096)
	rand.Read(base)
	baseDigest := DigestBytes(base)

	for i := 0; i < 100; i++ {
		mutated := make([]byte, len(base))
		copy(mutated, base)

		pos := rand.Intn(len(mutated))
		mutated[pos] ^= 1 << uint(rand.Intn(8))

		if got := DigestBytes(mutated); got == baseDigest {
			t.Fatalf("single-bit mutation at %d produced identical digest", pos)
		}
	}
}

func TestIsDigestRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"abc",
		strings.Repeat("g", DigestHexLen),
		strings.Repeat("A", DigestHexLen),
		strings.Repeat("0", DigestHexLen-1),
		strings.Repeat("0", DigestHexLen+1),
	}
	for _, c := range cases {
		if IsDigest(c) {
			t.Errorf("IsDigest(%q) should be false", c)
		}
	}
}
