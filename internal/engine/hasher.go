package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// hashChunkSize bounds the read buffer so hashing uses constant memory
// regardless of file size.
const hashChunkSize = 1 << 20 // 1 MiB

// Digest is a SHA-256 content fingerprint. Two files with equal digests are
// treated as byte-identical for all decisions in this system; the hash is
// content-addressing, not a security boundary.
type Digest [sha256.Size]byte

// Hex returns the lower-case hex encoding of the digest.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

// Token returns the first n characters of the upper-case hex encoding,
// used as a deterministic disambiguation suffix.
func (d Digest) Token(n int) string {
	h := strings.ToUpper(d.Hex())
	if n > len(h) {
		n = len(h)
	}
	return h[:n]
}

// Hasher computes content digests through a FilesystemManager.
type Hasher struct {
	fsmgr FilesystemManager
}

// NewHasher creates a Hasher backed by the given filesystem.
func NewHasher(fsmgr FilesystemManager) *Hasher {
	return &Hasher{fsmgr: fsmgr}
}

// HashFile streams the file at path through SHA-256.
func (h *Hasher) HashFile(path string) (Digest, error) {
	var d Digest

	r, err := h.fsmgr.Open(path)
	if err != nil {
		return d, fmt.Errorf("opening %s: %w", path, err)
	}
	defer r.Close()

	sum := sha256.New()
	buf := make([]byte, hashChunkSize)
	if _, err := io.CopyBuffer(sum, r, buf); err != nil {
		return d, fmt.Errorf("reading %s: %w", path, err)
	}

	copy(d[:], sum.Sum(nil))
	return d, nil
}
