// Package fingerprint computes content digests for files.
//
// Digests are lowercase hex strings. Zero-length files are never opened and
// receive types.EmptyHash. Every call constructs its own hash state, so a
// Fingerprinter is safe for concurrent use.
package fingerprint

import (
	"context"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/jamesainslie/sift/pkg/sift/types"
)

// ChunkSize is the number of bytes hashed between cancellation checks.
const ChunkSize = 1 << 20

// Algorithm names a supported digest.
type Algorithm string

// Supported algorithms.
const (
	SHA512 Algorithm = "sha512"
	SHA256 Algorithm = "sha256"
)

// Default is the algorithm used when none is configured.
const Default = SHA512

// ErrUnknownAlgorithm is returned by ParseAlgorithm for unsupported names.
var ErrUnknownAlgorithm = errors.New("unknown hash algorithm")

// ParseAlgorithm parses a case-insensitive algorithm name. An empty string
// yields Default.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(SHA512):
		return SHA512, nil
	case string(SHA256):
		return SHA256, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownAlgorithm, s)
	}
}

func (a Algorithm) newHash() hash.Hash {
	if a == SHA256 {
		return sha256.New()
	}
	return sha512.New()
}

// Fingerprinter hashes file content with a fixed algorithm.
type Fingerprinter struct {
	alg Algorithm
}

// New returns a Fingerprinter for alg. An unrecognized alg falls back to
// Default.
func New(alg Algorithm) *Fingerprinter {
	if alg != SHA256 && alg != SHA512 {
		alg = Default
	}
	return &Fingerprinter{alg: alg}
}

// Algorithm returns the configured algorithm.
func (f *Fingerprinter) Algorithm() Algorithm {
	return f.alg
}

// File returns the digest of the file at path. The file is opened read-only
// and never modified.
func (f *Fingerprinter) File(ctx context.Context, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: stat %s: %w", types.ErrIO, path, err)
	}
	if info.Size() <= 0 {
		return types.EmptyHash, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %w", types.ErrIO, path, err)
	}
	defer file.Close()

	h := f.alg.newHash()
	if err := hashMapped(ctx, h, file, info.Size()); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		// Mapping is unavailable for some files (pipes, some network
		// filesystems); restart with a streamed read.
		h.Reset()
		if _, serr := file.Seek(0, io.SeekStart); serr != nil {
			return "", fmt.Errorf("%w: seek %s: %w", types.ErrIO, path, serr)
		}
		if err := hashStream(ctx, h, file); err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", fmt.Errorf("%w: read %s: %w", types.ErrIO, path, err)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Bytes returns the digest of b, or types.EmptyHash when b is empty.
func (f *Fingerprinter) Bytes(b []byte) string {
	if len(b) == 0 {
		return types.EmptyHash
	}
	h := f.alg.newHash()
	h.Write(b)
	return hex.EncodeToString(h.Sum(nil))
}

// hashChunks feeds data to h in ChunkSize slices, checking ctx in between.
func hashChunks(ctx context.Context, h hash.Hash, data []byte) error {
	for off := 0; off < len(data); off += ChunkSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(off+ChunkSize, len(data))
		h.Write(data[off:end])
	}
	return nil
}

// hashStream reads r to EOF in ChunkSize blocks.
func hashStream(ctx context.Context, h hash.Hash, r io.Reader) error {
	buf := make([]byte, ChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
