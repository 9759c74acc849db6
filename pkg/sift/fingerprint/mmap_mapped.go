//go:build linux || darwin || freebsd || netbsd || openbsd

package fingerprint

import (
	"context"
	"fmt"
	"hash"
	"os"

	"golang.org/x/sys/unix"
)

// hashMapped maps the whole file read-only and hashes the mapping.
func hashMapped(ctx context.Context, h hash.Hash, file *os.File, size int64) error {
	if size > int64(^uint(0)>>1) {
		return fmt.Errorf("file too large to map: %d bytes", size)
	}

	data, err := unix.Mmap(int(file.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return fmt.Errorf("mmap: %w", err)
	}
	defer func() { _ = unix.Munmap(data) }()

	return hashChunks(ctx, h, data)
}
