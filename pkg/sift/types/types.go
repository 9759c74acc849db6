// Package types provides the core data types shared by the sift packages:
// per-file records produced by a walk, duplicate groups, empty entities and
// the error taxonomy used across traversal, indexing and category operations.
package types

import (
	"time"
)

// EmptyHash is the fingerprint assigned to zero-length files.
// It is not a digest: every empty file carries the same value.
const EmptyHash = "0"

// IsEmptyHash reports whether hash is the zero-length sentinel.
func IsEmptyHash(hash string) bool {
	return hash == EmptyHash
}

// FileRecord describes one regular file observed during a walk.
// Records are created once per walk and never mutated afterwards.
type FileRecord struct {
	// Path is the absolute path to the file.
	Path string `json:"path" yaml:"path"`

	// Hash is the lowercase hex content digest, or EmptyHash.
	Hash string `json:"hash" yaml:"hash"`

	// Type is the primary classification label (text before the first comma).
	Type string `json:"type" yaml:"type"`

	// Size is the file size in bytes.
	Size int64 `json:"size" yaml:"size"`
}

// HumanSize returns the file size in binary (IEC) units.
func (r *FileRecord) HumanSize() string {
	return FormatSize(r.Size)
}

// EmptyEntity is a zero-length file or a directory with no entries.
type EmptyEntity struct {
	Path  string `json:"path" yaml:"path"`
	IsDir bool   `json:"is_dir" yaml:"is_dir"`
}

// DuplicateGroups maps a content hash to every path sharing it, in the
// order collisions were observed. A key exists only when at least two
// paths share the hash.
type DuplicateGroups map[string][]string

// Count returns the number of groups.
func (d DuplicateGroups) Count() int {
	return len(d)
}

// Redundant returns how many files could be removed while keeping one copy
// per group.
func (d DuplicateGroups) Redundant() int {
	n := 0
	for _, paths := range d {
		n += len(paths) - 1
	}
	return n
}

// ScanError pairs a path with the error encountered while processing it.
type ScanError struct {
	// Path is the file or directory path where the error occurred.
	Path string `json:"path" yaml:"path"`

	// Error is the error message.
	Error string `json:"error" yaml:"error"`
}

// Progress is a snapshot of an in-flight walk.
type Progress struct {
	DirsScanned  int64  `json:"dirs_scanned"`
	FilesScanned int64  `json:"files_scanned"`
	FilesHashed  int64  `json:"files_hashed"`
	BytesHashed  int64  `json:"bytes_hashed"`
	CurrentPath  string `json:"current_path"`

	// WalkComplete is set once discovery finished and only hashing remains.
	WalkComplete bool `json:"walk_complete,omitempty"`
}

// Stats summarizes a finished walk.
type Stats struct {
	DirsScanned  int64         `json:"dirs_scanned" yaml:"dirs_scanned"`
	FilesScanned int64         `json:"files_scanned" yaml:"files_scanned"`
	TotalBytes   int64         `json:"total_bytes" yaml:"total_bytes"`
	CacheHits    int64         `json:"cache_hits" yaml:"cache_hits"`
	Elapsed      time.Duration `json:"elapsed" yaml:"elapsed"`
}
