package index

import (
	"fmt"
	"strconv"

	"github.com/jamesainslie/sift/pkg/sift/types"
)

// Entry is one row of file_hashes.
type Entry struct {
	Hash     string `db:"filehash" json:"hash" yaml:"hash"`
	Filename string `db:"filename" json:"filename" yaml:"filename"`
	Filetype string `db:"filetype" json:"filetype" yaml:"filetype"`
	Filesize string `db:"filesize" json:"filesize" yaml:"filesize"`
}

// Size parses the stored size. Malformed values yield 0.
func (e Entry) Size() int64 {
	n, err := strconv.ParseInt(e.Filesize, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Record converts the row back into a FileRecord.
func (e Entry) Record() types.FileRecord {
	return types.FileRecord{Path: e.Filename, Hash: e.Hash, Type: e.Filetype, Size: e.Size()}
}

func entryFromRecord(r types.FileRecord) Entry {
	return Entry{
		Hash:     r.Hash,
		Filename: r.Path,
		Filetype: r.Type,
		Filesize: strconv.FormatInt(r.Size, 10),
	}
}

// Match is a row returned by a type query.
type Match = Entry

// Collision records a file that was not inserted because its hash is
// already indexed under another file.
type Collision struct {
	Hash     string `json:"hash" yaml:"hash"`
	Path     string `json:"path" yaml:"path"`
	Existing string `json:"existing" yaml:"existing"`
}

// Err returns the collision as an error wrapping types.ErrUniqueness.
func (c Collision) Err() error {
	return fmt.Errorf("%w: %s duplicates %s", types.ErrUniqueness, c.Path, c.Existing)
}

// Mode names the reconciliation strategy used for a write.
type Mode string

// Reconciliation modes.
const (
	ModeBootstrap   Mode = "bootstrap"
	ModeIncremental Mode = "incremental"
)

// WriteReport summarizes one batch write.
type WriteReport struct {
	Mode       Mode        `json:"mode" yaml:"mode"`
	Attempted  int         `json:"attempted" yaml:"attempted"`
	Inserted   int         `json:"inserted" yaml:"inserted"`
	Collisions []Collision `json:"collisions,omitempty" yaml:"collisions,omitempty"`
}
