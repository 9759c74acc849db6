// Package manifest keeps a history of index, move and delete batches.
package manifest

import "time"

// Operation names the kind of batch an entry records.
type Operation string

// Operations.
const (
	OpIndex  Operation = "index"
	OpMove   Operation = "move"
	OpDelete Operation = "delete"
)

// Entry is one recorded batch.
type Entry struct {
	ID        string       `json:"id"`
	Timestamp time.Time    `json:"timestamp"`
	Operation Operation    `json:"operation"`
	Label     string       `json:"label,omitempty"` // root path or category keyword
	Files     []FileRecord `json:"files"`
	Summary   Summary      `json:"summary"`
}

// FileRecord is the outcome for one file in a batch.
type FileRecord struct {
	Path   string `json:"path"`
	Size   int64  `json:"size,omitempty"`
	Hash   string `json:"hash,omitempty"`
	Type   string `json:"type,omitempty"`
	Target string `json:"target,omitempty"`
	Method string `json:"method,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Failed reports whether the file's operation failed.
func (f FileRecord) Failed() bool {
	return f.Error != ""
}

// Summary holds batch totals.
type Summary struct {
	TotalFiles int   `json:"total_files"`
	TotalBytes int64 `json:"total_bytes"`
	Succeeded  int   `json:"succeeded"`
	Failed     int   `json:"failed"`
}

func summarize(files []FileRecord) Summary {
	s := Summary{TotalFiles: len(files)}
	for _, f := range files {
		s.TotalBytes += f.Size
		if f.Failed() {
			s.Failed++
		} else {
			s.Succeeded++
		}
	}
	return s
}
