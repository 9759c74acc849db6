// Package classify assigns human-readable content-type labels to files.
//
// Labels follow the comma-delimited convention of magic-byte tools: a short
// description first, then detail. Callers that need a stable category key
// use Primary to keep only the leading segment.
package classify

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/jamesainslie/sift/pkg/sift/types"
)

// Labels used when content cannot be described.
const (
	// EmptyLabel is the label of zero-length files.
	EmptyLabel = "empty"

	// FallbackLabel is used when classification fails.
	FallbackLabel = "data"
)

// HeaderSize is the number of leading bytes inspected per file.
const HeaderSize = 3072

// Classifier describes a file's content.
type Classifier interface {
	// Classify returns a comma-delimited description of path's content.
	Classify(path string) (string, error)
}

// Func adapts a function to the Classifier interface.
type Func func(path string) (string, error)

// Classify calls f(path).
func (f Func) Classify(path string) (string, error) {
	return f(path)
}

// Primary returns the text before the first comma of raw, trimmed.
func Primary(raw string) string {
	if i := strings.IndexByte(raw, ','); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimSpace(raw)
}

// Magic classifies files by sniffing their leading bytes.
type Magic struct{}

var _ Classifier = (*Magic)(nil)

// NewMagic returns a magic-byte classifier.
func NewMagic() *Magic {
	return &Magic{}
}

// Classify reads up to HeaderSize bytes of path and describes them, e.g.
// "PDF document, application/pdf".
func (m *Magic) Classify(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %w", types.ErrIO, path, err)
	}
	defer file.Close()

	header := make([]byte, HeaderSize)
	n, err := io.ReadFull(file, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("%w: read %s: %w", types.ErrIO, path, err)
	}
	header = header[:n]

	return Describe(header), nil
}

// Describe returns the label for content whose first bytes are header.
func Describe(header []byte) string {
	if len(header) == 0 {
		return EmptyLabel
	}

	detected := mimetype.Detect(header)
	mime := baseType(detected.String())

	for node := detected; node != nil; node = node.Parent() {
		base := baseType(node.String())
		if base == "text/plain" {
			return textLabel(header) + ", " + mime
		}
		if desc, ok := descriptions[base]; ok {
			return desc + ", " + mime
		}
	}

	return mime
}

func baseType(mime string) string {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return strings.TrimSpace(mime)
}

func textLabel(header []byte) string {
	for _, b := range header {
		if b >= 0x80 {
			return "UTF-8 Unicode text"
		}
	}
	return "ASCII text"
}
