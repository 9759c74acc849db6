// Package cache persists file digests between walks so unchanged files are
// not re-read. Entries are keyed by digest algorithm and absolute path and
// are valid only while the file's size and modification time still match.
package cache

import (
	"bytes"
	"encoding/gob"
)

// Version is incremented when the entry encoding changes.
const Version = 1

// KeySeparator separates the algorithm from the path in keys.
const KeySeparator = '\x00'

// Entry is the cached fingerprint of one file.
type Entry struct {
	Version int
	Size    int64 // bytes at the time of hashing
	Mtime   int64 // modification time as UnixNano
	Hash    string
	Type    string // primary classification label
}

// Matches reports whether the entry still describes a file of the given
// size and modification time.
func (e *Entry) Matches(size, mtime int64) bool {
	return e.Version == Version && e.Size == size && e.Mtime == mtime
}

// Encode serializes the entry with gob.
func (e *Entry) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode deserializes data into the entry.
func (e *Entry) Decode(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(e)
}

// MakeKey builds the key <algorithm>\x00<path>.
func MakeKey(algorithm, path string) []byte {
	return []byte(algorithm + string(KeySeparator) + path)
}

// ParseKey splits a key into algorithm and path.
func ParseKey(key []byte) (algorithm, path string) {
	idx := bytes.IndexByte(key, KeySeparator)
	if idx == -1 {
		return string(key), ""
	}
	return string(key[:idx]), string(key[idx+1:])
}

// MakeKeyPrefix returns the prefix shared by every key of algorithm.
func MakeKeyPrefix(algorithm string) []byte {
	return []byte(algorithm + string(KeySeparator))
}
