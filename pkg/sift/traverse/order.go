package traverse

import (
	"slices"
	"strings"
)

// position locates an entity in top-down discovery order: dirs are the
// path components of the containing directory and name the file name.
// A directory entity uses its own components and an empty name, which
// places it after its parent's files and before its own contents.
type position struct {
	dirs []string
	name string
}

func filePosition(rel string) position {
	parts := strings.Split(rel, "/")
	return position{dirs: parts[:len(parts)-1], name: parts[len(parts)-1]}
}

func dirPosition(rel string) position {
	if rel == "" || rel == "." {
		return position{}
	}
	return position{dirs: strings.Split(rel, "/")}
}

// comparePositions orders entities the way a sequential top-down walk
// yields them: a directory's own files by name, then each subdirectory
// in name order.
func comparePositions(a, b position) int {
	n := min(len(a.dirs), len(b.dirs))
	for i := 0; i < n; i++ {
		if c := strings.Compare(a.dirs[i], b.dirs[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a.dirs) == len(b.dirs):
		return strings.Compare(a.name, b.name)
	case len(a.dirs) < len(b.dirs):
		// a sits in an ancestor of b's directory.
		return -1
	default:
		return 1
	}
}

// sortDiscovery sorts relative slash paths in discovery order using pos
// to build each entry's position.
func sortDiscovery[T any](items []T, pos func(T) position) {
	slices.SortStableFunc(items, func(a, b T) int {
		return comparePositions(pos(a), pos(b))
	})
}
