// Package main is the sift command: walk a tree, fingerprint and classify
// its files, index them, and move or delete files by content type.
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
