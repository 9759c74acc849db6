package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jamesainslie/sift/pkg/sift/category"
	"github.com/jamesainslie/sift/pkg/sift/config"
	"github.com/jamesainslie/sift/pkg/sift/index"
	"github.com/jamesainslie/sift/pkg/sift/manifest"
	"github.com/jamesainslie/sift/pkg/sift/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommaSeparated(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a,b", []string{"a", "b"}},
		{" a , b ,, c ", []string{"a", "b", "c"}},
		{",", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseCommaSeparated(tt.input))
		})
	}
}

func TestResolvePath(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	t.Run("argument wins", func(t *testing.T) {
		cfg := &config.Config{DefaultPath: "/srv"}
		got, err := resolvePath([]string{"sub"}, cfg)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(cwd, "sub"), got)
	})

	t.Run("default path", func(t *testing.T) {
		cfg := &config.Config{DefaultPath: "/srv/data"}
		got, err := resolvePath(nil, cfg)
		require.NoError(t, err)
		assert.Equal(t, "/srv/data", got)
	})

	t.Run("falls back to cwd", func(t *testing.T) {
		got, err := resolvePath(nil, &config.Config{})
		require.NoError(t, err)
		assert.Equal(t, cwd, got)
	})

	t.Run("expands home", func(t *testing.T) {
		home, err := os.UserHomeDir()
		require.NoError(t, err)
		got, err := resolvePath([]string{"~/photos"}, &config.Config{})
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "photos"), got)
	})
}

func TestResolveSkip(t *testing.T) {
	skipFile := filepath.Join(t.TempDir(), "skip.txt")
	require.NoError(t, os.WriteFile(skipFile, []byte("# comment\nnode_modules\n\nbuild/out\n"), 0o644))

	cfg := &config.Config{Skip: []string{".git", "tmp, cache"}, SkipFile: skipFile}
	got, err := resolveSkip(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{".git", "tmp", "cache", "node_modules", "build/out"}, got)

	cfg.SkipFile = filepath.Join(t.TempDir(), "missing.txt")
	_, err = resolveSkip(cfg)
	assert.Error(t, err)
}

func TestWriteResultUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := writeResult(&buf, &config.Config{Format: "xml"}, output.FromQuery("idx", "PDF", nil))
	require.Error(t, err)
	assert.Zero(t, buf.Len())
}

func TestWriteResultJSON(t *testing.T) {
	matches := []index.Match{{Hash: "abc", Filename: "/a.pdf", Filetype: "PDF document", Filesize: "10"}}

	var buf bytes.Buffer
	require.NoError(t, writeResult(&buf, &config.Config{Format: "json"}, output.FromQuery("idx", "PDF", matches)))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "query", decoded["kind"])
	assert.Equal(t, "PDF", decoded["keyword"])
}

func TestNewGate(t *testing.T) {
	plan := category.Plan{Rule: category.Rule{Keyword: "PDF"}, Paths: []string{"/a.pdf"}}

	ok, err := newGate(true, true).Approve(plan)
	require.NoError(t, err)
	assert.False(t, ok, "dry run must deny even with --yes")

	ok, err = newGate(true, false).Approve(plan)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDescribePlan(t *testing.T) {
	paths := make([]string, maxPreview+3)
	for i := range paths {
		paths[i] = filepath.Join("/src", string(rune('a'+i))+".pdf")
	}
	plan := category.Plan{
		Rule:   category.Rule{Keyword: "PDF", Destination: "docs"},
		Mode:   category.ModeMove,
		Paths:  paths,
		Types:  []string{"PDF document"},
		Target: "/base/docs",
	}

	got := describePlan(plan)
	assert.Contains(t, got, `"PDF" matched 13 files (PDF document)`)
	assert.Contains(t, got, "Destination: /base/docs")
	assert.Contains(t, got, "... and 3 more")
	assert.NotContains(t, got, paths[maxPreview])
}

func TestDescribeFile(t *testing.T) {
	got := describeFile(manifest.FileRecord{Path: "/a", Target: "/b", Method: "moved", Error: "boom"})
	assert.Equal(t, "/a -> /b [moved] (error: boom)", got)
	assert.Equal(t, "/a", describeFile(manifest.FileRecord{Path: "/a"}))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abcdefg...", truncateString("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", truncateString("abcdef", 2))
	assert.True(t, strings.HasSuffix(truncateString(strings.Repeat("x", 50), 44), "..."))
}
