// Package output renders sift results as pretty, plain, json, yaml or
// paths text.
//
// Formatters are looked up by name from a registry:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    return err
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, output.FromScan(result)); err != nil {
//	    return err
//	}
package output

import (
	"bytes"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jamesainslie/sift/pkg/sift/category"
	"github.com/jamesainslie/sift/pkg/sift/index"
	"github.com/jamesainslie/sift/pkg/sift/traverse"
	"github.com/jamesainslie/sift/pkg/sift/types"
)

// Kind says which command produced a Result.
type Kind string

// Result kinds.
const (
	KindScan     Kind = "scan"
	KindQuery    Kind = "query"
	KindCategory Kind = "category"
)

// TypeCount is one row of the type histogram.
type TypeCount struct {
	Type  string `json:"type" yaml:"type"`
	Count int    `json:"count" yaml:"count"`
}

// DuplicateGroup is a set of paths sharing one content hash.
type DuplicateGroup struct {
	Hash  string   `json:"hash" yaml:"hash"`
	Size  int64    `json:"size" yaml:"size"`
	Paths []string `json:"paths" yaml:"paths"`

	// Spurious marks groups keyed by the zero-length sentinel.
	Spurious bool `json:"spurious,omitempty" yaml:"spurious,omitempty"`
}

// IndexSummary reports an index write.
type IndexSummary struct {
	Path       string            `json:"path" yaml:"path"`
	Mode       index.Mode        `json:"mode" yaml:"mode"`
	Attempted  int               `json:"attempted" yaml:"attempted"`
	Inserted   int               `json:"inserted" yaml:"inserted"`
	Collisions []index.Collision `json:"collisions,omitempty" yaml:"collisions,omitempty"`
}

// CategoryFile is the outcome for one file of a category batch.
type CategoryFile struct {
	Path   string `json:"path" yaml:"path"`
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
	Method string `json:"method,omitempty" yaml:"method,omitempty"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// CategoryResult reports one category rule.
type CategoryResult struct {
	Keyword     string         `json:"keyword" yaml:"keyword"`
	Destination string         `json:"destination,omitempty" yaml:"destination,omitempty"`
	Mode        category.Mode  `json:"mode" yaml:"mode"`
	Types       []string       `json:"types" yaml:"types"`
	Matched     int            `json:"matched" yaml:"matched"`
	Approved    bool           `json:"approved" yaml:"approved"`
	Attempted   int            `json:"attempted" yaml:"attempted"`
	Succeeded   int            `json:"succeeded" yaml:"succeeded"`
	Failed      int            `json:"failed" yaml:"failed"`
	Error       string         `json:"error,omitempty" yaml:"error,omitempty"`
	SyncError   string         `json:"sync_error,omitempty" yaml:"sync_error,omitempty"`
	Paths       []string       `json:"paths" yaml:"paths"`
	Files       []CategoryFile `json:"files,omitempty" yaml:"files,omitempty"`
}

// Result is everything a formatter can render. Only the sections for
// Kind are populated.
type Result struct {
	Kind   Kind   `json:"kind" yaml:"kind"`
	Source string `json:"source" yaml:"source"`

	Stats      *types.Stats        `json:"stats,omitempty" yaml:"stats,omitempty"`
	Types      []TypeCount         `json:"types,omitempty" yaml:"types,omitempty"`
	Duplicates []DuplicateGroup    `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
	Empty      []types.EmptyEntity `json:"empty,omitempty" yaml:"empty,omitempty"`
	Records    []types.FileRecord  `json:"records,omitempty" yaml:"records,omitempty"`
	Errors     []types.ScanError   `json:"errors,omitempty" yaml:"errors,omitempty"`
	Index      *IndexSummary       `json:"index,omitempty" yaml:"index,omitempty"`

	Keyword string        `json:"keyword,omitempty" yaml:"keyword,omitempty"`
	Matches []index.Match `json:"matches,omitempty" yaml:"matches,omitempty"`

	Categories []CategoryResult `json:"categories,omitempty" yaml:"categories,omitempty"`

	Warnings    []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Interrupted bool     `json:"interrupted,omitempty" yaml:"interrupted,omitempty"`
}

// FromScan converts a walk result. Records are only included when
// withRecords is set.
func FromScan(r *traverse.Result, withRecords bool) *Result {
	out := &Result{Kind: KindScan, Source: r.Root}
	stats := r.Stats
	out.Stats = &stats

	for t, n := range r.TypeCounts {
		out.Types = append(out.Types, TypeCount{Type: t, Count: n})
	}
	sort.Slice(out.Types, func(i, j int) bool {
		if out.Types[i].Count != out.Types[j].Count {
			return out.Types[i].Count > out.Types[j].Count
		}
		return out.Types[i].Type < out.Types[j].Type
	})

	sizes := make(map[string]int64, len(r.Duplicates))
	for _, rec := range r.Records {
		if _, ok := r.Duplicates[rec.Hash]; ok {
			sizes[rec.Hash] = rec.Size
		}
	}
	for hash, paths := range r.Duplicates {
		out.Duplicates = append(out.Duplicates, DuplicateGroup{
			Hash:     hash,
			Size:     sizes[hash],
			Paths:    slices.Clone(paths),
			Spurious: types.IsEmptyHash(hash),
		})
	}
	// Largest potential savings first.
	sort.Slice(out.Duplicates, func(i, j int) bool {
		a, b := out.Duplicates[i], out.Duplicates[j]
		wa, wb := a.Size*int64(len(a.Paths)-1), b.Size*int64(len(b.Paths)-1)
		if wa != wb {
			return wa > wb
		}
		return a.Paths[0] < b.Paths[0]
	})

	out.Empty = r.Empty
	out.Errors = r.Errors
	if withRecords {
		out.Records = r.Records
	}
	return out
}

// WithIndex attaches an index write report.
func (r *Result) WithIndex(path string, rep *index.WriteReport) *Result {
	if rep == nil {
		return r
	}
	r.Index = &IndexSummary{
		Path:       path,
		Mode:       rep.Mode,
		Attempted:  rep.Attempted,
		Inserted:   rep.Inserted,
		Collisions: rep.Collisions,
	}
	return r
}

// FromQuery converts index matches for keyword.
func FromQuery(source, keyword string, matches []index.Match) *Result {
	if matches == nil {
		matches = []index.Match{}
	}
	return &Result{Kind: KindQuery, Source: source, Keyword: keyword, Matches: matches}
}

// FromCategories converts category reports.
func FromCategories(source string, reports []category.Report) *Result {
	out := &Result{Kind: KindCategory, Source: source, Categories: []CategoryResult{}}
	for _, rep := range reports {
		cr := CategoryResult{
			Keyword:     rep.Plan.Rule.Keyword,
			Destination: rep.Plan.Target,
			Mode:        rep.Plan.Mode,
			Types:       rep.Plan.Types,
			Matched:     len(rep.Plan.Paths),
			Approved:    rep.Approved,
			Attempted:   rep.Attempted(),
			Succeeded:   rep.Succeeded(),
			Failed:      rep.Failed(),
			Error:       errString(rep.Err),
			SyncError:   errString(rep.SyncErr),
			Paths:       rep.Plan.Paths,
		}
		for _, o := range rep.Outcomes {
			cr.Files = append(cr.Files, CategoryFile{
				Path:   o.Path,
				Target: o.Target,
				Method: o.Method,
				Error:  errString(o.Err),
			})
		}
		out.Categories = append(out.Categories, cr)
	}
	return out
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// DuplicateFiles returns the number of files that belong to a group.
func (r *Result) DuplicateFiles() int {
	n := 0
	for _, g := range r.Duplicates {
		n += len(g.Paths)
	}
	return n
}

// Reclaimable returns the bytes freed by keeping one copy per group.
func (r *Result) Reclaimable() int64 {
	var total int64
	for _, g := range r.Duplicates {
		total += g.Size * int64(len(g.Paths)-1)
	}
	return total
}

// Formatter renders a Result.
type Formatter interface {
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory creates a Formatter.
type FormatterFactory func() Formatter

// Registry maps format names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]FormatterFactory)}
}

// Register adds or replaces a formatter.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown output format %q (available: %s)",
			types.ErrConfig, name, strings.Join(r.names(), ", "))
	}
	return factory(), nil
}

// Available returns the registered names in order.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.names()
}

func (r *Registry) names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry holds the built-in formatters.
var DefaultRegistry = NewRegistry()

// Register adds a formatter to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a formatter from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available lists the default registry's formats.
func Available() []string {
	return DefaultRegistry.Available()
}

// formatDuration renders d for humans: 850ms, 4.2s, 3m 10s, 1h 5m.
func formatDuration(d time.Duration) string {
	sec := d.Seconds()
	switch {
	case sec < 1:
		return fmt.Sprintf("%.0fms", sec*1000)
	case sec < 60:
		return fmt.Sprintf("%.1fs", sec)
	}
	minutes := int(sec) / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, int(sec)%60)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
