// Package category moves or deletes indexed files by content type.
//
// A Map lists keyword rules. For each rule the engine queries the index for
// records whose type contains the keyword, shows the resulting Plan to a
// Gate, and only touches the filesystem when the gate approves. Moves go
// into a freshly created destination directory; a directory that already
// exists aborts that rule and leaves its files alone.
//
// The index is a point-in-time snapshot. Unless an IndexSyncer is
// configured, moved and deleted files keep their rows and a re-index is
// needed to bring it back in line with the filesystem.
package category

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jamesainslie/sift/pkg/sift/index"
	"github.com/jamesainslie/sift/pkg/sift/logging"
	"github.com/jamesainslie/sift/pkg/sift/trash"
	"github.com/jamesainslie/sift/pkg/sift/types"
)

// Mode selects what Apply does with matched files.
type Mode string

// Modes.
const (
	ModeMove   Mode = "move"
	ModeDelete Mode = "delete"
)

// ParseMode parses "move" or "delete".
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeMove:
		return ModeMove, nil
	case ModeDelete:
		return ModeDelete, nil
	}
	return "", fmt.Errorf("%w: unknown category mode %q", types.ErrConfig, s)
}

// Rule maps a type keyword to a destination directory name.
// Destination is ignored in delete mode.
type Rule struct {
	Keyword     string `json:"keyword" yaml:"keyword"`
	Destination string `json:"destination,omitempty" yaml:"destination,omitempty"`
}

// Map is an ordered list of rules, applied in order.
type Map []Rule

// Keywords returns the rule keywords in order.
func (m Map) Keywords() []string {
	out := make([]string, len(m))
	for i, r := range m {
		out[i] = r.Keyword
	}
	return out
}

// Querier finds indexed files by type keyword. *index.Store implements it.
type Querier interface {
	QueryByTypeSubstring(ctx context.Context, keyword string) ([]index.Match, error)
}

// IndexSyncer updates index rows after files move or disappear.
// *index.Store implements it.
type IndexSyncer interface {
	ForgetPaths(ctx context.Context, paths []string) (int64, error)
	RelocatePath(ctx context.Context, from, to string) error
}

var (
	_ Querier     = (*index.Store)(nil)
	_ IndexSyncer = (*index.Store)(nil)
)

// Options configures an Engine.
type Options struct {
	Mode Mode

	// Gate approves plans. Nil denies everything.
	Gate Gate

	// Remover deletes files in delete mode. Nil uses trash.Permanent.
	Remover trash.Remover

	// Sync, when set, keeps index rows in step with moves and deletes.
	Sync IndexSyncer
}

// Plan is what a rule would do, shown to the gate before any change.
type Plan struct {
	Rule  Rule     `json:"rule" yaml:"rule"`
	Mode  Mode     `json:"mode" yaml:"mode"`
	Paths []string `json:"paths" yaml:"paths"`

	// Types is the sorted set of distinct labels the keyword matched.
	Types []string `json:"types" yaml:"types"`

	// Target is the destination directory in move mode.
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
}

// Outcome is the result for one file.
type Outcome struct {
	Path   string `json:"path" yaml:"path"`
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
	Method string `json:"method,omitempty" yaml:"method,omitempty"`
	Err    error  `json:"-" yaml:"-"`
}

// Failed reports whether the file could not be processed.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Report is the result of one rule.
type Report struct {
	Plan     Plan      `json:"plan" yaml:"plan"`
	Approved bool      `json:"approved" yaml:"approved"`
	Outcomes []Outcome `json:"outcomes,omitempty" yaml:"outcomes,omitempty"`

	// Err is set when the whole rule failed: query, gate, or destination.
	Err error `json:"-" yaml:"-"`

	// SyncErr is set when the index could not be updated afterwards.
	SyncErr error `json:"-" yaml:"-"`
}

// Attempted is the number of files the rule tried to process.
func (r Report) Attempted() int {
	return len(r.Outcomes)
}

// Succeeded is the number of files processed without error.
func (r Report) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err == nil {
			n++
		}
	}
	return n
}

// Failed is the number of files that could not be processed.
func (r Report) Failed() int {
	return r.Attempted() - r.Succeeded()
}

// Engine applies category maps against an index.
type Engine struct {
	q      Querier
	opts   Options
	logger *logging.Logger
}

// New creates an Engine.
func New(q Querier, opts Options) *Engine {
	if opts.Mode == "" {
		opts.Mode = ModeMove
	}
	if opts.Gate == nil {
		opts.Gate = DenyAll
	}
	if opts.Remover == nil {
		opts.Remover = trash.Permanent{}
	}
	return &Engine{q: q, opts: opts, logger: logging.Get("category")}
}

// Validate checks basePath and m without touching the filesystem.
func (e *Engine) Validate(basePath string, m Map) error {
	if len(m) == 0 {
		return fmt.Errorf("%w: empty category map", types.ErrConfig)
	}
	for i, r := range m {
		if strings.TrimSpace(r.Keyword) == "" {
			return fmt.Errorf("%w: rule %d has an empty keyword", types.ErrConfig, i)
		}
		if e.opts.Mode != ModeMove {
			continue
		}
		if err := validDestination(r.Destination); err != nil {
			return fmt.Errorf("%w: rule %q: %v", types.ErrConfig, r.Keyword, err)
		}
	}
	if e.opts.Mode == ModeMove {
		info, err := os.Stat(basePath)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", types.ErrNotADirectory, basePath, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%w: %s", types.ErrNotADirectory, basePath)
		}
	}
	return nil
}

func validDestination(dest string) error {
	if strings.TrimSpace(dest) == "" {
		return errors.New("empty destination")
	}
	if filepath.IsAbs(dest) {
		return fmt.Errorf("destination %q must be relative", dest)
	}
	clean := filepath.Clean(dest)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("destination %q escapes the base path", dest)
	}
	return nil
}

// Apply runs every rule of m in order. Structural problems are returned
// before any change. Everything else is recorded in the reports: a failed
// rule does not stop the next one, and a failed file does not stop its
// batch.
func (e *Engine) Apply(ctx context.Context, basePath string, m Map) ([]Report, error) {
	if err := e.Validate(basePath, m); err != nil {
		return nil, err
	}
	if e.opts.Sync == nil {
		e.logger.Warn("index will not reflect category changes until re-indexed", "mode", e.opts.Mode)
	}

	reports := make([]Report, 0, len(m))
	for _, rule := range m {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		reports = append(reports, e.applyRule(ctx, basePath, rule))
	}
	return reports, nil
}

// PlanRule queries the index for rule without changing anything.
func (e *Engine) PlanRule(ctx context.Context, basePath string, rule Rule) (Plan, error) {
	plan := Plan{Rule: rule, Mode: e.opts.Mode, Paths: []string{}, Types: []string{}}
	if e.opts.Mode == ModeMove {
		plan.Target = filepath.Join(basePath, rule.Destination)
	}

	matches, err := e.q.QueryByTypeSubstring(ctx, rule.Keyword)
	if err != nil {
		return plan, fmt.Errorf("query %q: %w", rule.Keyword, err)
	}

	seen := make(map[string]struct{})
	for _, m := range matches {
		plan.Paths = append(plan.Paths, m.Filename)
		if _, ok := seen[m.Filetype]; !ok {
			seen[m.Filetype] = struct{}{}
			plan.Types = append(plan.Types, m.Filetype)
		}
	}
	slices.Sort(plan.Types)
	return plan, nil
}

func (e *Engine) applyRule(ctx context.Context, basePath string, rule Rule) Report {
	plan, err := e.PlanRule(ctx, basePath, rule)
	report := Report{Plan: plan}
	if err != nil {
		report.Err = err
		e.logger.Error("category query failed", "keyword", rule.Keyword, "error", err)
		return report
	}

	e.logger.Info("category plan",
		"keyword", rule.Keyword,
		"mode", plan.Mode,
		"files", len(plan.Paths),
		"types", strings.Join(plan.Types, "; "),
		"target", plan.Target,
	)

	approved, err := e.opts.Gate.Approve(plan)
	if err != nil {
		report.Err = fmt.Errorf("confirm %q: %w", rule.Keyword, err)
		return report
	}
	if !approved {
		e.logger.Info("category declined", "keyword", rule.Keyword)
		return report
	}
	report.Approved = true

	switch plan.Mode {
	case ModeMove:
		e.move(ctx, &report)
	case ModeDelete:
		e.remove(ctx, &report)
	}

	e.logger.Info("category applied",
		"keyword", rule.Keyword,
		"attempted", report.Attempted(),
		"succeeded", report.Succeeded(),
		"failed", report.Failed(),
	)
	return report
}

func (e *Engine) move(ctx context.Context, report *Report) {
	target := report.Plan.Target
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		report.Err = fmt.Errorf("create %s: %w", filepath.Dir(target), err)
		return
	}
	if err := os.Mkdir(target, 0o755); err != nil {
		if os.IsExist(err) {
			report.Err = fmt.Errorf("%w: %s", types.ErrDestinationExists, target)
		} else {
			report.Err = fmt.Errorf("create %s: %w", target, err)
		}
		e.logger.Error("category move aborted", "target", target, "error", report.Err)
		return
	}

	for _, path := range report.Plan.Paths {
		if ctx.Err() != nil {
			break
		}
		out := Outcome{Path: path, Method: string(ModeMove)}
		dst, err := uniqueName(target, filepath.Base(path))
		if err == nil {
			err = moveFile(path, dst)
		}
		if err != nil {
			out.Err = fmt.Errorf("%w: move %s: %v", types.ErrIO, path, err)
			e.logger.Warn("move failed", "path", path, "error", err)
		} else {
			out.Target = dst
			e.logger.Debug("moved", "from", path, "to", dst)
		}
		report.Outcomes = append(report.Outcomes, out)
	}

	if e.opts.Sync == nil {
		return
	}
	for _, o := range report.Outcomes {
		if o.Err != nil {
			continue
		}
		if err := e.opts.Sync.RelocatePath(ctx, o.Path, o.Target); err != nil {
			report.SyncErr = errors.Join(report.SyncErr, err)
		}
	}
}

func (e *Engine) remove(ctx context.Context, report *Report) {
	var removed []string
	for _, path := range report.Plan.Paths {
		if ctx.Err() != nil {
			break
		}
		out := Outcome{Path: path}
		method, err := e.opts.Remover.Remove(ctx, path)
		if err != nil {
			out.Err = fmt.Errorf("%w: delete %s: %v", types.ErrIO, path, err)
			e.logger.Warn("delete failed", "path", path, "error", err)
		} else {
			out.Method = string(method)
			removed = append(removed, path)
			e.logger.Debug("deleted", "path", path, "method", method)
		}
		report.Outcomes = append(report.Outcomes, out)
	}

	if e.opts.Sync == nil || len(removed) == 0 {
		return
	}
	if _, err := e.opts.Sync.ForgetPaths(ctx, removed); err != nil {
		report.SyncErr = err
	}
}
