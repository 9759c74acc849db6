package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jamesainslie/sift/pkg/sift/types"
)

// PrettyFormatter renders styled terminal output.
type PrettyFormatter struct{}

var _ Formatter = (*PrettyFormatter)(nil)

// Format writes r to w.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	switch r.Kind {
	case KindQuery:
		f.query(w, r)
	case KindCategory:
		f.categories(w, r)
	default:
		f.scan(w, r)
	}
	f.warnings(w, r)
	return nil
}

func (f *PrettyFormatter) header(title string, pairs ...string) string {
	lines := []string{TitleStyle.Render(title)}
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, LabelStyle.Render(pairs[i]+":")+" "+ValueStyle.Render(pairs[i+1]))
	}
	if len(parts) > 0 {
		lines = append(lines, strings.Join(parts, "  "))
	}
	return HeaderBox.Render(strings.Join(lines, "\n")) + "\n"
}

func (f *PrettyFormatter) scan(w *bytes.Buffer, r *Result) {
	var pairs []string
	pairs = append(pairs, "Source", r.Source)
	if r.Stats != nil {
		pairs = append(pairs,
			"Scanned", fmt.Sprintf("%d files, %d dirs in %s", r.Stats.FilesScanned, r.Stats.DirsScanned, formatDuration(r.Stats.Elapsed)),
			"Size", types.FormatSize(r.Stats.TotalBytes),
		)
		if r.Stats.CacheHits > 0 {
			pairs = append(pairs, "Cached", fmt.Sprintf("%d", r.Stats.CacheHits))
		}
	}
	w.WriteString(f.header("sift scan", pairs...))
	if r.Interrupted {
		w.WriteString(WarningStyle.Bold(true).Render("Scan interrupted") + "\n")
	}

	w.WriteString(SectionStyle.Render("Types") + "\n")
	if len(r.Types) == 0 {
		w.WriteString(MutedStyle.Render("  no files") + "\n")
	}
	width := 0
	for _, tc := range r.Types {
		width = max(width, len(fmt.Sprint(tc.Count)))
	}
	for _, tc := range r.Types {
		fmt.Fprintf(w, "  %s  %s\n", SizeStyle.Render(padLeft(fmt.Sprint(tc.Count), width)), ValueStyle.Render(tc.Type))
	}

	w.WriteString("\n" + SectionStyle.Render("Duplicates") + "\n")
	if len(r.Duplicates) == 0 {
		w.WriteString(MutedStyle.Render("  none") + "\n")
	}
	for _, g := range r.Duplicates {
		label := fmt.Sprintf("%d copies of %s", len(g.Paths), types.FormatSize(g.Size))
		if g.Spurious {
			label += " (empty)"
		}
		fmt.Fprintf(w, "  %s %s\n", SizeStyle.Render(label), MutedStyle.Render(shortHash(g.Hash)))
		for _, p := range g.Paths {
			fmt.Fprintf(w, "    %s\n", PathStyle.Render(p))
		}
	}

	if len(r.Empty) > 0 {
		w.WriteString("\n" + SectionStyle.Render("Empty") + "\n")
		for _, e := range r.Empty {
			kind := "file"
			if e.IsDir {
				kind = "dir "
			}
			fmt.Fprintf(w, "  %s %s\n", MutedStyle.Render(kind), PathStyle.Render(e.Path))
		}
	}

	if len(r.Records) > 0 {
		w.WriteString("\n" + SectionStyle.Render("Files") + "\n")
		for _, rec := range r.Records {
			fmt.Fprintf(w, "  %s  %s  %s\n", SizeStyle.Render(padLeft(rec.HumanSize(), 9)), MutedStyle.Render(rec.Type), PathStyle.Render(rec.Path))
		}
	}

	f.errors(w, r.Errors)

	if r.Index != nil {
		w.WriteString("\n" + SectionStyle.Render("Index") + "\n")
		fmt.Fprintf(w, "  %s %s  %s %s  %s %d/%d\n",
			LabelStyle.Render("Path:"), ValueStyle.Render(r.Index.Path),
			LabelStyle.Render("Mode:"), ValueStyle.Render(string(r.Index.Mode)),
			LabelStyle.Render("Inserted:"), r.Index.Inserted, r.Index.Attempted)
		for _, c := range r.Index.Collisions {
			fmt.Fprintf(w, "  %s %s\n", WarningStyle.Render("already indexed:"), PathStyle.Render(c.Path))
		}
	}

	footer := []string{
		LabelStyle.Render("Groups:") + " " + ValueStyle.Render(fmt.Sprint(len(r.Duplicates))),
		LabelStyle.Render("Duplicate files:") + " " + ValueStyle.Render(fmt.Sprint(r.DuplicateFiles())),
		LabelStyle.Render("Reclaimable:") + " " + SizeStyle.Render(types.FormatSize(r.Reclaimable())),
	}
	w.WriteString(FooterBox.Render(strings.Join(footer, "  ")) + "\n")
}

func (f *PrettyFormatter) query(w *bytes.Buffer, r *Result) {
	w.WriteString(f.header("sift query", "Index", r.Source, "Keyword", r.Keyword, "Matches", fmt.Sprint(len(r.Matches))))
	if len(r.Matches) == 0 {
		w.WriteString(MutedStyle.Render("  no indexed files match") + "\n")
		return
	}
	for _, m := range r.Matches {
		fmt.Fprintf(w, "  %s  %s  %s\n",
			SizeStyle.Render(padLeft(types.FormatSize(m.Size()), 9)),
			MutedStyle.Render(m.Filetype),
			PathStyle.Render(m.Filename))
	}
}

func (f *PrettyFormatter) categories(w *bytes.Buffer, r *Result) {
	w.WriteString(f.header("sift categories", "Base", r.Source, "Rules", fmt.Sprint(len(r.Categories))))
	for _, c := range r.Categories {
		title := fmt.Sprintf("%s %q", c.Mode, c.Keyword)
		if c.Destination != "" {
			title += " -> " + c.Destination
		}
		w.WriteString(SectionStyle.Render(title) + "\n")
		fmt.Fprintf(w, "  %s %d  %s %s\n",
			LabelStyle.Render("matched:"), c.Matched,
			LabelStyle.Render("types:"), ValueStyle.Render(strings.Join(c.Types, "; ")))

		switch {
		case c.Error != "":
			fmt.Fprintf(w, "  %s\n", ErrorStyle.Render(c.Error))
		case !c.Approved:
			fmt.Fprintf(w, "  %s\n", MutedStyle.Render("not applied"))
		default:
			status := SuccessStyle.Render(fmt.Sprintf("%d/%d done", c.Succeeded, c.Attempted))
			if c.Failed > 0 {
				status += "  " + ErrorStyle.Render(fmt.Sprintf("%d failed", c.Failed))
			}
			fmt.Fprintf(w, "  %s\n", status)
		}
		for _, file := range c.Files {
			if file.Error != "" {
				fmt.Fprintf(w, "    %s %s\n", ErrorStyle.Render("x"), ErrorStyle.Render(file.Error))
			}
		}
		if c.SyncError != "" {
			fmt.Fprintf(w, "  %s %s\n", WarningStyle.Render("index sync:"), c.SyncError)
		}
		w.WriteString("\n")
	}
}

func (f *PrettyFormatter) errors(w *bytes.Buffer, errs []types.ScanError) {
	if len(errs) == 0 {
		return
	}
	w.WriteString("\n" + ErrorStyle.Bold(true).Render(fmt.Sprintf("Errors (%d)", len(errs))) + "\n")
	for _, e := range errs {
		fmt.Fprintf(w, "  %s %s\n", PathStyle.Render(e.Path), ErrorStyle.Render(e.Error))
	}
}

func (f *PrettyFormatter) warnings(w *bytes.Buffer, r *Result) {
	if len(r.Warnings) == 0 {
		return
	}
	w.WriteString("\n" + WarningStyle.Bold(true).Render("Warnings:") + "\n")
	for _, warning := range r.Warnings {
		w.WriteString(WarningStyle.Render("  "+warning) + "\n")
	}
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func init() {
	Register("pretty", func() Formatter { return &PrettyFormatter{} })
}
