package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"
)

// PlainFormatter writes unstyled, tab-aligned text for scripts.
type PlainFormatter struct{}

var _ Formatter = (*PlainFormatter)(nil)

// Format writes r to w.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	switch r.Kind {
	case KindQuery:
		fmt.Fprintln(tw, "SIZE\tTYPE\tPATH")
		for _, m := range r.Matches {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", m.Size(), m.Filetype, m.Filename)
		}
	case KindCategory:
		fmt.Fprintln(tw, "MODE\tKEYWORD\tMATCHED\tAPPLIED\tOK\tFAILED\tERROR")
		for _, c := range r.Categories {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%t\t%d\t%d\t%s\n",
				c.Mode, c.Keyword, c.Matched, c.Approved, c.Succeeded, c.Failed, c.Error)
		}
	default:
		fmt.Fprintln(tw, "COUNT\tTYPE")
		for _, tc := range r.Types {
			fmt.Fprintf(tw, "%d\t%s\n", tc.Count, tc.Type)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		for _, g := range r.Duplicates {
			fmt.Fprintf(w, "\n%s %d\n", g.Hash, g.Size)
			for _, p := range g.Paths {
				fmt.Fprintf(w, "  %s\n", p)
			}
		}
		if len(r.Empty) > 0 {
			w.WriteString("\nEMPTY\n")
			for _, e := range r.Empty {
				fmt.Fprintf(w, "  %s\n", e.Path)
			}
		}
		for _, e := range r.Errors {
			fmt.Fprintf(w, "error: %s: %s\n", e.Path, e.Error)
		}
		if r.Index != nil {
			fmt.Fprintf(w, "index: %s %s inserted=%d attempted=%d collisions=%d\n",
				r.Index.Path, r.Index.Mode, r.Index.Inserted, r.Index.Attempted, len(r.Index.Collisions))
		}
	}

	if err := tw.Flush(); err != nil {
		return err
	}
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	return nil
}

func init() {
	Register("plain", func() Formatter { return &PlainFormatter{} })
}
