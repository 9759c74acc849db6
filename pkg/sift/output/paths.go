package output

import "bytes"

// PathsFormatter writes one path per line for piping. A scan lists the
// redundant copies of each duplicate group, keeping out the copy that was
// discovered first. Queries list matches and category runs list the files
// they moved or deleted.
type PathsFormatter struct{}

var _ Formatter = (*PathsFormatter)(nil)

// Format writes r to w.
func (f *PathsFormatter) Format(w *bytes.Buffer, r *Result) error {
	line := func(s string) {
		w.WriteString(s)
		w.WriteByte('\n')
	}

	switch r.Kind {
	case KindQuery:
		for _, m := range r.Matches {
			line(m.Filename)
		}
	case KindCategory:
		for _, c := range r.Categories {
			for _, file := range c.Files {
				if file.Error != "" {
					continue
				}
				if file.Target != "" {
					line(file.Target)
				} else {
					line(file.Path)
				}
			}
		}
	default:
		for _, g := range r.Duplicates {
			// Groups are ordered [second, first, third, ...].
			for i, p := range g.Paths {
				if i != 1 {
					line(p)
				}
			}
		}
	}
	return nil
}

func init() {
	Register("paths", func() Formatter { return &PathsFormatter{} })
}
