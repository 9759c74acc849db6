package output

import (
	"bytes"
	"encoding/json"
)

// JSONFormatter writes the Result as one indented JSON document.
type JSONFormatter struct{}

var _ Formatter = (*JSONFormatter)(nil)

// Format writes r to w.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func init() {
	Register("json", func() Formatter { return &JSONFormatter{} })
}
