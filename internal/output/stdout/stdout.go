// Package stdout prints one JSON document per report to the command's
// standard output.
package stdout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/hejijunhao/annotate/internal/output"
)

// Output encodes reports onto w.
type Output struct {
	enc *json.Encoder
}

// New returns an Output writing to w, normally cmd.OutOrStdout(). With pretty
// set each report is indented by two spaces; otherwise one report is one line.
func New(w io.Writer, pretty bool) *Output {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return &Output{enc: enc}
}

func (o *Output) Write(_ context.Context, r output.Report) error {
	if err := o.enc.Encode(r); err != nil {
		return fmt.Errorf("stdout: encode %s report: %w", r.Kind, err)
	}
	return nil
}

// Close is a no-op; the writer belongs to the caller.
func (o *Output) Close() error { return nil }
