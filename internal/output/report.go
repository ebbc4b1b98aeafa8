package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Field is a labelled value in a report header.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Report is a compound Renderable: a titled header of fields followed by
// its parts in order.
type Report struct {
	Title  string       `json:"title,omitempty"`
	Fields []Field      `json:"fields,omitempty"`
	Parts  []Renderable `json:"-"`
	// Data replaces the assembled parts in structured encodings.
	Data any `json:"data,omitempty"`
}

func (r *Report) RenderData() any {
	if r.Data != nil {
		return r.Data
	}
	parts := make([]any, len(r.Parts))
	for i, p := range r.Parts {
		parts[i] = p.RenderData()
	}
	return map[string]any{
		"title":    r.Title,
		"fields":   r.Fields,
		"sections": parts,
	}
}

func (r *Report) RenderText(w io.Writer, colored bool) error {
	writeHeading(w, r.Title, colored, color.Bold, color.FgCyan)
	if len(r.Fields) > 0 {
		width := 0
		for _, f := range r.Fields {
			width = max(width, len(f.Label))
		}
		for _, f := range r.Fields {
			fmt.Fprintf(w, "%-*s  %s\n", width+1, f.Label+":", f.Value)
		}
		fmt.Fprintln(w)
	}
	for _, p := range r.Parts {
		if err := p.RenderText(w, colored); err != nil {
			return err
		}
	}
	return nil
}

func (r *Report) RenderMarkdown(w io.Writer) error {
	if r.Title != "" {
		fmt.Fprintf(w, "# %s\n\n", r.Title)
	}
	for _, f := range r.Fields {
		fmt.Fprintf(w, "- **%s:** %s\n", f.Label, strings.TrimSpace(f.Value))
	}
	if len(r.Fields) > 0 {
		fmt.Fprintln(w)
	}
	for _, p := range r.Parts {
		if err := p.RenderMarkdown(w); err != nil {
			return err
		}
	}
	return nil
}
