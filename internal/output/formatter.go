package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	toon "github.com/toon-format/toon-go"
	"gopkg.in/yaml.v3"
)

// Format represents an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatTOON     Format = "toon"
	FormatYAML     Format = "yaml"
)

// Formats lists every supported format name.
func Formats() []string {
	return []string{string(FormatText), string(FormatJSON), string(FormatMarkdown), string(FormatTOON), string(FormatYAML)}
}

// ParseFormat converts a string to a Format. The empty string is text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "table":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "toon":
		return FormatTOON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want one of %s)", s, strings.Join(Formats(), ", "))
	}
}

// Renderable defines data that can render itself in multiple formats.
type Renderable interface {
	RenderText(w io.Writer, colored bool) error
	RenderMarkdown(w io.Writer) error
	// RenderData returns the underlying data for structured encodings.
	RenderData() any
}

// Formatter writes Renderables and plain values in one format.
type Formatter struct {
	format  Format
	writer  io.Writer
	file    *os.File
	colored bool
}

// NewFormatter creates a formatter writing to stdout, or to the file at
// path when path is non-empty. File output is never colored.
func NewFormatter(format Format, path string, colored bool) (*Formatter, error) {
	if path == "" {
		return NewFormatterTo(os.Stdout, format, colored), nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	fm := NewFormatterTo(f, format, false)
	fm.file = f
	return fm, nil
}

// NewFormatterTo creates a formatter writing to w.
func NewFormatterTo(w io.Writer, format Format, colored bool) *Formatter {
	if format == "" {
		format = FormatText
	}
	return &Formatter{format: format, writer: w, colored: colored}
}

// Close closes the formatter's writer if it's a file.
func (f *Formatter) Close() error {
	if f.file != nil {
		return f.file.Close()
	}
	return nil
}

// Writer returns the underlying writer.
func (f *Formatter) Writer() io.Writer {
	return f.writer
}

// Format returns the configured format.
func (f *Formatter) Format() Format {
	return f.format
}

// Colored returns whether colored output is enabled.
func (f *Formatter) Colored() bool {
	return f.colored
}

// Output writes data in the configured format.
func (f *Formatter) Output(data any) error {
	if r, ok := data.(Renderable); ok {
		return f.render(r)
	}
	return f.outputRaw(data)
}

func (f *Formatter) render(r Renderable) error {
	switch f.format {
	case FormatMarkdown:
		return r.RenderMarkdown(f.writer)
	case FormatText:
		return r.RenderText(f.writer, f.colored)
	default:
		return f.encode(r.RenderData())
	}
}

func (f *Formatter) outputRaw(data any) error {
	if f.format != FormatMarkdown {
		return f.encode(data)
	}
	fmt.Fprintln(f.writer, "```json")
	if err := writeJSON(f.writer, data); err != nil {
		return err
	}
	fmt.Fprintln(f.writer, "```")
	return nil
}

// encode writes data with the structured encoder for the format. Text
// falls back to JSON for values that cannot render themselves.
func (f *Formatter) encode(data any) error {
	switch f.format {
	case FormatTOON:
		return writeTOON(f.writer, data)
	case FormatYAML:
		return writeYAML(f.writer, data)
	default:
		return writeJSON(f.writer, data)
	}
}

// Marshal encodes data as JSON, TOON or YAML. Text and markdown marshal as
// JSON.
func Marshal(format Format, data any) ([]byte, error) {
	switch format {
	case FormatTOON:
		return toon.Marshal(data, toon.WithIndent(2))
	case FormatYAML:
		node, err := yamlNode(data)
		if err != nil {
			return nil, err
		}
		return yaml.Marshal(node)
	default:
		return json.MarshalIndent(data, "", "  ")
	}
}

func writeJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func writeTOON(w io.Writer, data any) error {
	out, err := toon.Marshal(data, toon.WithIndent(2))
	if err != nil {
		return fmt.Errorf("encode toon: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// yamlNode converts data through JSON so YAML keys follow the json tags.
func yamlNode(data any) (*yaml.Node, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	blockStyle(&doc)
	return &doc, nil
}

// blockStyle drops the flow style inherited from JSON.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

func writeYAML(w io.Writer, data any) error {
	node, err := yamlNode(data)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// Message helpers. Colored messages go to the formatter's writer, not to
// the global color output.

func (f *Formatter) message(c *color.Color, prefix, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if f.colored {
		c.Fprintln(f.writer, msg)
		return
	}
	fmt.Fprintln(f.writer, prefix+msg)
}

func (f *Formatter) Success(format string, args ...any) {
	f.message(color.New(color.FgGreen), "", format, args...)
}

func (f *Formatter) Warning(format string, args ...any) {
	f.message(color.New(color.FgYellow), "WARNING: ", format, args...)
}

func (f *Formatter) Error(format string, args ...any) {
	f.message(color.New(color.FgRed), "ERROR: ", format, args...)
}

func (f *Formatter) Info(format string, args ...any) {
	f.message(color.New(color.FgCyan), "", format, args...)
}

// SeverityColor colors text by insight severity or risk level.
func SeverityColor(severity, text string) string {
	switch strings.ToLower(severity) {
	case "critical", "high":
		return color.RedString(text)
	case "medium":
		return color.YellowString(text)
	case "low":
		return color.GreenString(text)
	default:
		return text
	}
}
