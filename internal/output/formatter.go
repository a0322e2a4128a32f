// Package output provides formatting utilities for CLI output.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format represents an output format.
type Format int

const (
	// FormatText is plain text output.
	FormatText Format = iota
	// FormatJSON is JSON output.
	FormatJSON
	// FormatYAML is YAML output.
	FormatYAML
)

// ParseFormat maps "text", "json" and "yaml" to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return FormatText, fmt.Errorf("unknown output format %q (use text, json or yaml)", s)
}

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	}
	return "text"
}

// Writer handles formatted output to a destination.
type Writer struct {
	dest   io.Writer
	format Format
}

// NewWriter creates a new output writer with the given format.
func NewWriter(format Format) *Writer {
	return &Writer{
		dest:   os.Stdout,
		format: format,
	}
}

// To redirects the writer.
func (w *Writer) To(dest io.Writer) *Writer {
	w.dest = dest
	return w
}

// Format returns the writer's format.
func (w *Writer) Format() Format {
	return w.format
}

// Structured reports whether results are machine-readable.
func (w *Writer) Structured() bool {
	return w.format != FormatText
}

// WriteResult writes data in the standard envelope. Text writers print
// text instead.
func (w *Writer) WriteResult(cmd string, data interface{}, text string) error {
	switch w.format {
	case FormatJSON:
		return FprintJSON(w.dest, Success(cmd, data))
	case FormatYAML:
		return w.WriteYAML(Success(cmd, data))
	}
	return w.WriteLn(text)
}

// WriteJSON encodes a value as pretty-printed JSON.
func (w *Writer) WriteJSON(v interface{}) error {
	return FprintJSON(w.dest, v)
}

// WriteYAML encodes a value as YAML.
func (w *Writer) WriteYAML(v interface{}) error {
	enc := yaml.NewEncoder(w.dest)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// WriteText writes plain text.
func (w *Writer) WriteText(s string) error {
	_, err := fmt.Fprint(w.dest, s)
	return err
}

// WriteLn writes a line of text.
func (w *Writer) WriteLn(s string) error {
	_, err := fmt.Fprintln(w.dest, s)
	return err
}

// WriteError writes an error message to stderr.
func WriteError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
