// Package export writes the session table to disk in the format implied by
// the file extension, or streams it to a writer in a named format.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/klytics/voxtable/internal/formats/xlsx"
	"github.com/klytics/voxtable/internal/table"
)

// DefaultFilename is used when no output path is given.
const DefaultFilename = "table.csv"

// SupportedFormats lists the formats Export understands.
var SupportedFormats = []string{"csv", "xlsx", "json", "yaml", "md"}

// Options tune the export.
type Options struct {
	SheetName   string
	RightToLeft bool
}

// Export writes snap to path. The format comes from the extension; a path
// with no extension gets ".csv".
func Export(snap table.Snapshot, path string, opts Options) (string, error) {
	if snap.Empty() {
		return "", fmt.Errorf("no table to export; create one first, e.g. \"create a table with 2 columns named Name, Age\"")
	}
	if path == "" {
		path = DefaultFilename
	}
	format := DetectFormat(path)
	if format == "" {
		if filepath.Ext(path) != "" {
			return "", fmt.Errorf("unsupported export format %q (supported: %s)", filepath.Ext(path), strings.Join(SupportedFormats, ", "))
		}
		path += ".csv"
		format = "csv"
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("could not create %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("could not write %s: %w", path, err)
	}
	if err := Stream(snap, format, f, opts); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("could not write %s: %w", path, err)
	}
	return path, nil
}

// Stream writes snap to w in format, which is one of SupportedFormats.
func Stream(snap table.Snapshot, format string, w io.Writer, opts Options) error {
	if snap.Empty() {
		return fmt.Errorf("no table to export; create one first, e.g. \"create a table with 2 columns named Name, Age\"")
	}
	if format == "xlsx" {
		sheet := xlsx.FromSnapshot(snap, opts.SheetName)
		sheet.RightToLeft = opts.RightToLeft
		return xlsx.Write(sheet, w)
	}

	body, err := Render(snap, format)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, body); err != nil {
		return fmt.Errorf("could not write %s: %w", format, err)
	}
	return nil
}

// Supported reports whether format is one of SupportedFormats.
func Supported(format string) bool {
	return lo.Contains(SupportedFormats, format)
}

// Render returns the snapshot as text in one of the text formats.
func Render(snap table.Snapshot, format string) (string, error) {
	switch format {
	case "csv":
		return snap.CSV(), nil
	case "json":
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil
	case "yaml":
		data, err := yaml.Marshal(snap)
		if err != nil {
			return "", err
		}
		return string(data), nil
	case "md":
		return Markdown(snap), nil
	default:
		return "", fmt.Errorf("format %q cannot be rendered as text", format)
	}
}

// DetectFormat maps a file extension to an export format, or "".
func DetectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv"
	case ".xlsx":
		return "xlsx"
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	case ".md", ".markdown":
		return "md"
	default:
		return ""
	}
}
