package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/klytics/voxtable/internal/command"
	"github.com/klytics/voxtable/internal/table"
)

func sample() table.Snapshot {
	tbl := table.New()
	tbl.Apply(command.Interpret("create a table with 2 columns named Name, Age"))
	tbl.Apply(command.Interpret("add a row: John, 25"))
	return tbl.Snapshot()
}

func TestExportCSV(t *testing.T) {
	dir := t.TempDir()
	path, err := Export(sample(), filepath.Join(dir, "out", "people.csv"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Name,Age\nJohn,25" {
		t.Errorf("csv = %q", data)
	}
}

func TestExportNoExtensionDefaultsToCSV(t *testing.T) {
	dir := t.TempDir()
	path, err := Export(sample(), filepath.Join(dir, "people"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(path, ".csv") {
		t.Errorf("path = %q", path)
	}
}

func TestExportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people.xlsx")
	if _, err := Export(sample(), path, Options{SheetName: "People"}); err != nil {
		t.Fatal(err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("xlsx not written: %v", err)
	}
}

func TestExportUnsupported(t *testing.T) {
	_, err := Export(sample(), filepath.Join(t.TempDir(), "people.pdf"), Options{})
	if err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("expected unsupported format error, got %v", err)
	}
}

func TestExportEmptyTable(t *testing.T) {
	if _, err := Export(table.Snapshot{}, filepath.Join(t.TempDir(), "x.csv"), Options{}); err == nil {
		t.Error("expected error for empty table")
	}
}

func TestRenderYAML(t *testing.T) {
	out, err := Render(sample(), "yaml")
	if err != nil {
		t.Fatal(err)
	}
	var back table.Snapshot
	if err := yaml.Unmarshal([]byte(out), &back); err != nil {
		t.Fatal(err)
	}
	if len(back.Rows) != 1 || back.Rows[0].Values[0] != "John" {
		t.Errorf("yaml round trip = %+v", back)
	}
}

func TestMarkdown(t *testing.T) {
	want := "| Name | Age |\n| --- | --- |\n| John | 25 |\n"
	if got := Markdown(sample()); got != want {
		t.Errorf("markdown = %q, want %q", got, want)
	}
}

func TestMarkdownEscapesPipes(t *testing.T) {
	snap := table.Snapshot{
		Columns: []string{"Name", "Either|Or"},
		Rows:    []table.Row{{Values: []string{"A|B", "x"}}},
	}
	want := "| Name | Either\\|Or |\n| --- | --- |\n| A\\|B | x |\n"
	if got := Markdown(snap); got != want {
		t.Errorf("markdown = %q, want %q", got, want)
	}
}

func TestStreamFormats(t *testing.T) {
	var buf strings.Builder
	if err := Stream(sample(), "md", &buf, Options{}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != Markdown(sample()) {
		t.Errorf("stream md = %q", buf.String())
	}
	if err := Stream(table.Snapshot{}, "csv", &buf, Options{}); err == nil {
		t.Error("expected error for empty table")
	}
	if !Supported("xlsx") || Supported("pdf") {
		t.Error("Supported disagrees with SupportedFormats")
	}
}
