package xlsx

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/klytics/voxtable/internal/command"
	"github.com/klytics/voxtable/internal/table"
)

func sampleSnapshot() table.Snapshot {
	tbl := table.New()
	tbl.Apply(command.Interpret("create a table with 3 columns named Name, Age, City"))
	tbl.Apply(command.Interpret("add a row: John, 25, Delhi"))
	tbl.Apply(command.Interpret("add a row: Asha, 31"))
	return tbl.Snapshot()
}

func TestWriteAndReadBack(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(FromSnapshot(sampleSnapshot(), "People"), &buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("Write produced no bytes")
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if name := f.GetSheetName(0); name != "People" {
		t.Errorf("sheet name = %q", name)
	}
	rows, err := f.GetRows("People")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0][2] != "City" || rows[1][0] != "John" || rows[2][1] != "31" {
		t.Errorf("unexpected rows: %q", rows)
	}
}

func TestWriteDefaultNameAndRTL(t *testing.T) {
	var buf bytes.Buffer
	s := Sheet{Header: []string{"الاسم"}, Rows: [][]string{{"أحمد"}}, RightToLeft: true}
	if err := Write(s, &buf); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if name := f.GetSheetName(0); name != DefaultSheetName {
		t.Errorf("sheet name = %q", name)
	}
	v, err := f.GetCellValue(DefaultSheetName, "A2")
	if err != nil {
		t.Fatal(err)
	}
	if v != "أحمد" {
		t.Errorf("A2 = %q", v)
	}
}
