// Package xlsx writes session tables to .xlsx workbooks.
package xlsx

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/klytics/voxtable/internal/table"
)

// DefaultSheetName is used when a Sheet has no name.
const DefaultSheetName = "Table"

// Sheet is a single worksheet: a bold header row followed by data rows.
type Sheet struct {
	Name        string     `json:"name"`
	Header      []string   `json:"header"`
	Rows        [][]string `json:"rows"`
	RightToLeft bool       `json:"rightToLeft,omitempty"`
}

// FromSnapshot builds a sheet from a table snapshot.
func FromSnapshot(snap table.Snapshot, name string) Sheet {
	return Sheet{Name: name, Header: snap.Columns, Rows: snap.Records()}
}

// Write streams the workbook to w.
func Write(s Sheet, w io.Writer) error {
	f, err := build(s)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("could not write workbook: %w", err)
	}
	return nil
}

func build(s Sheet) (*excelize.File, error) {
	name := s.Name
	if name == "" {
		name = DefaultSheetName
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
		f.Close()
		return nil, fmt.Errorf("could not rename sheet: %w", err)
	}

	if err := writeRow(f, name, 1, s.Header); err != nil {
		f.Close()
		return nil, err
	}
	if len(s.Header) > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("could not create header style: %w", err)
		}
		last, _ := excelize.CoordinatesToCellName(len(s.Header), 1)
		if err := f.SetCellStyle(name, "A1", last, bold); err != nil {
			f.Close()
			return nil, fmt.Errorf("could not style header: %w", err)
		}
	}

	for i, row := range s.Rows {
		if err := writeRow(f, name, i+2, row); err != nil {
			f.Close()
			return nil, err
		}
	}

	if s.RightToLeft {
		rtl := true
		if err := f.SetSheetView(name, 0, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
			f.Close()
			return nil, fmt.Errorf("could not set sheet direction: %w", err)
		}
	}
	return f, nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, cells []string) error {
	for col, cell := range cells {
		cellName, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return fmt.Errorf("invalid cell coordinates: %w", err)
		}
		if err := f.SetCellStr(sheet, cellName, cell); err != nil {
			return fmt.Errorf("could not set cell %s: %w", cellName, err)
		}
	}
	return nil
}
