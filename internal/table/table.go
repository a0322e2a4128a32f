// Package table owns the session table that voice commands build and fill.
package table

import (
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/klytics/voxtable/internal/command"
)

// Row is one stored record. Values always has exactly one cell per column.
type Row struct {
	ID     string   `json:"id" yaml:"id"`
	Values []string `json:"values" yaml:"values"`
}

// Outcome describes what applying a command did to the table.
type Outcome int

const (
	// Unrecognized means the command was Unknown and nothing changed.
	Unrecognized Outcome = iota
	// Created means the columns were replaced and rows cleared.
	Created
	// RowAdded means a normalized row was appended.
	RowAdded
	// NoColumns means an AddRow arrived before any table existed.
	NoColumns
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case RowAdded:
		return "row-added"
	case NoColumns:
		return "no-columns"
	default:
		return "unrecognized"
	}
}

// Result reports the effect of Apply.
type Result struct {
	Outcome Outcome `json:"outcome"`
	Columns int     `json:"columns"`
	Row     *Row    `json:"row,omitempty"`
}

// Table holds the ordered columns and rows of the current session.
// Commands are applied one at a time.
type Table struct {
	mu      sync.Mutex
	columns []command.Column
	rows    []Row
	newID   func() string
}

// New creates an empty table.
func New() *Table {
	return &Table{newID: newRowID}
}

// newRowID returns a time-ordered UUIDv7 so ids sort in creation order.
func newRowID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Apply executes a command against the table.
func (t *Table) Apply(cmd command.Command) Result {
	switch cmd.Kind {
	case command.CreateTable:
		t.Create(cmd.Columns)
		return Result{Outcome: Created, Columns: len(cmd.Columns)}
	case command.AddRow:
		row, ok := t.AddRow(cmd.Values)
		if !ok {
			return Result{Outcome: NoColumns}
		}
		return Result{Outcome: RowAdded, Columns: len(row.Values), Row: &row}
	default:
		return Result{Outcome: Unrecognized, Columns: t.Width()}
	}
}

// Create replaces the column set and clears all rows.
func (t *Table) Create(columns []command.Column) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.columns = append([]command.Column(nil), columns...)
	t.rows = nil
}

// AddRow appends values normalized to the current column count. It is a
// no-op returning false when the table has no columns.
func (t *Table) AddRow(values []string) (Row, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.columns) == 0 {
		return Row{}, false
	}
	row := Row{ID: t.newID(), Values: Normalize(values, len(t.columns))}
	t.rows = append(t.rows, row)
	return cloneRow(row), true
}

// Clear removes every column and row.
func (t *Table) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.columns = nil
	t.rows = nil
}

// Width returns the number of columns.
func (t *Table) Width() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.columns)
}

// Columns returns a copy of the columns in order.
func (t *Table) Columns() []command.Column {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]command.Column(nil), t.columns...)
}

// Rows returns a copy of the rows in insertion order.
func (t *Table) Rows() []Row {
	t.mu.Lock()
	defer t.mu.Unlock()
	return lo.Map(t.rows, func(r Row, _ int) Row { return cloneRow(r) })
}

// Snapshot is a point-in-time copy used by renderers and exporters.
type Snapshot struct {
	Columns []string `json:"columns" yaml:"columns"`
	Rows    []Row    `json:"rows" yaml:"rows"`
}

// Snapshot copies the table.
func (t *Table) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{
		Columns: lo.Map(t.columns, func(c command.Column, _ int) string { return c.Name }),
		Rows:    lo.Map(t.rows, func(r Row, _ int) Row { return cloneRow(r) }),
	}
}

// Empty reports whether no table has been created.
func (s Snapshot) Empty() bool {
	return len(s.Columns) == 0
}

// Records returns the row values without ids.
func (s Snapshot) Records() [][]string {
	return lo.Map(s.Rows, func(r Row, _ int) []string { return r.Values })
}

// Normalize truncates or pads values with empty strings to width cells.
func Normalize(values []string, width int) []string {
	out := make([]string, width)
	copy(out, values)
	return out
}

func cloneRow(r Row) Row {
	return Row{ID: r.ID, Values: append([]string(nil), r.Values...)}
}
