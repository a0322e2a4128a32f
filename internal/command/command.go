// Package command turns a spoken transcript into a structured table command.
//
// Interpretation is pure: no I/O, no shared mutable state. An Interpreter is
// safe for concurrent use once constructed.
package command

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Kind identifies what a Command asks the table owner to do.
type Kind int

const (
	// Unknown means no template matched the transcript.
	Unknown Kind = iota
	// CreateTable replaces the column set and clears all rows.
	CreateTable
	// AddRow appends one row of values.
	AddRow
)

var kindNames = map[Kind]string{
	Unknown:     "unknown",
	CreateTable: "create",
	AddRow:      "add",
}

// String returns the short name used in JSON/YAML output.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	for kind, name := range kindNames {
		if strings.EqualFold(name, string(b)) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown command type %q, expected create, add or unknown", string(b))
}

// Column is one table attribute. Column order is significant.
type Column struct {
	Name string `json:"name" yaml:"name"`
}

// Command is the result of interpreting one finalized transcript.
// CreateTable always carries at least one column and AddRow at least one value.
type Command struct {
	Kind     Kind     `json:"type" yaml:"type"`
	Columns  []Column `json:"columns,omitempty" yaml:"columns,omitempty"`
	Values   []string `json:"values,omitempty" yaml:"values,omitempty"`
	Template string   `json:"template,omitempty" yaml:"template,omitempty"`
}

// NewCreateTable builds a CreateTable command from column names.
// It returns an Unknown command when names is empty.
func NewCreateTable(names []string) Command {
	if len(names) == 0 {
		return Command{Kind: Unknown}
	}
	return Command{
		Kind:    CreateTable,
		Columns: lo.Map(names, func(n string, _ int) Column { return Column{Name: n} }),
	}
}

// NewAddRow builds an AddRow command. It returns an Unknown command when
// values is empty.
func NewAddRow(values []string) Command {
	if len(values) == 0 {
		return Command{Kind: Unknown}
	}
	return Command{Kind: AddRow, Values: append([]string(nil), values...)}
}

// Recognized reports whether the command is something other than Unknown.
func (c Command) Recognized() bool {
	return c.Kind != Unknown
}

// Names returns the column names of a CreateTable command in order.
func (c Command) Names() []string {
	return lo.Map(c.Columns, func(col Column, _ int) string { return col.Name })
}

// String renders the command for log lines and the interpret command.
func (c Command) String() string {
	switch c.Kind {
	case CreateTable:
		return fmt.Sprintf("create table [%s]", strings.Join(c.Names(), ", "))
	case AddRow:
		return fmt.Sprintf("add row [%s]", strings.Join(c.Values, ", "))
	default:
		return "unknown"
	}
}
