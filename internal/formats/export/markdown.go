package export

import (
	"strings"

	"github.com/klytics/voxtable/internal/table"
)

var cellEscaper = strings.NewReplacer("|", `\|`, "\n", " ")

// Markdown renders the snapshot as a GFM table. Pipes inside cells are
// escaped so they do not split the column.
func Markdown(snap table.Snapshot) string {
	var b strings.Builder

	b.WriteString("| ")
	writeCells(&b, snap.Columns)
	b.WriteString(" |\n")

	b.WriteString("|")
	for range snap.Columns {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")

	for _, row := range snap.Rows {
		b.WriteString("| ")
		writeCells(&b, row.Values)
		b.WriteString(" |\n")
	}
	return b.String()
}

func writeCells(b *strings.Builder, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(cellEscaper.Replace(cell))
	}
}
