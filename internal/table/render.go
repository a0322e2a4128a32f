package table

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// Render draws the snapshot as a bordered terminal table. Row numbers are
// shown in a leading "#" column.
func (s Snapshot) Render(w io.Writer, emptyMessage string) {
	if s.Empty() {
		fmt.Fprintln(w, emptyMessage)
		return
	}

	tw := tablewriter.NewWriter(w)
	tw.SetHeader(append([]string{"#"}, s.Columns...))
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	for i, r := range s.Rows {
		tw.Append(append([]string{strconv.Itoa(i + 1)}, r.Values...))
	}
	tw.Render()
}
