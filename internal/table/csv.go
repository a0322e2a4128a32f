package table

import (
	"io"
	"strings"

	"github.com/samber/lo"
)

// CSV renders the snapshot as comma-joined lines: the column names first,
// then one line per row. Values are not quoted, so a value containing a
// comma shifts the cells after it.
func (s Snapshot) CSV() string {
	lines := lo.Map(s.Rows, func(r Row, _ int) string { return strings.Join(r.Values, ",") })
	return strings.Join(s.Columns, ",") + "\n" + strings.Join(lines, "\n")
}

// WriteCSV writes CSV() to w.
func (s Snapshot) WriteCSV(w io.Writer) error {
	_, err := io.WriteString(w, s.CSV())
	return err
}
