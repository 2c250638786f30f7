package export

import (
	"encoding/csv"
	"io"

	"ideagen/pkg/concept"
)

// WriteCSV writes the concept table with a header row. Columns follow
// concept.Columns ordering so every record's cells line up.
func WriteCSV(w io.Writer, records []concept.Record) error {
	cw := csv.NewWriter(w)
	cols := concept.Columns(records)
	if err := cw.Write(cols); err != nil {
		return err
	}
	row := make([]string, len(cols))
	for _, rec := range records {
		for i, col := range cols {
			row[i] = rec[col]
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
