package district

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"district-map/internal/events"
)

// DefaultExportFilename is the download name of the export
const DefaultExportFilename = "updated_neighbourhoods.csv"

// Export writes every uploaded row in its original order and columns with the
// district column set to the current district of the row's region. Rows whose
// key matched no boundary get an empty district. The column is appended when
// the header lacks it.
func Export(w io.Writer, table *events.Table, m *Map, column string) error {
	if column == "" {
		column = table.Columns.District
	}
	if column == "" {
		column = "District"
	}

	header := append([]string(nil), table.Header...)
	idx := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), column) {
			idx = i
			break
		}
	}
	if idx < 0 {
		header = append(header, column)
		idx = len(header) - 1
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "export: write header")
	}

	for _, row := range table.Rows {
		record := make([]string, len(header))
		copy(record, row.Record)

		record[idx] = ""
		if d, ok := m.DistrictOf(row.Key); ok {
			record[idx] = strconv.Itoa(d)
		}

		if err := cw.Write(record); err != nil {
			return eris.Wrapf(err, "export: write line %d", row.Line)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "export: flush")
	}
	return nil
}
