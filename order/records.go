package order

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// RecordsFromRows turns a header row followed by data rows into records. Headers
// are NFC-normalized so decomposed accents typed into the sheet still match the
// column constants. Short rows are padded with empty values and blank rows are
// skipped. A missing order-number column or a duplicated header is reported as
// ErrMalformedRow.
func RecordsFromRows(rows [][]string) ([]Record, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: worksheet has no header row", ErrMalformedRow)
	}

	header := make([]string, len(rows[0]))
	seen := make(map[string]bool, len(rows[0]))
	for i, h := range rows[0] {
		h = norm.NFC.String(strings.TrimSpace(h))
		if h == "" {
			continue
		}
		if seen[h] {
			return nil, fmt.Errorf("%w: duplicated header %q", ErrMalformedRow, h)
		}
		seen[h] = true
		header[i] = h
	}
	if !seen[ColumnOrderNumber] {
		return nil, fmt.Errorf("%w: missing %q column", ErrMalformedRow, ColumnOrderNumber)
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		rec := make(Record, len(seen))
		for i, h := range header {
			if h == "" {
				continue
			}
			if i < len(row) {
				rec[h] = row[i]
			} else {
				rec[h] = ""
			}
		}
		records = append(records, rec)
	}

	return records, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func stringifyRows(values [][]interface{}) [][]string {
	rows := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, v := range row {
			if v == nil {
				continue
			}
			if s, ok := v.(string); ok {
				cells[j] = s
				continue
			}
			cells[j] = fmt.Sprint(v)
		}
		rows[i] = cells
	}
	return rows
}
