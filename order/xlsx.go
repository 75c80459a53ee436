package order

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/xuri/excelize/v2"
)

// XLSXConnector reads orders from a workbook export of the orders spreadsheet.
type XLSXConnector struct {
	path      string
	worksheet string
}

// NewXLSXConnector binds the connector to a workbook file and worksheet.
func NewXLSXConnector(path, worksheet string) *XLSXConnector {
	if worksheet == "" {
		worksheet = DefaultWorksheet
	}
	return &XLSXConnector{path: path, worksheet: worksheet}
}

// Connect opens the workbook and checks that the worksheet exists. The file is
// re-opened on every connect so edits to the export are picked up.
func (c *XLSXConnector) Connect(_ context.Context) (Worksheet, error) {
	f, err := excelize.OpenFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: workbook %s", ErrSheetNotFound, c.path)
		}
		return nil, fmt.Errorf("%w: open workbook: %v", ErrConnection, err)
	}

	idx, err := f.GetSheetIndex(c.worksheet)
	if err != nil || idx < 0 {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, c.worksheet)
	}

	return &xlsxWorksheet{file: f, name: c.worksheet}, nil
}

type xlsxWorksheet struct {
	file *excelize.File
	name string
}

func (w *xlsxWorksheet) Records(_ context.Context) ([]Record, error) {
	defer w.file.Close()

	rows, err := w.file.GetRows(w.name)
	if err != nil {
		return nil, fmt.Errorf("%w: read rows: %v", ErrMalformedRow, err)
	}
	return RecordsFromRows(rows)
}
