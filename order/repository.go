package order

import (
	"context"
	"fmt"
	"strings"
)

// Connector opens an authenticated session against the orders data source and
// binds it to the orders worksheet.
type Connector interface {
	Connect(ctx context.Context) (Worksheet, error)
}

// Worksheet exposes the rows of the bound worksheet.
type Worksheet interface {
	Records(ctx context.Context) ([]Record, error)
}

// Lookup fetches every record of the worksheet and returns the first one whose
// order number equals id exactly. The scan is linear; the sheet is small and is
// re-read on every call. A blank id is rejected before any read.
func Lookup(ctx context.Context, ws Worksheet, id string) (Order, error) {
	if IsBlankID(id) {
		return Order{}, ErrBlankID
	}

	records, err := ws.Records(ctx)
	if err != nil {
		return Order{}, err
	}

	for i, rec := range records {
		number, ok := rec[ColumnOrderNumber]
		if !ok {
			return Order{}, fmt.Errorf("%w: row %d has no %q value", ErrMalformedRow, i+2, ColumnOrderNumber)
		}
		if number == id {
			return orderFromRecord(rec), nil
		}
	}

	return Order{}, fmt.Errorf("%w: %q", ErrNotFound, id)
}

// IsBlankID reports whether id carries no order number at all.
func IsBlankID(id string) bool {
	return strings.TrimSpace(id) == ""
}
