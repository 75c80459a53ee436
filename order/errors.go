package order

import "errors"

var (
	// ErrConnection signals that the data source could not be reached or rejected our credential.
	ErrConnection = errors.New("order: connection failed")
	// ErrSheetNotFound signals that the spreadsheet or worksheet does not exist.
	ErrSheetNotFound = errors.New("order: worksheet not found")
	// ErrNotFound signals that no row carries the requested order number.
	ErrNotFound = errors.New("order: not found")
	// ErrBlankID signals an empty or whitespace-only order number. Blank cells
	// must never match it.
	ErrBlankID = errors.New("order: blank order number")
	// ErrMalformedRow signals that the worksheet rows cannot be read as orders.
	ErrMalformedRow = errors.New("order: malformed row data")
)
