package order

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsConnector reads orders from a Google Sheets spreadsheet.
type SheetsConnector struct {
	spreadsheetID string
	worksheet     string
	opts          []option.ClientOption
}

// NewSheetsConnector binds the connector to one spreadsheet and worksheet. The
// client options carry the credential (option.WithTokenSource) and, in tests,
// the endpoint.
func NewSheetsConnector(spreadsheetID, worksheet string, opts ...option.ClientOption) *SheetsConnector {
	if worksheet == "" {
		worksheet = DefaultWorksheet
	}
	return &SheetsConnector{
		spreadsheetID: spreadsheetID,
		worksheet:     worksheet,
		opts:          opts,
	}
}

// Connect opens the spreadsheet and checks that the worksheet exists.
func (c *SheetsConnector) Connect(ctx context.Context) (Worksheet, error) {
	svc, err := sheets.NewService(ctx, c.opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: sheets client: %v", ErrConnection, err)
	}

	ss, err := svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, classifySheetsError("open spreadsheet", err)
	}

	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == c.worksheet {
			return &sheetsWorksheet{
				svc:           svc,
				spreadsheetID: c.spreadsheetID,
				title:         c.worksheet,
			}, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, c.worksheet)
}

type sheetsWorksheet struct {
	svc           *sheets.Service
	spreadsheetID string
	title         string
}

func (w *sheetsWorksheet) Records(ctx context.Context) ([]Record, error) {
	resp, err := w.svc.Spreadsheets.Values.Get(w.spreadsheetID, quoteSheetTitle(w.title)).
		ValueRenderOption("FORMATTED_VALUE").
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, classifySheetsError("read values", err)
	}

	return RecordsFromRows(stringifyRows(resp.Values))
}

// quoteSheetTitle turns a worksheet title into an A1 range covering the whole sheet.
func quoteSheetTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func classifySheetsError(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s: %v", ErrSheetNotFound, op, err)
		case http.StatusBadRequest:
			// Unknown range names come back as 400 "Unable to parse range".
			if strings.Contains(apiErr.Message, "Unable to parse range") {
				return fmt.Errorf("%w: %s: %v", ErrSheetNotFound, op, err)
			}
		}
	}
	return fmt.Errorf("%w: %s: %v", ErrConnection, op, err)
}
