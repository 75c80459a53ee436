package order

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "ordenes.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestXLSXConnector_Lookup(t *testing.T) {
	path := writeWorkbook(t, DefaultWorksheet, [][]interface{}{
		{"Número Orden", "Cliente", "Fecha Entrega", "Diseño 1", "Diseño 2"},
		{"BORD-001", "Juana Pérez", "2025-03-14", "https://cdn.example.com/a.png", "boceto-final.pdf"},
		{"BORD-002", "Luis Gómez"},
	})

	conn := NewXLSXConnector(path, "")
	ws, err := conn.Connect(context.Background())
	require.NoError(t, err)

	o, err := Lookup(context.Background(), ws, "BORD-001")
	require.NoError(t, err)
	assert.Equal(t, "Juana Pérez", o.Customer)
	assert.Equal(t, "2025-03-14", o.DeliveryDate)
	assert.Equal(t, "boceto-final.pdf", o.Attachments[1])
}

func TestXLSXConnector_NotFound(t *testing.T) {
	path := writeWorkbook(t, DefaultWorksheet, [][]interface{}{
		{"Número Orden", "Cliente"},
		{"BORD-001", "Juana Pérez"},
	})

	ws, err := NewXLSXConnector(path, "").Connect(context.Background())
	require.NoError(t, err)

	_, err = Lookup(context.Background(), ws, "BORD-999")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestXLSXConnector_WorksheetMissing(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]interface{}{{"Número Orden"}})

	_, err := NewXLSXConnector(path, "").Connect(context.Background())
	require.ErrorIs(t, err, ErrSheetNotFound)
}

func TestXLSXConnector_FileMissing(t *testing.T) {
	_, err := NewXLSXConnector(filepath.Join(t.TempDir(), "nope.xlsx"), "").Connect(context.Background())
	require.ErrorIs(t, err, ErrSheetNotFound)
}
