package order

import "fmt"

// Column headers of the OrdenesBordado worksheet.
const (
	ColumnOrderNumber  = "Número Orden"
	ColumnCustomer     = "Cliente"
	ColumnSalesperson  = "Vendedor"
	ColumnDeliveryDate = "Fecha Entrega"
	ColumnDesignName   = "Nombre Diseño"
	ColumnThreadColors = "Colores de Hilos"
	ColumnMeasurements = "Medidas Bordado"
	ColumnPosition     = "Posición Bordado"
)

// DefaultWorksheet is the worksheet holding embroidery orders.
const DefaultWorksheet = "OrdenesBordado"

// AttachmentSlots is the fixed number of design attachment columns.
const AttachmentSlots = 5

// AttachmentColumn returns the header of the 1-based attachment slot.
func AttachmentColumn(slot int) string {
	return fmt.Sprintf("Diseño %d", slot)
}

// Order is a read-only snapshot of one worksheet row. Values are kept exactly
// as the sheet formats them; absent or sentinel values are resolved by the
// presentation layer.
type Order struct {
	Number       string
	Customer     string
	Salesperson  string
	DeliveryDate string
	DesignName   string
	ThreadColors string
	Measurements string
	Position     string
	Attachments  [AttachmentSlots]string
}

// Record is one worksheet row keyed by its column header.
type Record map[string]string

func orderFromRecord(rec Record) Order {
	o := Order{
		Number:       rec[ColumnOrderNumber],
		Customer:     rec[ColumnCustomer],
		Salesperson:  rec[ColumnSalesperson],
		DeliveryDate: rec[ColumnDeliveryDate],
		DesignName:   rec[ColumnDesignName],
		ThreadColors: rec[ColumnThreadColors],
		Measurements: rec[ColumnMeasurements],
		Position:     rec[ColumnPosition],
	}
	for i := range o.Attachments {
		o.Attachments[i] = rec[AttachmentColumn(i+1)]
	}
	return o
}
