package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultTable is the Postgres table that mirrors the orders worksheet.
const DefaultTable = "ordenes_bordado"

// pgColumns maps mirror table columns to worksheet headers, in select order.
var pgColumns = []struct {
	column string
	header string
}{
	{"numero_orden", ColumnOrderNumber},
	{"cliente", ColumnCustomer},
	{"vendedor", ColumnSalesperson},
	{"fecha_entrega", ColumnDeliveryDate},
	{"nombre_diseno", ColumnDesignName},
	{"colores_hilos", ColumnThreadColors},
	{"medidas_bordado", ColumnMeasurements},
	{"posicion_bordado", ColumnPosition},
	{"diseno_1", AttachmentColumn(1)},
	{"diseno_2", AttachmentColumn(2)},
	{"diseno_3", AttachmentColumn(3)},
	{"diseno_4", AttachmentColumn(4)},
	{"diseno_5", AttachmentColumn(5)},
}

// Querier abstracts pgxpool.Pool for testability.
type Querier interface {
	Ping(ctx context.Context) error
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var _ Querier = (*pgxpool.Pool)(nil)

// PGConnector reads orders from a Postgres table mirroring the worksheet.
type PGConnector struct {
	db    Querier
	table string
}

// NewPGConnector binds the connector to a mirror table.
func NewPGConnector(db Querier, table string) *PGConnector {
	if table == "" {
		table = DefaultTable
	}
	return &PGConnector{db: db, table: table}
}

// Connect pings the database and checks that the mirror table exists.
func (c *PGConnector) Connect(ctx context.Context) (Worksheet, error) {
	if err := c.db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: ping: %v", ErrConnection, err)
	}

	var regclass *string
	if err := c.db.QueryRow(ctx, `SELECT to_regclass($1::text)::text`, c.table).Scan(&regclass); err != nil {
		return nil, fmt.Errorf("%w: resolve table: %v", ErrConnection, err)
	}
	if regclass == nil {
		return nil, fmt.Errorf("%w: table %q", ErrSheetNotFound, c.table)
	}

	return &pgWorksheet{db: c.db, table: c.table}, nil
}

type pgWorksheet struct {
	db    Querier
	table string
}

func (w *pgWorksheet) Records(ctx context.Context) ([]Record, error) {
	cols := make([]string, len(pgColumns))
	for i, c := range pgColumns {
		cols[i] = c.column
	}
	query := fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY row_number",
		strings.Join(cols, ", "),
		pgx.Identifier(strings.Split(w.table, ".")).Sanitize(),
	)

	rows, err := w.db.Query(ctx, query)
	if err != nil {
		return nil, classifyPGError(err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		values := make([]*string, len(pgColumns))
		dest := make([]any, len(pgColumns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("%w: scan row: %v", ErrMalformedRow, err)
		}

		rec := make(Record, len(pgColumns))
		for i, c := range pgColumns {
			if values[i] != nil {
				rec[c.header] = *values[i]
			} else {
				rec[c.header] = ""
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyPGError(err)
	}

	return records, nil
}

func classifyPGError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42P01":
			return fmt.Errorf("%w: %v", ErrSheetNotFound, err)
		case "42703":
			return fmt.Errorf("%w: %v", ErrMalformedRow, err)
		}
	}
	return fmt.Errorf("%w: query rows: %v", ErrConnection, err)
}
