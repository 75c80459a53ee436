// Package oracles checks lookup results against the mirror table itself.
package oracles

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"confirmflow/order"
)

// Finder is the lookup surface under test.
type Finder interface {
	Lookup(ctx context.Context, id string) (order.Order, error)
}

// firstRows selects the earliest row per order number, which is the row a
// lookup must return.
const firstRows = `SELECT DISTINCT ON (numero_orden) numero_orden, COALESCE(cliente, '')
                   FROM ordenes_bordado
                   ORDER BY numero_orden, row_number`

// Run compares a lookup of every order number against its earliest row and
// returns the first mismatch (oracle name and detail) or an empty name when all
// pass. Connection failures caused by chaos skip the affected number.
func Run(ctx context.Context, pool *pgxpool.Pool, finder Finder) (string, string, error) {
	rows, err := pool.Query(ctx, firstRows)
	if err != nil {
		return "", "", fmt.Errorf("oracle first_rows: %w", err)
	}
	expected := map[string]string{}
	for rows.Next() {
		var number, customer string
		if err := rows.Scan(&number, &customer); err != nil {
			rows.Close()
			return "", "", err
		}
		expected[number] = customer
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return "", "", err
	}

	for number, customer := range expected {
		o, err := finder.Lookup(ctx, number)
		switch {
		case errors.Is(err, order.ErrConnection):
			continue
		case errors.Is(err, order.ErrNotFound):
			return "O1_present_order_resolves", number, nil
		case err != nil:
			return "", "", err
		}
		if o.Customer != customer {
			return "O2_first_match_wins", fmt.Sprintf("%s: got cliente %q, earliest row has %q", number, o.Customer, customer), nil
		}
	}
	return "", "", nil
}
