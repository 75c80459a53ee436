// Package actors drives concurrent load against the order lookup path.
package actors

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"confirmflow/order"
)

// Finder is the lookup surface a page load uses.
type Finder interface {
	Lookup(ctx context.Context, id string) (order.Order, error)
}

// Tally counts lookup outcomes across visitors.
type Tally struct {
	Found      atomic.Int64
	NotFound   atomic.Int64
	Connection atomic.Int64
}

func (t *Tally) String() string {
	return fmt.Sprintf("found=%d not_found=%d connection=%d",
		t.Found.Load(), t.NotFound.Load(), t.Connection.Load())
}

// Visitor simulates customers opening order links. Every resolved order must
// carry the number that was asked for; unknown numbers must never resolve.
// Connection failures are expected while chaos is running and are only counted.
func Visitor(ctx context.Context, finder Finder, known []string, unknown string, tally *Tally, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		id := unknown
		if rand.Intn(4) != 0 {
			id = known[rand.Intn(len(known))]
		}

		o, err := finder.Lookup(ctx, id)
		switch {
		case err == nil:
			if id == unknown {
				return fmt.Errorf("visitor: unknown order %q resolved to %q", id, o.Number)
			}
			if o.Number != id {
				return fmt.Errorf("visitor: asked for %q, got %q", id, o.Number)
			}
			tally.Found.Add(1)
		case errors.Is(err, order.ErrNotFound):
			if id != unknown {
				return fmt.Errorf("visitor: known order %q not found", id)
			}
			tally.NotFound.Add(1)
		case errors.Is(err, order.ErrConnection):
			tally.Connection.Add(1)
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			return fmt.Errorf("visitor: lookup %q: %w", id, err)
		}

		time.Sleep(time.Duration(5+rand.Intn(15)) * time.Millisecond)
	}
}

// Appender keeps adding rows to the mirror the way operators append to the
// sheet: new orders, and late duplicates of existing numbers that must never
// shadow the earlier row.
func Appender(ctx context.Context, pool *pgxpool.Pool, known []string, stop <-chan struct{}) error {
	for n := 0; ; n++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		number := fmt.Sprintf("BORD-S%04d", n)
		customer := "Cliente Stress"
		if rand.Intn(2) == 0 {
			number = known[rand.Intn(len(known))]
			customer = "Duplicado"
		}
		// Terminated backends surface here as errors; the next iteration retries.
		_, _ = pool.Exec(ctx, `INSERT INTO ordenes_bordado (numero_orden, cliente) VALUES ($1, $2)`, number, customer)

		time.Sleep(time.Duration(20+rand.Intn(40)) * time.Millisecond)
	}
}
