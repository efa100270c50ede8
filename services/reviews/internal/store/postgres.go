package store

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres persists reviews, replies and helpful votes. One struct backs all
// three store interfaces so the cascading delete of a review runs inside a
// single transaction.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

// NewPostgres creates a store backed by Postgres.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func isPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func isUniqueViolation(err error) bool {
	return isPgCode(err, pgerrcode.UniqueViolation)
}

func isForeignKeyViolation(err error) bool {
	return isPgCode(err, pgerrcode.ForeignKeyViolation)
}

func noRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func (s *Postgres) begin(ctx context.Context) (pgx.Tx, error) {
	return s.pool.Begin(ctx)
}
