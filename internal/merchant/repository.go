package merchant

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates no merchant record exists for the requested MCC.
var ErrNotFound = errors.New("merchant not found")

// Directory looks merchants up by category code. MCCs are not guaranteed
// unique; the directory returns the first match.
type Directory interface {
	ByMCC(ctx context.Context, mcc string) (Merchant, error)
}

// PostgresDirectory looks merchants up in PostgreSQL.
type PostgresDirectory struct {
	db *pgxpool.Pool
}

// NewPostgresDirectory builds a directory backed by PostgreSQL.
func NewPostgresDirectory(db *pgxpool.Pool) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

// ByMCC fetches the first merchant registered under the given MCC.
func (d *PostgresDirectory) ByMCC(ctx context.Context, mcc string) (Merchant, error) {
	row := d.db.QueryRow(ctx, `SELECT id, mcc, name FROM merchants WHERE mcc = $1 LIMIT 1`, mcc)
	var (
		id uuid.UUID
		m  Merchant
	)
	if err := row.Scan(&id, &m.MCC, &m.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Merchant{}, ErrNotFound
		}
		return Merchant{}, err
	}
	m.ID = id.String()
	return m, nil
}
