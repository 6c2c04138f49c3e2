package card

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates no card matches the requested number.
var ErrNotFound = errors.New("card not found")

// Directory resolves card numbers to card records.
type Directory interface {
	ByNumber(ctx context.Context, number string) (Card, error)
}

// PostgresDirectory looks cards up in PostgreSQL.
type PostgresDirectory struct {
	db *pgxpool.Pool
}

// NewPostgresDirectory builds a directory backed by PostgreSQL.
func NewPostgresDirectory(db *pgxpool.Pool) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

// ByNumber fetches a card by its number.
func (d *PostgresDirectory) ByNumber(ctx context.Context, number string) (Card, error) {
	row := d.db.QueryRow(ctx, `SELECT id, number, type FROM cards WHERE number = $1`, number)
	var (
		id       uuid.UUID
		cardType string
		c        Card
	)
	if err := row.Scan(&id, &c.Number, &cardType); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Card{}, ErrNotFound
		}
		return Card{}, err
	}
	c.ID = id.String()
	c.Type = Type(cardType)
	return c, nil
}
