package transaction

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Log appends and reads authorized transaction records.
type Log interface {
	Append(ctx context.Context, tx Transaction) error
	ListByAccount(ctx context.Context, accountID string) ([]Transaction, error)
}

// PostgresLog persists transaction records in PostgreSQL.
type PostgresLog struct {
	db *pgxpool.Pool
}

// NewPostgresLog builds a log backed by PostgreSQL.
func NewPostgresLog(db *pgxpool.Pool) *PostgresLog {
	return &PostgresLog{db: db}
}

const insertQuery = `INSERT INTO transactions
        (id, account_id, card_number, amount, merchant_name, mcc, category, authorized_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// Append inserts one transaction record.
func (l *PostgresLog) Append(ctx context.Context, tx Transaction) error {
	id, err := uuid.Parse(tx.ID)
	if err != nil {
		return err
	}
	accountID, err := uuid.Parse(tx.AccountID)
	if err != nil {
		return err
	}
	_, err = l.db.Exec(ctx, insertQuery,
		id, accountID, tx.CardNumber, tx.Amount, tx.MerchantName, tx.MCC, tx.Category, tx.AuthorizedAt.UTC())
	return err
}

// ListByAccount returns the recorded transactions of one account, newest
// first.
func (l *PostgresLog) ListByAccount(ctx context.Context, accountID string) ([]Transaction, error) {
	id, err := uuid.Parse(accountID)
	if err != nil {
		return nil, err
	}
	rows, err := l.db.Query(ctx, `SELECT id, account_id, card_number, amount, merchant_name, mcc, category, authorized_at
        FROM transactions WHERE account_id = $1 ORDER BY authorized_at DESC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var (
			txID         uuid.UUID
			acctID       uuid.UUID
			amount       decimal.Decimal
			authorizedAt time.Time
			tx           Transaction
		)
		if err := rows.Scan(&txID, &acctID, &tx.CardNumber, &amount, &tx.MerchantName, &tx.MCC, &tx.Category, &authorizedAt); err != nil {
			return nil, err
		}
		tx.ID = txID.String()
		tx.AccountID = acctID.String()
		tx.Amount = amount
		tx.AuthorizedAt = authorizedAt.UTC()
		out = append(out, tx)
	}
	return out, rows.Err()
}
