package authorizer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vale-pay/vale_pay/internal/account"
	"github.com/vale-pay/vale_pay/internal/transaction"
)

// PostgresCommitter writes the balance updates and the transaction record
// in a single database transaction, locking the account row first.
type PostgresCommitter struct {
	db *pgxpool.Pool
}

// NewPostgresCommitter builds a committer backed by PostgreSQL.
func NewPostgresCommitter(db *pgxpool.Pool) *PostgresCommitter {
	return &PostgresCommitter{db: db}
}

// Commit applies the snapshot and appends the record atomically.
func (c *PostgresCommitter) Commit(ctx context.Context, acct account.Account, rec transaction.Transaction) error {
	accountID, err := uuid.Parse(acct.ID)
	if err != nil {
		return fmt.Errorf("account id %q: %w", acct.ID, err)
	}
	txID, err := uuid.Parse(rec.ID)
	if err != nil {
		return fmt.Errorf("transaction id %q: %w", rec.ID, err)
	}

	tx, err := c.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	var locked uuid.UUID
	if err := tx.QueryRow(ctx, `SELECT id FROM accounts WHERE id = $1 FOR UPDATE`, accountID).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.ErrNotFound
		}
		return err
	}

	for _, b := range acct.Balances {
		balanceID, err := uuid.Parse(b.ID)
		if err != nil {
			return fmt.Errorf("balance id %q: %w", b.ID, err)
		}
		tag, err := tx.Exec(ctx, `UPDATE balances SET amount = $1 WHERE id = $2 AND account_id = $3`,
			b.Amount, balanceID, accountID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("balance %s missing for account %s", b.ID, acct.ID)
		}
	}

	if _, err := tx.Exec(ctx, `INSERT INTO transactions
        (id, account_id, card_number, amount, merchant_name, mcc, category, authorized_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		txID, accountID, rec.CardNumber, rec.Amount, rec.MerchantName, rec.MCC, rec.Category, rec.AuthorizedAt.UTC()); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
