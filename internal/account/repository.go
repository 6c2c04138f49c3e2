package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/vale-pay/vale_pay/internal/card"
)

// ErrNotFound indicates no account matches the requested identifier.
var ErrNotFound = errors.New("account not found")

// Store loads and persists account snapshots. Save accepts multiple
// snapshots and must apply them atomically: a transfer persists both sides
// or neither.
type Store interface {
	GetByID(ctx context.Context, id string) (Account, error)
	GetByCardID(ctx context.Context, cardID string) (Account, error)
	Save(ctx context.Context, accounts ...Account) error
}

// PostgresStore persists accounts and their balance buckets in PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a store backed by PostgreSQL.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const accountQuery = `SELECT a.id, a.number, c.id, c.number, c.type
        FROM accounts a
        JOIN cards c ON c.account_id = a.id`

// GetByID fetches an account with its balances by account identifier.
func (s *PostgresStore) GetByID(ctx context.Context, id string) (Account, error) {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return Account{}, ErrNotFound
	}
	row := s.db.QueryRow(ctx, accountQuery+` WHERE a.id = $1`, accountID)
	return s.scanAccount(ctx, row)
}

// GetByCardID fetches the account owning the given card.
func (s *PostgresStore) GetByCardID(ctx context.Context, cardID string) (Account, error) {
	id, err := uuid.Parse(cardID)
	if err != nil {
		return Account{}, ErrNotFound
	}
	row := s.db.QueryRow(ctx, accountQuery+` WHERE c.id = $1`, id)
	return s.scanAccount(ctx, row)
}

func (s *PostgresStore) scanAccount(ctx context.Context, row pgx.Row) (Account, error) {
	var (
		accountID uuid.UUID
		cardID    uuid.UUID
		cardType  string
		a         Account
	)
	if err := row.Scan(&accountID, &a.Number, &cardID, &a.Card.Number, &cardType); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	a.ID = accountID.String()
	a.Card.ID = cardID.String()
	a.Card.Type = card.Type(cardType)

	rows, err := s.db.Query(ctx, `SELECT id, category, amount FROM balances WHERE account_id = $1 ORDER BY category`, accountID)
	if err != nil {
		return Account{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			balanceID uuid.UUID
			category  string
			amount    decimal.Decimal
		)
		if err := rows.Scan(&balanceID, &category, &amount); err != nil {
			return Account{}, err
		}
		a.Balances = append(a.Balances, Balance{ID: balanceID.String(), Category: Category(category), Amount: amount})
	}
	return a, rows.Err()
}

// Save writes the balance buckets of every given snapshot in a single
// transaction, locking each account row first.
func (s *PostgresStore) Save(ctx context.Context, accounts ...Account) error {
	if len(accounts) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	for _, a := range accounts {
		if err := saveBalances(ctx, tx, a); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func saveBalances(ctx context.Context, tx pgx.Tx, a Account) error {
	accountID, err := uuid.Parse(a.ID)
	if err != nil {
		return fmt.Errorf("account id %q: %w", a.ID, err)
	}
	var locked uuid.UUID
	if err := tx.QueryRow(ctx, `SELECT id FROM accounts WHERE id = $1 FOR UPDATE`, accountID).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	for _, b := range a.Balances {
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
			return fmt.Errorf("balance %s missing for account %s", b.ID, a.ID)
		}
	}
	return nil
}
