package authorizer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/vale-pay/vale_pay/internal/account"
	"github.com/vale-pay/vale_pay/internal/transaction"
)

// newRecord stamps the approved transaction with the server clock; client
// supplied times are never trusted.
func newRecord(acct account.Account, req Request, debited account.Category) transaction.Transaction {
	return transaction.Transaction{
		ID:           uuid.NewString(),
		AccountID:    acct.ID,
		CardNumber:   req.CardNumber,
		Amount:       req.Amount,
		MerchantName: req.MerchantName,
		MCC:          req.MCC,
		Category:     string(debited),
		AuthorizedAt: time.Now().UTC(),
	}
}

// Committer persists the debited account snapshot and appends the approved
// transaction as one unit: either both land or neither does. A failed
// commit is an infrastructure fault, never a business decline.
type Committer interface {
	Commit(ctx context.Context, acct account.Account, tx transaction.Transaction) error
}

// StoreCommitter composes an account store and a transaction log. The
// Postgres deployment uses PostgresCommitter instead; this implementation
// backs the in-memory wiring, compensating the account save when the log
// append fails.
type StoreCommitter struct {
	store account.Store
	log   transaction.Log
}

// NewStoreCommitter builds a committer over separate store and log backends.
func NewStoreCommitter(store account.Store, log transaction.Log) *StoreCommitter {
	return &StoreCommitter{store: store, log: log}
}

// Commit saves the account, then appends the transaction, restoring the
// previous snapshot if the append fails.
func (c *StoreCommitter) Commit(ctx context.Context, acct account.Account, tx transaction.Transaction) error {
	prev, err := c.store.GetByID(ctx, acct.ID)
	if err != nil {
		return err
	}
	if err := c.store.Save(ctx, acct); err != nil {
		return err
	}
	if err := c.log.Append(ctx, tx); err != nil {
		if restoreErr := c.store.Save(ctx, prev); restoreErr != nil {
			return errors.Join(err, restoreErr)
		}
		return err
	}
	return nil
}
