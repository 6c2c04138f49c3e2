// Package funds moves money between buckets and accounts outside the
// authorization flow: deposits, withdrawals, transfers and category moves.
package funds

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/vale-pay/vale_pay/internal/account"
	"github.com/vale-pay/vale_pay/internal/ledger"
	"github.com/vale-pay/vale_pay/internal/notification"
)

// Service is a thin orchestration over the ledger: validate, lock, load,
// mutate, persist.
type Service struct {
	accounts account.Store
	guard    *account.Guard
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService builds a fund movement service. notifier may be nil.
func NewService(accounts account.Store, guard *account.Guard, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{accounts: accounts, guard: guard, notifier: notifier, logger: logger}
}

// MovementInput addresses one bucket of one account.
type MovementInput struct {
	AccountID string
	Category  account.Category
	Amount    decimal.Decimal
}

// TransferInput moves funds between two accounts within one category.
type TransferInput struct {
	FromAccountID string
	ToAccountID   string
	Category      account.Category
	Amount        decimal.Decimal
}

// MoveInput shifts funds between two categories of the same account.
type MoveInput struct {
	AccountID string
	From      account.Category
	To        account.Category
	Amount    decimal.Decimal
}

// Deposit credits the given bucket. Credits never create buckets, so a
// category the account does not carry fails with ErrCategoryNotFound.
func (s *Service) Deposit(ctx context.Context, in MovementInput) error {
	if in.Amount.IsNegative() {
		return ledger.ErrInvalidAmount
	}

	unlock := s.guard.Lock(in.AccountID)
	defer unlock()

	acct, err := s.accounts.GetByID(ctx, in.AccountID)
	if err != nil {
		return err
	}
	if err := ledger.Credit(&acct, in.Category, in.Amount); err != nil {
		return err
	}
	if err := s.accounts.Save(ctx, acct); err != nil {
		return fmt.Errorf("persist deposit: %w", err)
	}
	s.logger.Info("deposit", "account_id", in.AccountID, "category", in.Category, "amount", in.Amount)
	return nil
}

// Withdraw debits the given bucket with the standard CASH fallback and
// reports which category was actually debited.
func (s *Service) Withdraw(ctx context.Context, in MovementInput) (account.Category, error) {
	if in.Amount.IsNegative() {
		return "", ledger.ErrInvalidAmount
	}

	unlock := s.guard.Lock(in.AccountID)
	defer unlock()

	acct, err := s.accounts.GetByID(ctx, in.AccountID)
	if err != nil {
		return "", err
	}
	debited, err := ledger.Debit(&acct, in.Category, in.Amount, true)
	if err != nil {
		return "", err
	}
	if err := s.accounts.Save(ctx, acct); err != nil {
		return "", fmt.Errorf("persist withdrawal: %w", err)
	}
	s.logger.Info("withdrawal", "account_id", in.AccountID, "category", debited, "amount", in.Amount)
	return debited, nil
}

// Transfer debits the source (with CASH fallback) and credits the same
// actually-debited category on the destination. Both snapshots persist in
// one call, or neither does.
func (s *Service) Transfer(ctx context.Context, in TransferInput) (account.Category, error) {
	if in.Amount.IsNegative() {
		return "", ledger.ErrInvalidAmount
	}
	if in.FromAccountID == in.ToAccountID {
		return "", fmt.Errorf("transfer requires two distinct accounts")
	}

	unlock := s.guard.LockPair(in.FromAccountID, in.ToAccountID)
	defer unlock()

	from, err := s.accounts.GetByID(ctx, in.FromAccountID)
	if err != nil {
		return "", err
	}
	to, err := s.accounts.GetByID(ctx, in.ToAccountID)
	if err != nil {
		return "", err
	}

	debited, err := ledger.TransferBetweenAccounts(&from, &to, in.Amount, in.Category)
	if err != nil {
		return "", err
	}
	if err := s.accounts.Save(ctx, from, to); err != nil {
		return "", fmt.Errorf("persist transfer: %w", err)
	}
	s.logger.Info("transfer", "from", in.FromAccountID, "to", in.ToAccountID, "category", debited, "amount", in.Amount)

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindFundsMoved,
			Destination: in.ToAccountID,
			Body:        fmt.Sprintf("You received %s on %s from account %s", in.Amount, debited, in.FromAccountID),
		})
	}

	return debited, nil
}

// Move shifts funds between two categories of one account. Logically
// atomic: the ledger validates the destination before debiting.
func (s *Service) Move(ctx context.Context, in MoveInput) error {
	if in.Amount.IsNegative() {
		return ledger.ErrInvalidAmount
	}

	unlock := s.guard.Lock(in.AccountID)
	defer unlock()

	acct, err := s.accounts.GetByID(ctx, in.AccountID)
	if err != nil {
		return err
	}
	if err := ledger.MoveBetweenCategories(&acct, in.Amount, in.From, in.To); err != nil {
		return err
	}
	if err := s.accounts.Save(ctx, acct); err != nil {
		return fmt.Errorf("persist move: %w", err)
	}
	s.logger.Info("category move", "account_id", in.AccountID, "from", in.From, "to", in.To, "amount", in.Amount)
	return nil
}

// Sufficient reports whether the account can cover amount from the bucket
// or from CASH.
func (s *Service) Sufficient(ctx context.Context, in MovementInput) (bool, error) {
	acct, err := s.accounts.GetByID(ctx, in.AccountID)
	if err != nil {
		return false, err
	}
	return ledger.SufficientFor(&acct, in.Category, in.Amount), nil
}

// Balances returns the current bucket snapshot of one account.
func (s *Service) Balances(ctx context.Context, accountID string) ([]account.Balance, error) {
	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return acct.Balances, nil
}
