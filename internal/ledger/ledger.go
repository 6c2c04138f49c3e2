// Package ledger owns the mutation rules for an account's category
// balances. Every operation works on an in-memory account snapshot and
// leaves persistence to the caller; no operation may leave a bucket
// negative.
package ledger

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/vale-pay/vale_pay/internal/account"
)

var (
	// ErrInvalidAmount rejects negative amounts before any mutation.
	ErrInvalidAmount = errors.New("amount must not be negative")

	// ErrCategoryNotFound signals the account has no bucket for the
	// requested category. Distinct from ErrInsufficientFunds so the
	// caller can decide whether to retry against CASH.
	ErrCategoryNotFound = errors.New("category not found on account")

	// ErrInsufficientFunds signals the bucket exists but cannot cover the
	// requested amount.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// SufficientFor reports whether the account can cover amount from the
// given category bucket or from CASH. Pure query, no mutation.
func SufficientFor(a *account.Account, cat account.Category, amount decimal.Decimal) bool {
	if amount.IsNegative() {
		return false
	}
	if b := a.BalanceFor(cat); b != nil && b.Amount.GreaterThanOrEqual(amount) {
		return true
	}
	if b := a.BalanceFor(account.CategoryCash); b != nil && b.Amount.GreaterThanOrEqual(amount) {
		return true
	}
	return false
}

// Debit subtracts amount from the bucket of the given category and returns
// the category actually debited. With fallback enabled, a bucket that
// exists but cannot cover the amount is retried against CASH; a CASH debit
// never falls back further. A missing bucket always returns
// ErrCategoryNotFound and leaves the retry decision to the caller.
func Debit(a *account.Account, cat account.Category, amount decimal.Decimal, fallback bool) (account.Category, error) {
	if amount.IsNegative() {
		return "", ErrInvalidAmount
	}
	b := a.BalanceFor(cat)
	if b == nil {
		return "", ErrCategoryNotFound
	}
	if b.Amount.LessThan(amount) {
		if fallback && cat != account.CategoryCash {
			return Debit(a, account.CategoryCash, amount, false)
		}
		return "", ErrInsufficientFunds
	}
	b.Amount = b.Amount.Sub(amount)
	return cat, nil
}

// Credit adds amount to the bucket of the given category. Credits never
// create a new bucket: a missing category fails with ErrCategoryNotFound.
func Credit(a *account.Account, cat account.Category, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	b := a.BalanceFor(cat)
	if b == nil {
		return ErrCategoryNotFound
	}
	b.Amount = b.Amount.Add(amount)
	return nil
}

// MoveBetweenCategories debits `from` and credits `to` on the same
// account. The destination bucket is validated before the debit so a
// failed credit can never leave the account debited.
func MoveBetweenCategories(a *account.Account, amount decimal.Decimal, from, to account.Category) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	if a.BalanceFor(to) == nil {
		return ErrCategoryNotFound
	}
	if _, err := Debit(a, from, amount, true); err != nil {
		return err
	}
	return Credit(a, to, amount)
}

// TransferBetweenAccounts debits the source (with CASH fallback) and
// credits the destination with the category that was actually debited: a
// FOOD debit that fell back to CASH credits the destination's CASH bucket.
// A failed credit rolls the source debit back, so the pair of snapshots is
// either fully moved or untouched.
func TransferBetweenAccounts(from, to *account.Account, amount decimal.Decimal, cat account.Category) (account.Category, error) {
	if amount.IsNegative() {
		return "", ErrInvalidAmount
	}
	debited, err := Debit(from, cat, amount, true)
	if err != nil {
		return "", err
	}
	if err := Credit(to, debited, amount); err != nil {
		// The debited bucket necessarily exists, so the rollback credit
		// cannot fail.
		_ = Credit(from, debited, amount)
		return "", err
	}
	return debited, nil
}
