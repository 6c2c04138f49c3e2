// Package authorizer decides whether an incoming purchase transaction is
// approved against the owning account's category balances.
package authorizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vale-pay/vale_pay/internal/account"
	"github.com/vale-pay/vale_pay/internal/card"
	"github.com/vale-pay/vale_pay/internal/category"
	"github.com/vale-pay/vale_pay/internal/ledger"
	"github.com/vale-pay/vale_pay/internal/notification"
)

// ErrInvalidInput rejects malformed requests before any lookup or ledger
// call. It is never conflated with a business decline.
var ErrInvalidInput = errors.New("invalid authorization request")

const defaultLookupTimeout = 3 * time.Second

// Request is the single input record of an authorization call. AccountID
// is only consulted by the fallback path; the plain path resolves the
// account through the card.
type Request struct {
	AccountID    string
	CardNumber   string
	Amount       decimal.Decimal
	MerchantName string
	MCC          string
}

// Service is the authorization engine. It orchestrates the category
// resolver and the ledger for one transaction at a time, holding the
// account's guard lock across the whole read-check-mutate-persist
// sequence.
type Service struct {
	resolver      *category.Resolver
	cards         card.Directory
	accounts      account.Store
	committer     Committer
	guard         *account.Guard
	notifier      notification.Notifier
	logger        *slog.Logger
	lookupTimeout time.Duration
}

// NewService wires the engine. notifier may be nil.
func NewService(resolver *category.Resolver, cards card.Directory, accounts account.Store,
	committer Committer, guard *account.Guard, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{
		resolver:      resolver,
		cards:         cards,
		accounts:      accounts,
		committer:     committer,
		guard:         guard,
		notifier:      notifier,
		logger:        logger,
		lookupTimeout: defaultLookupTimeout,
	}
}

// WithLookupTimeout bounds every directory/store lookup; expiry surfaces as
// a decline, never a hang.
func (s *Service) WithLookupTimeout(d time.Duration) *Service {
	if d > 0 {
		s.lookupTimeout = d
	}
	return s
}

// Authorize runs the plain authorization path: category resolution, card
// and account lookup via the card, then a single debit attempt. A missing
// category bucket is retried once against CASH; an underfunded bucket is
// not.
func (s *Service) Authorize(ctx context.Context, req Request) (Result, error) {
	if err := validate(req); err != nil {
		return Result{}, err
	}
	cat := s.resolver.Resolve(ctx, category.Attributes{MerchantName: req.MerchantName, MCC: req.MCC})
	s.logger.Info("category resolved", "category", cat, "card", req.CardNumber)
	return s.process(ctx, req, cat)
}

// AuthorizeWithFallback runs the plain path and, on any non-approved
// result, retries by debiting CASH from the account looked up by the
// request's own account identifier. The two paths intentionally resolve
// the account differently (via card vs. via account ID).
func (s *Service) AuthorizeWithFallback(ctx context.Context, req Request) (Result, error) {
	if err := validate(req); err != nil {
		return Result{}, err
	}
	cat := s.resolver.Resolve(ctx, category.Attributes{MerchantName: req.MerchantName, MCC: req.MCC})
	s.logger.Info("category resolved", "category", cat, "card", req.CardNumber)

	res, err := s.process(ctx, req, cat)
	if err != nil || res.Outcome == OutcomeApproved {
		return res, err
	}

	s.logger.Info("authorization failed, falling back to cash", "category", cat, "code", res.Outcome.Code())
	return s.fallbackToCash(ctx, req)
}

func validate(req Request) error {
	if req.CardNumber == "" {
		return fmt.Errorf("%w: card number is required", ErrInvalidInput)
	}
	if !req.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	return nil
}

// process resolves the account through the card directory and attempts the
// debit under the account's guard lock.
func (s *Service) process(ctx context.Context, req Request, cat account.Category) (Result, error) {
	crd, ok := s.lookupCard(ctx, req.CardNumber)
	if !ok {
		return declined(), nil
	}

	acct, ok := s.lookupAccountByCard(ctx, crd.ID)
	if !ok {
		return declined(), nil
	}

	// Lock, then re-read: the snapshot fetched during the lookup may be
	// stale by the time the lock is held.
	unlock := s.guard.Lock(acct.ID)
	defer unlock()

	acct, ok = s.lookupAccount(ctx, acct.ID)
	if !ok {
		return declined(), nil
	}

	debited, err := ledger.Debit(&acct, cat, req.Amount, false)
	switch {
	case errors.Is(err, ledger.ErrCategoryNotFound):
		// The engine drives this retry itself rather than the ledger:
		// a bucket the account never had is not "insufficient funds".
		debited, err = ledger.Debit(&acct, account.CategoryCash, req.Amount, false)
		if err != nil {
			return declined(), nil
		}
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return insufficient(), nil
	case err != nil:
		return Result{}, err
	}

	return s.commit(ctx, acct, req, debited)
}

// fallbackToCash debits CASH from the account identified directly by the
// request. CASH short means insufficient funds; CASH or account missing
// means decline.
func (s *Service) fallbackToCash(ctx context.Context, req Request) (Result, error) {
	if req.AccountID == "" {
		return declined(), nil
	}

	unlock := s.guard.Lock(req.AccountID)
	defer unlock()

	acct, ok := s.lookupAccount(ctx, req.AccountID)
	if !ok {
		return declined(), nil
	}

	debited, err := ledger.Debit(&acct, account.CategoryCash, req.Amount, false)
	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return insufficient(), nil
	case errors.Is(err, ledger.ErrCategoryNotFound):
		return declined(), nil
	case err != nil:
		return Result{}, err
	}

	return s.commit(ctx, acct, req, debited)
}

// commit persists the mutated snapshot together with the transaction
// record. Commit failures are escalated to the caller as errors so the
// whole authorization can be retried; they are never reported as declines.
func (s *Service) commit(ctx context.Context, acct account.Account, req Request, debited account.Category) (Result, error) {
	rec := newRecord(acct, req, debited)
	if err := s.committer.Commit(ctx, acct, rec); err != nil {
		return Result{}, fmt.Errorf("commit authorization: %w", err)
	}

	s.logger.Info("transaction approved",
		"transaction_id", rec.ID, "account_id", acct.ID, "category", debited, "amount", req.Amount)

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindAuthorizationApproved,
			Destination: acct.ID,
			Body:        fmt.Sprintf("Purchase of %s approved on %s", req.Amount, debited),
		})
	}

	return approved(debited, rec.ID), nil
}

func (s *Service) lookupCard(ctx context.Context, number string) (card.Card, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()
	crd, err := s.cards.ByNumber(ctx, number)
	if err != nil {
		if !errors.Is(err, card.ErrNotFound) {
			s.logger.Warn("card lookup failed", "card", number, "error", err)
		}
		return card.Card{}, false
	}
	return crd, true
}

func (s *Service) lookupAccountByCard(ctx context.Context, cardID string) (account.Account, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()
	acct, err := s.accounts.GetByCardID(ctx, cardID)
	if err != nil {
		if !errors.Is(err, account.ErrNotFound) {
			s.logger.Warn("account lookup by card failed", "card_id", cardID, "error", err)
		}
		return account.Account{}, false
	}
	return acct, true
}

func (s *Service) lookupAccount(ctx context.Context, id string) (account.Account, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()
	acct, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, account.ErrNotFound) {
			s.logger.Warn("account lookup failed", "account_id", id, "error", err)
		}
		return account.Account{}, false
	}
	return acct, true
}
