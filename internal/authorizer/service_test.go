package authorizer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/vale-pay/vale_pay/internal/account"
	"github.com/vale-pay/vale_pay/internal/card"
	"github.com/vale-pay/vale_pay/internal/category"
	"github.com/vale-pay/vale_pay/internal/logging"
	"github.com/vale-pay/vale_pay/internal/merchant"
	"github.com/vale-pay/vale_pay/internal/transaction"
)

const (
	testAccountID  = "3f1c2d94-5a7e-4c1b-9f1d-0aa111111111"
	testCardID     = "3f1c2d94-5a7e-4c1b-9f1d-0aa222222222"
	testCardNumber = "378282246310005"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	service  *Service
	accounts *account.MemoryStore
	cards    *card.MemoryDirectory
	log      *transaction.MemoryLog
}

func newFixture(t *testing.T, buckets map[account.Category]string) *fixture {
	t.Helper()

	accounts := account.NewMemoryStore()
	cards := card.NewMemoryDirectory()
	merchants := merchant.NewMemoryDirectory()
	log := transaction.NewMemoryLog()

	acct := account.Account{
		ID:     testAccountID,
		Number: "1234567890",
		Card:   card.Card{ID: testCardID, Number: testCardNumber, Type: card.TypeBenefit},
	}
	for cat, amount := range buckets {
		acct.Balances = append(acct.Balances, account.Balance{
			ID:       "bal-" + string(cat),
			Category: cat,
			Amount:   dec(amount),
		})
	}
	accounts.Put(acct)
	cards.Put(acct.Card)

	svc := NewService(
		category.NewResolver(merchants),
		cards,
		accounts,
		NewStoreCommitter(accounts, log),
		account.NewGuard(),
		nil,
		logging.Discard(),
	)

	return &fixture{service: svc, accounts: accounts, cards: cards, log: log}
}

func (f *fixture) balance(t *testing.T, cat account.Category) decimal.Decimal {
	t.Helper()
	acct, err := f.accounts.GetByID(context.Background(), testAccountID)
	require.NoError(t, err)
	b := acct.BalanceFor(cat)
	require.NotNil(t, b, "bucket %s missing", cat)
	return b.Amount
}

// Account with FOOD=100, amount 50 resolved to FOOD via the MCC code
// table: approved, FOOD drops to 50, one record persisted.
func TestAuthorizeApprovedViaMCC(t *testing.T) {
	f := newFixture(t, map[account.Category]string{account.CategoryFood: "100.0"})

	res, err := f.service.Authorize(context.Background(), Request{
		CardNumber: testCardNumber,
		Amount:     dec("50.0"),
		MCC:        "5411",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeApproved, res.Outcome)
	assert.Equal(t, CodeApproved, res.Outcome.Code())
	assert.Equal(t, account.CategoryFood, res.Category)
	assert.NotEmpty(t, res.TransactionID)

	assert.True(t, f.balance(t, account.CategoryFood).Equal(dec("50.0")))
	require.Equal(t, 1, f.log.Len())

	records, err := f.log.ListByAccount(context.Background(), testAccountID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, testCardNumber, records[0].CardNumber)
	assert.Equal(t, string(account.CategoryFood), records[0].Category)
	assert.False(t, records[0].AuthorizedAt.IsZero(), "timestamp must be server assigned")
}

// FOOD short, CASH plentiful: the plain path stops at 51, the fallback
// path approves from CASH and leaves FOOD untouched.
func TestAuthorizeInsufficientVersusFallback(t *testing.T) {
	req := Request{
		AccountID:    testAccountID,
		CardNumber:   testCardNumber,
		Amount:       dec("50.0"),
		MerchantName: "WHOLE FOODS MARKET",
	}

	plain := newFixture(t, map[account.Category]string{
		account.CategoryFood: "30.0",
		account.CategoryCash: "100.0",
	})
	res, err := plain.service.Authorize(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, CodeInsufficientFunds, res.Outcome.Code())
	assert.True(t, plain.balance(t, account.CategoryFood).Equal(dec("30.0")))
	assert.True(t, plain.balance(t, account.CategoryCash).Equal(dec("100.0")))
	assert.Equal(t, 0, plain.log.Len(), "denied attempts are never persisted")

	fallback := newFixture(t, map[account.Category]string{
		account.CategoryFood: "30.0",
		account.CategoryCash: "100.0",
	})
	res, err = fallback.service.AuthorizeWithFallback(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, CodeApproved, res.Outcome.Code())
	assert.Equal(t, account.CategoryCash, res.Category)
	assert.True(t, fallback.balance(t, account.CategoryFood).Equal(dec("30.0")))
	assert.True(t, fallback.balance(t, account.CategoryCash).Equal(dec("50.0")))
	assert.Equal(t, 1, fallback.log.Len())
}

// FOOD short and no CASH bucket at all: the fallback path declines with 07
// and mutates nothing.
func TestAuthorizeWithFallbackNoCashBucket(t *testing.T) {
	f := newFixture(t, map[account.Category]string{account.CategoryFood: "30.0"})

	res, err := f.service.AuthorizeWithFallback(context.Background(), Request{
		AccountID:    testAccountID,
		CardNumber:   testCardNumber,
		Amount:       dec("50.0"),
		MerchantName: "WHOLE FOODS MARKET",
	})
	require.NoError(t, err)
	assert.Equal(t, CodeDeclined, res.Outcome.Code())
	assert.True(t, f.balance(t, account.CategoryFood).Equal(dec("30.0")))
	assert.Equal(t, 0, f.log.Len())
}

func TestAuthorizeUnknownCard(t *testing.T) {
	f := newFixture(t, map[account.Category]string{account.CategoryCash: "1000.0"})

	res, err := f.service.Authorize(context.Background(), Request{
		CardNumber: "4111111111111111",
		Amount:     dec("10.0"),
	})
	require.NoError(t, err)
	assert.Equal(t, CodeDeclined, res.Outcome.Code())
	assert.Equal(t, 0, f.log.Len())
}

// The resolved bucket is missing entirely: the engine retries CASH itself
// and approves.
func TestAuthorizeMissingBucketRetriesCash(t *testing.T) {
	f := newFixture(t, map[account.Category]string{account.CategoryCash: "100.0"})

	res, err := f.service.Authorize(context.Background(), Request{
		CardNumber:   testCardNumber,
		Amount:       dec("40.0"),
		MerchantName: "UBER EATS SAO PAULO BR",
	})
	require.NoError(t, err)
	assert.Equal(t, CodeApproved, res.Outcome.Code())
	assert.Equal(t, account.CategoryCash, res.Category)
	assert.True(t, f.balance(t, account.CategoryCash).Equal(dec("60.0")))
}

func TestAuthorizeMissingBucketAndNoCash(t *testing.T) {
	f := newFixture(t, map[account.Category]string{account.CategoryMeal: "100.0"})

	res, err := f.service.Authorize(context.Background(), Request{
		CardNumber:   testCardNumber,
		Amount:       dec("40.0"),
		MerchantName: "UBER EATS SAO PAULO BR",
	})
	require.NoError(t, err)
	assert.Equal(t, CodeDeclined, res.Outcome.Code())
	assert.True(t, f.balance(t, account.CategoryMeal).Equal(dec("100.0")))
}

func TestAuthorizeRejectsInvalidInput(t *testing.T) {
	f := newFixture(t, map[account.Category]string{account.CategoryCash: "100.0"})
	ctx := context.Background()

	_, err := f.service.Authorize(ctx, Request{CardNumber: testCardNumber, Amount: dec("-5.0")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.service.Authorize(ctx, Request{CardNumber: testCardNumber, Amount: decimal.Zero})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.service.Authorize(ctx, Request{Amount: dec("5.0")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.True(t, f.balance(t, account.CategoryCash).Equal(dec("100.0")))
}

// A failing transaction append is an infrastructure fault: the call errors
// out, no result code, and the compensating save restores the balance.
func TestAuthorizeCommitFailureRestoresAccount(t *testing.T) {
	f := newFixture(t, map[account.Category]string{account.CategoryCash: "100.0"})
	f.log.FailNext(errors.New("log unavailable"))

	_, err := f.service.Authorize(context.Background(), Request{
		CardNumber: testCardNumber,
		Amount:     dec("40.0"),
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidInput)
	assert.True(t, f.balance(t, account.CategoryCash).Equal(dec("100.0")))
	assert.Equal(t, 0, f.log.Len())
}

// stalledCardDirectory blocks every lookup until the caller's context
// expires, standing in for an unresponsive backend.
type stalledCardDirectory struct{}

func (stalledCardDirectory) ByNumber(ctx context.Context, _ string) (card.Card, error) {
	<-ctx.Done()
	return card.Card{}, ctx.Err()
}

type stalledAccountStore struct{}

func (stalledAccountStore) GetByID(ctx context.Context, _ string) (account.Account, error) {
	<-ctx.Done()
	return account.Account{}, ctx.Err()
}

func (stalledAccountStore) GetByCardID(ctx context.Context, _ string) (account.Account, error) {
	<-ctx.Done()
	return account.Account{}, ctx.Err()
}

func (stalledAccountStore) Save(context.Context, ...account.Account) error { return nil }

// An unresponsive card directory must surface as a prompt decline, bounded
// by the lookup timeout, never as a hang.
func TestAuthorizeCardLookupTimeoutDeclines(t *testing.T) {
	log := transaction.NewMemoryLog()
	svc := NewService(
		category.NewResolver(merchant.NewMemoryDirectory()),
		stalledCardDirectory{},
		account.NewMemoryStore(),
		NewStoreCommitter(account.NewMemoryStore(), log),
		account.NewGuard(),
		nil,
		logging.Discard(),
	).WithLookupTimeout(20 * time.Millisecond)

	start := time.Now()
	res, err := svc.Authorize(context.Background(), Request{
		CardNumber: testCardNumber,
		Amount:     dec("10.0"),
	})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, OutcomeDeclined, res.Outcome)
	assert.Equal(t, CodeDeclined, res.Outcome.Code())
	assert.Less(t, elapsed, time.Second, "decline must arrive within the lookup timeout")
	assert.Equal(t, 0, log.Len())
}

// Same for the account store: the card resolves but the account lookup
// stalls, and nothing is debited or recorded.
func TestAuthorizeAccountLookupTimeoutDeclines(t *testing.T) {
	cards := card.NewMemoryDirectory()
	cards.Put(card.Card{ID: testCardID, Number: testCardNumber, Type: card.TypeBenefit})

	log := transaction.NewMemoryLog()
	svc := NewService(
		category.NewResolver(merchant.NewMemoryDirectory()),
		cards,
		stalledAccountStore{},
		NewStoreCommitter(account.NewMemoryStore(), log),
		account.NewGuard(),
		nil,
		logging.Discard(),
	).WithLookupTimeout(20 * time.Millisecond)

	start := time.Now()
	res, err := svc.Authorize(context.Background(), Request{
		CardNumber: testCardNumber,
		Amount:     dec("10.0"),
	})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, CodeDeclined, res.Outcome.Code())
	assert.Less(t, elapsed, time.Second, "decline must arrive within the lookup timeout")
	assert.Equal(t, 0, log.Len())
}

// N parallel debits against one account must neither lose updates nor
// drive the balance negative: with CASH=1000 and 20 debits of 100,
// exactly 10 approvals land.
func TestAuthorizeConcurrentDebitsSameAccount(t *testing.T) {
	f := newFixture(t, map[account.Category]string{account.CategoryCash: "1000.0"})

	var g errgroup.Group
	results := make([]Result, 20)
	for i := 0; i < len(results); i++ {
		i := i
		g.Go(func() error {
			res, err := f.service.Authorize(context.Background(), Request{
				CardNumber: testCardNumber,
				Amount:     dec("100.0"),
			})
			if err != nil {
				return fmt.Errorf("authorize %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	require.NoError(t, g.Wait())

	approvals := 0
	for _, res := range results {
		switch res.Outcome {
		case OutcomeApproved:
			approvals++
		case OutcomeInsufficientFunds:
		default:
			t.Fatalf("unexpected outcome %s", res.Outcome.Code())
		}
	}

	assert.Equal(t, 10, approvals)
	assert.True(t, f.balance(t, account.CategoryCash).IsZero())
	assert.Equal(t, 10, f.log.Len())
}
