package account

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vale-pay/vale_pay/internal/card"
)

// Category identifies the earmarked purpose of a balance bucket.
type Category string

const (
	// CategoryFood covers grocery and food purchases.
	CategoryFood Category = "FOOD"
	// CategoryMeal covers restaurant and meal-voucher purchases.
	CategoryMeal Category = "MEAL"
	// CategoryCash is the general-purpose bucket and the fallback target
	// for every other category.
	CategoryCash Category = "CASH"
)

// ParseCategory validates a raw category string.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryFood, CategoryMeal, CategoryCash:
		return Category(s), nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Balance is one earmarked bucket of funds. Amount never goes negative.
type Balance struct {
	ID       string
	Category Category
	Amount   decimal.Decimal
}

// Account holds the set of category balances and the single card attached
// to it. Balances and Card are owned values: they live and die with the
// account and are never shared between accounts.
type Account struct {
	ID       string
	Number   string
	Card     card.Card
	Balances []Balance
}

// BalanceFor returns a pointer into the account's balance slice for the
// given category, or nil when the account has no such bucket.
func (a *Account) BalanceFor(cat Category) *Balance {
	for i := range a.Balances {
		if a.Balances[i].Category == cat {
			return &a.Balances[i]
		}
	}
	return nil
}

// Total sums every bucket. Used by conservation checks in tests and by the
// balances endpoint.
func (a *Account) Total() decimal.Decimal {
	total := decimal.Zero
	for _, b := range a.Balances {
		total = total.Add(b.Amount)
	}
	return total
}

// Clone returns a deep copy of the account snapshot so a caller can roll
// back to the pre-mutation state if a later step fails.
func (a Account) Clone() Account {
	out := a
	out.Balances = make([]Balance, len(a.Balances))
	copy(out.Balances, a.Balances)
	return out
}
