package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the record of one approved authorization. It is written
// exactly once, with a server-assigned timestamp, and never mutated
// afterwards. Denied attempts are not recorded.
type Transaction struct {
	ID           string
	AccountID    string
	CardNumber   string
	Amount       decimal.Decimal
	MerchantName string
	MCC          string
	// Category is the bucket the amount was actually debited from, which
	// after a fallback differs from the resolved category.
	Category     string
	AuthorizedAt time.Time
}
