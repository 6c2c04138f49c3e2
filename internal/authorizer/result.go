package authorizer

import "github.com/vale-pay/vale_pay/internal/account"

// Outcome is the internal, tagged form of an authorization result. It is
// serialized to the two-character wire code only at the boundary.
type Outcome int

const (
	// OutcomeDeclined is the generic decline: unknown card or account, or
	// no usable bucket at all. Deliberately the zero value, so a Result
	// returned alongside an error can never read as approved.
	OutcomeDeclined Outcome = iota
	// OutcomeInsufficientFunds means the final bucket attempted could not
	// cover the amount.
	OutcomeInsufficientFunds
	// OutcomeApproved means the debit went through and was persisted.
	OutcomeApproved
)

// Result codes of the internal authorization protocol. They are normal
// business outcomes, never Go errors.
const (
	CodeApproved          = "00"
	CodeInsufficientFunds = "51"
	CodeDeclined          = "07"
)

// Code renders the outcome as its two-character result code.
func (o Outcome) Code() string {
	switch o {
	case OutcomeApproved:
		return CodeApproved
	case OutcomeInsufficientFunds:
		return CodeInsufficientFunds
	default:
		return CodeDeclined
	}
}

// Result is the full authorization verdict. Category and TransactionID are
// only set on approval.
type Result struct {
	Outcome       Outcome
	Category      account.Category
	TransactionID string
}

func approved(cat account.Category, txID string) Result {
	return Result{Outcome: OutcomeApproved, Category: cat, TransactionID: txID}
}

func declined() Result {
	return Result{Outcome: OutcomeDeclined}
}

func insufficient() Result {
	return Result{Outcome: OutcomeInsufficientFunds}
}
