package card

// Type is informational only; the authorization engine never branches on it.
type Type string

const (
	TypeCredit  Type = "CREDIT"
	TypeDebit   Type = "DEBIT"
	TypeBenefit Type = "BENEFIT"
)

// Card is the single plastic attached to an account. Numbers are unique
// across the system.
type Card struct {
	ID     string
	Number string
	Type   Type
}
