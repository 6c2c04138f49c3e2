package authorizer

import "github.com/shopspring/decimal"

// AuthorizeRequest mirrors the inbound transaction record of the
// authorization API.
type AuthorizeRequest struct {
	AccountID  string          `json:"account_id"`
	CardNumber string          `json:"card_number"`
	Amount     decimal.Decimal `json:"total_amount"`
	Merchant   string          `json:"merchant"`
	MCC        string          `json:"mcc"`
}

// AuthorizeResponse carries the result code back to the caller. Category
// and transaction ID are present on approvals only.
type AuthorizeResponse struct {
	Code          string `json:"code"`
	Category      string `json:"category,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
}
