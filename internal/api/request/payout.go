package request

// CreatePayoutRequest represents the request body for requesting a payout
// against a ledger record's available balance.
type CreatePayoutRequest struct {
	LedgerRecordID string  `json:"ledgerRecordId"`
	Amount         float64 `json:"amount"`
	Method         string  `json:"method"`
	Notes          string  `json:"notes,omitempty"`
}

// ProcessPayoutRequest represents the callback body from the payment
// collaborator reporting the outcome of a payout transfer.
type ProcessPayoutRequest struct {
	Status        string `json:"status"` // processing, completed or failed
	TransactionID string `json:"transactionId,omitempty"`
	Notes         string `json:"notes,omitempty"`
}
