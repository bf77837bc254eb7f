package model

import "time"

// Payout statuses. A payout is created pending, may pass through processing,
// and ends in exactly one terminal state (completed or failed). Terminal
// payouts are never re-opened.
const (
	PayoutStatusPending    = "pending"
	PayoutStatusProcessing = "processing"
	PayoutStatusCompleted  = "completed"
	PayoutStatusFailed     = "failed"
)

// Supported payout methods.
const (
	PayoutMethodPayPal       = "paypal"
	PayoutMethodBankTransfer = "bank_transfer"
	PayoutMethodCrypto       = "crypto"
)

// Payout is a single withdrawal transaction embedded in a ledger record.
// TransactionID is set once by the payment collaborator when the payout is
// processed and correlates the external transfer back to this entry.
type Payout struct {
	ID            string     `json:"id"`
	Amount        float64    `json:"amount"`
	Method        string     `json:"method"`
	Status        string     `json:"status"`
	TransactionID string     `json:"transactionId,omitempty"`
	RequestedAt   time.Time  `json:"requestedAt"`
	ProcessedAt   *time.Time `json:"processedAt,omitempty"`
	Notes         string     `json:"notes,omitempty"`
}

// Terminal reports whether the payout has reached a terminal state.
func (p Payout) Terminal() bool {
	return p.Status == PayoutStatusCompleted || p.Status == PayoutStatusFailed
}

// PayoutHistory is the API response for a user's payout listing.
type PayoutHistory struct {
	Payouts   []PayoutEntry `json:"payouts"`
	TotalPaid float64       `json:"totalPaid"`
}

// PayoutEntry is a payout enriched with the owning record's identity,
// used in history listings that span multiple ledger records.
type PayoutEntry struct {
	Payout
	LedgerRecordID string `json:"ledgerRecordId"`
	SongID         string `json:"songId"`
	Period         string `json:"period"`
	Currency       string `json:"currency"`
}
