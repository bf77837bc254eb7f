package model

import "time"

// Platform earning statuses. An entry starts pending when ingested, becomes
// available once the record's payout date passes, and is withdrawn when the
// earnings source reports it as settled externally.
const (
	PlatformStatusPending   = "pending"
	PlatformStatusAvailable = "available"
	PlatformStatusWithdrawn = "withdrawn"
)

// Totals holds the derived balance buckets of a ledger record.
// Total always equals Pending + Available + Withdrawn after recomputation.
type Totals struct {
	Total     float64 `json:"total"`
	Pending   float64 `json:"pending"`
	Available float64 `json:"available"`
	Withdrawn float64 `json:"withdrawn"`
}

// PlatformEarning is a per-streaming-platform line item within a ledger record.
// Entries are unique by platform name within a record; matching is
// case-insensitive and whitespace-trimmed, the first-seen spelling is kept.
type PlatformEarning struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
	Plays     int64   `json:"plays"`
	Status    string  `json:"status"`
	Playlists int64   `json:"playlists"`
	Saves     int64   `json:"saves"`
	Shares    int64   `json:"shares"`
}

// Split is a fixed-percentage share of a record's total earnings owed to a
// collaborator. Amount is derived from Percentage on every recomputation.
type Split struct {
	ID             string  `json:"id"`
	CollaboratorID string  `json:"collaboratorId"`
	Role           string  `json:"role"`
	Percentage     float64 `json:"percentage"`
	Amount         float64 `json:"amount"`
}

// TaxWithholding holds the withholding rate applied to a record and the
// derived withheld amount.
type TaxWithholding struct {
	Rate           float64 `json:"rate"`
	WithheldAmount float64 `json:"withheldAmount"`
}

// Metadata holds bookkeeping fields for a ledger record.
type Metadata struct {
	LastCalculated       time.Time `json:"lastCalculated"`
	NextPayoutDate       time.Time `json:"nextPayoutDate"`
	PayoutThreshold      float64   `json:"payoutThreshold"`
	MinimumPayoutReached bool      `json:"minimumPayoutReached"`
	Currency             string    `json:"currency"`
}

// LedgerRecord is the per-user, per-song, per-period earnings aggregate.
// The (UserID, SongID, Period) triple is unique; Period is a calendar-month
// token in YYYY-MM format. Records are never deleted.
type LedgerRecord struct {
	ID               string            `json:"id"`
	UserID           string            `json:"userId"`
	SongID           string            `json:"songId"`
	WhiteLabelDomain string            `json:"whiteLabelDomain,omitempty"`
	Period           string            `json:"period"`
	Totals           Totals            `json:"totals"`
	Platforms        []PlatformEarning `json:"platforms"`
	Splits           []Split           `json:"splits"`
	Tax              TaxWithholding    `json:"tax"`
	Payouts          []Payout          `json:"payouts"`
	Notifications    []Notification    `json:"notifications"`
	Metadata         Metadata          `json:"metadata"`
	Version          int64             `json:"-"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}
