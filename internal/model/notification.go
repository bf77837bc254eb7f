package model

import "time"

// Notification types appended by the ledger. Delivery (email, push) is
// handled by an external collaborator that reads these entries.
const (
	NotificationPayoutRequested = "payout_requested"
	NotificationPayoutCompleted = "payout_completed"
	NotificationPayoutFailed    = "payout_failed"
)

// Notification is a human-readable status message appended to a ledger
// record. The list is append-only; Read is flipped by the consumer.
type Notification struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Message string    `json:"message"`
	Date    time.Time `json:"date"`
	Read    bool      `json:"read"`
}
