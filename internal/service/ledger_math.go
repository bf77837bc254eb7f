package service

import (
	"math"
	"strings"
	"time"

	"github.com/soundry/Royalty-Ledger-Backend/internal/model"
)

// RoundingPrecision is the factor used to round monetary values to whole
// cents.
const RoundingPrecision = 100.0

// roundCents rounds a monetary value to two decimal places, half away from
// zero via math.Round. Every derived amount in the ledger (splits, tax
// withholding) goes through this single rule, so the sum of derived parts
// can drift from the whole by at most half a cent per entry.
//
// Example:
//
//	roundCents(33.335)  // returns 33.34
//	roundCents(33.334)  // returns 33.33
func roundCents(value float64) float64 {
	return math.Round(value*RoundingPrecision) / RoundingPrecision
}

// normalizePlatform canonicalizes a platform name for matching: trimmed and
// lower-cased, so "Spotify" and " spotify " address the same entry. The
// first-seen trimmed spelling is what gets stored.
func normalizePlatform(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func trimmedName(name string) string {
	return strings.TrimSpace(name)
}

// splitAmount computes one collaborator's share of the record total.
// Each split is computed independently from its own percentage; the
// percentages are deliberately not required to sum to 100, allowing
// over- or under-allocation (platform fees, label retainers).
func splitAmount(total, percentage float64) float64 {
	return roundCents(total * percentage / 100)
}

// recompute rederives every calculated field of a ledger record from its
// platform entries and payouts. It runs before every persist, so the stored
// totals are always a pure function of the record's contents and the
// invariant total == pending + available + withdrawn holds after every
// operation.
//
// The balance buckets combine two sources:
//   - earned buckets: platform entry amounts grouped by entry status
//     (pending until matured, available after, withdrawn when the earnings
//     source reports them settled);
//   - payout adjustments: amounts of open payouts (pending/processing) are
//     reserved out of available into pending, completed payout amounts move
//     from available to withdrawn. Failed payouts contribute nothing, which
//     is exactly how funds return on failure.
func recompute(rec *model.LedgerRecord, now time.Time) {
	var earnedPending, earnedAvailable, earnedWithdrawn float64
	for _, p := range rec.Platforms {
		switch p.Status {
		case model.PlatformStatusPending:
			earnedPending += p.Amount
		case model.PlatformStatusAvailable:
			earnedAvailable += p.Amount
		case model.PlatformStatusWithdrawn:
			earnedWithdrawn += p.Amount
		}
	}

	var reserved, paidOut float64
	for _, p := range rec.Payouts {
		switch p.Status {
		case model.PayoutStatusPending, model.PayoutStatusProcessing:
			reserved += p.Amount
		case model.PayoutStatusCompleted:
			paidOut += p.Amount
		}
	}

	rec.Totals.Pending = roundCents(earnedPending + reserved)
	rec.Totals.Available = roundCents(earnedAvailable - reserved - paidOut)
	rec.Totals.Withdrawn = roundCents(earnedWithdrawn + paidOut)
	rec.Totals.Total = roundCents(rec.Totals.Pending + rec.Totals.Available + rec.Totals.Withdrawn)

	for i := range rec.Splits {
		rec.Splits[i].Amount = splitAmount(rec.Totals.Total, rec.Splits[i].Percentage)
	}

	if rec.Tax.Rate > 0 {
		rec.Tax.WithheldAmount = roundCents(rec.Totals.Total * rec.Tax.Rate / 100)
	} else {
		rec.Tax.WithheldAmount = 0
	}

	rec.Metadata.MinimumPayoutReached = rec.Totals.Available >= rec.Metadata.PayoutThreshold
	rec.Metadata.LastCalculated = now
	rec.UpdatedAt = now
}

// firstOfNextMonth returns midnight UTC on the first day of the month after t.
func firstOfNextMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
}
