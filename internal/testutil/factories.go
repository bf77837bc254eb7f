package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/soundry/Royalty-Ledger-Backend/internal/model"
	"github.com/soundry/Royalty-Ledger-Backend/internal/repository"
)

// LedgerRecordBuilder provides a fluent interface for creating test ledger
// records. Totals are derived from the configured platform entries the same
// way the service derives them, so built records start consistent.
//
// Example usage:
//
//	// Record with 100 available and the default threshold
//	rec := testutil.NewLedgerRecord().
//	    WithAvailablePlatform("spotify", 100, 1000).
//	    Build(t, db)
type LedgerRecordBuilder struct {
	UserID          string
	SongID          string
	Period          string
	Domain          string
	Currency        string
	PayoutThreshold float64
	NextPayoutDate  time.Time
	Platforms       []model.PlatformEarning
	Splits          []model.Split
	WithholdingRate float64
}

// NewLedgerRecord creates a LedgerRecordBuilder with sensible defaults.
func NewLedgerRecord() *LedgerRecordBuilder {
	return &LedgerRecordBuilder{
		UserID:          MakeID(),
		SongID:          MakeID(),
		Period:          "2024-06",
		Currency:        TestCurrency,
		PayoutThreshold: TestPayoutThreshold,
		NextPayoutDate:  time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC),
	}
}

// WithUser sets the owning user ID.
func (b *LedgerRecordBuilder) WithUser(userID string) *LedgerRecordBuilder {
	b.UserID = userID
	return b
}

// WithSong sets the song ID.
func (b *LedgerRecordBuilder) WithSong(songID string) *LedgerRecordBuilder {
	b.SongID = songID
	return b
}

// WithPeriod sets the period token (YYYY-MM).
func (b *LedgerRecordBuilder) WithPeriod(period string) *LedgerRecordBuilder {
	b.Period = period
	return b
}

// WithDomain sets the white-label domain.
func (b *LedgerRecordBuilder) WithDomain(domain string) *LedgerRecordBuilder {
	b.Domain = domain
	return b
}

// WithThreshold sets the payout threshold.
func (b *LedgerRecordBuilder) WithThreshold(threshold float64) *LedgerRecordBuilder {
	b.PayoutThreshold = threshold
	return b
}

// WithNextPayoutDate sets the maturation date.
func (b *LedgerRecordBuilder) WithNextPayoutDate(date time.Time) *LedgerRecordBuilder {
	b.NextPayoutDate = date
	return b
}

// WithPlatform appends a platform entry with the given status.
func (b *LedgerRecordBuilder) WithPlatform(name string, amount float64, plays int64, status string) *LedgerRecordBuilder {
	b.Platforms = append(b.Platforms, model.PlatformEarning{
		ID:     MakeID(),
		Name:   name,
		Amount: amount,
		Plays:  plays,
		Status: status,
	})
	return b
}

// WithAvailablePlatform appends a platform entry whose earnings are already
// available for payout.
func (b *LedgerRecordBuilder) WithAvailablePlatform(name string, amount float64, plays int64) *LedgerRecordBuilder {
	return b.WithPlatform(name, amount, plays, model.PlatformStatusAvailable)
}

// WithPendingPlatform appends a platform entry whose earnings are still
// pending maturation.
func (b *LedgerRecordBuilder) WithPendingPlatform(name string, amount float64, plays int64) *LedgerRecordBuilder {
	return b.WithPlatform(name, amount, plays, model.PlatformStatusPending)
}

// WithSplit appends a collaborator split share.
func (b *LedgerRecordBuilder) WithSplit(collaboratorID, role string, percentage float64) *LedgerRecordBuilder {
	b.Splits = append(b.Splits, model.Split{
		ID:             MakeID(),
		CollaboratorID: collaboratorID,
		Role:           role,
		Percentage:     percentage,
	})
	return b
}

// WithWithholdingRate sets the tax withholding rate.
func (b *LedgerRecordBuilder) WithWithholdingRate(rate float64) *LedgerRecordBuilder {
	b.WithholdingRate = rate
	return b
}

// Build creates the ledger record in the database and returns it.
func (b *LedgerRecordBuilder) Build(t *testing.T, db *sql.DB) *model.LedgerRecord {
	t.Helper()

	now := time.Now().UTC()
	rec := &model.LedgerRecord{
		ID:               MakeID(),
		UserID:           b.UserID,
		SongID:           b.SongID,
		WhiteLabelDomain: b.Domain,
		Period:           b.Period,
		Platforms:        b.Platforms,
		Splits:           b.Splits,
		Payouts:          []model.Payout{},
		Notifications:    []model.Notification{},
		Tax:              model.TaxWithholding{Rate: b.WithholdingRate},
		Metadata: model.Metadata{
			LastCalculated:  now,
			NextPayoutDate:  b.NextPayoutDate,
			PayoutThreshold: b.PayoutThreshold,
			Currency:        b.Currency,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if rec.Platforms == nil {
		rec.Platforms = []model.PlatformEarning{}
	}
	if rec.Splits == nil {
		rec.Splits = []model.Split{}
	}

	for _, p := range rec.Platforms {
		rec.Totals.Total += p.Amount
		switch p.Status {
		case model.PlatformStatusPending:
			rec.Totals.Pending += p.Amount
		case model.PlatformStatusAvailable:
			rec.Totals.Available += p.Amount
		case model.PlatformStatusWithdrawn:
			rec.Totals.Withdrawn += p.Amount
		}
	}
	for i := range rec.Splits {
		rec.Splits[i].Amount = rec.Totals.Total * rec.Splits[i].Percentage / 100
	}
	if rec.Tax.Rate > 0 {
		rec.Tax.WithheldAmount = rec.Totals.Total * rec.Tax.Rate / 100
	}
	rec.Metadata.MinimumPayoutReached = rec.Totals.Available >= rec.Metadata.PayoutThreshold

	repo := repository.NewLedgerRepository(db)
	if err := repo.Insert(context.Background(), rec); err != nil {
		t.Fatalf("Failed to create test ledger record: %v", err)
	}

	return rec
}
