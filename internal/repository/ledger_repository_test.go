package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/soundry/Royalty-Ledger-Backend/internal/apperrors"
	"github.com/soundry/Royalty-Ledger-Backend/internal/model"
	"github.com/soundry/Royalty-Ledger-Backend/internal/repository"
	"github.com/soundry/Royalty-Ledger-Backend/internal/testutil"
)

// WHY: the repository persists a whole aggregate across five tables; a
// dropped child row or a mis-scanned column silently corrupts balances.
// The roundtrip test asserts the full aggregate survives insert and reload.
func TestLedgerRepositoryRoundtrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewLedgerRepository(db)
	ctx := context.Background()

	processedAt := time.Date(2024, 6, 20, 10, 30, 0, 0, time.UTC)
	rec := &model.LedgerRecord{
		ID:               testutil.MakeID(),
		UserID:           testutil.MakeID(),
		SongID:           testutil.MakeID(),
		WhiteLabelDomain: "label.example.com",
		Period:           "2024-06",
		Totals:           model.Totals{Total: 100, Pending: 20, Available: 20, Withdrawn: 60},
		Platforms: []model.PlatformEarning{
			{ID: testutil.MakeID(), Name: "Spotify", Amount: 80, Plays: 8000, Status: model.PlatformStatusAvailable, Playlists: 3, Saves: 12, Shares: 5},
			{ID: testutil.MakeID(), Name: "Apple Music", Amount: 20, Plays: 2000, Status: model.PlatformStatusPending},
		},
		Splits: []model.Split{
			{ID: testutil.MakeID(), CollaboratorID: testutil.MakeID(), Role: "producer", Percentage: 40, Amount: 40},
		},
		Tax: model.TaxWithholding{Rate: 15, WithheldAmount: 15},
		Payouts: []model.Payout{
			{
				ID:            testutil.MakeID(),
				Amount:        60,
				Method:        model.PayoutMethodPayPal,
				Status:        model.PayoutStatusCompleted,
				TransactionID: "TX123",
				RequestedAt:   time.Date(2024, 6, 18, 9, 0, 0, 0, time.UTC),
				ProcessedAt:   &processedAt,
				Notes:         "first withdrawal",
			},
		},
		Notifications: []model.Notification{
			{ID: testutil.MakeID(), Type: model.NotificationPayoutCompleted, Message: "Payout of 60 USD has been processed.", Date: processedAt, Read: true},
		},
		Metadata: model.Metadata{
			LastCalculated:  time.Date(2024, 6, 20, 10, 30, 0, 0, time.UTC),
			NextPayoutDate:  time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
			PayoutThreshold: 50,
			Currency:        "USD",
		},
		CreatedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 6, 20, 10, 30, 0, 0, time.UTC),
	}

	if err := repo.Insert(ctx, rec); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := repo.GetByID(rec.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	if got.UserID != rec.UserID || got.SongID != rec.SongID || got.Period != rec.Period {
		t.Errorf("Key = (%s, %s, %s), want (%s, %s, %s)",
			got.UserID, got.SongID, got.Period, rec.UserID, rec.SongID, rec.Period)
	}
	if got.WhiteLabelDomain != "label.example.com" {
		t.Errorf("WhiteLabelDomain = %q, want label.example.com", got.WhiteLabelDomain)
	}
	if got.Totals != rec.Totals {
		t.Errorf("Totals = %+v, want %+v", got.Totals, rec.Totals)
	}
	if got.Tax != rec.Tax {
		t.Errorf("Tax = %+v, want %+v", got.Tax, rec.Tax)
	}

	if len(got.Platforms) != 2 {
		t.Fatalf("Expected 2 platform entries, got %d", len(got.Platforms))
	}
	if got.Platforms[0] != rec.Platforms[0] {
		t.Errorf("Platforms[0] = %+v, want %+v", got.Platforms[0], rec.Platforms[0])
	}

	if len(got.Splits) != 1 || got.Splits[0] != rec.Splits[0] {
		t.Errorf("Splits = %+v, want %+v", got.Splits, rec.Splits)
	}

	if len(got.Payouts) != 1 {
		t.Fatalf("Expected 1 payout, got %d", len(got.Payouts))
	}
	p := got.Payouts[0]
	if p.TransactionID != "TX123" || p.Status != model.PayoutStatusCompleted || p.Notes != "first withdrawal" {
		t.Errorf("Payout = %+v, want TX123/completed/first withdrawal", p)
	}
	if p.ProcessedAt == nil || !p.ProcessedAt.Equal(processedAt) {
		t.Errorf("ProcessedAt = %v, want %v", p.ProcessedAt, processedAt)
	}

	if len(got.Notifications) != 1 || !got.Notifications[0].Read {
		t.Errorf("Notifications = %+v, want 1 read notification", got.Notifications)
	}

	if !got.Metadata.NextPayoutDate.Equal(rec.Metadata.NextPayoutDate) {
		t.Errorf("NextPayoutDate = %v, want %v", got.Metadata.NextPayoutDate, rec.Metadata.NextPayoutDate)
	}
	if got.Metadata.Currency != "USD" || got.Metadata.PayoutThreshold != 50 {
		t.Errorf("Metadata = %+v, want USD / 50", got.Metadata)
	}
}

func TestLedgerRepositoryLookups(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewLedgerRepository(db)
	ctx := context.Background()

	t.Run("GetByID returns not found for unknown ID", func(t *testing.T) {
		if _, err := repo.GetByID(testutil.MakeID()); !errors.Is(err, apperrors.ErrLedgerRecordNotFound) {
			t.Errorf("Expected ErrLedgerRecordNotFound, got %v", err)
		}
	})

	t.Run("GetByKey finds the record for its natural key", func(t *testing.T) {
		rec := testutil.NewLedgerRecord().
			WithAvailablePlatform("Spotify", 100, 1000).
			Build(t, db)

		got, err := repo.GetByKey(rec.UserID, rec.SongID, rec.Period)
		if err != nil {
			t.Fatalf("GetByKey failed: %v", err)
		}
		if got.ID != rec.ID {
			t.Errorf("GetByKey returned %s, want %s", got.ID, rec.ID)
		}

		if _, err := repo.GetByKey(rec.UserID, rec.SongID, "2030-01"); !errors.Is(err, apperrors.ErrLedgerRecordNotFound) {
			t.Errorf("Expected ErrLedgerRecordNotFound for other period, got %v", err)
		}
	})

	t.Run("FindByPayoutID resolves the owning record", func(t *testing.T) {
		rec := testutil.NewLedgerRecord().
			WithAvailablePlatform("Spotify", 100, 1000).
			Build(t, db)

		payoutID := testutil.MakeID()
		rec.Payouts = append(rec.Payouts, model.Payout{
			ID:          payoutID,
			Amount:      60,
			Method:      model.PayoutMethodPayPal,
			Status:      model.PayoutStatusPending,
			RequestedAt: time.Now().UTC(),
		})
		if err := repo.Update(ctx, rec); err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		owner, err := repo.FindByPayoutID(payoutID)
		if err != nil {
			t.Fatalf("FindByPayoutID failed: %v", err)
		}
		if owner.ID != rec.ID {
			t.Errorf("FindByPayoutID returned %s, want %s", owner.ID, rec.ID)
		}

		if _, err := repo.FindByPayoutID(testutil.MakeID()); !errors.Is(err, apperrors.ErrPayoutNotFound) {
			t.Errorf("Expected ErrPayoutNotFound, got %v", err)
		}
	})

	t.Run("duplicate natural key is rejected", func(t *testing.T) {
		rec := testutil.NewLedgerRecord().
			WithAvailablePlatform("Spotify", 100, 1000).
			Build(t, db)

		dup := *rec
		dup.ID = testutil.MakeID()
		dup.Platforms = []model.PlatformEarning{}
		dup.Splits = []model.Split{}
		dup.Payouts = []model.Payout{}
		dup.Notifications = []model.Notification{}
		if err := repo.Insert(ctx, &dup); err == nil {
			t.Error("Expected insert with duplicate (user, song, period) to fail")
		}
	})
}

// WHY: the version column is the cross-process guard against lost updates.
// A stale writer must get ErrVersionConflict, not silently overwrite.
func TestLedgerRepositoryVersionConflict(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewLedgerRepository(db)
	ctx := context.Background()

	seed := testutil.NewLedgerRecord().
		WithAvailablePlatform("Spotify", 100, 1000).
		Build(t, db)

	first, err := repo.GetByID(seed.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	second, err := repo.GetByID(seed.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	first.Totals.Available = 90
	if err := repo.Update(ctx, first); err != nil {
		t.Fatalf("First update failed: %v", err)
	}

	second.Totals.Available = 10
	if err := repo.Update(ctx, second); !errors.Is(err, apperrors.ErrVersionConflict) {
		t.Errorf("Expected ErrVersionConflict for stale writer, got %v", err)
	}

	// The winning write is intact and the loser can retry from a fresh read.
	got, _ := repo.GetByID(seed.ID)
	if got.Totals.Available != 90 {
		t.Errorf("Available = %v, want 90 from the first writer", got.Totals.Available)
	}

	fresh, _ := repo.GetByID(seed.ID)
	fresh.Totals.Available = 10
	if err := repo.Update(ctx, fresh); err != nil {
		t.Errorf("Retry after fresh read failed: %v", err)
	}
}

func TestLedgerRepositoryUpdateReplacesChildren(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewLedgerRepository(db)
	ctx := context.Background()

	rec := testutil.NewLedgerRecord().
		WithAvailablePlatform("Spotify", 100, 1000).
		WithSplit(testutil.MakeID(), "producer", 40).
		Build(t, db)

	rec.Splits = []model.Split{
		{ID: testutil.MakeID(), CollaboratorID: testutil.MakeID(), Role: "writer", Percentage: 25, Amount: 25},
	}
	rec.Platforms[0].Amount = 120
	if err := repo.Update(ctx, rec); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := repo.GetByID(rec.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.Splits) != 1 || got.Splits[0].Role != "writer" {
		t.Errorf("Splits = %+v, want the single replacement split", got.Splits)
	}
	if got.Platforms[0].Amount != 120 {
		t.Errorf("Platform amount = %v, want 120", got.Platforms[0].Amount)
	}
}

func TestListByUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewLedgerRepository(db)

	userID := testutil.MakeID()
	for _, period := range []string{"2024-04", "2024-05", "2024-06"} {
		testutil.NewLedgerRecord().
			WithUser(userID).
			WithPeriod(period).
			WithAvailablePlatform("Spotify", 100, 1000).
			Build(t, db)
	}
	testutil.NewLedgerRecord().
		WithUser(userID).
		WithPeriod("2024-05").
		WithDomain("label.example.com").
		WithAvailablePlatform("Spotify", 100, 1000).
		Build(t, db)
	// Another user's record must never leak in.
	testutil.NewLedgerRecord().
		WithPeriod("2024-05").
		WithAvailablePlatform("Spotify", 100, 1000).
		Build(t, db)

	t.Run("returns records newest period first", func(t *testing.T) {
		records, err := repo.ListByUser(userID, "", "", "")
		if err != nil {
			t.Fatalf("ListByUser failed: %v", err)
		}
		if len(records) != 4 {
			t.Fatalf("Expected 4 records, got %d", len(records))
		}
		for i := 1; i < len(records); i++ {
			if records[i].Period > records[i-1].Period {
				t.Errorf("Records out of order: %s before %s", records[i-1].Period, records[i].Period)
			}
		}
	})

	t.Run("filters by inclusive period range", func(t *testing.T) {
		records, err := repo.ListByUser(userID, "2024-05", "2024-06", "")
		if err != nil {
			t.Fatalf("ListByUser failed: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("Expected 3 records in range, got %d", len(records))
		}
		for _, rec := range records {
			if rec.Period < "2024-05" || rec.Period > "2024-06" {
				t.Errorf("Record period %s outside requested range", rec.Period)
			}
		}
	})

	t.Run("filters by white-label domain", func(t *testing.T) {
		records, err := repo.ListByUser(userID, "", "", "label.example.com")
		if err != nil {
			t.Fatalf("ListByUser failed: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("Expected 1 domain record, got %d", len(records))
		}
		if records[0].WhiteLabelDomain != "label.example.com" {
			t.Errorf("Domain = %q, want label.example.com", records[0].WhiteLabelDomain)
		}
	})
}

func TestListBySong(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewLedgerRepository(db)

	songID := testutil.MakeID()
	for _, period := range []string{"2024-05", "2024-06"} {
		testutil.NewLedgerRecord().
			WithSong(songID).
			WithPeriod(period).
			WithAvailablePlatform("Spotify", 100, 1000).
			Build(t, db)
	}
	testutil.NewLedgerRecord().
		WithAvailablePlatform("Spotify", 100, 1000).
		Build(t, db)

	records, err := repo.ListBySong(songID)
	if err != nil {
		t.Fatalf("ListBySong failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].Period != "2024-06" {
		t.Errorf("First record period = %s, want newest 2024-06", records[0].Period)
	}
}

func TestSummary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewLedgerRepository(db)

	userID := testutil.MakeID()
	testutil.NewLedgerRecord().
		WithUser(userID).
		WithPeriod("2024-06").
		WithAvailablePlatform("Spotify", 100, 1000).
		WithPendingPlatform("Apple Music", 40, 400).
		Build(t, db)
	testutil.NewLedgerRecord().
		WithUser(userID).
		WithPeriod("2024-06").
		WithAvailablePlatform("Spotify", 50, 500).
		Build(t, db)
	// Different period and different user stay out of the aggregate.
	testutil.NewLedgerRecord().
		WithUser(userID).
		WithPeriod("2024-05").
		WithAvailablePlatform("Spotify", 999, 9990).
		Build(t, db)
	testutil.NewLedgerRecord().
		WithPeriod("2024-06").
		WithAvailablePlatform("Spotify", 999, 9990).
		Build(t, db)

	summary, err := repo.Summary(userID, "2024-06")
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}

	if summary.Records != 2 {
		t.Errorf("Records = %d, want 2", summary.Records)
	}
	if summary.Total != 190 || summary.Available != 150 || summary.Pending != 40 {
		t.Errorf("Summary = total %v / available %v / pending %v, want 190 / 150 / 40",
			summary.Total, summary.Available, summary.Pending)
	}

	byName := map[string]float64{}
	var spotifyPlays int64
	for _, p := range summary.Platforms {
		byName[p.Name] = p.Amount
		if p.Name == "Spotify" {
			spotifyPlays = p.Plays
		}
	}
	if byName["Spotify"] != 150 {
		t.Errorf("Spotify amount = %v, want 150 across both records", byName["Spotify"])
	}
	if spotifyPlays != 1500 {
		t.Errorf("Spotify plays = %d, want 1500", spotifyPlays)
	}
	if byName["Apple Music"] != 40 {
		t.Errorf("Apple Music amount = %v, want 40", byName["Apple Music"])
	}
}

func TestListPayoutsByUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewLedgerRepository(db)
	ctx := context.Background()

	userID := testutil.MakeID()
	rec := testutil.NewLedgerRecord().
		WithUser(userID).
		WithPeriod("2024-06").
		WithAvailablePlatform("Spotify", 200, 2000).
		Build(t, db)

	rec.Payouts = append(rec.Payouts,
		model.Payout{
			ID:          testutil.MakeID(),
			Amount:      60,
			Method:      model.PayoutMethodPayPal,
			Status:      model.PayoutStatusCompleted,
			RequestedAt: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		},
		model.Payout{
			ID:          testutil.MakeID(),
			Amount:      50,
			Method:      model.PayoutMethodBankTransfer,
			Status:      model.PayoutStatusFailed,
			RequestedAt: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		},
	)
	if err := repo.Update(ctx, rec); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	history, err := repo.ListPayoutsByUser(userID)
	if err != nil {
		t.Fatalf("ListPayoutsByUser failed: %v", err)
	}

	if len(history.Payouts) != 2 {
		t.Fatalf("Expected 2 payouts, got %d", len(history.Payouts))
	}
	if history.Payouts[0].Amount != 50 {
		t.Errorf("First payout amount = %v, want the newest request (50)", history.Payouts[0].Amount)
	}
	if history.Payouts[0].LedgerRecordID != rec.ID || history.Payouts[0].SongID != rec.SongID {
		t.Errorf("Payout entry context = %+v, want record %s song %s",
			history.Payouts[0], rec.ID, rec.SongID)
	}
	if history.Payouts[0].Period != "2024-06" || history.Payouts[0].Currency != "USD" {
		t.Errorf("Payout entry = period %s currency %s, want 2024-06 USD",
			history.Payouts[0].Period, history.Payouts[0].Currency)
	}
	// Only completed payouts count toward the total paid.
	if history.TotalPaid != 60 {
		t.Errorf("TotalPaid = %v, want 60", history.TotalPaid)
	}
}

func TestListMaturedRecordIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewLedgerRepository(db)
	asOf := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)

	due := testutil.NewLedgerRecord().
		WithPendingPlatform("Spotify", 80, 800).
		WithNextPayoutDate(time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)).
		Build(t, db)
	// Due date in the future.
	testutil.NewLedgerRecord().
		WithPendingPlatform("Spotify", 80, 800).
		WithNextPayoutDate(time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)).
		Build(t, db)
	// Due, but nothing pending to release.
	testutil.NewLedgerRecord().
		WithAvailablePlatform("Spotify", 80, 800).
		WithNextPayoutDate(time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)).
		Build(t, db)

	ids, err := repo.ListMaturedRecordIDs(asOf)
	if err != nil {
		t.Fatalf("ListMaturedRecordIDs failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != due.ID {
		t.Errorf("IDs = %v, want exactly [%s]", ids, due.ID)
	}
}

func TestMarkNotificationRead(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewLedgerRepository(db)
	ctx := context.Background()

	rec := testutil.NewLedgerRecord().
		WithAvailablePlatform("Spotify", 100, 1000).
		Build(t, db)
	notificationID := testutil.MakeID()
	rec.Notifications = append(rec.Notifications, model.Notification{
		ID:      notificationID,
		Type:    model.NotificationPayoutRequested,
		Message: "Payout request of 60 USD via paypal has been submitted.",
		Date:    time.Now().UTC(),
	})
	if err := repo.Update(ctx, rec); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if err := repo.MarkNotificationRead(ctx, rec.ID, notificationID); err != nil {
		t.Fatalf("MarkNotificationRead failed: %v", err)
	}

	got, _ := repo.GetByID(rec.ID)
	if !got.Notifications[0].Read {
		t.Error("Expected notification to be read after MarkNotificationRead")
	}

	if err := repo.MarkNotificationRead(ctx, rec.ID, testutil.MakeID()); !errors.Is(err, apperrors.ErrNotificationNotFound) {
		t.Errorf("Expected ErrNotificationNotFound, got %v", err)
	}
}
