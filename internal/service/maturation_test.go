package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/soundry/Royalty-Ledger-Backend/internal/model"
	"github.com/soundry/Royalty-Ledger-Backend/internal/testutil"
)

// WHY: maturation is the only transition from pending to available, so a
// wrong date comparison either releases money early or traps it forever.
func TestMatureDue(t *testing.T) {
	ctx := context.Background()
	asOf := time.Date(2024, 9, 1, 2, 0, 0, 0, time.UTC)

	t.Run("releases due pending earnings", func(t *testing.T) {
		h := newServiceHarness(t)

		rec := testutil.NewLedgerRecord().
			WithPendingPlatform("Spotify", 80, 800).
			WithAvailablePlatform("Apple Music", 20, 200).
			WithNextPayoutDate(time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)).
			Build(t, h.db)

		matured, err := h.svc.MatureDue(ctx, asOf)
		if err != nil {
			t.Fatalf("MatureDue failed: %v", err)
		}
		if matured != 1 {
			t.Fatalf("Matured %d records, want 1", matured)
		}

		updated, err := h.svc.GetRecord(rec.ID)
		if err != nil {
			t.Fatalf("GetRecord failed: %v", err)
		}

		want := model.Totals{Total: 100, Pending: 0, Available: 100, Withdrawn: 0}
		if updated.Totals != want {
			t.Errorf("Totals = %+v, want %+v", updated.Totals, want)
		}
		for _, p := range updated.Platforms {
			if p.Status != model.PlatformStatusAvailable {
				t.Errorf("Platform %s status = %s, want available", p.Name, p.Status)
			}
		}

		wantNext := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
		if !updated.Metadata.NextPayoutDate.Equal(wantNext) {
			t.Errorf("NextPayoutDate = %v, want %v", updated.Metadata.NextPayoutDate, wantNext)
		}
		if !updated.Metadata.MinimumPayoutReached {
			t.Error("Expected MinimumPayoutReached after 100 became available")
		}
	})

	t.Run("skips records not yet due", func(t *testing.T) {
		h := newServiceHarness(t)

		rec := testutil.NewLedgerRecord().
			WithPendingPlatform("Spotify", 80, 800).
			WithNextPayoutDate(time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)).
			Build(t, h.db)

		matured, err := h.svc.MatureDue(ctx, asOf)
		if err != nil {
			t.Fatalf("MatureDue failed: %v", err)
		}
		if matured != 0 {
			t.Errorf("Matured %d records, want 0", matured)
		}

		updated, _ := h.svc.GetRecord(rec.ID)
		if updated.Totals.Pending != 80 {
			t.Errorf("Pending = %v, want 80 untouched", updated.Totals.Pending)
		}
	})

	t.Run("skips due records with nothing pending", func(t *testing.T) {
		h := newServiceHarness(t)

		testutil.NewLedgerRecord().
			WithAvailablePlatform("Spotify", 100, 1000).
			WithNextPayoutDate(time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)).
			Build(t, h.db)

		matured, err := h.svc.MatureDue(ctx, asOf)
		if err != nil {
			t.Fatalf("MatureDue failed: %v", err)
		}
		if matured != 0 {
			t.Errorf("Matured %d records, want 0 when nothing is pending", matured)
		}
	})

	t.Run("matures multiple due records", func(t *testing.T) {
		h := newServiceHarness(t)

		due := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
		for i := 0; i < 6; i++ {
			testutil.NewLedgerRecord().
				WithPendingPlatform("Spotify", 10, 100).
				WithNextPayoutDate(due).
				Build(t, h.db)
		}

		matured, err := h.svc.MatureDue(ctx, asOf)
		if err != nil {
			t.Fatalf("MatureDue failed: %v", err)
		}
		if matured != 6 {
			t.Errorf("Matured %d records, want 6", matured)
		}
	})
}
