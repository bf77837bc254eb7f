package scheduler_test

import (
	"testing"

	"github.com/soundry/Royalty-Ledger-Backend/internal/scheduler"
	"github.com/soundry/Royalty-Ledger-Backend/internal/testutil"
)

func TestNew(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestLedgerService(t, db)

	t.Run("accepts a standard cron expression", func(t *testing.T) {
		s, err := scheduler.New(svc, "0 2 1 * *")
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		// Start/Stop round-trip must not hang even if no job has fired.
		s.Start()
		s.Stop()
	})

	t.Run("rejects a malformed cron expression", func(t *testing.T) {
		if _, err := scheduler.New(svc, "every full moon"); err == nil {
			t.Error("Expected error for malformed schedule")
		}
	})
}
