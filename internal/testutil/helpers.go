package testutil

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/soundry/Royalty-Ledger-Backend/internal/repository"
	"github.com/soundry/Royalty-Ledger-Backend/internal/service"
)

// Test defaults applied by NewTestLedgerService.
const (
	TestCurrency        = "USD"
	TestPayoutThreshold = 50.0
)

// MakeID returns a fresh UUID string for test entities.
func MakeID() string {
	return uuid.New().String()
}

// NewTestLedgerService wires a LedgerService over the given test database
// with the standard test defaults.
func NewTestLedgerService(t *testing.T, db *sql.DB) *service.LedgerService {
	t.Helper()

	ledgerRepo := repository.NewLedgerRepository(db)

	return service.NewLedgerService(ledgerRepo, service.LedgerDefaults{
		Currency:        TestCurrency,
		PayoutThreshold: TestPayoutThreshold,
	})
}
