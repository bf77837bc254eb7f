package validation

import (
	"fmt"

	"github.com/soundry/Royalty-Ledger-Backend/internal/api/request"
)

// ValidPayoutMethod contains the allowed payout method values.
var ValidPayoutMethod = map[string]bool{
	"paypal": true, "bank_transfer": true, "crypto": true,
}

// ValidProcessStatus contains the allowed target statuses when processing a
// payout.
var ValidProcessStatus = map[string]bool{
	"processing": true, "completed": true, "failed": true,
}

// ValidateCreatePayout validates a payout request body.
//
// Required fields:
//   - ledgerRecordId: must be a valid UUID
//   - amount: must be positive
//   - method: must be one of: paypal, bank_transfer, crypto
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreatePayout(req request.CreatePayoutRequest) error {
	errors := make(map[string]string)

	if err := ValidateUUID(req.LedgerRecordID); err != nil {
		errors["ledgerRecordId"] = err.Error()
	}

	if req.Amount <= 0 {
		errors["amount"] = "amount must be positive"
	}

	if !ValidPayoutMethod[req.Method] {
		errors["method"] = fmt.Sprintf("invalid method: %s", req.Method)
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateProcessPayout validates a payout processing callback body.
//
// Required fields:
//   - status: must be one of: processing, completed, failed
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateProcessPayout(req request.ProcessPayoutRequest) error {
	errors := make(map[string]string)

	if !ValidProcessStatus[req.Status] {
		errors["status"] = fmt.Sprintf("invalid status: %s", req.Status)
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
