package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrLedgerRecordNotFound indicates that no ledger record exists for the
	// given ID or (user, song, period) combination.
	ErrLedgerRecordNotFound = errors.New("ledger record not found")

	// ErrPayoutNotFound indicates that a payout with the given ID does not exist.
	ErrPayoutNotFound = errors.New("payout not found")

	// ErrNotificationNotFound indicates that a notification with the given ID does not exist.
	ErrNotificationNotFound = errors.New("notification not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInsufficientBalance indicates that a payout request exceeds the
	// record's available balance.
	ErrInsufficientBalance = errors.New("insufficient available balance")

	// ErrBelowMinimumThreshold indicates that a payout request is below the
	// record's minimum payout threshold.
	ErrBelowMinimumThreshold = errors.New("amount below minimum payout threshold")

	// ErrInvalidAmount indicates that an amount or delta is zero or negative.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidMethod indicates that a payout method is not one of the
	// supported values.
	ErrInvalidMethod = errors.New("invalid payout method")

	// ErrInvalidPeriod indicates that a period token is not in YYYY-MM format.
	ErrInvalidPeriod = errors.New("invalid period format")

	// ErrInvalidStatus indicates that a payout status transition target is
	// not one of processing, completed or failed.
	ErrInvalidStatus = errors.New("invalid payout status")

	// ErrPayoutFinalized indicates that a payout already reached a terminal
	// state (completed or failed) and cannot be processed again.
	ErrPayoutFinalized = errors.New("payout already finalized")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrInvalidPercentage indicates that a split percentage is outside 0-100.
	ErrInvalidPercentage = errors.New("percentage must be between 0 and 100")
)

// Operation failure errors represent system-level failures when retrieving or
// processing data. These errors indicate that an operation failed, but not due
// to missing entities or validation issues.
var (
	ErrFailedToRetrieveRecord        = errors.New("failed to retrieve ledger record")
	ErrFailedToRetrieveHistory       = errors.New("failed to retrieve earnings history")
	ErrFailedToRetrieveSummary       = errors.New("failed to retrieve earnings summary")
	ErrFailedToRetrievePayouts       = errors.New("failed to retrieve payouts")
	ErrFailedToRetrieveNotifications = errors.New("failed to retrieve notifications")
)

// Data integrity errors represent inconsistencies detected while persisting.
var (
	// ErrVersionConflict indicates that a record was modified concurrently
	// between read and persist. Callers retry or surface a conflict.
	ErrVersionConflict = errors.New("ledger record modified concurrently")
)
