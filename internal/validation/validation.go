package validation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrInvalidUUID   = fmt.Errorf("invalid UUID format")
	ErrInvalidPeriod = fmt.Errorf("invalid period format, expected YYYY-MM")
)

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUUID, id)
	}
	return nil
}

// ValidatePeriod checks that a period token is a calendar month in YYYY-MM
// format.
func ValidatePeriod(period string) error {
	if _, err := time.Parse("2006-01", period); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPeriod, period)
	}
	return nil
}
