package validation

import (
	"strings"

	"github.com/soundry/Royalty-Ledger-Backend/internal/api/request"
)

// ValidateIngestEarnings validates an earnings ingestion request.
//
// Required fields:
//   - userId, songId: must be valid UUIDs
//   - period: must be in YYYY-MM format
//   - platform: must be non-blank
//   - plays, revenue and engagement counters: must not be negative
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateIngestEarnings(req request.IngestEarningsRequest) error {
	errors := make(map[string]string)

	if err := ValidateUUID(req.UserID); err != nil {
		errors["userId"] = err.Error()
	}
	if err := ValidateUUID(req.SongID); err != nil {
		errors["songId"] = err.Error()
	}
	if err := ValidatePeriod(req.Period); err != nil {
		errors["period"] = err.Error()
	}

	if strings.TrimSpace(req.Platform) == "" {
		errors["platform"] = "platform is required"
	}

	if req.Plays < 0 {
		errors["plays"] = "plays must not be negative"
	}
	if req.Revenue < 0 {
		errors["revenue"] = "revenue must not be negative"
	}
	if req.Playlists < 0 || req.Saves < 0 || req.Shares < 0 {
		errors["details"] = "engagement counters must not be negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateUpdateSplits validates a split replacement request. Percentages
// must each lie within 0-100; the sum across splits is deliberately not
// checked.
func ValidateUpdateSplits(req request.UpdateSplitsRequest) error {
	errors := make(map[string]string)

	for _, split := range req.Splits {
		if err := ValidateUUID(split.CollaboratorID); err != nil {
			errors["collaboratorId"] = err.Error()
		}
		if split.Percentage < 0 || split.Percentage > 100 {
			errors["percentage"] = "percentage must be between 0 and 100"
		}
	}

	if req.WithholdingRate != nil && (*req.WithholdingRate < 0 || *req.WithholdingRate > 100) {
		errors["withholdingRate"] = "withholdingRate must be between 0 and 100"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
