package request

// IngestEarningsRequest represents the request body for ingesting a platform
// royalty report line. Deltas are additive: repeated ingestion for the same
// (user, song, period, platform) accumulates into one platform entry.
type IngestEarningsRequest struct {
	UserID           string  `json:"userId"`
	SongID           string  `json:"songId"`
	Period           string  `json:"period"` // YYYY-MM
	Platform         string  `json:"platform"`
	Plays            int64   `json:"plays"`
	Revenue          float64 `json:"revenue"`
	Playlists        int64   `json:"playlists,omitempty"`
	Saves            int64   `json:"saves,omitempty"`
	Shares           int64   `json:"shares,omitempty"`
	WhiteLabelDomain string  `json:"whiteLabelDomain,omitempty"`
}

// SplitInput is one collaborator share within an UpdateSplitsRequest.
type SplitInput struct {
	CollaboratorID string  `json:"collaboratorId"`
	Role           string  `json:"role,omitempty"`
	Percentage     float64 `json:"percentage"`
}

// UpdateSplitsRequest represents the request body for replacing a record's
// revenue splits and, optionally, its tax withholding rate.
type UpdateSplitsRequest struct {
	Splits          []SplitInput `json:"splits"`
	WithholdingRate *float64     `json:"withholdingRate,omitempty"`
}
