package model

// PlatformSummary is a per-platform aggregate across a user's songs.
type PlatformSummary struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Plays  int64   `json:"plays"`
}

// EarningsSummary aggregates a user's earnings for one period across all
// songs. Used for the summary API endpoint.
type EarningsSummary struct {
	UserID    string            `json:"userId"`
	Period    string            `json:"period"`
	Records   int               `json:"records"`
	Total     float64           `json:"total"`
	Pending   float64           `json:"pending"`
	Available float64           `json:"available"`
	Withdrawn float64           `json:"withdrawn"`
	Platforms []PlatformSummary `json:"platforms"`
}
