package models

// Suggestion is one actionable recommendation returned to the dashboard.
type Suggestion struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Rationale  string  `json:"rationale"`
	Action     string  `json:"action"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source,omitempty"`
}

// SuggestionsResponse is the body of GET /api/market-suggestions.
type SuggestionsResponse struct {
	Suggestions []Suggestion `json:"suggestions"`
	NewsCount   int          `json:"newsCount"`
}
