package models

import "time"

// NewsItem is a single headline returned by a news provider. The archive
// fields are only populated once an item flows through the Kafka pipeline.
type NewsItem struct {
	ID        string    `json:"id,omitempty"`
	Title     string    `json:"title"`
	Snippet   string    `json:"snippet,omitempty"`
	Industry  string    `json:"industry,omitempty"`
	Location  string    `json:"location,omitempty"`
	Source    string    `json:"source,omitempty"`
	Keywords  []string  `json:"keywords,omitempty"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}
