package domain

import "time"

// SessionContext is the advisory conversation state kept per session id
type SessionContext struct {
	SessionID       string      `json:"session_id"`
	PreviousQueries []string    `json:"previous_queries"`
	Preferences     Preferences `json:"preferences"`
	LastUpdated     time.Time   `json:"last_updated"`
}

// Preferences are tags derived from the queries of one session
type Preferences struct {
	PreferredMaxPrice  *float64 `json:"preferred_max_price,omitempty"`
	PreferredMinPrice  *float64 `json:"preferred_min_price,omitempty"`
	PreferredColors    []string `json:"preferred_colors,omitempty"`
	PreferredMaterials []string `json:"preferred_materials,omitempty"`
}
