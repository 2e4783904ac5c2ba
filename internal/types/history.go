package types

import "time"

// SearchRecord is one stored search outcome. Error is empty on success.
type SearchRecord struct {
	ID           int64     `json:"id"`
	SessionID    string    `json:"session_id"`
	Keywords     []string  `json:"keywords"`
	Location     string    `json:"location"`
	ListingCount int       `json:"listing_count"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// DraftRecord is one stored drafting outcome. Error is empty on success.
type DraftRecord struct {
	ID          int64     `json:"id"`
	SessionID   string    `json:"session_id"`
	ListingID   string    `json:"listing_id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Background  string    `json:"background"`
	CoverLetter string    `json:"cover_letter,omitempty"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// History groups the stored searches and drafts of one session, newest first.
type History struct {
	SessionID string         `json:"session_id"`
	Searches  []SearchRecord `json:"searches"`
	Drafts    []DraftRecord  `json:"drafts"`
}
