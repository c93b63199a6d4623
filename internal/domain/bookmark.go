package domain

import "time"

// Bookmark is a single persisted entry of the "bookmarks" collection.
// Records are append-only: once written they are never updated or deleted.
type Bookmark struct {
	// ID is assigned by the store on insert.
	ID string `json:"id"`

	// Link is expected to look like a URL but is never validated.
	// Example: https://example.com
	Link string `json:"link"`

	Description string `json:"description"`

	// Keywords is the comma-split keyword text, tokens kept as typed
	// unless keyword trimming is enabled.
	Keywords []string `json:"keywords"`

	Category Category `json:"category"`

	// DateAdded is set by the store at write time, always UTC.
	DateAdded time.Time `json:"date_added"`
}
