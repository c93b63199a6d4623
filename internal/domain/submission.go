package domain

import "strings"

// Submission holds the raw values of the insert form, exactly as typed.
type Submission struct {
	Link        string
	Description string
	Keywords    string
	Category    string
}

// Validate checks presence only: no URL parsing, no trimming.
// A whitespace-only field counts as filled.
func (s Submission) Validate() error {
	if s.Link == "" || s.Description == "" || s.Keywords == "" {
		return ErrMissingFields
	}
	if _, err := ParseCategory(s.Category); err != nil {
		return err
	}
	return nil
}

// SplitKeywords splits raw keyword text on commas. Empty tokens are kept.
// When trim is false the tokens keep their surrounding whitespace.
func SplitKeywords(raw string, trim bool) []string {
	parts := strings.Split(raw, ",")
	if !trim {
		return parts
	}
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
