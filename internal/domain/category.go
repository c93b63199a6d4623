package domain

import "fmt"

// Category partitions bookmarks for retrieval. The set is closed: the form
// selector and the store index keys are both built from Categories().
type Category string

const (
	CategoryCodeArticle   Category = "Code-article"
	CategoryFood          Category = "Food"
	CategorySport         Category = "Sport"
	CategoryJunk          Category = "Junk"
	CategoryEntertainment Category = "Entertainment"
	CategoryWebsite       Category = "Website"
	CategoryAnyArticle    Category = "Any-article"
	CategoryYouTube       Category = "YouTube"
)

// categories keeps selector display order.
var categories = []Category{
	CategoryCodeArticle,
	CategoryFood,
	CategorySport,
	CategoryJunk,
	CategoryEntertainment,
	CategoryWebsite,
	CategoryAnyArticle,
	CategoryYouTube,
}

// Categories returns every category in display order. The slice is a copy.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Valid reports whether c belongs to the closed set.
func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string { return string(c) }

// ParseCategory converts a raw form value into a Category. Matching is exact.
func ParseCategory(raw string) (Category, error) {
	c := Category(raw)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, raw)
	}
	return c, nil
}
