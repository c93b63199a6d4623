package redis

import (
	"strings"

	"github.com/MrSnakeDoc/marks/internal/domain"
)

// DefaultCollection is the collection name used when none is configured.
const DefaultCollection = "bookmarks"

// Keys builds Redis keys for one collection.
//
//	<collection>:doc:<id>            JSON document
//	<collection>:category:<category> sorted set of ids, scored by date_added (µs)
type Keys struct {
	collection string
}

// NewKeys returns a key builder. An empty collection falls back to DefaultCollection.
func NewKeys(collection string) Keys {
	collection = strings.TrimSpace(collection)
	if collection == "" {
		collection = DefaultCollection
	}
	return Keys{collection: collection}
}

// Collection returns the collection name.
func (k Keys) Collection() string { return k.collection }

// Doc returns the key of a bookmark document.
func (k Keys) Doc(id string) string {
	return k.collection + ":doc:" + id
}

// Category returns the key of the per-category index.
func (k Keys) Category(c domain.Category) string {
	return k.collection + ":category:" + string(c)
}
