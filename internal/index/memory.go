package index

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/marks/internal/domain"
)

// MemoryIndex is an in-process bookmarks collection. It implements the same
// contract as the Redis store and is used when MARKS_STORE=memory.
// Nothing survives a restart.
type MemoryIndex struct {
	mu         sync.RWMutex
	byCategory map[domain.Category][]*domain.Bookmark // ordered by DateAdded
	now        func() time.Time
	newID      func() string
}

// NewMemoryIndex creates an empty memory index
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		byCategory: make(map[domain.Category][]*domain.Bookmark),
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Insert assigns ID and DateAdded and stores a private copy of b.
func (idx *MemoryIndex) Insert(_ context.Context, b *domain.Bookmark) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	b.ID = idx.newID()
	b.DateAdded = idx.now().UTC()

	stored := clone(b)

	// Keep the slice sorted even if the clock goes backwards.
	list := idx.byCategory[stored.Category]
	pos := sort.Search(len(list), func(i int) bool {
		return list[i].DateAdded.After(stored.DateAdded)
	})
	list = append(list, nil)
	copy(list[pos+1:], list[pos:])
	list[pos] = stored
	idx.byCategory[stored.Category] = list

	return nil
}

// QueryByCategory returns copies of the category's bookmarks, oldest first.
func (idx *MemoryIndex) QueryByCategory(_ context.Context, c domain.Category) ([]*domain.Bookmark, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	list := idx.byCategory[c]
	out := make([]*domain.Bookmark, 0, len(list))
	for _, b := range list {
		out = append(out, clone(b))
	}
	return out, nil
}

// CountByCategory returns the number of bookmarks per category.
func (idx *MemoryIndex) CountByCategory(_ context.Context) (map[domain.Category]int64, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	counts := make(map[domain.Category]int64)
	for _, c := range domain.Categories() {
		counts[c] = int64(len(idx.byCategory[c]))
	}
	return counts, nil
}

// Ping always succeeds.
func (idx *MemoryIndex) Ping(context.Context) error { return nil }

func clone(b *domain.Bookmark) *domain.Bookmark {
	c := *b
	c.Keywords = append([]string(nil), b.Keywords...)
	return &c
}
