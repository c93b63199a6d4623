package index

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/marks/internal/domain"
)

func newBookmark(link string, c domain.Category) *domain.Bookmark {
	return &domain.Bookmark{
		Link:        link,
		Description: "desc " + link,
		Keywords:    []string{"a", "b"},
		Category:    c,
	}
}

func TestNewMemoryIndex(t *testing.T) {
	index := NewMemoryIndex()
	if index == nil {
		t.Fatal("NewMemoryIndex() returned nil")
	}
	got, err := index.QueryByCategory(context.Background(), domain.CategoryFood)
	if err != nil {
		t.Fatalf("QueryByCategory() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("new index should return an empty non-nil slice, got %v", got)
	}
}

func TestInsertAssignsIdentity(t *testing.T) {
	index := NewMemoryIndex()
	index.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.FixedZone("X", -7200)) }

	b := newBookmark("https://a.com", domain.CategoryFood)
	if err := index.Insert(context.Background(), b); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if b.ID == "" {
		t.Error("Insert() should assign an ID")
	}
	if b.DateAdded.Location() != time.UTC || b.DateAdded.Hour() != 14 {
		t.Errorf("Insert() DateAdded = %v, want 14:00 UTC", b.DateAdded)
	}
}

func TestQueryFiltersAndOrders(t *testing.T) {
	index := NewMemoryIndex()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	offsets := []time.Duration{2 * time.Minute, 0, time.Minute} // out of order on purpose
	step := 0
	index.now = func() time.Time {
		t := base.Add(offsets[step%len(offsets)])
		step++
		return t
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := index.Insert(ctx, newBookmark(fmt.Sprintf("food-%d", i), domain.CategoryFood)); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}
	if err := index.Insert(ctx, newBookmark("sport", domain.CategorySport)); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	got, err := index.QueryByCategory(ctx, domain.CategoryFood)
	if err != nil {
		t.Fatalf("QueryByCategory() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("QueryByCategory() = %d bookmarks, want 3", len(got))
	}
	wantOrder := []string{"food-1", "food-2", "food-0"}
	for i, b := range got {
		if b.Link != wantOrder[i] {
			t.Errorf("position %d = %s, want %s", i, b.Link, wantOrder[i])
		}
		if b.Category != domain.CategoryFood {
			t.Errorf("position %d has category %s", i, b.Category)
		}
	}
}

func TestQueryReturnsCopies(t *testing.T) {
	index := NewMemoryIndex()
	ctx := context.Background()

	in := newBookmark("https://a.com", domain.CategoryJunk)
	if err := index.Insert(ctx, in); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	in.Keywords[0] = "mutated after insert"

	got, _ := index.QueryByCategory(ctx, domain.CategoryJunk)
	got[0].Description = "mutated after query"

	again, _ := index.QueryByCategory(ctx, domain.CategoryJunk)
	if again[0].Keywords[0] != "a" {
		t.Errorf("stored keywords leaked caller mutation: %q", again[0].Keywords)
	}
	if again[0].Description != "desc https://a.com" {
		t.Errorf("stored description leaked caller mutation: %q", again[0].Description)
	}
}

func TestCountByCategory(t *testing.T) {
	index := NewMemoryIndex()
	ctx := context.Background()

	_ = index.Insert(ctx, newBookmark("1", domain.CategoryWebsite))
	_ = index.Insert(ctx, newBookmark("2", domain.CategoryWebsite))
	_ = index.Insert(ctx, newBookmark("3", domain.CategoryYouTube))

	counts, err := index.CountByCategory(ctx)
	if err != nil {
		t.Fatalf("CountByCategory() error = %v", err)
	}
	if len(counts) != len(domain.Categories()) {
		t.Errorf("CountByCategory() has %d keys, want every category", len(counts))
	}
	if counts[domain.CategoryWebsite] != 2 || counts[domain.CategoryYouTube] != 1 || counts[domain.CategoryFood] != 0 {
		t.Errorf("CountByCategory() = %v", counts)
	}
}

func TestConcurrentAccess(t *testing.T) {
	index := NewMemoryIndex()
	ctx := context.Background()

	var wg sync.WaitGroup

	// Concurrent writers
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = index.Insert(ctx, newBookmark(fmt.Sprintf("link-%d", i), domain.CategoryEntertainment))
		}(i)
	}

	// Concurrent readers
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = index.QueryByCategory(ctx, domain.CategoryEntertainment)
		}()
	}

	wg.Wait()

	got, _ := index.QueryByCategory(ctx, domain.CategoryEntertainment)
	if len(got) != 100 {
		t.Errorf("concurrent Insert() stored %d bookmarks, want 100", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].DateAdded.Before(got[i-1].DateAdded) {
			t.Fatalf("results not ordered at %d", i)
		}
	}
}
