package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/marks/internal/domain"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewStore(client, ""), mr
}

// steppingClock returns a clock that advances by step on every call.
func steppingClock(start time.Time, step time.Duration) func() time.Time {
	current := start
	return func() time.Time {
		t := current
		current = current.Add(step)
		return t
	}
}

func TestStoreInsertAssignsIDAndUTCDate(t *testing.T) {
	store, mr := newTestStore(t)
	paris := time.FixedZone("CET", 3600)
	store.now = func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, paris) }

	b := &domain.Bookmark{
		Link:        "https://a.com",
		Description: "A site",
		Keywords:    []string{"x", "y"},
		Category:    domain.CategoryFood,
	}
	require.NoError(t, store.Insert(context.Background(), b))

	assert.NotEmpty(t, b.ID)
	assert.Equal(t, time.UTC, b.DateAdded.Location())
	assert.Equal(t, 9, b.DateAdded.Hour())

	assert.True(t, mr.Exists("bookmarks:doc:"+b.ID))
	members, err := mr.ZMembers("bookmarks:category:Food")
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, members)
}

func TestStoreInsertThenQueryRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	in := &domain.Bookmark{
		Link:        "https://a.com",
		Description: "A site",
		Keywords:    []string{"x", " y"},
		Category:    domain.CategoryFood,
	}
	require.NoError(t, store.Insert(ctx, in))

	got, err := store.QueryByCategory(ctx, domain.CategoryFood)
	require.NoError(t, err)
	require.Len(t, got, 1)

	out := got[0]
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, "https://a.com", out.Link)
	assert.Equal(t, "A site", out.Description)
	assert.Equal(t, []string{"x", " y"}, out.Keywords)
	assert.Equal(t, domain.CategoryFood, out.Category)
	assert.True(t, in.DateAdded.Equal(out.DateAdded))
}

func TestStoreQueryOrdersByDateAdded(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	store.now = steppingClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Second)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Insert(ctx, &domain.Bookmark{
			Link:        fmt.Sprintf("https://site%d.example", i),
			Description: fmt.Sprintf("site %d", i),
			Keywords:    []string{"k"},
			Category:    domain.CategorySport,
		}))
	}
	// Noise in another category must not leak into the result.
	require.NoError(t, store.Insert(ctx, &domain.Bookmark{Link: "x", Description: "x", Keywords: []string{"x"}, Category: domain.CategoryJunk}))

	got, err := store.QueryByCategory(ctx, domain.CategorySport)
	require.NoError(t, err)
	require.Len(t, got, 5)

	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].DateAdded.Before(got[i-1].DateAdded),
			"result %d is older than result %d", i, i-1)
	}
	assert.Equal(t, "https://site0.example", got[0].Link)
	assert.Equal(t, "https://site4.example", got[4].Link)
}

func TestStoreQueryEqualTimestampsStayOrdered(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Insert(ctx, &domain.Bookmark{Link: "l", Description: "d", Keywords: []string{"k"}, Category: domain.CategoryWebsite}))
	}

	got, err := store.QueryByCategory(ctx, domain.CategoryWebsite)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, b := range got {
		assert.True(t, b.DateAdded.Equal(fixed))
	}
}

func TestStoreQuerySameMicrosecondStaysOrdered(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	times := []time.Time{base.Add(100 * time.Nanosecond), base.Add(900 * time.Nanosecond)}
	ids := []string{"zzzz", "aaaa"}
	nextTime, nextID := 0, 0
	store.now = func() time.Time {
		ts := times[nextTime]
		nextTime++
		return ts
	}
	store.newID = func() string {
		id := ids[nextID]
		nextID++
		return id
	}

	for range ids {
		require.NoError(t, store.Insert(ctx, &domain.Bookmark{Link: "l", Description: "d", Keywords: []string{"k"}, Category: domain.CategorySport}))
	}

	got, err := store.QueryByCategory(ctx, domain.CategorySport)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].DateAdded.Before(got[i-1].DateAdded), "date_added went backwards at %d", i)
	}
	for _, b := range got {
		assert.Equal(t, 0, b.DateAdded.Nanosecond()%int(time.Microsecond), "stored date finer than the index score")
	}
}

func TestStoreQueryEmptyCategory(t *testing.T) {
	store, _ := newTestStore(t)

	got, err := store.QueryByCategory(context.Background(), domain.CategoryYouTube)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestStoreQuerySkipsMissingDocuments(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	keep := &domain.Bookmark{Link: "keep", Description: "d", Keywords: []string{"k"}, Category: domain.CategoryJunk}
	gone := &domain.Bookmark{Link: "gone", Description: "d", Keywords: []string{"k"}, Category: domain.CategoryJunk}
	require.NoError(t, store.Insert(ctx, keep))
	require.NoError(t, store.Insert(ctx, gone))

	mr.Del("bookmarks:doc:" + gone.ID)

	got, err := store.QueryByCategory(ctx, domain.CategoryJunk)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "keep", got[0].Link)
}

func TestStoreQueryCorruptDocumentFails(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	b := &domain.Bookmark{Link: "l", Description: "d", Keywords: []string{"k"}, Category: domain.CategoryFood}
	require.NoError(t, store.Insert(ctx, b))
	require.NoError(t, mr.Set("bookmarks:doc:"+b.ID, "{not json"))

	got, err := store.QueryByCategory(ctx, domain.CategoryFood)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode bookmark")
	assert.Nil(t, got)
}

func TestStoreQueryBrokenIndexFails(t *testing.T) {
	store, mr := newTestStore(t)

	// An index key holding the wrong type behaves like a missing backing index.
	require.NoError(t, mr.Set("bookmarks:category:Food", "not-a-zset"))

	got, err := store.QueryByCategory(context.Background(), domain.CategoryFood)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WRONGTYPE")
	assert.Nil(t, got)
}

func TestStoreInsertFailsWhenRedisDown(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	err := store.Insert(context.Background(), &domain.Bookmark{Link: "l", Description: "d", Keywords: []string{"k"}, Category: domain.CategoryFood})
	require.Error(t, err)
	assert.Error(t, store.Ping(context.Background()))
}

func TestStoreCountByCategory(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for _, c := range []domain.Category{domain.CategoryFood, domain.CategoryFood, domain.CategorySport} {
		require.NoError(t, store.Insert(ctx, &domain.Bookmark{Link: "l", Description: "d", Keywords: []string{"k"}, Category: c}))
	}

	counts, err := store.CountByCategory(ctx)
	require.NoError(t, err)
	assert.Len(t, counts, len(domain.Categories()))
	assert.Equal(t, int64(2), counts[domain.CategoryFood])
	assert.Equal(t, int64(1), counts[domain.CategorySport])
	assert.Equal(t, int64(0), counts[domain.CategoryYouTube])
}

func TestKeys(t *testing.T) {
	k := NewKeys("  ")
	assert.Equal(t, DefaultCollection, k.Collection())
	assert.Equal(t, "bookmarks:doc:abc", k.Doc("abc"))
	assert.Equal(t, "bookmarks:category:Any-article", k.Category(domain.CategoryAnyArticle))

	custom := NewKeys("stash")
	assert.Equal(t, "stash:category:Food", custom.Category(domain.CategoryFood))
}
